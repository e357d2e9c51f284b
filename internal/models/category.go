package models

import "fmt"

// Category is a listing type accepted by the by-category endpoint.
type Category string

const (
	SingleMovies Category = "phim-le"
	Series       Category = "phim-bo"
	Animation    Category = "hoat-hinh"
	TVShows      Category = "tv-shows"
)

// Categories returns every supported category in display order.
func Categories() []Category {
	return []Category{SingleMovies, Series, Animation, TVShows}
}

// ParseCategory validates s against [Categories].
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Valid reports whether c is one of [Categories].
func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

// Title returns the display title for c.
func (c Category) Title() string {
	switch c {
	case SingleMovies:
		return "Phim Lẻ"
	case Series:
		return "Phim Bộ"
	case Animation:
		return "Hoạt Hình"
	case TVShows:
		return "TV Shows"
	default:
		return string(c)
	}
}
