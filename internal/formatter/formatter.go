// package formatter provides functions to export favorites and watch history to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// Formats lists the supported export formats.
var Formats = []string{"json", "csv", "markdown", "txt"}

// ParseFormat validates an export format name. "md" and "text" are accepted as aliases.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return "json", nil
	case "csv":
		return "csv", nil
	case "markdown", "md":
		return "markdown", nil
	case "txt", "text":
		return "txt", nil
	default:
		return "", fmt.Errorf("%w: export format %q", shared.ErrUnsupportedValue, s)
	}
}

// Extension returns the file extension for format.
func Extension(format string) string {
	switch format {
	case "markdown":
		return ".md"
	case "txt":
		return ".txt"
	case "csv":
		return ".csv"
	default:
		return ".json"
	}
}

// ImageFunc resolves a stored image path to an absolute URL.
type ImageFunc func(path string) string

func identity(path string) string { return path }

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, record := range rows {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// FavoritesToCSV converts favorites to CSV with columns: Slug, Name, Origin Name, Year, Quality, Language, Episode, Added At
func FavoritesToCSV(entries []models.FavoriteEntry) ([]byte, error) {
	headers := []string{"Slug", "Name", "Origin Name", "Year", "Quality", "Language", "Episode", "Added At"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Slug,
			e.Name,
			e.OriginName,
			strconv.Itoa(e.Year),
			e.Quality,
			e.Lang,
			e.EpisodeCurrent,
			shared.FormatTimestamp(e.AddedAt),
		})
	}
	return writeCSV(headers, rows)
}

// HistoryToCSV converts history to CSV with columns: Slug, Name, Origin Name, Episode Slug, Episode, Watched At
func HistoryToCSV(entries []models.HistoryEntry) ([]byte, error) {
	headers := []string{"Slug", "Name", "Origin Name", "Episode Slug", "Episode", "Watched At"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Slug,
			e.Name,
			e.OriginName,
			e.EpisodeSlug,
			e.EpName,
			shared.FormatTimestamp(e.Timestamp),
		})
	}
	return writeCSV(headers, rows)
}

// FavoritesToMarkdown renders favorites as a Markdown document with poster thumbnails.
func FavoritesToMarkdown(entries []models.FavoriteEntry, image ImageFunc) ([]byte, error) {
	if image == nil {
		image = identity
	}

	var buf bytes.Buffer
	buf.WriteString("# Phim Yêu Thích\n\n")
	buf.WriteString(fmt.Sprintf("**Titles**: %d\n\n", len(entries)))

	for i, e := range entries {
		buf.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, e.Label()))
		if e.PosterURL != "" || e.ThumbURL != "" {
			poster := e.ThumbURL
			if poster == "" {
				poster = e.PosterURL
			}
			buf.WriteString(fmt.Sprintf("![%s](%s)\n\n", e.Name, image(poster)))
		}
		if e.OriginName != "" {
			buf.WriteString(fmt.Sprintf("- **Original title**: %s\n", e.OriginName))
		}
		buf.WriteString(fmt.Sprintf("- **Audio**: %s\n", e.AudioBadge()))
		if e.EpisodeCurrent != "" {
			buf.WriteString(fmt.Sprintf("- **Episode**: %s\n", e.EpisodeCurrent))
		}
		buf.WriteString(fmt.Sprintf("- **Added**: %s\n", shared.FormatTimestamp(e.AddedAt)))
		buf.WriteString(fmt.Sprintf("- **Slug**: `%s`\n\n", e.Slug))
	}

	return buf.Bytes(), nil
}

// HistoryToMarkdown renders history as a Markdown table.
func HistoryToMarkdown(entries []models.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# Lịch Sử Xem\n\n")
	buf.WriteString(fmt.Sprintf("**Titles**: %d\n\n", len(entries)))

	if len(entries) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| Title | Episode | Watched |\n")
	buf.WriteString("| --- | --- | --- |\n")
	for _, e := range entries {
		buf.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			escapeCell(e.Name), escapeCell(e.EpName), shared.FormatTimestamp(e.Timestamp)))
	}
	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// FavoritesToText converts favorites to plain text
func FavoritesToText(entries []models.FavoriteEntry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Favorites: %d\n\n", len(entries)))
	for i, e := range entries {
		buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, e.Label(), e.AudioBadge()))
	}
	return buf.Bytes(), nil
}

// HistoryToText converts history to plain text
func HistoryToText(entries []models.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("History: %d\n\n", len(entries)))
	for i, e := range entries {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%s)\n", i+1, e.Name, e.EpName, shared.FormatTimestamp(e.Timestamp)))
	}
	return buf.Bytes(), nil
}

// FormatFavorites renders favorites in format.
func FormatFavorites(entries []models.FavoriteEntry, format string, image ImageFunc) ([]byte, error) {
	switch format {
	case "csv":
		return FavoritesToCSV(entries)
	case "markdown":
		return FavoritesToMarkdown(entries, image)
	case "txt":
		return FavoritesToText(entries)
	default:
		return shared.MarshalJSON(entries, true)
	}
}

// FormatHistory renders history in format.
func FormatHistory(entries []models.HistoryEntry, format string) ([]byte, error) {
	switch format {
	case "csv":
		return HistoryToCSV(entries)
	case "markdown":
		return HistoryToMarkdown(entries)
	case "txt":
		return HistoryToText(entries)
	default:
		return shared.MarshalJSON(entries, true)
	}
}

// WriteFile writes data to path on fs, creating parent directories.
func WriteFile(fs afero.Fs, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteFavoritesExport renders favorites in format and writes them to path.
//
// Defaults to favorites{ext} in the working directory.
func WriteFavoritesExport(fs afero.Fs, entries []models.FavoriteEntry, format, path string, image ImageFunc) (string, error) {
	if path == "" {
		path = "favorites" + Extension(format)
	}

	data, err := FormatFavorites(entries, format, image)
	if err != nil {
		return "", fmt.Errorf("failed to format favorites: %w", err)
	}
	if err := WriteFile(fs, path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteHistoryExport renders history in format and writes it to path.
//
// Defaults to history{ext} in the working directory.
func WriteHistoryExport(fs afero.Fs, entries []models.HistoryEntry, format, path string) (string, error) {
	if path == "" {
		path = "history" + Extension(format)
	}

	data, err := FormatHistory(entries, format)
	if err != nil {
		return "", fmt.Errorf("failed to format history: %w", err)
	}
	if err := WriteFile(fs, path, data); err != nil {
		return "", err
	}
	return path, nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}
