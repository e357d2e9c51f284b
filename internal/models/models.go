// package models defines the data model for the reelx catalog browser
package models

import (
	"fmt"
	"strings"
)

// Taxon is a category or country reference attached to a title.
type Taxon struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CatalogItem identifies a title. Slug is the stable, URL-safe key.
type CatalogItem struct {
	ID             string   `json:"_id"`
	Name           string   `json:"name"`
	OriginName     string   `json:"origin_name"`
	Slug           string   `json:"slug"`
	ThumbURL       string   `json:"thumb_url"`
	PosterURL      string   `json:"poster_url"`
	Year           int      `json:"year"`
	Time           string   `json:"time,omitempty"`
	Quality        string   `json:"quality,omitempty"`
	Lang           string   `json:"lang,omitempty"`
	EpisodeCurrent string   `json:"episode_current,omitempty"`
	Content        string   `json:"content,omitempty"`
	Type           string   `json:"type,omitempty"`
	Chieurap       bool     `json:"chieurap,omitempty"`
	SubDocquyen    bool     `json:"sub_docquyen,omitempty"`
	Actor          []string `json:"actor,omitempty"`
	Director       []string `json:"director,omitempty"`
	Category       []Taxon  `json:"category,omitempty"`
	Country        []Taxon  `json:"country,omitempty"`
}

// AudioBadge returns the short language badge shown on cards.
func (c CatalogItem) AudioBadge() string {
	lang := strings.ToLower(c.Lang)
	switch {
	case strings.Contains(lang, "vietsub"):
		return "Vietsub"
	case strings.Contains(lang, "thuyết minh"), strings.Contains(lang, "long tieng"):
		return "Thuyết Minh"
	case strings.Contains(lang, "lồng tiếng"):
		return "Lồng Tiếng"
	default:
		return "HD"
	}
}

// Label returns "Name (Year)", or just Name when the year is unknown.
func (c CatalogItem) Label() string {
	if c.Year > 0 {
		return fmt.Sprintf("%s (%d)", c.Name, c.Year)
	}
	return c.Name
}

// Episode is a single playable entry within a [ServerGroup].
type Episode struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Filename  string `json:"filename,omitempty"`
	LinkEmbed string `json:"link_embed"`
	LinkM3U8  string `json:"link_m3u8,omitempty"`
}

// ServerGroup is an ordered list of episodes served by one source.
type ServerGroup struct {
	ServerName string    `json:"server_name"`
	ServerData []Episode `json:"server_data"`
}

// CatalogDetail is a title with its episode groupings.
type CatalogDetail struct {
	CatalogItem
	Episodes   []ServerGroup `json:"episodes"`
	Status     string        `json:"status,omitempty"`
	TrailerURL string        `json:"trailer_url,omitempty"`
	View       int           `json:"view,omitempty"`
}

// primaryEpisodes returns the episode list of the first server group.
func (d *CatalogDetail) primaryEpisodes() []Episode {
	if d == nil || len(d.Episodes) == 0 {
		return nil
	}
	return d.Episodes[0].ServerData
}

// EpisodeCount returns the number of episodes in the first server group.
func (d *CatalogDetail) EpisodeCount() int {
	return len(d.primaryEpisodes())
}

// FirstEpisode returns the first playable episode.
func (d *CatalogDetail) FirstEpisode() (Episode, bool) {
	eps := d.primaryEpisodes()
	if len(eps) == 0 {
		return Episode{}, false
	}
	return eps[0], true
}

// FindEpisode looks up an episode by slug in the first server group.
func (d *CatalogDetail) FindEpisode(slug string) (Episode, bool) {
	for _, ep := range d.primaryEpisodes() {
		if ep.Slug == slug {
			return ep, true
		}
	}
	return Episode{}, false
}

// NextEpisode returns the episode following slug, if any.
func (d *CatalogDetail) NextEpisode(slug string) (Episode, bool) {
	eps := d.primaryEpisodes()
	for i, ep := range eps {
		if ep.Slug == slug && i+1 < len(eps) {
			return eps[i+1], true
		}
	}
	return Episode{}, false
}
