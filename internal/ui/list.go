package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
)

var (
	_ list.Item = cardItem{}
	_ list.Item = favoriteItem{}
	_ list.Item = historyItem{}
	_ list.Item = episodeItem{}
)

const heart = "♥"

// cardItem wraps [tasks.Card] to implement [list.Item].
type cardItem struct {
	card    tasks.Card
	section string
}

func (i cardItem) FilterValue() string { return shared.FoldText(i.card.Name + " " + i.card.OriginName) }
func (i cardItem) Title() string {
	if i.card.Favorite {
		return fmt.Sprintf("%s %s", i.card.Label(), heart)
	}
	return i.card.Label()
}
func (i cardItem) Description() string {
	desc := i.card.Badge
	if i.section != "" {
		desc = fmt.Sprintf("%s • %s", i.section, desc)
	}
	if i.card.EpisodeCurrent != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.card.EpisodeCurrent)
	}
	if i.card.Watched {
		desc = fmt.Sprintf("%s • watched %s", desc, i.card.LastEp)
	}
	return desc
}

// favoriteItem wraps [models.FavoriteEntry] to implement [list.Item].
type favoriteItem struct {
	entry models.FavoriteEntry
}

func (i favoriteItem) FilterValue() string {
	return shared.FoldText(i.entry.Name + " " + i.entry.OriginName)
}
func (i favoriteItem) Title() string { return fmt.Sprintf("%s %s", i.entry.Label(), heart) }
func (i favoriteItem) Description() string {
	return fmt.Sprintf("%s • added %s", i.entry.AudioBadge(), shared.FormatTimestamp(i.entry.AddedAt))
}

// historyItem wraps [models.HistoryEntry] to implement [list.Item].
type historyItem struct {
	entry models.HistoryEntry
}

func (i historyItem) FilterValue() string { return shared.FoldText(i.entry.Name + " " + i.entry.OriginName) }
func (i historyItem) Title() string       { return i.entry.Name }
func (i historyItem) Description() string {
	return fmt.Sprintf("%s • %s", i.entry.EpName, shared.FormatTimestamp(i.entry.Timestamp))
}

// episodeItem wraps [models.Episode] to implement [list.Item].
type episodeItem struct {
	episode models.Episode
	last    bool
}

func (i episodeItem) FilterValue() string { return i.episode.Name }
func (i episodeItem) Title() string {
	if i.last {
		return "▶ " + i.episode.Name
	}
	return i.episode.Name
}
func (i episodeItem) Description() string { return i.episode.Slug }

func cardItems(cards []tasks.Card, section string) []list.Item {
	items := make([]list.Item, len(cards))
	for i, c := range cards {
		items[i] = cardItem{card: c, section: section}
	}
	return items
}

func favoriteItems(entries []models.FavoriteEntry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = favoriteItem{entry: e}
	}
	return items
}

func historyItems(entries []models.HistoryEntry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = historyItem{entry: e}
	}
	return items
}

func episodeItems(detail *models.CatalogDetail, lastSlug string) []list.Item {
	if detail == nil || len(detail.Episodes) == 0 {
		return []list.Item{}
	}
	eps := detail.Episodes[0].ServerData
	items := make([]list.Item, len(eps))
	for i, ep := range eps {
		items[i] = episodeItem{episode: ep, last: ep.Slug == lastSlug}
	}
	return items
}

// selectedItem returns the catalog snapshot behind any list item.
func selectedItem(item list.Item) (models.CatalogItem, bool) {
	switch it := item.(type) {
	case cardItem:
		return it.card.CatalogItem, true
	case favoriteItem:
		return it.entry.CatalogItem, true
	case historyItem:
		return models.CatalogItem{
			Slug:       it.entry.Slug,
			Name:       it.entry.Name,
			OriginName: it.entry.OriginName,
			ThumbURL:   it.entry.ThumbURL,
		}, true
	default:
		return models.CatalogItem{}, false
	}
}
