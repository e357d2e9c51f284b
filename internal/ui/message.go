package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgHomeFetched MsgKind = iota
	MsgDetailFetched
	MsgSuggestions
	MsgWatched
	MsgFavoriteToggled
	MsgFavoritesChanged
	MsgHistoryChanged
	MsgStatus
)

type homeData struct {
	feed *tasks.HomeFeed
	err  error
}

type detailData struct {
	detail *models.CatalogDetail
	err    error
}

type watchData struct {
	session *tasks.WatchSession
	err     error
}

type toggleData struct {
	slug  string
	added bool
	err   error
}

// homeFetchedMsg is the constructor for [MsgHomeFetched]
func homeFetchedMsg(feed *tasks.HomeFeed, err error) Msg {
	return Msg{kind: MsgHomeFetched, data: homeData{feed, err}}
}

// detailFetchedMsg is the constructor for [MsgDetailFetched]
func detailFetchedMsg(detail *models.CatalogDetail, err error) Msg {
	return Msg{kind: MsgDetailFetched, data: detailData{detail, err}}
}

// suggestionsMsg is the constructor for [MsgSuggestions]
func suggestionsMsg(items []models.CatalogItem) Msg {
	return Msg{kind: MsgSuggestions, data: items}
}

// watchedMsg is the constructor for [MsgWatched]
func watchedMsg(session *tasks.WatchSession, err error) Msg {
	return Msg{kind: MsgWatched, data: watchData{session, err}}
}

// favoriteToggledMsg is the constructor for [MsgFavoriteToggled]
func favoriteToggledMsg(slug string, added bool, err error) Msg {
	return Msg{kind: MsgFavoriteToggled, data: toggleData{slug, added, err}}
}

// libraryChangedMsg is the constructor for [MsgFavoritesChanged] and [MsgHistoryChanged]
func libraryChangedMsg(kind MsgKind) Msg {
	return Msg{kind: kind}
}

// statusMsg is the constructor for [MsgStatus]; a non-nil err is shown as an error line.
func statusMsg(text string, err error) Msg {
	return Msg{kind: MsgStatus, data: statusData{text, err}}
}

type statusData struct {
	text string
	err  error
}
