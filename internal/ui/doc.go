// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the catalog site's pages as views:
//  1. [HomeView] : Hero, recommended, series and single-movie sections
//  2. [SearchView] : Debounced suggestions while typing
//  3. [FavoritesView] : Saved titles, newest first
//  4. [HistoryView] : Last watched episode per title
//  5. [DetailView] : Title information and episode list
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Favorites and history changes arrive through notify channels, so every view repaints after a change
// made from any other view (or by another goroutine sharing the engine).
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, f, x, n, o, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
