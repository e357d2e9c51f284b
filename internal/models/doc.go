// Package models defines the catalog and library entities shared by every reelx component.
//
// The package contains two categories of types:
//
// 1. Catalog records produced by the remote movie API (read-only to the rest of the app)
//   - [CatalogItem] : a title as it appears in listings and search results
//   - [CatalogDetail] : a title plus its [ServerGroup] episode lists
//   - [Category] : the fixed listing types (phim-le, phim-bo, hoat-hinh, tv-shows)
//
// 2. Library entries persisted in the local store
//   - [FavoriteEntry] : a [CatalogItem] snapshot stamped with AddedAt
//   - [HistoryEntry] : the last episode opened for a title, stamped with Timestamp
//
// JSON field names follow the remote API and the documents written by the original
// browser front end, so snapshots and stored documents round-trip unchanged.
package models
