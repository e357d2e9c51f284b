// Package store implements the key-value persistence layer that backs favorites and watch history.
//
// A [Store] holds raw strings under string keys, the way browser localStorage does. Two
// implementations are provided:
//   - [Memory] : map-backed, used by tests and the "memory" storage driver
//   - [SQLite] : a single local_storage table created by the embedded shared migrations
//
// Both enforce an optional byte quota and fail with [ErrQuotaExceeded] when a write would exceed it.
//
// Documents stored under the reserved keys ([FavoritesKey], [HistoryKey]) are JSON envelopes
// carrying a format version. [LoadDocument] upgrades older envelopes through [Migrations] and
// [SaveDocument] always writes [CurrentVersion].
package store
