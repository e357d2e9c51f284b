// Package tasks orchestrates catalog browsing, playback bookkeeping and library exports with real-time progress reporting.
//
// # Core Operations
//
// [Engine] combines a [services.Catalog] with the favorites and history stores:
//
//  1. [Engine.Home] : Home page sections
//     - Fetches new releases, series and single movies concurrently
//     - Hero takes the first 6 releases, Recommended the next 6, Series and Singles the first 12
//
//  2. [Engine.Watch] : Opens an episode
//     - Resolves the title and episode (first episode when none is given)
//     - Records the episode in watch history, one entry per activation
//     - Returns the following episode for auto-next
//
//  3. [Engine.ExportLibrary] : Writes favorites and history to disk
//     - Renders the chosen format through the formatter package
//     - Optionally downloads posters with a bounded, rate-limited worker pool
//     - Writes export_manifest.json summarizing the run
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Not Found
//
// Catalog lookups never fail loudly. [Engine.Detail] and [Engine.Watch] translate "no data" into
// [shared.ErrNotFound] so the presentation layer can render an empty state.
package tasks
