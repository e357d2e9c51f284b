package tasks

import (
	"fmt"

	"github.com/desertthunder/reelx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchReleases Phase = iota
	FetchSeries
	FetchSingles
	FetchDetail
	RecordHistory
	ExportFavorites
	ExportHistory
	DownloadPosters
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchReleases:
		return "fetch_releases"
	case FetchSeries:
		return "fetch_series"
	case FetchSingles:
		return "fetch_singles"
	case FetchDetail:
		return "fetch_detail"
	case RecordHistory:
		return "record_history"
	case ExportFavorites:
		return "export_favorites"
	case ExportHistory:
		return "export_history"
	case DownloadPosters:
		return "download_posters"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func sectionUpdate(phase Phase, step, total int, title string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %d titles", step, total, title, count),
		Data:    count,
	}
}

func fetchDetailUpdate(slug string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDetail,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Fetching %s...", slug),
	}
}

func recordHistoryUpdate(detail *models.CatalogDetail, ep models.Episode) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordHistory,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Watching %s - %s", detail.Name, ep.Name),
		Data:    ep,
	}
}

func exportFileUpdate(phase Phase, step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Wrote %s", path),
	}
}

func posterCompletedUpdate(step, total int, slug string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadPosters,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, slug),
	}
}

func posterFailedUpdate(step, total int, slug string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadPosters,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, slug, err),
	}
}
