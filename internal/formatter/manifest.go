package formatter

import (
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/desertthunder/reelx/internal/shared"
)

// PosterResult records the outcome of downloading one favorite's poster.
type PosterResult struct {
	Slug    string `json:"slug"`
	File    string `json:"file,omitempty"`
	Success bool   `json:"success"`
	Error   error  `json:"-"`
}

// LibraryExportResult summarizes a library export.
type LibraryExportResult struct {
	OutputDirectory string         `json:"output_directory"`
	Format          string         `json:"format"`
	Favorites       int            `json:"favorites"`
	History         int            `json:"history"`
	Files           []string       `json:"files"`
	Posters         []PosterResult `json:"posters,omitempty"`
	PostersSaved    int            `json:"posters_saved"`
	PostersFailed   int            `json:"posters_failed"`
	ManifestPath    string         `json:"-"`
}

type manifestPoster struct {
	Slug    string `json:"slug"`
	File    string `json:"file,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type manifest struct {
	ExportedAt    string           `json:"exported_at"`
	Format        string           `json:"format"`
	Favorites     int              `json:"favorites"`
	History       int              `json:"history"`
	Files         []string         `json:"files"`
	PostersSaved  int              `json:"posters_saved"`
	PostersFailed int              `json:"posters_failed"`
	Posters       []manifestPoster `json:"posters,omitempty"`
}

// WriteExportManifest writes a JSON summary of result to path.
func WriteExportManifest(fs afero.Fs, result *LibraryExportResult, path string) error {
	m := manifest{
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		Format:        result.Format,
		Favorites:     result.Favorites,
		History:       result.History,
		Files:         result.Files,
		PostersSaved:  result.PostersSaved,
		PostersFailed: result.PostersFailed,
	}
	for _, p := range result.Posters {
		mp := manifestPoster{Slug: p.Slug, File: p.File, Success: p.Success}
		if p.Error != nil {
			mp.Error = p.Error.Error()
		}
		m.Posters = append(m.Posters, mp)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return WriteFile(fs, path, data)
}
