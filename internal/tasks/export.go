package tasks

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"

	"github.com/desertthunder/reelx/internal/formatter"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// ExportOpts contains configuration for library exports.
type ExportOpts struct {
	Format     string              // Export format: json, csv, markdown, txt
	OutputDir  string              // Base output directory (default: reelx_export_{epoch})
	Fs         afero.Fs            // Target filesystem (default: OS filesystem)
	Posters    bool                // Download favorite posters into {OutputDir}/posters
	NumWorkers int                 // Concurrent poster downloads (default: 5)
	RateLimit  float64             // Poster requests per second (default: 5)
	Client     *http.Client        // HTTP client for poster downloads
	ImageURL   formatter.ImageFunc // Resolves stored image paths
}

// ExportLibrary writes favorites and history in the requested format, optionally downloads posters
// with a bounded worker pool, and writes a manifest summarizing the export.
func (e *Engine) ExportLibrary(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) (*formatter.LibraryExportResult, error) {
	if e.favorites == nil || e.history == nil {
		return nil, fmt.Errorf("%w: library not initialized", shared.ErrServiceUnavailable)
	}

	format, err := formatter.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("reelx_export_%d", time.Now().Unix())
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := opts.Fs.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	favs := e.favorites.List()
	hist := e.history.List()
	result := &formatter.LibraryExportResult{
		OutputDirectory: opts.OutputDir,
		Format:          format,
		Favorites:       len(favs),
		History:         len(hist),
		Files:           []string{},
	}

	favPath := filepath.Join(opts.OutputDir, "favorites"+formatter.Extension(format))
	if _, err := formatter.WriteFavoritesExport(opts.Fs, favs, format, favPath, opts.ImageURL); err != nil {
		return result, err
	}
	result.Files = append(result.Files, favPath)
	e.sendProgress(prog, exportFileUpdate(ExportFavorites, 1, 2, favPath))

	histPath := filepath.Join(opts.OutputDir, "history"+formatter.Extension(format))
	if _, err := formatter.WriteHistoryExport(opts.Fs, hist, format, histPath); err != nil {
		return result, err
	}
	result.Files = append(result.Files, histPath)
	e.sendProgress(prog, exportFileUpdate(ExportHistory, 2, 2, histPath))

	if opts.Posters && len(favs) > 0 {
		result.Posters = e.downloadPosters(ctx, prog, favs, opts)
		for _, p := range result.Posters {
			if p.Success {
				result.PostersSaved++
				result.Files = append(result.Files, p.File)
			} else {
				result.PostersFailed++
			}
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteExportManifest(opts.Fs, result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, exportFileUpdate(WriteManifest, 1, 1, manifestPath))
	return result, nil
}

// downloadPosters fetches every favorite's poster through a rate-limited pool of workers.
func (e *Engine) downloadPosters(ctx context.Context, prog chan<- ProgressUpdate, favs []models.FavoriteEntry, opts ExportOpts) []formatter.PosterResult {
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	resolve := opts.ImageURL
	if resolve == nil {
		resolve = func(p string) string { return p }
	}

	dir := filepath.Join(opts.OutputDir, "posters")
	if err := opts.Fs.MkdirAll(dir, 0755); err != nil {
		results := make([]formatter.PosterResult, 0, len(favs))
		for _, f := range favs {
			results = append(results, formatter.PosterResult{Slug: f.Slug, Error: err})
		}
		return results
	}

	var mu sync.Mutex
	results := make([]formatter.PosterResult, 0, len(favs))
	total := len(favs)

	p := pool.New().WithMaxGoroutines(opts.NumWorkers)
	for _, fav := range favs {
		p.Go(func() {
			res := e.downloadPoster(ctx, limiter, resolve, dir, fav, opts)

			mu.Lock()
			results = append(results, res)
			done := len(results)
			mu.Unlock()

			if res.Success {
				e.sendProgress(prog, posterCompletedUpdate(done, total, res.Slug))
			} else {
				e.sendProgress(prog, posterFailedUpdate(done, total, res.Slug, res.Error))
			}
		})
	}
	p.Wait()

	return results
}

func (e *Engine) downloadPoster(
	ctx context.Context,
	limiter *rate.Limiter,
	resolve formatter.ImageFunc,
	dir string,
	fav models.FavoriteEntry,
	opts ExportOpts,
) formatter.PosterResult {
	result := formatter.PosterResult{Slug: fav.Slug}

	src := fav.PosterURL
	if src == "" {
		src = fav.ThumbURL
	}
	if src == "" {
		result.Error = fmt.Errorf("%w: no poster", shared.ErrNotFound)
		return result
	}

	if err := limiter.Wait(ctx); err != nil {
		result.Error = err
		return result
	}

	data, err := formatter.DownloadImage(ctx, opts.Client, resolve(src))
	if err != nil {
		result.Error = err
		return result
	}

	file := filepath.Join(dir, fav.Slug+posterExt(src))
	if err := formatter.WriteFile(opts.Fs, file, data); err != nil {
		result.Error = err
		return result
	}

	result.File = file
	result.Success = true
	return result
}

func posterExt(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	switch ext := strings.ToLower(path.Ext(src)); ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return ext
	default:
		return ".jpg"
	}
}
