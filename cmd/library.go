package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/formatter"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
)

// FavoritesList prints favorites, newest first.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	entries := engine.Favorites().Filter(cmd.String("query"))
	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Phim Yêu Thích (%d)", len(entries)))
	if len(entries) == 0 {
		r.writePlain("  (empty)\n")
	}
	for i, e := range entries {
		r.writePlain("%2d. %s [%s]\n    %s • added %s\n", i+1, e.Label(), e.AudioBadge(), e.Slug, shared.FormatTimestamp(e.AddedAt))
	}
	return nil
}

type favoriteState struct {
	Slug     string `json:"slug"`
	Favorite bool   `json:"favorite"`
}

// FavoritesToggle adds or removes a title. Adding fetches the catalog snapshot to store.
func (r *Runner) FavoritesToggle(ctx context.Context, cmd *cli.Command) error {
	slug, err := requireArg(cmd, "slug")
	if err != nil {
		return err
	}
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	removed, err := engine.Favorites().Remove(slug)
	if err != nil {
		return err
	}

	var item models.CatalogItem
	added := false
	if !removed {
		detail, err := engine.Detail(ctx, slug)
		if err != nil {
			return err
		}
		item = detail.CatalogItem
		item.Content = ""

		// slug may be an alias of the stored canonical slug
		if item.Slug != slug {
			if removed, err = engine.Favorites().Remove(item.Slug); err != nil {
				return err
			}
		}
		if !removed {
			if added, err = engine.Favorites().Toggle(item); err != nil {
				return err
			}
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(favoriteState{Slug: slug, Favorite: added}, cmd.Bool("pretty"))
	}
	if added {
		r.writePlain("♥ Added %s to favorites\n", item.Label())
	} else {
		r.writePlain("Removed %s from favorites\n", slug)
	}
	return nil
}

// FavoritesHas reports membership.
func (r *Runner) FavoritesHas(ctx context.Context, cmd *cli.Command) error {
	slug, err := requireArg(cmd, "slug")
	if err != nil {
		return err
	}
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	has := engine.Favorites().Has(slug)
	if cmd.Bool("json") {
		return r.writeJSON(favoriteState{Slug: slug, Favorite: has}, cmd.Bool("pretty"))
	}
	r.writePlain("%t\n", has)
	return nil
}

// FavoritesExport writes favorites in the requested format.
func (r *Runner) FavoritesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	entries := engine.Favorites().List()
	path, err := formatter.WriteFavoritesExport(r.fs, entries, format, cmd.String("output"), r.imageURL)
	if err != nil {
		return err
	}
	r.writePlain("✓ Exported %d favorites to %s\n", len(entries), path)
	return nil
}

// HistoryList prints watch history, most recent first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	entries := engine.History().List()
	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Lịch Sử Xem (%d)", len(entries)))
	if len(entries) == 0 {
		r.writePlain("  (empty)\n")
	}
	for i, e := range entries {
		r.writePlain("%2d. %s • %s\n    %s/%s • %s\n", i+1, e.Name, e.EpName, e.Slug, e.EpisodeSlug, shared.FormatTimestamp(e.Timestamp))
	}
	return nil
}

// HistoryRemove deletes one title from history. Removing an absent title is not an error.
func (r *Runner) HistoryRemove(ctx context.Context, cmd *cli.Command) error {
	slug, err := requireArg(cmd, "slug")
	if err != nil {
		return err
	}
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	if err := engine.History().Remove(slug); err != nil {
		return err
	}
	r.writePlain("Removed %s from history\n", slug)
	return nil
}

// HistoryClear deletes all history.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.Engine()
	if err != nil {
		return err
	}
	if err := engine.History().Clear(); err != nil {
		return err
	}
	r.writePlain("History cleared\n")
	return nil
}

// HistoryExport writes history in the requested format.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	entries := engine.History().List()
	path, err := formatter.WriteHistoryExport(r.fs, entries, format, cmd.String("output"))
	if err != nil {
		return err
	}
	r.writePlain("✓ Exported %d history entries to %s\n", len(entries), path)
	return nil
}

// Export writes favorites, history and optionally posters into one directory.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message)
		}
	}()

	result, err := engine.ExportLibrary(ctx, progress, tasks.ExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		Fs:         r.fs,
		Posters:    cmd.Bool("posters"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float64("rate"),
		Client:     r.httpClient,
		ImageURL:   r.imageURL,
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("✓ Exported %d favorites and %d history entries to %s\n", result.Favorites, result.History, result.OutputDirectory)
	if result.PostersSaved+result.PostersFailed > 0 {
		r.writePlain("  posters: %d saved, %d failed\n", result.PostersSaved, result.PostersFailed)
	}
	r.writePlain("  manifest: %s\n", result.ManifestPath)
	return nil
}
