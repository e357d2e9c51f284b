package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
)

var openBrowser = shared.OpenBrowser

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// Home prints the home feed sections.
func (r *Runner) Home(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 3)
	feed, err := engine.Home(ctx, progress)
	close(progress)
	if err != nil {
		return err
	}
	for update := range progress {
		r.logger.Debug(update.Message, "phase", update.Phase.String())
	}

	if cmd.Bool("json") {
		return r.writeJSON(feed, cmd.Bool("pretty"))
	}
	if feed.Empty() {
		r.writePlain("Catalog unavailable, no titles to show.\n")
		return nil
	}

	sections := []struct {
		title string
		items []models.CatalogItem
	}{
		{"Phim Mới", feed.Hero},
		{"Đề Xuất", feed.Recommended},
		{models.Series.Title(), feed.Series},
		{models.SingleMovies.Title(), feed.Singles},
	}
	for _, s := range sections {
		r.writePlainHeader(s.title)
		r.writeCards(engine.Cards(s.items))
		r.writePlain("\n")
	}
	return nil
}

// Browse prints one page of a category.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	category, err := requireArg(cmd, "category")
	if err != nil {
		return err
	}
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	page := int(cmd.Int("page"))
	items, err := engine.Browse(ctx, category, page)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}
	c, _ := models.ParseCategory(category)
	r.writePlainHeader(fmt.Sprintf("%s • trang %d", c.Title(), max(1, page)))
	r.writeCards(engine.Cards(items))
	return nil
}

// Search prints full keyword search results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	keyword, err := requireArg(cmd, "keyword")
	if err != nil {
		return err
	}
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	var items []models.CatalogItem
	if limit := int(cmd.Int("limit")); limit > 0 {
		items = engine.Catalog().Search(ctx, keyword, limit)
	} else {
		items = engine.SearchPage(ctx, keyword)
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}
	r.writePlainHeader(fmt.Sprintf("Kết quả cho %q (%d)", keyword, len(items)))
	r.writeCards(engine.Cards(items))
	return nil
}

// Suggest runs the search-box lookup for one query, honoring the debounce window and minimum length.
func (r *Runner) Suggest(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	suggester := r.Suggester()
	defer suggester.Close()

	results := make(chan []models.CatalogItem, 1)
	suggester.Suggest(ctx, query, func(items []models.CatalogItem) { results <- items })

	var items []models.CatalogItem
	select {
	case items = <-results:
	case <-ctx.Done():
		return ctx.Err()
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}
	if !suggester.Eligible(query) {
		r.writePlain("Type at least %d characters for suggestions.\n", suggester.MinLength())
		return nil
	}
	for _, item := range items {
		r.writePlain("%s [%s]\n    %s\n", item.Label(), item.AudioBadge(), item.Slug)
	}
	if len(items) == 0 {
		r.writePlain("No suggestions.\n")
	}
	return nil
}

// Detail prints a title with its episodes and library state.
func (r *Runner) Detail(ctx context.Context, cmd *cli.Command) error {
	slug, err := requireArg(cmd, "slug")
	if err != nil {
		return err
	}
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	detail, err := engine.Detail(ctx, slug)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(detail, cmd.Bool("pretty"))
	}

	card := engine.Card(detail.CatalogItem)
	title := detail.Label()
	if card.Favorite {
		title += " ♥"
	}
	r.writePlainHeader(title)
	if detail.OriginName != "" {
		r.writePlain("Original:  %s\n", detail.OriginName)
	}
	r.writePlain("Audio:     %s\n", card.Badge)
	for _, row := range [][2]string{
		{"Quality", detail.Quality},
		{"Episodes", detail.EpisodeCurrent},
		{"Status", detail.Status},
		{"Runtime", detail.Time},
		{"Genres", taxonNames(detail.Category)},
		{"Country", taxonNames(detail.Country)},
	} {
		if row[1] != "" {
			r.writePlain("%-10s %s\n", row[0]+":", row[1])
		}
	}
	r.writePlain("Poster:    %s\n", r.imageURL(detail.PosterURL))
	if card.Watched {
		r.writePlain("Last seen: %s\n", card.LastEp)
	}
	if detail.Content != "" {
		r.writePlainln("%s", detail.Content)
	}

	r.writePlainln("Episodes (%d):", detail.EpisodeCount())
	if len(detail.Episodes) > 0 {
		for _, ep := range detail.Episodes[0].ServerData {
			r.writePlain("  %-12s %s\n", ep.Slug, ep.Name)
		}
	}
	return nil
}

func taxonNames(taxa []models.Taxon) string {
	names := make([]string, 0, len(taxa))
	for _, t := range taxa {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

// Watch opens an episode, records it in history and optionally launches the player.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	slug, err := requireArg(cmd, "slug")
	if err != nil {
		return err
	}
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	session, err := engine.Watch(ctx, slug, strings.TrimSpace(cmd.StringArg("episode")), nil)
	if session == nil {
		return err
	}
	if err != nil {
		r.logger.Warn("history not saved", "slug", slug, "error", err)
	}

	if cmd.Bool("next") {
		next, err := engine.NextEpisode(ctx, session)
		if next == nil {
			return err
		}
		if err != nil {
			r.logger.Warn("history not saved", "slug", slug, "error", err)
		}
		session = next
	}

	if cmd.Bool("open") {
		if err := openBrowser(session.Episode.LinkEmbed); err != nil {
			r.logger.Warn("failed to open player", "error", err)
			r.writePlain("⚠ Could not open the player automatically.\n")
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(session, cmd.Bool("pretty"))
	}

	r.writePlain("▶ %s • %s\n", session.Detail.Name, session.Episode.Name)
	r.writePlain("  %s\n", session.Episode.LinkEmbed)
	if session.Next != nil {
		r.writePlain("  next: %s (%s)\n", session.Next.Name, session.Next.Slug)
	} else {
		r.writePlain("  last episode\n")
	}
	return nil
}
