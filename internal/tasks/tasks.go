// package tasks implements the catalog browsing and watching workflows shared by the CLI, TUI and local API.
//
// The core abstraction is Engine, which combines the remote catalog with the favorites and history stores.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc"

	"github.com/desertthunder/reelx/internal/favorites"
	"github.com/desertthunder/reelx/internal/history"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
)

const (
	heroCount        = 6
	recommendedCount = 6
	sectionCount     = 12
)

// HomeFeed contains the sections of the home page.
type HomeFeed struct {
	Hero        []models.CatalogItem `json:"hero"`
	Recommended []models.CatalogItem `json:"recommended"`
	Series      []models.CatalogItem `json:"series"`
	Singles     []models.CatalogItem `json:"singles"`
}

// Empty reports whether every section is empty.
func (h *HomeFeed) Empty() bool {
	return len(h.Hero) == 0 && len(h.Recommended) == 0 && len(h.Series) == 0 && len(h.Singles) == 0
}

// WatchSession is the state of the watch page for one episode.
type WatchSession struct {
	Detail  *models.CatalogDetail `json:"movie"`
	Episode models.Episode        `json:"episode"`
	Next    *models.Episode       `json:"next,omitempty"`
	Index   int                   `json:"index"`
}

// Card is a catalog item annotated with library state for list rendering.
type Card struct {
	models.CatalogItem
	Favorite bool   `json:"favorite"`
	Watched  bool   `json:"watched"`
	LastEp   string `json:"last_episode,omitempty"`
	Badge    string `json:"badge"`
}

// Engine orchestrates catalog reads and library writes.
type Engine struct {
	catalog     services.Catalog
	favorites   *favorites.Synchronizer
	history     *history.Recorder
	searchLimit int
}

// NewEngine creates an Engine. searchLimit bounds [Engine.SearchPage]; zero uses the catalog page size.
func NewEngine(catalog services.Catalog, favs *favorites.Synchronizer, hist *history.Recorder, searchLimit int) *Engine {
	if searchLimit <= 0 {
		searchLimit = 24
	}
	return &Engine{catalog: catalog, favorites: favs, history: hist, searchLimit: searchLimit}
}

func (e *Engine) Favorites() *favorites.Synchronizer { return e.favorites }
func (e *Engine) History() *history.Recorder         { return e.history }
func (e *Engine) Catalog() services.Catalog          { return e.catalog }

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Home fetches new releases, series and single movies concurrently and slices them into the home sections.
func (e *Engine) Home(ctx context.Context, progress chan<- ProgressUpdate) (*HomeFeed, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	var releases, series, singles []models.CatalogItem
	var wg conc.WaitGroup

	wg.Go(func() {
		releases = e.catalog.NewReleases(ctx, 1)
		e.sendProgress(progress, sectionUpdate(FetchReleases, 1, 3, "New releases", len(releases)))
	})
	wg.Go(func() {
		series = e.catalog.ByCategory(ctx, models.Series, 1)
		e.sendProgress(progress, sectionUpdate(FetchSeries, 2, 3, models.Series.Title(), len(series)))
	})
	wg.Go(func() {
		singles = e.catalog.ByCategory(ctx, models.SingleMovies, 1)
		e.sendProgress(progress, sectionUpdate(FetchSingles, 3, 3, models.SingleMovies.Title(), len(singles)))
	})
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &HomeFeed{
		Hero:        window(releases, 0, heroCount),
		Recommended: window(releases, heroCount, heroCount+recommendedCount),
		Series:      window(series, 0, sectionCount),
		Singles:     window(singles, 0, sectionCount),
	}, nil
}

// window returns items[from:to] clamped to the slice bounds.
func window(items []models.CatalogItem, from, to int) []models.CatalogItem {
	if from >= len(items) {
		return []models.CatalogItem{}
	}
	return items[from:min(to, len(items))]
}

// Browse returns one page of a category listing.
func (e *Engine) Browse(ctx context.Context, category string, page int) ([]models.CatalogItem, error) {
	c, err := models.ParseCategory(category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidCategory, err)
	}
	return e.catalog.ByCategory(ctx, c, max(1, page)), nil
}

// SearchPage runs a full keyword search.
func (e *Engine) SearchPage(ctx context.Context, keyword string) []models.CatalogItem {
	if strings.TrimSpace(keyword) == "" {
		return []models.CatalogItem{}
	}
	return e.catalog.Search(ctx, keyword, e.searchLimit)
}

// Detail fetches one title, returning [shared.ErrNotFound] when the catalog has no data.
func (e *Engine) Detail(ctx context.Context, slug string) (*models.CatalogDetail, error) {
	detail, ok := e.catalog.Detail(ctx, slug)
	if !ok || detail == nil {
		return nil, fmt.Errorf("%w: title %q", shared.ErrNotFound, slug)
	}
	return detail, nil
}

// Watch opens an episode of a title and records it in history.
//
// An empty episodeSlug selects the first episode. Unknown titles and episodes return
// [shared.ErrNotFound]. A history write failure is reported alongside a valid session.
func (e *Engine) Watch(ctx context.Context, slug, episodeSlug string, progress chan<- ProgressUpdate) (*WatchSession, error) {
	e.sendProgress(progress, fetchDetailUpdate(slug))

	detail, err := e.Detail(ctx, slug)
	if err != nil {
		return nil, err
	}

	var ep models.Episode
	var ok bool
	if episodeSlug == "" {
		ep, ok = detail.FirstEpisode()
	} else {
		ep, ok = detail.FindEpisode(episodeSlug)
	}
	if !ok {
		return nil, fmt.Errorf("%w: episode %q of %q", shared.ErrNotFound, episodeSlug, slug)
	}

	session := newSession(detail, ep)

	e.sendProgress(progress, recordHistoryUpdate(detail, ep))
	if e.history != nil {
		if err := e.history.RecordProgress(detail.Slug, ep.Slug, ep.Name, detail.CatalogItem); err != nil {
			return session, fmt.Errorf("failed to record history: %w", err)
		}
	}
	return session, nil
}

// NextEpisode advances session to the following episode, recording it in history.
// It returns [shared.ErrNotFound] on the last episode.
func (e *Engine) NextEpisode(ctx context.Context, session *WatchSession) (*WatchSession, error) {
	if session == nil || session.Next == nil {
		return nil, fmt.Errorf("%w: no next episode", shared.ErrNotFound)
	}

	next := newSession(session.Detail, *session.Next)
	if e.history != nil {
		if err := e.history.RecordProgress(next.Detail.Slug, next.Episode.Slug, next.Episode.Name, next.Detail.CatalogItem); err != nil {
			return next, fmt.Errorf("failed to record history: %w", err)
		}
	}
	return next, nil
}

func newSession(detail *models.CatalogDetail, ep models.Episode) *WatchSession {
	session := &WatchSession{Detail: detail, Episode: ep}
	if next, ok := detail.NextEpisode(ep.Slug); ok {
		session.Next = &next
	}
	for i, candidate := range detail.Episodes[0].ServerData {
		if candidate.Slug == ep.Slug {
			session.Index = i
			break
		}
	}
	return session
}

// Card annotates item with favorite and watched state.
func (e *Engine) Card(item models.CatalogItem) Card {
	card := Card{CatalogItem: item, Badge: item.AudioBadge()}
	if e.favorites != nil {
		card.Favorite = e.favorites.Has(item.Slug)
	}
	if e.history != nil {
		if entry, ok := e.history.Get(item.Slug); ok {
			card.Watched = true
			card.LastEp = entry.EpName
		}
	}
	return card
}

// Cards annotates every item, reading each library document once.
func (e *Engine) Cards(items []models.CatalogItem) []Card {
	favs := make(map[string]bool)
	if e.favorites != nil {
		for _, f := range e.favorites.List() {
			favs[f.Slug] = true
		}
	}
	watched := make(map[string]models.HistoryEntry)
	if e.history != nil {
		for _, h := range e.history.List() {
			watched[h.Slug] = h
		}
	}

	cards := make([]Card, 0, len(items))
	for _, item := range items {
		card := Card{CatalogItem: item, Badge: item.AudioBadge(), Favorite: favs[item.Slug]}
		if entry, ok := watched[item.Slug]; ok {
			card.Watched = true
			card.LastEp = entry.EpName
		}
		cards = append(cards, card)
	}
	return cards
}
