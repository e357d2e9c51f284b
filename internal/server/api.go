package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
)

// API serves the catalog and library endpoints as JSON.
type API struct {
	engine *tasks.Engine
	logger *log.Logger
}

// NewAPI creates an [API] backed by engine.
func NewAPI(engine *tasks.Engine, logger *log.Logger) *API {
	return &API{engine: engine, logger: logger}
}

type homeResponse struct {
	Hero        []tasks.Card `json:"hero"`
	Recommended []tasks.Card `json:"recommended"`
	Series      []tasks.Card `json:"series"`
	Singles     []tasks.Card `json:"singles"`
}

type listResponse struct {
	Items []tasks.Card `json:"items"`
	Page  int          `json:"page,omitempty"`
	Query string       `json:"query,omitempty"`
}

type detailResponse struct {
	Movie    *models.CatalogDetail `json:"movie"`
	Favorite bool                  `json:"favorite"`
	History  *models.HistoryEntry  `json:"history,omitempty"`
}

type watchResponse struct {
	*tasks.WatchSession
	Warning string `json:"warning,omitempty"`
}

type favoriteResponse struct {
	Slug     string `json:"slug"`
	Favorite bool   `json:"favorite"`
}

// Register adds every API route to r.
func (a *API) Register(r Router) {
	r.Handle(http.MethodGet, "/api/home", http.HandlerFunc(a.home))
	r.Handle(http.MethodGet, "/api/danh-sach/{category}", http.HandlerFunc(a.category))
	r.Handle(http.MethodGet, "/api/tim-kiem", http.HandlerFunc(a.search))
	r.Handle(http.MethodGet, "/api/phim/{slug}", http.HandlerFunc(a.detail))
	r.Handle(http.MethodPost, "/api/xem-phim/{slug}", http.HandlerFunc(a.watch))
	r.Handle(http.MethodPost, "/api/xem-phim/{slug}/{episode}", http.HandlerFunc(a.watch))

	r.Handle(http.MethodGet, "/api/yeu-thich", http.HandlerFunc(a.listFavorites))
	r.Handle(http.MethodPost, "/api/yeu-thich", http.HandlerFunc(a.toggleFavorite))
	r.Handle(http.MethodGet, "/api/yeu-thich/{slug}", http.HandlerFunc(a.hasFavorite))
	r.Handle(http.MethodDelete, "/api/yeu-thich/{slug}", http.HandlerFunc(a.removeFavorite))

	r.Handle(http.MethodGet, "/api/lich-su", http.HandlerFunc(a.listHistory))
	r.Handle(http.MethodDelete, "/api/lich-su", http.HandlerFunc(a.clearHistory))
	r.Handle(http.MethodGet, "/api/lich-su/{slug}", http.HandlerFunc(a.getHistory))
	r.Handle(http.MethodDelete, "/api/lich-su/{slug}", http.HandlerFunc(a.removeHistory))
}

func (a *API) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "error", err)
	}
	respondError(w, status, err.Error())
}

func (a *API) home(w http.ResponseWriter, r *http.Request) {
	feed, err := a.engine.Home(r.Context(), nil)
	if err != nil {
		a.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, homeResponse{
		Hero:        a.engine.Cards(feed.Hero),
		Recommended: a.engine.Cards(feed.Recommended),
		Series:      a.engine.Cards(feed.Series),
		Singles:     a.engine.Cards(feed.Singles),
	})
}

func (a *API) category(w http.ResponseWriter, r *http.Request) {
	page := intParam(r, "page", 1)
	items, err := a.engine.Browse(r.Context(), r.PathValue("category"), page)
	if err != nil {
		a.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Items: a.engine.Cards(items), Page: page})
}

func (a *API) search(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("k"))
	items := a.engine.SearchPage(r.Context(), keyword)
	respondJSON(w, http.StatusOK, listResponse{Items: a.engine.Cards(items), Query: keyword})
}

func (a *API) detail(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	detail, err := a.engine.Detail(r.Context(), slug)
	if err != nil {
		a.fail(w, err)
		return
	}

	resp := detailResponse{Movie: detail, Favorite: a.engine.Favorites().Has(detail.Slug)}
	if entry, ok := a.engine.History().Get(detail.Slug); ok {
		resp.History = &entry
	}
	respondJSON(w, http.StatusOK, resp)
}

// watch records an episode activation. History failures are reported as a warning
// because playback itself succeeded.
func (a *API) watch(w http.ResponseWriter, r *http.Request) {
	session, err := a.engine.Watch(r.Context(), r.PathValue("slug"), r.PathValue("episode"), nil)
	if session == nil {
		a.fail(w, err)
		return
	}

	resp := watchResponse{WatchSession: session}
	if err != nil {
		a.logger.Warn("watch history not saved", "slug", session.Detail.Slug, "error", err)
		resp.Warning = err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}

func (a *API) listFavorites(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.engine.Favorites().Filter(r.URL.Query().Get("q")))
}

func (a *API) hasFavorite(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	respondJSON(w, http.StatusOK, favoriteResponse{Slug: slug, Favorite: a.engine.Favorites().Has(slug)})
}

// toggleFavorite accepts a catalog item snapshot and flips its membership.
func (a *API) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	var item models.CatalogItem
	if err := decodeBody(w, r, &item); err != nil {
		a.fail(w, err)
		return
	}

	added, err := a.engine.Favorites().Toggle(item)
	if err != nil {
		a.fail(w, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	respondJSON(w, status, favoriteResponse{Slug: item.Slug, Favorite: added})
}

func (a *API) removeFavorite(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	removed, err := a.engine.Favorites().Remove(slug)
	if err != nil {
		a.fail(w, err)
		return
	}
	if !removed {
		a.fail(w, fmt.Errorf("%w: favorite %q", shared.ErrNotFound, slug))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listHistory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.engine.History().List())
}

func (a *API) getHistory(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	entry, ok := a.engine.History().Get(slug)
	if !ok {
		a.fail(w, fmt.Errorf("%w: history entry %q", shared.ErrNotFound, slug))
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (a *API) removeHistory(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.History().Remove(r.PathValue("slug")); err != nil {
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.History().Clear(); err != nil {
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
