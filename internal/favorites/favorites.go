// Package favorites keeps the user's favorite titles in the local store and announces every change.
//
// The [Synchronizer] re-reads the stored document on every call, so several synchronizers (or
// processes) sharing one store converge on the last write. Consumers subscribe through
// [Synchronizer.Subscribe] and re-query [Synchronizer.List] or [Synchronizer.Has] when signalled.
package favorites

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/notify"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/store"
)

// EventName is the broadcast name used by the API event stream.
const EventName = "favorites-updated"

// Option configures a [Synchronizer].
type Option func(*Synchronizer)

// WithClock sets the timestamp source. Stamps stay strictly increasing regardless of the clock.
func WithClock(c shared.Clock) Option {
	return func(s *Synchronizer) { s.clock = shared.NewMonotonic(c) }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Synchronizer) { s.logger = l }
}

// WithBroadcaster shares an existing broadcaster.
func WithBroadcaster(b *notify.Broadcaster) Option {
	return func(s *Synchronizer) { s.events = b }
}

// Synchronizer owns the favorites document stored under [store.FavoritesKey].
type Synchronizer struct {
	mu     sync.Mutex
	store  store.Store
	clock  *shared.Monotonic
	logger *log.Logger
	events *notify.Broadcaster
}

// New creates a Synchronizer over s.
func New(s store.Store, opts ...Option) *Synchronizer {
	fs := &Synchronizer{store: s}
	for _, opt := range opts {
		opt(fs)
	}

	if fs.logger == nil {
		fs.logger = shared.WithLogger(log.Default(), "component", "favorites")
	}
	if fs.clock == nil {
		fs.clock = shared.NewMonotonic(nil)
	}
	if fs.events == nil {
		fs.events = notify.NewBroadcaster(EventName, fs.logger)
	}
	return fs
}

// load reads the stored map. Corrupt documents degrade to whatever could be decoded.
func (s *Synchronizer) load() (map[string]models.FavoriteEntry, error) {
	items, err := store.LoadDocument[models.FavoriteEntry](s.store, store.FavoritesKey)
	if errors.Is(err, store.ErrCorruptDocument) {
		s.logger.Warn("ignoring malformed favorites", "error", err)
		err = nil
	}
	if err != nil {
		return items, fmt.Errorf("failed to read favorites: %w", err)
	}

	for _, entry := range items {
		s.clock.Observe(entry.AddedAt)
	}
	return items, nil
}

// List returns every favorite, most recently added first. Entries added at the same instant keep
// insertion order.
func (s *Synchronizer) List() []models.FavoriteEntry {
	s.mu.Lock()
	items, err := s.load()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("listing favorites", "error", err)
	}
	return sorted(items)
}

// Has reports whether slug is a favorite. Read failures report false.
func (s *Synchronizer) Has(slug string) bool {
	s.mu.Lock()
	items, err := s.load()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("checking favorite", "slug", slug, "error", err)
		return false
	}
	_, ok := items[slug]
	return ok
}

// Toggle removes item if it is a favorite, otherwise adds it stamped with the current time.
// It returns the new membership state.
//
// When the updated document cannot be persisted nothing changes: the previous membership is
// returned with the error and no change is broadcast.
func (s *Synchronizer) Toggle(item models.CatalogItem) (bool, error) {
	if strings.TrimSpace(item.Slug) == "" {
		return false, fmt.Errorf("%w: favorite needs a slug", shared.ErrInvalidInput)
	}

	s.mu.Lock()
	items, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return false, err
	}

	_, present := items[item.Slug]
	if present {
		delete(items, item.Slug)
	} else {
		items[item.Slug] = models.FavoriteEntry{
			CatalogItem: item,
			AddedAt:     s.clock.Now(),
			Seq:         nextSeq(items),
		}
	}

	err = store.SaveDocument(s.store, store.FavoritesKey, items)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("saving favorites", "slug", item.Slug, "error", err)
		return present, fmt.Errorf("failed to save favorites: %w", err)
	}

	s.logger.Debug("toggled favorite", "slug", item.Slug, "favorite", !present)
	s.events.Broadcast()
	return !present, nil
}

// Remove deletes slug if present and reports whether it was a favorite. Removing an absent
// slug does nothing and sends no broadcast.
func (s *Synchronizer) Remove(slug string) (bool, error) {
	s.mu.Lock()
	items, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return false, err
	}

	if _, ok := items[slug]; !ok {
		s.mu.Unlock()
		return false, nil
	}
	delete(items, slug)

	err = store.SaveDocument(s.store, store.FavoritesKey, items)
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("saving favorites", "slug", slug, "error", err)
		return true, fmt.Errorf("failed to save favorites: %w", err)
	}

	s.logger.Debug("removed favorite", "slug", slug)
	s.events.Broadcast()
	return true, nil
}

// Filter returns favorites whose name or original name contains query, ignoring case and
// diacritics. An empty query returns [Synchronizer.List].
func (s *Synchronizer) Filter(query string) []models.FavoriteEntry {
	all := s.List()
	q := shared.FoldText(query)
	if q == "" {
		return all
	}

	matches := make([]models.FavoriteEntry, 0, len(all))
	for _, entry := range all {
		if strings.Contains(shared.FoldText(entry.Name), q) || strings.Contains(shared.FoldText(entry.OriginName), q) {
			matches = append(matches, entry)
		}
	}
	return matches
}

// Subscribe registers fn to run after every successful change.
func (s *Synchronizer) Subscribe(fn func()) (cancel func()) {
	return s.events.Subscribe(fn)
}

// Events returns the broadcaster used for change notifications.
func (s *Synchronizer) Events() *notify.Broadcaster { return s.events }

func nextSeq(items map[string]models.FavoriteEntry) int64 {
	var max int64
	for _, entry := range items {
		if entry.Seq > max {
			max = entry.Seq
		}
	}
	return max + 1
}

func sorted(items map[string]models.FavoriteEntry) []models.FavoriteEntry {
	list := make([]models.FavoriteEntry, 0, len(items))
	for _, entry := range items {
		list = append(list, entry)
	}

	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.AddedAt != b.AddedAt {
			return a.AddedAt > b.AddedAt
		}
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return a.Slug < b.Slug
	})
	return list
}
