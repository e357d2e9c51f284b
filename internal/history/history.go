// Package history records the last episode opened for each title.
//
// A [Recorder] keeps one [models.HistoryEntry] per title slug in the local store and broadcasts a
// change after every successful mutation, the same way favorites do.
package history

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

// EventName labels history change broadcasts.
const EventName = "history-updated"

// Option configures a [Recorder].
type Option func(*Recorder)

// WithClock sets the timestamp source. Timestamps stay strictly increasing.
func WithClock(c shared.Clock) Option {
	return func(r *Recorder) { r.clock = shared.NewMonotonic(c) }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithBroadcaster shares b with other listeners instead of creating a private one.
func WithBroadcaster(b *notify.Broadcaster) Option {
	return func(r *Recorder) { r.events = b }
}

// Recorder owns the history document stored under [store.HistoryKey].
type Recorder struct {
	mu     sync.Mutex
	store  store.Store
	clock  *shared.Monotonic
	logger *log.Logger
	events *notify.Broadcaster
}

// New creates a Recorder backed by s.
func New(s store.Store, opts ...Option) *Recorder {
	r := &Recorder{store: s}
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = shared.WithLogger(log.Default(), "component", "history")
	}
	if r.clock == nil {
		r.clock = shared.NewMonotonic(nil)
	}
	if r.events == nil {
		r.events = notify.NewBroadcaster(EventName, r.logger)
	}
	return r
}

func (r *Recorder) load() (map[string]models.HistoryEntry, error) {
	items, err := store.LoadDocument[models.HistoryEntry](r.store, store.HistoryKey)
	if errors.Is(err, store.ErrCorruptDocument) {
		r.logger.Warn("ignoring malformed history", "error", err)
		err = nil
	}
	if err != nil {
		return items, fmt.Errorf("failed to read history: %w", err)
	}

	for _, entry := range items {
		r.clock.Observe(entry.Timestamp)
	}
	return items, nil
}

// RecordProgress replaces the entry for titleSlug with the given episode, stamped now.
func (r *Recorder) RecordProgress(titleSlug, episodeSlug, episodeName string, title models.CatalogItem) error {
	if strings.TrimSpace(titleSlug) == "" {
		return fmt.Errorf("%w: history entry needs a title slug", shared.ErrInvalidInput)
	}

	r.mu.Lock()
	items, err := r.load()
	if err != nil {
		r.mu.Unlock()
		return err
	}

	items[titleSlug] = models.HistoryEntry{
		Slug:        titleSlug,
		EpisodeSlug: episodeSlug,
		Name:        title.Name,
		OriginName:  title.OriginName,
		EpName:      episodeName,
		ThumbURL:    title.ThumbURL,
		Timestamp:   r.clock.Now(),
	}

	err = store.SaveDocument(r.store, store.HistoryKey, items)
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("saving history", "slug", titleSlug, "error", err)
		return fmt.Errorf("failed to save history: %w", err)
	}

	r.logger.Debug("recorded progress", "slug", titleSlug, "episode", episodeSlug)
	r.events.Broadcast()
	return nil
}

// List returns every entry, most recently watched first.
func (r *Recorder) List() []models.HistoryEntry {
	r.mu.Lock()
	items, err := r.load()
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("listing history", "error", err)
	}

	list := make([]models.HistoryEntry, 0, len(items))
	for _, entry := range items {
		list = append(list, entry)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Timestamp != list[j].Timestamp {
			return list[i].Timestamp > list[j].Timestamp
		}
		return list[i].Slug < list[j].Slug
	})
	return list
}

// Get returns the entry for titleSlug.
func (r *Recorder) Get(titleSlug string) (models.HistoryEntry, bool) {
	r.mu.Lock()
	items, err := r.load()
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("reading history entry", "slug", titleSlug, "error", err)
		return models.HistoryEntry{}, false
	}
	entry, ok := items[titleSlug]
	return entry, ok
}

// Remove deletes the entry for titleSlug. Removing an absent entry does nothing.
func (r *Recorder) Remove(titleSlug string) error {
	r.mu.Lock()
	items, err := r.load()
	if err != nil {
		r.mu.Unlock()
		return err
	}

	if _, ok := items[titleSlug]; !ok {
		r.mu.Unlock()
		return nil
	}
	delete(items, titleSlug)

	err = store.SaveDocument(r.store, store.HistoryKey, items)
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("saving history", "slug", titleSlug, "error", err)
		return fmt.Errorf("failed to save history: %w", err)
	}

	r.events.Broadcast()
	return nil
}

// Clear deletes the whole history document.
func (r *Recorder) Clear() error {
	r.mu.Lock()
	err := r.store.Remove(store.HistoryKey)
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("clearing history", "error", err)
		return fmt.Errorf("failed to clear history: %w", err)
	}

	r.events.Broadcast()
	return nil
}

// Subscribe registers fn to run after every successful change.
func (r *Recorder) Subscribe(fn func()) (cancel func()) {
	return r.events.Subscribe(fn)
}

// Events returns the broadcaster notified after each change.
func (r *Recorder) Events() *notify.Broadcaster { return r.events }
