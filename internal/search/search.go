// Package search debounces search-as-you-type suggestions.
//
// A [Suggester] waits until the query has been stable for the debounce window before asking the
// catalog, cancels the pending or in-flight lookup when a newer query arrives, and never calls
// the catalog for queries shorter than the minimum length.
package search

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/services"
)

const (
	DefaultDelay     = 500 * time.Millisecond
	DefaultMinLength = 2
	DefaultLimit     = 5
)

// Options configures a [Suggester]. Zero values use the Default constants.
type Options struct {
	Delay     time.Duration
	MinLength int
	Limit     int
	Logger    *log.Logger
}

// Suggester turns keystrokes into at most one catalog search per pause in typing.
type Suggester struct {
	catalog services.Catalog
	delay   time.Duration
	minLen  int
	limit   int
	logger  *log.Logger

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

func New(catalog services.Catalog, opts Options) *Suggester {
	s := &Suggester{
		catalog: catalog,
		delay:   opts.Delay,
		minLen:  opts.MinLength,
		limit:   opts.Limit,
		logger:  opts.Logger,
	}
	if s.delay <= 0 {
		s.delay = DefaultDelay
	}
	if s.minLen <= 0 {
		s.minLen = DefaultMinLength
	}
	if s.limit <= 0 {
		s.limit = DefaultLimit
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Eligible reports whether query is long enough to be sent to the catalog.
func (s *Suggester) Eligible(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= s.minLen
}

// Suggest schedules a lookup for query and supersedes any earlier one.
//
// Ineligible queries deliver an empty list immediately without touching the catalog. Otherwise
// deliver runs on a timer goroutine once the window elapses, and only if no newer call to Suggest,
// Cancel or Close happened in the meantime.
func (s *Suggester) Suggest(ctx context.Context, query string, deliver func([]models.CatalogItem)) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopLocked()
	s.seq++
	seq := s.seq

	if !s.Eligible(query) {
		s.mu.Unlock()
		deliver([]models.CatalogItem{})
		return
	}

	lookupCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.timer = time.AfterFunc(s.delay, func() {
		s.run(lookupCtx, seq, query, deliver)
	})
	s.mu.Unlock()
}

func (s *Suggester) run(ctx context.Context, seq uint64, query string, deliver func([]models.CatalogItem)) {
	defer s.release(seq)
	if !s.current(seq) || ctx.Err() != nil {
		return
	}

	s.logger.Debug("fetching suggestions", "query", query)
	items := s.catalog.Search(ctx, query, s.limit)

	if !s.current(seq) || ctx.Err() != nil {
		s.logger.Debug("dropping stale suggestions", "query", query)
		return
	}
	if len(items) > s.limit {
		items = items[:s.limit]
	}
	deliver(items)
}

func (s *Suggester) current(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.seq == seq
}

// stopLocked stops the pending timer and cancels any in-flight lookup. Callers hold mu.
// release cancels the lookup context of seq once it has finished, unless a newer call already
// replaced it.
func (s *Suggester) release(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		return
	}
	s.timer = nil
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Suggester) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Cancel drops the pending lookup, if any.
func (s *Suggester) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.seq++
}

// Close cancels pending work. Later calls to Suggest are ignored.
func (s *Suggester) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.closed = true
}

// Limit returns the maximum number of suggestions delivered.
func (s *Suggester) Limit() int { return s.limit }

// MinLength returns the shortest query, in runes, that triggers a search.
func (s *Suggester) MinLength() int { return s.minLen }
