// Package notify provides the in-process change signal shared by the favorites and history
// synchronizers.
//
// A [Broadcaster] keeps an explicit subscriber list. [Broadcaster.Broadcast] carries no payload:
// listeners re-read the state they render. Delivery order across listeners is unspecified.
package notify

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reelx/internal/shared"
)

// Broadcaster fans a change signal out to every current subscriber.
type Broadcaster struct {
	name      string
	mu        sync.Mutex
	listeners map[string]func()
	logger    *log.Logger
}

// NewBroadcaster creates a Broadcaster. name is used only in log output.
func NewBroadcaster(name string, logger *log.Logger) *Broadcaster {
	if logger == nil {
		logger = log.Default()
	}
	return &Broadcaster{
		name:      name,
		listeners: make(map[string]func()),
		logger:    logger,
	}
}

// Name returns the event name, e.g. "favorites-updated".
func (b *Broadcaster) Name() string { return b.name }

// Subscribe registers fn and returns a function that removes it. Cancel is idempotent.
func (b *Broadcaster) Subscribe(fn func()) (cancel func()) {
	id := shared.GenerateID()

	b.mu.Lock()
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Broadcast calls every listener registered at the time of the call.
//
// Listeners run outside the lock so they may query the synchronizer or subscribe again.
func (b *Broadcaster) Broadcast() {
	b.mu.Lock()
	listeners := make([]func(), 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		b.deliver(fn)
	}
}

func (b *Broadcaster) deliver(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("listener panicked", "event", b.name, "panic", r)
		}
	}()
	fn()
}

// Len returns the number of subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Subscriber is implemented by anything exposing a change subscription.
type Subscriber interface {
	Subscribe(fn func()) (cancel func())
}

// Channel adapts a subscription to a buffered channel.
//
// Signals are dropped when the buffer is full; a pending signal already tells the reader to re-read.
func Channel(s Subscriber, size int) (<-chan struct{}, func()) {
	if size < 1 {
		size = 1
	}
	ch := make(chan struct{}, size)
	cancel := s.Subscribe(func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return ch, cancel
}
