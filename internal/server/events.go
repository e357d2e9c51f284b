package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/desertthunder/reelx/internal/favorites"
	"github.com/desertthunder/reelx/internal/history"
	"github.com/desertthunder/reelx/internal/notify"
)

const defaultHeartbeat = 25 * time.Second

// EventsHandler streams library change notifications as server-sent events.
//
// Each favorites change produces a "favorites-updated" event and each history change a
// "history-updated" event whose data is the current list.
type EventsHandler struct {
	favorites *favorites.Synchronizer
	history   *history.Recorder
	logger    *log.Logger
	heartbeat time.Duration
}

// NewEventsHandler creates an [EventsHandler]. A zero heartbeat uses 25 seconds.
func NewEventsHandler(favs *favorites.Synchronizer, hist *history.Recorder, logger *log.Logger, heartbeat time.Duration) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &EventsHandler{favorites: favs, history: hist, logger: logger, heartbeat: heartbeat}
}

// Routes returns the HTTP routes this handler serves.
func (h *EventsHandler) Routes() []string {
	return []string{"GET /api/events"}
}

// ServeHTTP holds the connection open until the client goes away.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	favCh, cancelFav := notify.Channel(h.favorites, 1)
	defer cancelFav()
	histCh, cancelHist := notify.Channel(h.history, 1)
	defer cancelHist()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-r.Context().Done():
			return
		case <-favCh:
			err = writeEvent(w, favorites.EventName, h.favorites.List())
		case <-histCh:
			err = writeEvent(w, history.EventName, h.history.List())
		case <-ticker.C:
			_, err = fmt.Fprint(w, ": ping\n\n")
		}
		if err != nil {
			h.logger.Debug("event stream closed", "error", err)
			return
		}
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
