package ws

import (
	"encoding/json"
	"sync"
	"time"

	"spotmate/internal/service"
	"spotmate/pkg/geo"

	"go.uber.org/zap"
)

// NearbyQuerier runs a full nearby match query for one user at a coordinate.
type NearbyQuerier interface {
	Query(userID string, coord geo.Coordinate) ([]service.NearbyUser, error)
}

// watcher is one live nearby session. Its run loop is the only goroutine that
// queries and sends, so result frames always land in query order.
type watcher struct {
	client *Client
	userID string

	mu       sync.Mutex
	coord    geo.Coordinate
	hasCoord bool

	refresh chan struct{} // coalesced wake-ups
	done    chan struct{}
	stopped chan struct{} // closed when the run loop exits
}

func (w *watcher) setCoord(c geo.Coordinate) {
	w.mu.Lock()
	w.coord = c
	w.hasCoord = true
	w.mu.Unlock()
}

func (w *watcher) coordinate() (geo.Coordinate, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.coord, w.hasCoord
}

func (w *watcher) nudge() {
	select {
	case w.refresh <- struct{}{}:
	default:
	}
}

// NearbyHub streams live nearby results. Each session gets a complete result
// set wholesale; clients replace, never merge. Sessions re-query on a fixed
// interval, whenever the client reports a new coordinate, and whenever any
// user's presence publishes.
type NearbyHub struct {
	*Hub
	querier  NearbyQuerier
	interval time.Duration
	log      *zap.Logger

	mu       sync.RWMutex
	watchers map[*watcher]struct{}
}

func NewNearbyHub(querier NearbyQuerier, interval time.Duration, log *zap.Logger) *NearbyHub {
	return &NearbyHub{
		Hub:      NewHub(),
		querier:  querier,
		interval: interval,
		log:      log,
		watchers: make(map[*watcher]struct{}),
	}
}

// PresenceChanged wakes every session. A single publish can move a user in or
// out of anyone's radius, so all watchers re-query against current state.
func (h *NearbyHub) PresenceChanged(string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for w := range h.watchers {
		w.nudge()
	}
}

func (h *NearbyHub) addWatcher(w *watcher) {
	h.mu.Lock()
	h.watchers[w] = struct{}{}
	h.mu.Unlock()
}

// removeWatcher stops the session's run loop and waits for it, so the client
// channel can be closed without racing a pending send.
func (h *NearbyHub) removeWatcher(w *watcher) {
	h.mu.Lock()
	delete(h.watchers, w)
	h.mu.Unlock()
	close(w.done)
	<-w.stopped
}

// run queries and pushes result frames until the session ends.
func (h *NearbyHub) run(w *watcher) {
	defer close(w.stopped)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	h.push(w)
	for {
		select {
		case <-w.done:
			return
		case <-w.refresh:
			h.push(w)
		case <-ticker.C:
			h.push(w)
		}
	}
}

func (h *NearbyHub) push(w *watcher) {
	coord, ok := w.coordinate()
	if !ok {
		return
	}
	users, err := h.querier.Query(w.userID, coord)
	if err != nil {
		h.log.Warn("live nearby query failed",
			zap.String("user_id", w.userID), zap.Error(err))
		return
	}
	if users == nil {
		users = []service.NearbyUser{}
	}
	data, _ := json.Marshal(map[string]interface{}{
		"type":  "nearby_users",
		"users": users,
	})
	select {
	case w.client.Send <- data:
	default:
	}
}
