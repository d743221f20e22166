// Package hub fans published messages out to connected web clients.
package hub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/claytonbrgsdev/slack-translator-app/internal/constants"
	"github.com/claytonbrgsdev/slack-translator-app/internal/store"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/metrics"
)

// Hub holds one buffered channel per subscriber. A subscriber that cannot
// keep up is dropped instead of blocking the broadcast path.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]chan store.Record
	buffer      int
}

func New() *Hub {
	return &Hub{
		subscribers: make(map[string]chan store.Record),
		buffer:      constants.SubscriberBuffer,
	}
}

// Subscribe registers a new listener and returns its id and channel. The
// channel is closed by Unsubscribe or when the subscriber falls behind.
func (h *Hub) Subscribe() (string, <-chan store.Record) {
	id := uuid.NewString()
	ch := make(chan store.Record, h.buffer)

	h.mu.Lock()
	h.subscribers[id] = ch
	metrics.SetHubSubscribers(len(h.subscribers))
	h.mu.Unlock()

	return id, ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
		metrics.SetHubSubscribers(len(h.subscribers))
	}
}

// Broadcast delivers rec to every subscriber. Full subscriber buffers mean a
// dead or stalled client; those subscribers are removed and their channels
// closed so their readers terminate.
func (h *Hub) Broadcast(rec store.Record) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- rec:
		default:
			delete(h.subscribers, id)
			close(ch)
		}
	}
	metrics.SetHubSubscribers(len(h.subscribers))
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
