package storage

import (
	"context"
	"sync"
)

// ChangeEvent is emitted on every fallback-store mutation so that other
// open contexts can refresh. CampaignID is zero when the mutation does not
// concern a single campaign.
type ChangeEvent struct {
	Timestamp  int64 // Unix milliseconds
	CampaignID uint64
}

// ChangePublisher publishes change events. Stores depend on this interface
// rather than on a concrete signaling mechanism.
type ChangePublisher interface {
	Publish(ctx context.Context, ev ChangeEvent)
}

// Hub is the in-process change-notification fan-out. Cross-context signals
// (which the mutating context never observes) are layered on top by the
// backend; the Hub covers same-context listeners that need to react
// immediately.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]chan ChangeEvent
	next int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan ChangeEvent)}
}

// Publish delivers the event to every subscriber. Slow subscribers drop
// events rather than block the mutating caller.
func (h *Hub) Publish(_ context.Context, ev ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a listener. The returned cancel function must be
// called to release the subscription.
func (h *Hub) Subscribe() (<-chan ChangeEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan ChangeEvent, 16)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

var _ ChangePublisher = (*Hub)(nil)
