// Package sse fans out per-user events to Server-Sent Events streams.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

const bufferSize = 16

// Event is one frame of an event stream.
type Event struct {
	Name string
	Data any
}

// Write renders ev as an SSE frame with a JSON data line.
func Write(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", ev.Name, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
	return err
}

// Subscription receives the events published for one user until Close.
type Subscription struct {
	C <-chan Event

	hub    *Hub
	userID string
	ch     chan Event
	once   sync.Once
}

// Close unsubscribes and closes C. It is safe to call more than once and
// after the hub itself was closed.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

// Hub routes events to the subscriptions of a user. Slow subscribers drop
// events instead of blocking publishers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(userID string) *Subscription {
	ch := make(chan Event, bufferSize)
	sub := &Subscription{C: ch, hub: h, userID: userID, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return sub
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	userSubs, ok := h.subs[sub.userID]
	if !ok {
		return
	}
	if _, ok := userSubs[sub]; !ok {
		return
	}
	delete(userSubs, sub)
	close(sub.ch)
	if len(userSubs) == 0 {
		delete(h.subs, sub.userID)
	}
}

// Publish delivers ev to every subscription of userID and reports how many
// received it.
func (h *Hub) Publish(userID string, ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.subs[userID] {
		select {
		case sub.ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, userSubs := range h.subs {
		n += len(userSubs)
	}
	return n
}

// Close ends every subscription so streaming handlers return during shutdown.
// Later subscriptions start closed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for userID, userSubs := range h.subs {
		for sub := range userSubs {
			close(sub.ch)
		}
		delete(h.subs, userID)
	}
}
