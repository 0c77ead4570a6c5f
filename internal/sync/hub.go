// Package sync keeps live in-memory views of a user's shelf collections in
// step with the store. A Reconciler holds one snapshot per collection and
// replaces it wholesale whenever a change event arrives; consumers never
// see partial mutations.
package sync

import (
	stdsync "sync"

	"github.com/cozyshelfapp/shelf-server/internal/store"
)

// Hub fans store change events out to subscribers. It implements
// store.EventEmitter so it can be wired directly into the store.
type Hub struct {
	mu   stdsync.RWMutex
	subs map[int64]*subscription
	next int64
}

type subscription struct {
	userID     string
	collection string
	fn         func(store.ChangeEvent)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int64]*subscription)}
}

// Emit dispatches a change event to every matching subscriber. Non-change
// events are ignored. Dispatch is synchronous; subscribers are expected to
// do no more than a snapshot re-read.
func (h *Hub) Emit(event any) {
	ce, ok := event.(store.ChangeEvent)
	if !ok {
		return
	}

	h.mu.RLock()
	matched := make([]func(store.ChangeEvent), 0, 4)
	for _, sub := range h.subs {
		if sub.userID == ce.UserID && sub.collection == ce.Collection {
			matched = append(matched, sub.fn)
		}
	}
	h.mu.RUnlock()

	for _, fn := range matched {
		fn(ce)
	}
}

// Subscribe registers a callback for one user's collection. The returned
// function detaches the subscription; calling it more than once is safe.
func (h *Hub) Subscribe(userID, collection string, fn func(store.ChangeEvent)) func() {
	h.mu.Lock()
	h.next++
	key := h.next
	h.subs[key] = &subscription{userID: userID, collection: collection, fn: fn}
	h.mu.Unlock()

	var once stdsync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, key)
			h.mu.Unlock()
		})
	}
}
