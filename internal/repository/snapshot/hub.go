package snapshot

import (
	"sync"

	"github.com/kailas-cloud/storelocator/internal/domain/snapshot"
)

// Hub holds the latest published snapshot and fans it out to subscribers.
// Every Publish replaces the whole snapshot and bumps Version.
type Hub struct {
	mu      sync.RWMutex
	latest  snapshot.Snapshot
	version uint64
	subs    map[int]chan snapshot.Snapshot
	nextSub int
}

// NewHub creates a hub holding an empty version-0 snapshot.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan snapshot.Snapshot)}
}

// Publish stores s as the latest snapshot and returns it with its assigned version.
// Slow subscribers lose intermediate snapshots, never the newest one.
func (h *Hub) Publish(s snapshot.Snapshot) snapshot.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.version++
	s.Version = h.version
	h.latest = s
	for _, ch := range h.subs {
		deliver(ch, s)
	}
	return s
}

// Latest returns the most recently published snapshot.
func (h *Hub) Latest() snapshot.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// Version returns the version of the latest snapshot.
func (h *Hub) Version() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version
}

// Subscribe returns a channel receiving every later snapshot and a cancel
// func that closes it. buffer below 1 is treated as 1.
func (h *Hub) Subscribe(buffer int) (<-chan snapshot.Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan snapshot.Snapshot, buffer)

	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// deliver never blocks: when ch is full the oldest queued snapshot is dropped.
// Callers hold h.mu, so there is a single sender per channel at a time.
func deliver(ch chan snapshot.Snapshot, s snapshot.Snapshot) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
