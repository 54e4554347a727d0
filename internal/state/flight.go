package state

import (
	"context"
	"sync"
)

// Flight keeps at most one in-flight request per key. Beginning a new
// request for a key cancels the previous one, and only the latest ticket
// for a key may commit its result.
type Flight struct {
	mu     sync.Mutex
	parent context.Context
	seq    uint64
	active map[string]flightEntry
	closed bool
}

type flightEntry struct {
	seq    uint64
	cancel context.CancelFunc
}

// Ticket identifies one Begin call.
type Ticket struct {
	Key string
	seq uint64
}

// NewFlight returns a Flight whose request contexts derive from parent.
func NewFlight(parent context.Context) *Flight {
	if parent == nil {
		parent = context.Background()
	}
	return &Flight{parent: parent, active: make(map[string]flightEntry)}
}

// Begin starts a request for key, cancelling any request already running
// under it. After Close the returned context is already cancelled.
func (f *Flight) Begin(key string) (context.Context, Ticket) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ctx, cancel := context.WithCancel(f.parent)
	if f.closed {
		cancel()
		return ctx, Ticket{Key: key}
	}
	if prev, ok := f.active[key]; ok {
		prev.cancel()
	}
	f.seq++
	f.active[key] = flightEntry{seq: f.seq, cancel: cancel}
	return ctx, Ticket{Key: key, seq: f.seq}
}

// Commit reports whether t is still the latest request for its key and, if
// so, releases it. Stale tickets return false and their results should be
// discarded.
func (f *Flight) Commit(t Ticket) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.active[t.Key]
	if !ok || entry.seq != t.seq || t.seq == 0 {
		return false
	}
	entry.cancel()
	delete(f.active, t.Key)
	return true
}

// Close cancels every in-flight request. Later Begin calls get cancelled
// contexts and tickets that never commit.
func (f *Flight) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for key, entry := range f.active {
		entry.cancel()
		delete(f.active, key)
	}
	f.closed = true
}

// Cancel aborts the request running under key, if any.
func (f *Flight) Cancel(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if entry, ok := f.active[key]; ok {
		entry.cancel()
		delete(f.active, key)
	}
}
