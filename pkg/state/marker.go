// Package state provides small concurrency-safe state primitives.
package state

import (
	"sync/atomic"
)

// Marker is a utility type used to track if a condition has occurred. It is
// safe for concurrent usage and designed for usage on hot paths. The zero value
// of Marker is unmarked.
type Marker struct {
	// storage is the underlying marker storage.
	storage atomic.Bool
}

// Mark idempotently marks the marker.
func (m *Marker) Mark() {
	m.storage.Store(true)
}

// MarkFirst marks the marker and reports whether this call performed the
// transition from unmarked to marked.
func (m *Marker) MarkFirst() bool {
	return m.storage.CompareAndSwap(false, true)
}

// Marked returns whether or not the marker is marked.
func (m *Marker) Marked() bool {
	return m.storage.Load()
}
