package testutil

import (
	"fmt"
	"sync"
)

// SequentialRevisions generates predictable catalog revision IDs for tests.
//
// The first call to Next returns "rev-0001". Unlike the catalog's UUIDv7
// generator, SequentialRevisions can be reset so the same scenario produces
// byte-identical catalog contents on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialRevisions struct {
	mu  sync.Mutex
	seq int
}

// NewSequentialRevisions creates a generator starting at 0.
func NewSequentialRevisions() *SequentialRevisions {
	return &SequentialRevisions{}
}

// Next increments and returns the next revision ID.
func (g *SequentialRevisions) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("rev-%04d", g.seq)
}

// Count returns how many IDs have been issued.
func (g *SequentialRevisions) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. The next call to Next returns "rev-0001".
func (g *SequentialRevisions) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
