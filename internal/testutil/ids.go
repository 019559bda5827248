package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates predictable identifiers for `cuid` defaults:
// "<prefix>-0001", "<prefix>-0002", ...
//
// Sequential ids sort in creation order, which keeps primary-key tiebreaks
// and golden snapshots stable.
//
// Thread-safety: Next is safe for concurrent use.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. If prefix is empty, "id" is used.
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "id"
	}
	return &SequentialIDs{prefix: prefix}
}

// Next returns the next identifier.
func (g *SequentialIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
