// Package testutil holds deterministic stand-ins for the engine's ambient
// collaborators.
package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator mints "<prefix>-1", "<prefix>-2", ... so that ids in
// traces and golden files are reproducible. It satisfies the engine's and the
// bus's IDGenerator interfaces and is safe for concurrent use.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator returns a generator using prefix, or "id" when empty.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Reset restarts the sequence so the next id is "<prefix>-1".
func (g *SequenceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
