// Package testutil provides deterministic test doubles shared across
// packages.
package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator returns the same id every time.
//
// Useful when a test mints exactly one id and wants to name it up front.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator that always returns id.
// An empty id defaults to "test-id".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-id"
	}
	return &FixedIDGenerator{id: id}
}

// NewID returns the fixed id.
//
// Implements block.IDGenerator.
func (g *FixedIDGenerator) NewID() string {
	return g.id
}

// SequenceIDGenerator returns "prefix-1", "prefix-2", ... in order.
//
// The same scenario with the same SequenceIDGenerator produces
// byte-identical traces, which keeps golden comparisons stable.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequenceIDGenerator creates a sequential generator. An empty prefix
// defaults to "id".
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceIDGenerator{prefix: prefix, next: 1}
}

// NewID returns the next id in the sequence.
//
// Implements block.IDGenerator.
func (g *SequenceIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := fmt.Sprintf("%s-%d", g.prefix, g.next)
	g.next++
	return id
}
