package testutil

import (
	"fmt"
	"sync"
)

// FixedGUIDGenerator issues GUIDs from a counter:
// {00000000-0000-0000-0000-000000000001}, ...002 and so on.
//
// This enables deterministic test execution and golden snapshot
// comparison of the $FINGERPRINTGUID and $VERSIONGUID header variables.
//
// Thread-safety: Generate is safe for concurrent use.
type FixedGUIDGenerator struct {
	mu  sync.Mutex
	seq uint64
}

// NewFixedGUIDGenerator creates a generator whose first GUID ends in 1.
func NewFixedGUIDGenerator() *FixedGUIDGenerator {
	return &FixedGUIDGenerator{}
}

// Generate returns the next GUID in sequence.
//
// Implements document.GUIDGenerator.
func (g *FixedGUIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("{00000000-0000-0000-0000-%012X}", g.seq)
}

// Reset restarts the sequence.
func (g *FixedGUIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
