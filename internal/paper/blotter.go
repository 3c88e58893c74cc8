package paper

import (
	"sync"

	"vitalbot/internal/execution"
)

// Blotter stores executed paper fills in memory for quick inspection.
type Blotter struct {
	mu    sync.Mutex
	fills []execution.Fill
}

// NewBlotter creates an empty blotter optionally pre-sizing storage.
func NewBlotter(capacity int) *Blotter {
	if capacity < 0 {
		capacity = 0
	}
	return &Blotter{fills: make([]execution.Fill, 0, capacity)}
}

// Record appends a fill to the blotter.
func (b *Blotter) Record(fill execution.Fill) {
	b.mu.Lock()
	b.fills = append(b.fills, fill)
	b.mu.Unlock()
}

// Snapshot returns a copy of the recorded fills.
func (b *Blotter) Snapshot() []execution.Fill {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]execution.Fill, len(b.fills))
	copy(out, b.fills)
	return out
}

// Reset clears all stored fills.
func (b *Blotter) Reset() {
	b.mu.Lock()
	b.fills = b.fills[:0]
	b.mu.Unlock()
}
