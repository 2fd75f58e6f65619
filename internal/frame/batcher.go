// Package frame coalesces high-frequency updates into at most one applied
// update per animation frame.
package frame

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is one frame at 60Hz.
const DefaultInterval = 16 * time.Millisecond

// Stats counts applied and coalesced updates.
type Stats struct {
	Applied   uint64
	Coalesced uint64
}

// Batcher keeps the latest scheduled value until the next flush.
// Values scheduled within one frame overwrite each other (last writer wins).
type Batcher[T any] struct {
	apply func(T)

	mu      sync.Mutex
	pending T
	dirty   bool
	stats   Stats
}

// New creates a batcher that hands flushed values to apply.
func New[T any](apply func(T)) *Batcher[T] {
	return &Batcher[T]{apply: apply}
}

// Schedule replaces any value waiting for the next frame.
func (b *Batcher[T]) Schedule(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dirty {
		b.stats.Coalesced++
	}
	b.pending = v
	b.dirty = true
}

// Flush applies the pending value, if any. apply runs without the batcher lock held.
func (b *Batcher[T]) Flush() bool {
	b.mu.Lock()
	if !b.dirty {
		b.mu.Unlock()
		return false
	}
	v := b.pending
	var zero T
	b.pending = zero
	b.dirty = false
	b.stats.Applied++
	b.mu.Unlock()

	b.apply(v)
	return true
}

// Discard drops the pending value without applying it.
func (b *Batcher[T]) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()

	var zero T
	b.pending = zero
	b.dirty = false
}

// Pending reports whether a value is waiting for the next frame.
func (b *Batcher[T]) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dirty
}

// Stats returns the counters since creation.
func (b *Batcher[T]) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Run calls tick once per interval until ctx is done.
func Run(ctx context.Context, interval time.Duration, tick func()) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
