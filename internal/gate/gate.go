// Package gate bounds how many sandboxed executions may be in flight at
// once across the whole process.
package gate

import (
	"context"
	"runtime"
)

// Gate is a counting admission gate. A slot must be acquired before a
// process is spawned and released on teardown.
type Gate struct {
	slots chan struct{}
}

// New creates a gate admitting up to capacity concurrent executions.
// Non-positive capacity defaults to the CPU count.
func New(capacity int) *Gate {
	if capacity <= 0 {
		capacity = runtime.NumCPU()
	}
	return &Gate{slots: make(chan struct{}, capacity)}
}

// Acquire blocks until a slot is free or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gate) Release() {
	<-g.slots
}

func (g *Gate) Capacity() int {
	return cap(g.slots)
}

// InFlight reports the number of currently held slots.
func (g *Gate) InFlight() int {
	return len(g.slots)
}
