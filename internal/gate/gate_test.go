package gate

import (
	"context"
	"testing"
	"time"
)

func TestGateCapacity(t *testing.T) {
	g := New(2)
	if g.Capacity() != 2 {
		t.Fatalf("Capacity = %d, want 2", g.Capacity())
	}

	ctx := context.Background()
	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if g.InFlight() != 2 {
		t.Fatalf("InFlight = %d, want 2", g.InFlight())
	}

	// A full gate must block until a slot is released.
	timeout, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := g.Acquire(timeout); err == nil {
		t.Fatal("Acquire on a full gate succeeded, want context error")
	}

	g.Release()
	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("Acquire after Release failed: %v", err)
	}
}

func TestGateDefaultCapacity(t *testing.T) {
	g := New(0)
	if g.Capacity() <= 0 {
		t.Fatalf("Capacity = %d, want positive default", g.Capacity())
	}
}

func TestGateUnblocksWaiter(t *testing.T) {
	g := New(1)
	ctx := context.Background()
	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	acquired := make(chan error, 1)
	go func() { acquired <- g.Acquire(ctx) }()

	g.Release()
	select {
	case err := <-acquired:
		if err != nil {
			t.Fatalf("waiting Acquire failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter was not admitted after Release")
	}
}
