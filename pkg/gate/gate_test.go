package gate_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/scribe/pkg/gate"
)

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := gate.New(n, 0); err == nil {
			t.Errorf("New(%d): expected error", n)
		}
	}
}

func TestConcurrencyBound(t *testing.T) {
	const capacity = 3
	g, err := gate.New(capacity, 0)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	var current, peak atomic.Int32
	var wg sync.WaitGroup

	for range 20 {
		wg.Go(func() {
			err := g.Do(context.Background(), func() error {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("do: %v", err)
			}
		})
	}

	wg.Wait()

	if got := peak.Load(); got > capacity {
		t.Errorf("peak concurrency: got %d, want <= %d", got, capacity)
	}
	if got := g.InFlight(); got != 0 {
		t.Errorf("in flight after completion: got %d, want 0", got)
	}
}

func TestAcquireTimeout(t *testing.T) {
	g, err := gate.New(1, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer g.Release()

	err = g.Acquire(context.Background())
	if !errors.Is(err, gate.ErrGateTimeout) {
		t.Errorf("second acquire: got %v, want ErrGateTimeout", err)
	}
}

func TestAcquireHonoursContext(t *testing.T) {
	g, err := gate.New(1, 0)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer g.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = g.Acquire(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("acquire on cancelled context: got %v, want context.Canceled", err)
	}
	if errors.Is(err, gate.ErrGateTimeout) {
		t.Error("cancellation should not report a gate timeout")
	}
}

func TestInFlightTracksHolders(t *testing.T) {
	g, err := gate.New(2, 0)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	if g.Capacity() != 2 {
		t.Errorf("capacity: got %d, want 2", g.Capacity())
	}

	g.Acquire(context.Background())
	g.Acquire(context.Background())
	if got := g.InFlight(); got != 2 {
		t.Errorf("in flight: got %d, want 2", got)
	}

	g.Release()
	if got := g.InFlight(); got != 1 {
		t.Errorf("in flight after release: got %d, want 1", got)
	}
	g.Release()
}
