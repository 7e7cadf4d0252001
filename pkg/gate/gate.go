// Package gate bounds the number of concurrently outstanding calls against a
// shared, expensive resource. A single Gate is constructed at process start
// and shared by every request.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrGateTimeout is returned when a slot could not be acquired within the
// configured acquire timeout.
var ErrGateTimeout = errors.New("timed out waiting for an inference slot")

// Gate is a counting semaphore with a fixed capacity.
// Waiters are queued by the underlying semaphore; ordering across goroutines
// that arrive at the same instant is not guaranteed.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int64
	timeout  time.Duration
	inFlight atomic.Int64
}

// New creates a Gate admitting at most capacity concurrent holders.
// A zero timeout makes Acquire wait until a slot frees or ctx is done.
func New(capacity int, timeout time.Duration) (*Gate, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("gate capacity must be positive: %d", capacity)
	}
	return &Gate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: int64(capacity),
		timeout:  timeout,
	}, nil
}

// Acquire blocks until a slot is available.
func (g *Gate) Acquire(ctx context.Context) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if err := g.sem.Acquire(ctx, 1); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && g.timeout > 0 {
			return fmt.Errorf("%w after %v", ErrGateTimeout, g.timeout)
		}
		return err
	}

	g.inFlight.Add(1)
	return nil
}

// Release returns a slot acquired with Acquire.
func (g *Gate) Release() {
	g.inFlight.Add(-1)
	g.sem.Release(1)
}

// Do runs fn while holding a slot.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn()
}

// Capacity returns the maximum number of concurrent holders.
func (g *Gate) Capacity() int {
	return int(g.capacity)
}

// InFlight returns the number of slots currently held.
func (g *Gate) InFlight() int {
	return int(g.inFlight.Load())
}
