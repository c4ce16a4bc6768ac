package bridge

import (
	"context"
	"sync"
	"time"
)

type resultState int

const (
	statePending resultState = iota
	stateResolved
	stateCancelled
)

// ResultCell is a single-assignment slot for a pending request's answer:
// Pending until exactly one Resolve or Cancel wins, after which every
// later transition is a no-op. Waiters block on a closed-once channel.
type ResultCell struct {
	mu    sync.Mutex
	state resultState
	text  string
	done  chan struct{}
}

// NewResultCell returns a cell in the Pending state.
func NewResultCell() *ResultCell {
	return &ResultCell{done: make(chan struct{})}
}

// Resolve completes the cell with the final answer text.
// Returns false if the cell was already resolved or cancelled.
func (c *ResultCell) Resolve(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != statePending {
		return false
	}
	c.state = stateResolved
	c.text = text
	close(c.done)
	return true
}

// Cancel settles the cell without a value, unblocking any waiter.
// Returns false if the cell was already resolved or cancelled.
func (c *ResultCell) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != statePending {
		return false
	}
	c.state = stateCancelled
	close(c.done)
	return true
}

// Settled reports whether the cell has left the Pending state.
func (c *ResultCell) Settled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != statePending
}

// Wait blocks until the cell settles, the budget elapses, or ctx is
// cancelled. Returns the answer text and true only when the cell
// resolved within the budget.
func (c *ResultCell) Wait(ctx context.Context, budget time.Duration) (string, bool) {
	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case <-c.done:
	case <-timer.C:
		return "", false
	case <-ctx.Done():
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateResolved {
		return "", false
	}
	return c.text, true
}
