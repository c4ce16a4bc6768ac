package bridge

import (
	"sync"
	"time"
)

// PendingRequest is one in-flight lookup, keyed by the message id the
// dispatch send produced. Owned by the Tracker until removed; the
// orchestrator only retains the Cell to wait on.
type PendingRequest struct {
	DispatchID  string      // id of the message sent to the lookup channel
	OriginChat  string      // chat the command came from
	OriginMsgID string      // command message, the eventual reply threads to it
	RequestID   string      // process-local id for logs and traces
	CreatedAt   time.Time   // stamped at registration
	Cell        *ResultCell // settles exactly once
}

// Tracker is the correlation table mapping dispatch ids to pending
// requests. All mutations are serialized by one mutex; an entry is
// removed exactly once, either by Resolve or by Remove/SweepExpired,
// and only the remover settles its cell. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	pending map[string]*PendingRequest
}

// NewTracker returns an empty correlation table.
func NewTracker() *Tracker {
	return &Tracker{pending: make(map[string]*PendingRequest)}
}

// Register inserts req under its dispatch id, stamping CreatedAt unless
// the caller pre-set it. An existing entry under the same id is
// overwritten; transports guarantee unique ids per send.
func (t *Tracker) Register(req *PendingRequest) {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	t.mu.Lock()
	t.pending[req.DispatchID] = req
	t.mu.Unlock()
}

// Contains reports whether a pending request exists for dispatchID.
func (t *Tracker) Contains(dispatchID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[dispatchID]
	return ok
}

// Len returns the number of in-flight requests.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// take removes and returns the entry for dispatchID, if any. The single
// removal point: resolution and expiry race through here, so exactly one
// caller wins any given entry.
func (t *Tracker) take(dispatchID string) (*PendingRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	req, ok := t.pending[dispatchID]
	if ok {
		delete(t.pending, dispatchID)
	}
	return req, ok
}

// Resolve atomically removes the entry for dispatchID and resolves its
// cell with text. Returns true only when this call both removed the
// entry and won the cell transition.
func (t *Tracker) Resolve(dispatchID, text string) bool {
	req, ok := t.take(dispatchID)
	if !ok {
		return false
	}
	return req.Cell.Resolve(text)
}

// Remove evicts the entry for dispatchID without a value, cancelling its
// cell so any waiter unblocks. Returns false when no entry existed.
func (t *Tracker) Remove(dispatchID string) bool {
	req, ok := t.take(dispatchID)
	if !ok {
		return false
	}
	req.Cell.Cancel()
	return true
}

// SweepExpired evicts every entry older than budget, cancelling the
// cells, and returns how many were removed.
func (t *Tracker) SweepExpired(budget time.Duration) int {
	cutoff := time.Now().Add(-budget)

	t.mu.Lock()
	var expired []*PendingRequest
	for id, req := range t.pending {
		if req.CreatedAt.Before(cutoff) {
			expired = append(expired, req)
			delete(t.pending, id)
		}
	}
	t.mu.Unlock()

	for _, req := range expired {
		req.Cell.Cancel()
	}
	return len(expired)
}
