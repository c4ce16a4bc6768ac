package bridge

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newTestRequest(id string) *PendingRequest {
	return &PendingRequest{
		DispatchID:  id,
		OriginChat:  "1001",
		OriginMsgID: "42",
		RequestID:   "req-" + id,
		Cell:        NewResultCell(),
	}
}

func TestTrackerRegisterAndResolve(t *testing.T) {
	tr := NewTracker()
	req := newTestRequest("555")
	tr.Register(req)

	if !tr.Contains("555") {
		t.Fatal("registered entry not found")
	}
	if req.CreatedAt.IsZero() {
		t.Error("Register should stamp CreatedAt")
	}

	if !tr.Resolve("555", "Name: John") {
		t.Fatal("Resolve should win on a pending entry")
	}
	if tr.Contains("555") {
		t.Error("resolved entry must be removed")
	}
	if tr.Len() != 0 {
		t.Errorf("Len = %d after resolve, want 0", tr.Len())
	}

	text, ok := req.Cell.Wait(context.Background(), time.Second)
	if !ok || text != "Name: John" {
		t.Errorf("cell = %q, %v; want \"Name: John\", true", text, ok)
	}
}

func TestTrackerResolveUnknown(t *testing.T) {
	tr := NewTracker()
	if tr.Resolve("nope", "text") {
		t.Error("Resolve on unknown id should report false")
	}
	if tr.Remove("nope") {
		t.Error("Remove on unknown id should report false")
	}
}

func TestTrackerDoubleResolve(t *testing.T) {
	tr := NewTracker()
	req := newTestRequest("1")
	tr.Register(req)

	if !tr.Resolve("1", "first") {
		t.Fatal("first Resolve should win")
	}
	if tr.Resolve("1", "second") {
		t.Error("second Resolve must be a no-op")
	}

	text, _ := req.Cell.Wait(context.Background(), time.Second)
	if text != "first" {
		t.Errorf("cell holds %q, want \"first\"", text)
	}
}

func TestTrackerRemoveCancelsCell(t *testing.T) {
	tr := NewTracker()
	req := newTestRequest("9")
	tr.Register(req)

	if !tr.Remove("9") {
		t.Fatal("Remove should succeed on a pending entry")
	}
	if _, ok := req.Cell.Wait(context.Background(), time.Second); ok {
		t.Error("removed entry's cell must be cancelled, not resolved")
	}
	if tr.Resolve("9", "late") {
		t.Error("Resolve after Remove must be a no-op")
	}
}

func TestTrackerSweepExpired(t *testing.T) {
	tr := NewTracker()

	stale := newTestRequest("old")
	stale.CreatedAt = time.Now().Add(-time.Minute)
	tr.Register(stale)

	fresh := newTestRequest("new")
	tr.Register(fresh)

	n := tr.SweepExpired(15 * time.Second)
	if n != 1 {
		t.Fatalf("SweepExpired = %d, want 1", n)
	}
	if tr.Contains("old") {
		t.Error("stale entry survived the sweep")
	}
	if !tr.Contains("new") {
		t.Error("fresh entry was swept")
	}
	if _, ok := stale.Cell.Wait(context.Background(), time.Second); ok {
		t.Error("swept entry's cell must be cancelled")
	}
	if stale.Cell.Settled() != true {
		t.Error("swept entry's cell should be settled")
	}
	if fresh.Cell.Settled() {
		t.Error("fresh entry's cell must stay pending")
	}
}

func TestTrackerSweepEmpty(t *testing.T) {
	tr := NewTracker()
	if n := tr.SweepExpired(time.Second); n != 0 {
		t.Errorf("SweepExpired on empty table = %d, want 0", n)
	}
}

func TestTrackerResolveRemoveRace(t *testing.T) {
	// Resolve and Remove race for the same entry; exactly one wins and
	// the cell reflects the winner.
	for i := 0; i < 100; i++ {
		tr := NewTracker()
		req := newTestRequest("r")
		tr.Register(req)

		var wg sync.WaitGroup
		var resolved, removed bool
		wg.Add(2)
		go func() {
			defer wg.Done()
			resolved = tr.Resolve("r", "winner")
		}()
		go func() {
			defer wg.Done()
			removed = tr.Remove("r")
		}()
		wg.Wait()

		if resolved == removed {
			t.Fatalf("iteration %d: resolved=%v removed=%v, want exactly one winner", i, resolved, removed)
		}
		text, ok := req.Cell.Wait(context.Background(), time.Second)
		if resolved && (!ok || text != "winner") {
			t.Fatalf("iteration %d: resolve won but cell = %q, %v", i, text, ok)
		}
		if removed && ok {
			t.Fatalf("iteration %d: remove won but cell resolved with %q", i, text)
		}
		if tr.Len() != 0 {
			t.Fatalf("iteration %d: table not empty after race", i)
		}
	}
}
