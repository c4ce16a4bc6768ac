package bridge

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedSenders caps the number of tracked per-sender limiters to
// prevent memory exhaustion from rotating sender ids.
const maxTrackedSenders = 4096

type senderEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// SenderLimiter bounds how fast any one sender may dispatch commands.
// A zero or negative per-minute rate disables limiting entirely.
// Safe for concurrent use.
type SenderLimiter struct {
	mu      sync.Mutex
	entries map[string]*senderEntry
	limit   rate.Limit
	burst   int
}

// NewSenderLimiter creates a limiter allowing perMinute commands per
// sender with the given burst. perMinute <= 0 means unlimited.
func NewSenderLimiter(perMinute, burst int) *SenderLimiter {
	if perMinute <= 0 {
		return &SenderLimiter{}
	}
	if burst < 1 {
		burst = 1
	}
	return &SenderLimiter{
		entries: make(map[string]*senderEntry),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
	}
}

// Allow reports whether senderID may dispatch another command now.
// Stale entries are pruned when the tracked-key cap is reached, with a
// hard eviction if pruning was not enough.
func (l *SenderLimiter) Allow(senderID string) bool {
	if l.entries == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	if len(l.entries) >= maxTrackedSenders {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) >= time.Minute {
				delete(l.entries, k)
			}
		}
		for len(l.entries) >= maxTrackedSenders {
			for k := range l.entries {
				delete(l.entries, k)
				break
			}
		}
	}

	e, ok := l.entries[senderID]
	if !ok {
		e = &senderEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.entries[senderID] = e
	}
	e.lastSeen = now

	return e.lim.Allow()
}
