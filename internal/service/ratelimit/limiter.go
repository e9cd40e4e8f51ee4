package ratelimit

import (
	"time"

	"github.com/mustafa-mbari/TeleChat/internal/repository/contract"
)

// Limiter is a per-user sliding-window counter over the rate-window store.
// Check and record are separate calls; a single process handles one update
// at a time per chat, so the gap between them is acceptable.
type Limiter struct {
	windows     contract.RateWindowStore
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

func NewLimiter(windows contract.RateWindowStore, maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		windows:     windows,
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// IsRateLimited prunes the user's window and reports whether it is full.
func (l *Limiter) IsRateLimited(userID int64) bool {
	pruned := l.prune(userID)
	return len(pruned) >= l.maxRequests
}

// RecordRequest appends the current timestamp to the user's pruned window.
func (l *Limiter) RecordRequest(userID int64) {
	pruned := l.prune(userID)
	l.windows.SetWindow(userID, append(pruned, l.now()))
}

// Remaining reports how many requests the user has left in the window.
func (l *Limiter) Remaining(userID int64) int {
	remaining := l.maxRequests - len(l.prune(userID))
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (l *Limiter) prune(userID int64) []time.Time {
	cutoff := l.now().Add(-l.window)
	timestamps := l.windows.Window(userID)
	kept := timestamps[:0:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.windows.SetWindow(userID, kept)
	return kept
}
