package service

import (
	"time"

	"github.com/mustafa-mbari/TeleChat/internal/service/ratelimit"
)

// Guard runs the allow-list and rate-limit checks that precede any mode
// dispatch. Text messages get both checks; callback presses only the
// allow-list check.
type Guard struct {
	allowed     map[int64]struct{}
	limiter     *ratelimit.Limiter
	maxRequests int
	window      time.Duration
}

func NewGuard(allowedUserIDs []int64, limiter *ratelimit.Limiter, maxRequests int, window time.Duration) *Guard {
	allowed := make(map[int64]struct{}, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = struct{}{}
	}
	return &Guard{
		allowed:     allowed,
		limiter:     limiter,
		maxRequests: maxRequests,
		window:      window,
	}
}

// Authorize checks the static allow-list. An empty list admits nobody.
func (g *Guard) Authorize(userID int64) error {
	if _, ok := g.allowed[userID]; !ok {
		return ErrUnauthorized
	}
	return nil
}

// AdmitMessage authorizes, then applies the sliding-window limit and records
// the request. Denied requests are not recorded.
func (g *Guard) AdmitMessage(userID int64) error {
	if err := g.Authorize(userID); err != nil {
		return err
	}
	if g.limiter.IsRateLimited(userID) {
		return &RateLimitedError{
			MaxRequests: g.maxRequests,
			Window:      g.window,
			Remaining:   g.limiter.Remaining(userID),
		}
	}
	g.limiter.RecordRequest(userID)
	return nil
}
