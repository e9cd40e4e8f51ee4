package service

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnauthorized means the user is not on the static allow-list.
var ErrUnauthorized = errors.New("user not authorized")

// RateLimitedError carries the quota hint shown to the user.
type RateLimitedError struct {
	MaxRequests int
	Window      time.Duration
	Remaining   int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: %d requests per %s, %d remaining", e.MaxRequests, e.Window, e.Remaining)
}
