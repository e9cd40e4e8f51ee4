package service

import (
	"testing"
	"time"

	"github.com/mustafa-mbari/TeleChat/internal/repository/memory"
	"github.com/mustafa-mbari/TeleChat/internal/service/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(allowed []int64, maxRequests int) *Guard {
	window := time.Minute
	limiter := ratelimit.NewLimiter(memory.NewRateWindowRepository(window), maxRequests, window)
	return NewGuard(allowed, limiter, maxRequests, window)
}

func TestGuardAllowList(t *testing.T) {
	g := newTestGuard([]int64{42}, 10)

	assert.NoError(t, g.Authorize(42))
	assert.ErrorIs(t, g.Authorize(7), ErrUnauthorized)
}

func TestGuardEmptyAllowListDeniesEveryone(t *testing.T) {
	g := newTestGuard(nil, 10)
	assert.ErrorIs(t, g.Authorize(42), ErrUnauthorized)
}

func TestGuardRateLimitsAfterMax(t *testing.T) {
	g := newTestGuard([]int64{42}, 2)

	require.NoError(t, g.AdmitMessage(42))
	require.NoError(t, g.AdmitMessage(42))

	err := g.AdmitMessage(42)
	var rateErr *RateLimitedError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, 2, rateErr.MaxRequests)
	assert.Equal(t, 0, rateErr.Remaining)
}

func TestGuardDeniedRequestsNotRecorded(t *testing.T) {
	g := newTestGuard([]int64{42}, 1)

	require.NoError(t, g.AdmitMessage(42))
	// Hammering while limited must not extend the window bookkeeping.
	for i := 0; i < 5; i++ {
		assert.Error(t, g.AdmitMessage(42))
	}
	assert.ErrorIs(t, g.AdmitMessage(7), ErrUnauthorized)
}
