package memory

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// RateWindowRepository keeps per-user request timestamp lists. Entries expire
// on their own once the user goes quiet for longer than the configured window,
// so idle users do not accumulate in memory.
type RateWindowRepository struct {
	cache *cache.Cache
}

func NewRateWindowRepository(window time.Duration) *RateWindowRepository {
	return &RateWindowRepository{
		cache: cache.New(2*window, window),
	}
}

func (r *RateWindowRepository) Window(userID int64) []time.Time {
	if x, found := r.cache.Get(rateKey(userID)); found {
		return x.([]time.Time)
	}
	return nil
}

func (r *RateWindowRepository) SetWindow(userID int64, timestamps []time.Time) {
	r.cache.Set(rateKey(userID), timestamps, cache.DefaultExpiration)
}

func rateKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
