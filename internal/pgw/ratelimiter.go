// SPDX-License-Identifier: Apache-2.0
package pgw

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is the per-IMSI token-bucket admission test of §4.4 (C4).
// Parameters are process-global, derived once from maxPerMinute:
//
//	rate     = maxPerMinute / 60   tokens/s
//	capacity = max(maxPerMinute/10, 1)
//
// Each IMSI's bucket is a golang.org/x/time/rate.Limiter: its internal
// "tokens = min(burst, tokens + elapsed*limit); admit iff tokens >= 1"
// refill algorithm is precisely the one specified in §4.4 steps 2-5, so
// the bucket bookkeeping is delegated to it rather than reimplemented.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiter constructs a limiter for the given requests-per-minute
// budget.
func NewRateLimiter(maxPerMinute uint32) *RateLimiter {
	burst := int(maxPerMinute / 10)
	if burst < 1 {
		burst = 1
	}

	return &RateLimiter{
		limit:    rate.Limit(float64(maxPerMinute) / 60.0),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether imsi may be admitted right now, lazily creating
// a full-capacity bucket for IMSIs seen for the first time.
func (r *RateLimiter) Allow(imsi string) bool {
	r.mu.Lock()
	limiter, ok := r.limiters[imsi]
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[imsi] = limiter
	}
	r.mu.Unlock()

	return limiter.AllowN(time.Now(), 1)
}

// BucketCount returns the number of IMSIs that have ever been seen; a
// quality-of-implementation introspection hook, not part of §3/§4.4.
func (r *RateLimiter) BucketCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.limiters)
}
