package http

import (
	"sync"

	"golang.org/x/time/rate"
)

// UserLimiter throttles order placement per user id. A nil limiter allows
// everything.
type UserLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewUserLimiter builds a limiter from an orders-per-minute budget.
func NewUserLimiter(ordersPerMinute, burst int) *UserLimiter {
	if ordersPerMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &UserLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(ordersPerMinute) / 60.0),
		burst:    burst,
	}
}

func (l *UserLimiter) Allow(userID string) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	limiter, ok := l.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
