package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	invalidAuthBurst  = 5
	invalidAuthWindow = time.Minute
	limiterIdleAfter  = 5 * time.Minute
)

// InvalidAuthRateLimiter throttles clients that keep presenting invalid
// tokens: 5 attempts per minute per IP.
type InvalidAuthRateLimiter struct {
	mu        sync.Mutex
	attempts  map[string]*attemptInfo
	lastSweep time.Time
	now       func() time.Time
}

type attemptInfo struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewInvalidAuthRateLimiter() *InvalidAuthRateLimiter {
	return &InvalidAuthRateLimiter{
		attempts: make(map[string]*attemptInfo),
		now:      time.Now,
	}
}

// Blocked reports whether ip has exhausted its invalid attempts.
func (r *InvalidAuthRateLimiter) Blocked(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.attempts[ip]
	if !ok {
		return false
	}
	return info.limiter.TokensAt(r.now()) < 1
}

// Fail records an invalid attempt from ip.
func (r *InvalidAuthRateLimiter) Fail(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	info, ok := r.attempts[ip]
	if !ok {
		info = &attemptInfo{
			limiter: rate.NewLimiter(rate.Every(invalidAuthWindow/invalidAuthBurst), invalidAuthBurst),
		}
		r.attempts[ip] = info
	}
	info.lastSeen = now
	info.limiter.AllowN(now, 1)
}

// sweep drops idle entries. Caller holds r.mu.
func (r *InvalidAuthRateLimiter) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < limiterIdleAfter {
		return
	}
	r.lastSweep = now
	for ip, info := range r.attempts {
		if now.Sub(info.lastSeen) > limiterIdleAfter {
			delete(r.attempts, ip)
		}
	}
}
