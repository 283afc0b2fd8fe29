package auth

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Limiter counts failed logins per key (email + client address) and blocks
// the key once max failures happened within window.
type Limiter struct {
	failures *cache.Cache
	max      int
}

func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{failures: cache.New(window, 2*window), max: max}
}

// Allow reports whether key may attempt a login.
func (l *Limiter) Allow(key string) bool {
	n, found := l.failures.Get(key)
	if !found {
		return true
	}
	return n.(int) < l.max
}

// Fail records a failed attempt. The window starts at the first failure.
func (l *Limiter) Fail(key string) {
	if err := l.failures.Add(key, 1, cache.DefaultExpiration); err != nil {
		_, _ = l.failures.IncrementInt(key, 1)
	}
}

// Reset forgets the failures of key after a successful login.
func (l *Limiter) Reset(key string) {
	l.failures.Delete(key)
}
