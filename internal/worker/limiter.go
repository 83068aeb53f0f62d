package worker

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces outbound calls per host.
// Webhook chunks and per-item fallback calls share this type.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// NewIntervalLimiter allows one call immediately and then one call per interval.
// A non-positive interval disables pacing.
func NewIntervalLimiter(interval time.Duration) *Limiter {
	if interval <= 0 {
		return NewLimiter(0, 1)
	}
	l := NewLimiter(0, 1)
	l.defaultRate = rate.Every(interval)
	return l
}

// Wait waits for rate limit clearance for the given URL
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	return l.getLimiter(hostKey(rawURL)).Wait(ctx)
}

// getLimiter returns the rate limiter for a host
func (l *Limiter) getLimiter(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[host]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[host] = limiter

	return limiter
}

// hostKey extracts the host of a URL; unparsable input is used verbatim as the key
func hostKey(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}
