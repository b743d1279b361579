package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is the in-process Limiter used when Redis is not configured.
// Each key gets a token bucket holding Limit tokens refilled over Window.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	config   RateLimitConfig
	every    time.Duration
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryLimiter(config RateLimitConfig) *MemoryLimiter {
	if config.Limit <= 0 {
		config.Limit = 1
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	return &MemoryLimiter{
		visitors: make(map[string]*visitor),
		config:   config,
		every:    config.Window / time.Duration(config.Limit),
		ttl:      2 * config.Window,
		now:      time.Now,
	}
}

// WithNowFunc allows tests to override the time source.
func (l *MemoryLimiter) WithNowFunc(now func() time.Time) *MemoryLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
	return l
}

func (l *MemoryLimiter) Config() RateLimitConfig {
	return l.config
}

func (l *MemoryLimiter) IsAllowed(_ context.Context, key string) (bool, int, time.Time, error) {
	if key == "" {
		key = "unknown"
	}
	now := l.now()

	l.mu.Lock()
	v := l.getVisitorLocked(key, now)
	l.gcLocked(now)
	l.mu.Unlock()

	allowed := v.limiter.AllowN(now, 1)
	remaining := int(v.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	reset := now.Add(time.Duration(l.config.Limit-remaining) * l.every)
	return allowed, remaining, reset, nil
}

func (l *MemoryLimiter) getVisitorLocked(key string, now time.Time) *visitor {
	if v, ok := l.visitors[key]; ok {
		v.lastSeen = now
		return v
	}
	v := &visitor{
		limiter:  rate.NewLimiter(rate.Every(l.every), l.config.Limit),
		lastSeen: now,
	}
	l.visitors[key] = v
	return v
}

func (l *MemoryLimiter) gcLocked(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.visitors, key)
		}
	}
}
