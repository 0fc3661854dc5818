// Package ratelimit throttles the passwordless client login, which would
// otherwise let anyone mint tokens for a phone number as fast as they can
// post it.
package ratelimit

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter gates login attempts per key (normalized phone number).
type Limiter interface {
	Allow(key string) bool
}

const allowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type evaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisLimiter struct {
	client evaler
	window time.Duration
	max    int
	prefix string
}

// NewRedisLimiter returns a fixed-window limiter backed by Redis. A nil
// client disables limiting.
func NewRedisLimiter(client *redis.Client, window time.Duration, max int) Limiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "login:rl:",
	}
}

// Allow reports whether another attempt for key fits in the current window.
// Fails open on Redis errors: an unreachable Redis must not lock users out.
func (l *redisLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalized := strings.ToLower(strings.TrimSpace(key))
	if normalized == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, allowScript, []string{l.prefix + normalized}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
