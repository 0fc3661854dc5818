package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type fakeEvaler struct {
	count int64
	err   error
	keys  []string
}

func (f *fakeEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.keys = append(f.keys, keys...)
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.count++
	cmd.SetVal(f.count)
	return cmd
}

func newTestLimiter(client evaler, max int) *redisLimiter {
	return &redisLimiter{client: client, window: time.Minute, max: max, prefix: "login:rl:"}
}

func TestAllowWithinWindow(t *testing.T) {
	l := newTestLimiter(&fakeEvaler{}, 3)

	assert.True(t, l.Allow("+243820000001"))
	assert.True(t, l.Allow("+243820000001"))
	assert.True(t, l.Allow("+243820000001"))
	assert.False(t, l.Allow("+243820000001"))
}

func TestAllowNormalizesKey(t *testing.T) {
	f := &fakeEvaler{}
	l := newTestLimiter(f, 10)

	l.Allow("  +24382OOOOOO1  ")
	assert.Equal(t, []string{"login:rl:+24382oooooo1"}, f.keys)
}

func TestAllowEmptyKeyRejected(t *testing.T) {
	l := newTestLimiter(&fakeEvaler{}, 10)
	assert.False(t, l.Allow("   "))
}

func TestAllowFailsOpenOnRedisError(t *testing.T) {
	l := newTestLimiter(&fakeEvaler{err: errors.New("connection refused")}, 1)
	assert.True(t, l.Allow("+243820000001"))
	assert.True(t, l.Allow("+243820000001"))
}

func TestNewRedisLimiterNilClient(t *testing.T) {
	assert.Nil(t, NewRedisLimiter(nil, time.Minute, 5))
}
