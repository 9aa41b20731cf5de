package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestTokenBlacklist(t *testing.T) {
	mr, rdb := newTestClient(t)
	bl := NewTokenBlacklist(rdb)
	ctx := context.Background()

	claimed, err := bl.Revoke(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.True(t, mr.Exists(KeyPrefix+"jwt:blacklist:jti-1"))

	// 同一 jti 只能作废一次
	claimed, err = bl.Revoke(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(KeyPrefix+"jwt:blacklist:jti-1"))

	claimed, err = bl.Revoke(ctx, "expired", -time.Second)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.False(t, mr.Exists(KeyPrefix+"jwt:blacklist:expired"))
}

func TestRateLimiterHit(t *testing.T) {
	mr, rdb := newTestClient(t)
	l := NewRateLimiter(rdb)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		count, ttl, err := l.Hit(ctx, "ip:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, count)
		assert.Greater(t, ttl, time.Duration(0))
	}

	mr.FastForward(time.Minute + time.Second)
	count, _, err := l.Hit(ctx, "ip:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
