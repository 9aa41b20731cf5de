package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist 基于 Redis 的令牌黑名单，key 随令牌自然过期
type TokenBlacklist struct {
	rdb *redis.Client
}

func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rdb: rdb}
}

// Revoke 原子地作废 jti，返回本次是否抢到作废权
// jti 已在黑名单中时返回 false；ttl<=0 说明令牌已过期，无需记录
func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return true, nil
	}
	ok, err := b.rdb.SetNX(ctx, key("jwt", "blacklist", jti), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("写入令牌黑名单失败: %w", err)
	}
	return ok, nil
}
