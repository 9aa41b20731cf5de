package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 原子 INCR，首次计数时设置过期时间
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimiter 固定窗口计数限流
type RateLimiter struct {
	rdb *redis.Client
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb}
}

// Hit 计数一次，返回窗口内的累计次数与窗口剩余时间
func (l *RateLimiter) Hit(ctx context.Context, bucket string, window time.Duration) (int64, time.Duration, error) {
	k := key("ratelimit", bucket)
	count, err := incrExpireScript.Run(ctx, l.rdb, []string{k}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, 0, fmt.Errorf("限流计数失败: %w", err)
	}
	ttl, err := l.rdb.PTTL(ctx, k).Result()
	if err != nil {
		return count, 0, fmt.Errorf("查询限流窗口失败: %w", err)
	}
	return count, ttl, nil
}
