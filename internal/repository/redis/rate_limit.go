package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
)

const rateLimitKeyPrefix = "rate_limit:"

// incrWithWindowScript atomically increments the counter, arming the window
// TTL on the first hit only, and returns the post-increment count with the
// remaining window in milliseconds. Running it server-side is what makes
// concurrent increments on the same identity linearizable.
var incrWithWindowScript = red.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

// RateLimitRepository maintains fixed-window counters in Redis.
type RateLimitRepository struct {
	client *red.Client
}

// NewRateLimitRepository wires a Redis client into a rate limit store.
func NewRateLimitRepository(client *red.Client) *RateLimitRepository {
	return &RateLimitRepository{client: client}
}

// IncrementAndTTL bumps the counter for key, creating the window on first
// use, and returns the new count plus the remaining window duration.
func (r *RateLimitRepository) IncrementAndTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, 0, errors.New("key must not be empty")
	}
	if window <= 0 {
		return 0, 0, errors.New("window must be positive")
	}

	res, err := incrWithWindowScript.Run(ctx, r.client,
		[]string{rateLimitKeyPrefix + key},
		window.Milliseconds(),
	).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis increment rate limit counter: %w", err)
	}

	values, ok := res.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected script result %T", res)
	}

	count, ok := values[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected count type %T", values[0])
	}

	ttlMillis, ok := values[1].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected ttl type %T", values[1])
	}
	if ttlMillis < 0 {
		ttlMillis = 0
	}

	return count, time.Duration(ttlMillis) * time.Millisecond, nil
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
