package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultCooldown    = time.Minute
	keyPrefix          = "dbadmin:att:"
)

// ErrUnavailable wraps Redis failures.
var ErrUnavailable = errors.New("attempt limiter unavailable")

// Config holds the thresholds for one Limiter. Zero values fall back to
// 5 attempts per minute.
type Config struct {
	MaxAttempts int
	Cooldown    time.Duration
}

// attemptScript runs INCR and the expiry of a fresh counter as one step.
var attemptScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// Limiter counts attempts per key in Redis. The counter expires Cooldown
// after the first attempt, which lifts the limit.
type Limiter struct {
	redis       redis.UniversalClient
	maxAttempts int64
	cooldown    time.Duration
}

func New(client redis.UniversalClient, cfg Config) *Limiter {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &Limiter{redis: client, maxAttempts: int64(maxAttempts), cooldown: cooldown}
}

func (l *Limiter) key(key string) string {
	return keyPrefix + key
}

// Attempt counts one attempt and reports whether it is within MaxAttempts.
func (l *Limiter) Attempt(ctx context.Context, key string) (bool, error) {
	count, err := attemptScript.Run(ctx, l.redis, []string{l.key(key)}, l.cooldown.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return count <= l.maxAttempts, nil
}

func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.redis.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Connect returns a client for addr after a successful PING.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[ratelimit Connect] ping %s: %w", addr, err)
	}
	return client, nil
}
