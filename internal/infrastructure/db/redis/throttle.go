package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	throttleMaxFailures = 10
	throttleWindow      = 15 * time.Minute
)

// LoginThrottle counts failed login attempts per principal in a rolling
// window. Key format: login_failures:<principal>
type LoginThrottle struct {
	client *redis.Client
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
func NewLoginThrottle(client *redis.Client) *LoginThrottle {
	return &LoginThrottle{client: client}
}

// TooMany reports whether the principal has exhausted its failure budget.
func (t *LoginThrottle) TooMany(ctx context.Context, principal string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(principal)).Int64()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n >= throttleMaxFailures, nil
}

// RecordFailure increments the failure counter and refreshes the window.
func (t *LoginThrottle) RecordFailure(ctx context.Context, principal string) error {
	key := t.key(principal)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, throttleWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("throttle record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, principal string) error {
	return t.client.Del(ctx, t.key(principal)).Err()
}

func (t *LoginThrottle) key(principal string) string {
	return "login_failures:" + principal
}
