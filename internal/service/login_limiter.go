package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrLoginRateLimited means the identifier exhausted its attempt budget.
	ErrLoginRateLimited = errors.New("login rate limited")

	errLimiterUnavailable = errors.New("login limiter redis unavailable")
)

// LoginLimiter throttles login attempts per identifier using a Redis counter
// with a cooldown TTL. Every attempt counts, successful or not; a successful
// login resets the window.
type LoginLimiter struct {
	redis       *redis.Client
	maxAttempts int
	cooldown    time.Duration
}

// NewLoginLimiter builds a limiter. A nil client disables throttling.
func NewLoginLimiter(redisClient *redis.Client, maxAttempts int, cooldown time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &LoginLimiter{redis: redisClient, maxAttempts: maxAttempts, cooldown: cooldown}
}

// Enforce counts an attempt and returns ErrLoginRateLimited once the budget
// is exceeded within the cooldown window.
func (l *LoginLimiter) Enforce(ctx context.Context, identifier string) error {
	if l == nil || l.redis == nil {
		return nil
	}

	key := loginAttemptKey(identifier)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errLimiterUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", errLimiterUnavailable, err)
		}
	}
	if count > int64(l.maxAttempts) {
		return ErrLoginRateLimited
	}
	return nil
}

// Reset clears the attempt counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, identifier string) {
	if l == nil || l.redis == nil {
		return
	}
	_ = l.redis.Del(ctx, loginAttemptKey(identifier)).Err()
}

func loginAttemptKey(identifier string) string {
	return "login_attempts:" + identifier
}
