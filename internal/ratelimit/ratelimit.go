// Package ratelimit implements fixed-window request limits backed by Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

type Config struct {
	Limit     int
	Window    time.Duration
	KeyPrefix string
}

// Decision describes the state of a subject's window after one hit.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter rounds the time until the window resets up to whole seconds.
func (d Decision) RetryAfter(now time.Time) int {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return 1
	}
	seconds := int(wait / time.Second)
	if wait%time.Second != 0 {
		seconds++
	}
	return seconds
}

type counter interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type Limiter struct {
	counter counter
	config  Config
	now     func() time.Time
}

func New(client *redis.Client, cfg Config) *Limiter {
	return newLimiter(redisCounter{client: client}, cfg)
}

func newLimiter(c counter, cfg Config) *Limiter {
	return &Limiter{
		counter: c,
		config:  cfg,
		now:     time.Now,
	}
}

func (l *Limiter) Config() Config {
	return l.config
}

// Allow records one hit for subject and reports whether it fits the window.
func (l *Limiter) Allow(ctx context.Context, subject string) (Decision, error) {
	windowStart := l.now().Truncate(l.config.Window)
	key := fmt.Sprintf("%s:%s:%d", l.config.KeyPrefix, subject, windowStart.Unix())

	count, err := l.counter.Increment(ctx, key, l.config.Window)
	if err != nil {
		return Decision{}, err
	}

	remaining := l.config.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   int(count) <= l.config.Limit,
		Limit:     l.config.Limit,
		Remaining: remaining,
		ResetAt:   windowStart.Add(l.config.Window),
	}, nil
}

type redisCounter struct {
	client *redis.Client
}

func (c redisCounter) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// NewClient parses a redis:// URL and verifies the server answers.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
