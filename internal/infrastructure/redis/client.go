package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewClient creates a new Redis client.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// Connect retries NewClient with exponential backoff until maxWait elapses.
func Connect(ctx context.Context, redisURL string, maxWait time.Duration, log zerolog.Logger) (*redis.Client, error) {
	if _, err := redis.ParseURL(redisURL); err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 3 * time.Second
	b.MaxElapsedTime = maxWait

	return backoff.RetryNotifyWithData(func() (*redis.Client, error) {
		return NewClient(ctx, redisURL)
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		log.Warn().Err(err).Dur("retry_in", next).Msg("redis not ready")
	})
}
