package infra

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis using the configured URL.
// Returns nil when Redis is disabled; callers treat a nil client as
// cache-off and fall through to Postgres.
func NewRedisClient(ctx context.Context, cfg *Config, logger *slog.Logger) (*redis.Client, error) {
	if !cfg.RedisEnabled {
		logger.Info("redis disabled")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("redis connected", "addr", opts.Addr)
	return client, nil
}
