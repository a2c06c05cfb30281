package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/bezem-backend/internal/config"
)

// redisReadTimeout must stay above worker.PollTimeout, otherwise the
// client cuts off the import worker's BLPop before Redis answers.
const redisReadTimeout = 10 * time.Second

// NewRedisClient connects the client used for the import queue, job state,
// progress Pub/Sub and the read cache.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opt.ReadTimeout = redisReadTimeout
	if opt.ClientName == "" {
		opt.ClientName = ApplicationName
	}

	rdb := redis.NewClient(opt)
	if err := ping(ctx, func(ctx context.Context) error { return rdb.Ping(ctx).Err() }); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("component", "database").
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Redis connected")
	return rdb, nil
}
