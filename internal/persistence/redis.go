package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/config"
)

// Redis wraps an optional go-redis client. The engine only uses it as a
// holiday-set cache, so running without one is fine; lookups fall through
// to postgres.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects when an address is configured. With no address the
// returned wrapper carries a nil client and the cache stays disabled.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Info("redis not configured; holiday cache disabled")
		return &Redis{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis; holiday cache degraded", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}
	return &Redis{Client: client}
}

// Close closes the client when one exists.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
