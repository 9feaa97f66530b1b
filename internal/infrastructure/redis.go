package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis for leaderboard caching. Returns nil when
// no address is configured; callers treat a nil client as "caching disabled".
func NewRedisClient(config *RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if config.Addr == "" {
		logger.Info("Redis not configured, leaderboard caching disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connection established",
		zap.String("addr", config.Addr),
		zap.Int("db", config.DB),
	)
	return client, nil
}
