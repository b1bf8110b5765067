package config

import (
	"context"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisClient is nil when no REDIS_ADDR was configured.
var RedisClient *redis.Client

// InitRedis connects to Redis when an address is configured.
func InitRedis(s Settings) {
	if s.RedisAddr == "" {
		return
	}
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     s.RedisAddr,
		Password: s.RedisPassword,
		DB:       s.RedisDB,
	})

	pong, err := RedisClient.Ping(context.Background()).Result()
	if err != nil {
		Logger.Fatal("Error connecting to Redis", zap.Error(err))
	}
	Logger.Info("✅ Connected to Redis", zap.String("ping", pong))
}
