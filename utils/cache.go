// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"clinicbook/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient backs the catalog read-through cache. Nil when Redis is not configured.
var CacheClient *redis.Client

// InitCache connects the catalog cache client when REDIS_ADDR is set.
func InitCache() error {
	if config.AppConfig.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis (Cache): %w", err)
	}
	CacheClient = client
	return nil
}

// GetCacheClient returns the cache client, which may be nil.
func GetCacheClient() *redis.Client {
	return CacheClient
}
