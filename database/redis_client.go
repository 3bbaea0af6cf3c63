package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"eternal-mint/conf"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// Cache read-through cache used by the contract and CID proxies
type Cache interface {
	// Get reports hit=false on a miss or when caching is disabled
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// InitRedis initialize Redis client
func InitRedis() error {
	if !conf.Cfg.Redis.Enabled {
		log.Println("Redis cache is disabled")
		return nil
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", conf.Cfg.Redis.Host, conf.Cfg.Redis.Port),
		Password: conf.Cfg.Redis.Password,
		DB:       conf.Cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RedisClient.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Failed to connect to Redis: %v", err)
		log.Println("Redis cache will be disabled")
		RedisClient = nil
		return err
	}

	log.Printf("✅ Redis connected successfully: %s:%d (DB: %d, TTL: %ds)",
		conf.Cfg.Redis.Host, conf.Cfg.Redis.Port, conf.Cfg.Redis.DB, conf.Cfg.Redis.CacheTTL)
	return nil
}

// CloseRedis close Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// IsRedisEnabled check if Redis is enabled and connected
func IsRedisEnabled() bool {
	return RedisClient != nil && conf.Cfg != nil && conf.Cfg.Redis.Enabled
}

// DefaultCacheTTL configured TTL for contract reads
func DefaultCacheTTL() time.Duration {
	if conf.Cfg == nil || conf.Cfg.Redis.CacheTTL <= 0 {
		return 30 * time.Second
	}
	return time.Duration(conf.Cfg.Redis.CacheTTL) * time.Second
}

// SetCache set cache with TTL; ttl 0 keeps the key forever
func SetCache(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !IsRedisEnabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := RedisClient.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("⚠️  Failed to set cache for key %s: %v", key, err)
		return err
	}
	return nil
}

// GetCache get cache by key, redis.Nil on miss
func GetCache(ctx context.Context, key string, dest interface{}) error {
	if !IsRedisEnabled() {
		return redis.Nil
	}

	data, err := RedisClient.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return nil
}

// DeleteCache delete cache by key
func DeleteCache(ctx context.Context, key string) error {
	if !IsRedisEnabled() {
		return nil
	}

	if err := RedisClient.Del(ctx, key).Err(); err != nil {
		log.Printf("⚠️  Failed to delete cache for key %s: %v", key, err)
		return err
	}
	return nil
}

// RedisCache Cache backed by the global Redis client
type RedisCache struct{}

func (RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	err := GetCache(ctx, key, dest)
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return SetCache(ctx, key, value, ttl)
}
