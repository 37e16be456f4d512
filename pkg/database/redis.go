package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis key prefixes for organization
const (
	KeyPrefixRateLimit = "ratelimit:"
	KeyPrefixPageCache = "pagecache:"
)

func NewRedisClient(redisURL string) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Msg("Connected to Redis")

	return client, nil
}

// IncrementRateLimit bumps the request counter for a key within a fixed window.
func IncrementRateLimit(ctx context.Context, client *redis.Client, key string, window time.Duration) (int64, error) {
	fullKey := KeyPrefixRateLimit + key
	pipe := client.Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, window)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// GetCachedPage returns a cached leaderboard page, or "" on miss.
func GetCachedPage(ctx context.Context, client *redis.Client, key string) (string, error) {
	val, err := client.Get(ctx, KeyPrefixPageCache+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to read page cache")
		return "", err
	}
	return val, nil
}

// SetCachedPage stores a rendered leaderboard page with a TTL.
func SetCachedPage(ctx context.Context, client *redis.Client, key, value string, ttl time.Duration) error {
	return client.Set(ctx, KeyPrefixPageCache+key, value, ttl).Err()
}
