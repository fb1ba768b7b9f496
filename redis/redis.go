package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(redisAddress string) (*RedisClient, error) {
	r := redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})

	ctx := context.Background()
	_, err := r.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: r}, nil
}

// NewWithClient wraps an existing client, e.g. a redismock one.
func NewWithClient(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

func (r *RedisClient) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error reading %s from Redis: %w", key, err)
	}
	return value, true, nil
}

func (r *RedisClient) Set(ctx context.Context, key string, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("error writing %s to Redis: %w", key, err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
