package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"portfolioapi/internal/config"
)

// RedisStore keeps each key as a plain Redis string. SET replaces the value atomically.
type RedisStore struct {
	inner *redis.Client
}

var _ BlobStore = (*RedisStore)(nil)

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(cfg config.RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{inner: client}, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{inner: client}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.inner.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (r *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	return r.inner.Set(ctx, key, data, 0).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.inner.Del(ctx, key).Err()
}

// Ping sends PING.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx).Err()
}

// Close closes the client.
func (r *RedisStore) Close() error {
	if r == nil || r.inner == nil {
		return nil
	}
	return r.inner.Close()
}
