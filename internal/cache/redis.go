package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/cooklang/cooklang-import/internal/importer"
)

const keyPrefix = "import:result:"

// RedisStore keeps results in Redis. Redis failures are logged and treated
// as misses.
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient connects to redisURL with tracing and metrics enabled.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		slog.Warn("Failed to instrument Redis tracing", "error", err)
	}
	if err := redisotel.InstrumentMetrics(client); err != nil {
		slog.Warn("Failed to instrument Redis metrics", "error", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*importer.Result, error) {
	if s.client == nil {
		return nil, nil
	}

	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		slog.Warn("Redis cache get failed", "error", err)
		return nil, nil
	}

	var result importer.Result
	if err := json.Unmarshal(data, &result); err != nil {
		slog.Warn("Failed to unmarshal cached result", "error", err)
		return nil, nil
	}
	return &result, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, result *importer.Result, ttl time.Duration) error {
	if s.client == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		slog.Warn("Redis cache set failed", "error", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		slog.Warn("Redis cache delete failed", "error", err)
	}
	return nil
}

// Wrap puts a Redis-backed cache in front of next. A zero ttl or empty
// redisURL returns next unchanged. The returned func closes the connection.
func Wrap(next Importer, redisURL string, ttl time.Duration) (Importer, func() error, error) {
	if ttl <= 0 || redisURL == "" {
		return next, func() error { return nil }, nil
	}
	client, err := NewRedisClient(redisURL)
	if err != nil {
		return nil, nil, err
	}
	return NewCachingImporter(next, NewRedisStore(client), ttl), client.Close, nil
}
