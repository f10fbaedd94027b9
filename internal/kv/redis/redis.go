package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/tvandenbrink/tafel-racer/internal/kv"
	"github.com/tvandenbrink/tafel-racer/internal/logger"
)

type Options struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix is prepended to every key so several deployments can share one Redis.
	KeyPrefix string
}

type store struct {
	client *goredis.Client
	prefix string
}

// Open connects to Redis and verifies the connection with a PING.
func Open(opts Options) (kv.Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Default().WithPrefix("kv_redis").Info("connected to redis at %s", opts.Addr)

	return &store{client: client, prefix: opts.KeyPrefix}, nil
}

func (s *store) key(k string) string {
	return s.prefix + k
}

func (s *store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("kv_redis").Error("failed to get key %s: %v", key, err)
		return "", false, err
	}
	return v, true, nil
}

func (s *store) Set(ctx context.Context, key, value string) error {
	err := s.client.Set(ctx, s.key(key), value, 0).Err()
	if err != nil {
		logger.FromContext(ctx).WithPrefix("kv_redis").Error("failed to set key %s: %v", key, err)
	}
	return err
}

func (s *store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.client.Del(ctx, full...).Err()
}

func (s *store) Close() error {
	return s.client.Close()
}
