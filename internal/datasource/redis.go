package datasource

import (
	"bytes"
	"context"
	"encoding/gob"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"spirits-dashboard/internal/config"
	"spirits-dashboard/internal/models"
)

const (
	redisKeyPrefix  = "spirits:tables:"
	defaultRedisTTL = 24 * time.Hour
)

// RedisCache shares parsed tables between processes reading the same files.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(ctx context.Context, cfg config.CacheConfig) (*RedisCache, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	addr := cfg.RedisAddr
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	return &redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.Tables, bool, error) {
	payload, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var tables models.Tables
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&tables); err != nil {
		return nil, false, fmt.Errorf("decode cached tables: %w", err)
	}
	return &tables, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, tables *models.Tables) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(tables); err != nil {
		return fmt.Errorf("encode tables: %w", err)
	}
	return c.client.Set(ctx, redisKeyPrefix+key, buf.Bytes(), c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
