// Package cache keeps assessment results in redis, keyed by input digest.
//
// An assessment is a pure function of its input and program-year config, so
// an identical request within the TTL can be answered from the cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/studentaid/assessment-engine/config"
	"github.com/studentaid/assessment-engine/engine"
)

const keyPrefix = "assessment:result:"

var ErrCacheMiss = errors.New("cache miss")

// NewRedis returns a configured Redis client after a successful ping.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// ResultCache stores AssessmentResult JSON. A nil client turns every Get
// into a miss and every Set into a no-op.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewResultCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ResultCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultCache{client: client, ttl: ttl, logger: logger}
}

func Key(digest string) string { return keyPrefix + digest }

func (c *ResultCache) Get(ctx context.Context, digest string) (engine.AssessmentResult, error) {
	var result engine.AssessmentResult
	if c == nil || c.client == nil {
		return result, ErrCacheMiss
	}

	raw, err := c.client.Get(ctx, Key(digest)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return result, ErrCacheMiss
		}
		return result, fmt.Errorf("redis get %s: %w", digest, err)
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		// A payload from an older build is treated as a miss and overwritten.
		c.logger.Warn("discarding unreadable cached result", zap.String("digest", digest), zap.Error(err))
		return result, ErrCacheMiss
	}

	return result, nil
}

func (c *ResultCache) Set(ctx context.Context, digest string, result engine.AssessmentResult) error {
	if c == nil || c.client == nil {
		return nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal cached result %s: %w", digest, err)
	}

	if err := c.client.Set(ctx, Key(digest), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", digest, err)
	}

	return nil
}

// Flush drops every cached result, used after program-year config reloads.
func (c *ResultCache) Flush(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := c.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", keyPrefix, err)
	}

	return nil
}
