package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hirelens-labs/screener-api/pkg/ai"
)

// ResultCache memoises evaluation results for identical normalized answers.
// Cache faults are never surfaced; a failed read is a miss and a failed write
// is logged and ignored.
type ResultCache interface {
	Get(ctx context.Context, answer string) (ai.Result, bool)
	Set(ctx context.Context, answer string, result ai.Result)
}

type redisResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisResultCache builds a Redis-backed result cache with the given TTL.
func NewRedisResultCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) ResultCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &redisResultCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "result_cache").Logger(),
	}
}

func (c *redisResultCache) Get(ctx context.Context, answer string) (ai.Result, bool) {
	cached, err := c.client.Get(ctx, cacheKey(answer)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("failed to read evaluation cache")
		}
		return ai.Result{}, false
	}

	var result ai.Result
	if err := json.Unmarshal([]byte(cached), &result); err != nil {
		c.logger.Warn().Err(err).Msg("discarding malformed cache entry")
		return ai.Result{}, false
	}

	return result, true
}

func (c *redisResultCache) Set(ctx context.Context, answer string, result ai.Result) {
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, cacheKey(answer), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store evaluation cache")
	}
}

// cacheKey hashes the normalized answer so arbitrarily long free text maps to
// a fixed-size key.
func cacheKey(answer string) string {
	digest := sha256.Sum256([]byte(answer))
	return "screener:eval:" + hex.EncodeToString(digest[:])
}
