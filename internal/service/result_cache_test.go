package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/hirelens-labs/screener-api/pkg/ai"
)

func newTestCache(t *testing.T) (ResultCache, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisResultCache(client, time.Minute, testLogger()), server
}

func TestResultCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "answer")
	require.False(t, ok)

	stored := ai.Result{Score: 4, Summary: "Good answer.", Improvement: "Add metrics."}
	cache.Set(ctx, "answer", stored)

	cached, ok := cache.Get(ctx, "answer")
	require.True(t, ok)
	require.Equal(t, stored, cached)

	// A different answer hashes to a different key.
	_, ok = cache.Get(ctx, "other answer")
	require.False(t, ok)
}

func TestResultCacheMalformedEntryIsMiss(t *testing.T) {
	cache, server := newTestCache(t)

	require.NoError(t, server.Set(cacheKey("answer"), "not json"))

	_, ok := cache.Get(context.Background(), "answer")
	require.False(t, ok)
}

func TestEvaluateUsesCachedResult(t *testing.T) {
	cache, _ := newTestCache(t)
	remote := &remoteStub{response: `{"score": 4, "summary": "Cached summary.", "improvement": "Cached tip."}`}
	svc := newService(remote, cache, nil)

	text := "Candidate says: I would shard the database."
	first := svc.Evaluate(context.Background(), text)
	require.Equal(t, 1, remote.callCount())

	// Identical normalized text is served from the cache.
	second := svc.Evaluate(context.Background(), "I would shard the database.")
	require.Equal(t, first, second)
	require.Equal(t, 1, remote.callCount())
}

func TestFallbackResultsAreCachedToo(t *testing.T) {
	cache, _ := newTestCache(t)
	remote := &remoteStub{err: context.DeadlineExceeded}
	svc := newService(remote, cache, nil)

	svc.Evaluate(context.Background(), "some answer")
	svc.Evaluate(context.Background(), "some answer")

	// The second call is a cache hit, so only one remote attempt was made.
	require.Equal(t, 1, remote.callCount())
}
