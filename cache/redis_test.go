package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studentaid/assessment-engine/cache"
	"github.com/studentaid/assessment-engine/config"
	"github.com/studentaid/assessment-engine/engine"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *cache.ResultCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, cache.NewResultCache(client, time.Minute, zap.NewNop())
}

func sampleResult() engine.AssessmentResult {
	return engine.AssessmentResult{
		ApplicationID: "app-1",
		ProgramYear:   "2024-2025",
		Intensity:     engine.PartTime,
		Awards: []engine.AwardResult{{
			Code:                engine.AwardBCAG,
			Kind:                engine.KindGrant,
			Eligible:            true,
			ProvincialNetAmount: engine.Dollars(700),
		}},
	}
}

func TestResultCache_SetThenGet(t *testing.T) {
	ctx := context.Background()
	_, c := setupTestRedis(t)

	require.NoError(t, c.Set(ctx, "abc", sampleResult()))
	got, err := c.Get(ctx, "abc")

	require.NoError(t, err)
	bcag, ok := got.Award(engine.AwardBCAG)
	require.True(t, ok)
	assert.True(t, bcag.ProvincialNetAmount.Equal(engine.Dollars(700)))
}

func TestResultCache_MissAndExpiry(t *testing.T) {
	ctx := context.Background()
	mr, c := setupTestRedis(t)

	_, err := c.Get(ctx, "unknown")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "abc", sampleResult()))
	mr.FastForward(2 * time.Minute)

	_, err = c.Get(ctx, "abc")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestResultCache_CorruptPayloadIsMiss(t *testing.T) {
	mr, c := setupTestRedis(t)
	require.NoError(t, mr.Set(cache.Key("abc"), "{not json"))

	_, err := c.Get(context.Background(), "abc")

	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestResultCache_Flush(t *testing.T) {
	ctx := context.Background()
	mr, c := setupTestRedis(t)
	require.NoError(t, c.Set(ctx, "a", sampleResult()))
	require.NoError(t, c.Set(ctx, "b", sampleResult()))
	require.NoError(t, mr.Set("other", "kept"))

	require.NoError(t, c.Flush(ctx))

	assert.False(t, mr.Exists(cache.Key("a")))
	assert.False(t, mr.Exists(cache.Key("b")))
	assert.True(t, mr.Exists("other"))
}

func TestResultCache_NilClientIsDisabled(t *testing.T) {
	c := cache.NewResultCache(nil, time.Minute, nil)

	assert.NoError(t, c.Set(context.Background(), "abc", sampleResult()))
	_, err := c.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestNewRedis_PingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := cache.NewRedis(config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	mr.Close()
	_, err = cache.NewRedis(config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}
