package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/valuefinder/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := NewFromAddr(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestNewClient_Disabled(t *testing.T) {
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestDisabledClientIsNoop(t *testing.T) {
	client := Disabled()
	ctx := context.Background()

	allowed, remaining, err := NewRateLimiter(client, "test").Allow(ctx, YahooRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, YahooRateLimit.Limit, remaining)

	cache := NewCache(client, "test")
	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Set(ctx, "key", "v", time.Minute))
}

func TestCache_RoundTrip(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewCache(client, "vf")
	ctx := context.Background()

	type payload struct {
		Ticker string  `json:"ticker"`
		Score  float64 `json:"score"`
	}

	var got payload
	found, err := cache.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, LatestScreeningKey(), payload{"AAPL", 72.5}, TTLMedium))
	assert.True(t, mr.Exists("vf:cache:screening:latest"))

	found, err = cache.Get(ctx, LatestScreeningKey(), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{"AAPL", 72.5}, got)

	mr.FastForward(TTLMedium + time.Second)
	found, _ = cache.Get(ctx, LatestScreeningKey(), &got)
	assert.False(t, found, "entry should expire")

	require.NoError(t, cache.Set(ctx, "x", 1, time.Minute))
	require.NoError(t, cache.Delete(ctx, "x"))
	assert.False(t, mr.Exists("vf:cache:x"))
}

func TestCache_GetOrSet(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewCache(client, "vf")
	ctx := context.Background()

	calls := 0
	load := func() (interface{}, error) {
		calls++
		return map[string]int{"n": 42}, nil
	}

	var got map[string]int
	require.NoError(t, cache.GetOrSet(ctx, "k", &got, time.Minute, load))
	require.NoError(t, cache.GetOrSet(ctx, "k", &got, time.Minute, load))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 42, got["n"])

	err := cache.GetOrSet(ctx, "other", &got, time.Minute, func() (interface{}, error) {
		return nil, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	client, _ := newTestClient(t)
	limiter := NewRateLimiter(client, "vf")
	ctx := context.Background()
	cfg := RateLimitConfig{Key: "t", Limit: 3, Window: time.Minute}

	for i := 0; i < 3; i++ {
		allowed, remaining, err := limiter.Allow(ctx, cfg)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 2-i, remaining)
	}

	allowed, _, err := limiter.Allow(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, allowed)

	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, limiter.Wait(waitCtx, cfg), context.DeadlineExceeded)
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"latest", LatestScreeningKey(), "screening:latest"},
		{"run", ScreeningRunKey("abc"), "screening:run:abc"},
		{"analysis", AnalysisKey("aapl", "2026-01-15"), "analysis:AAPL:2026-01-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}

	cfg, ok := ProviderRateLimit("finviz")
	assert.True(t, ok)
	assert.Equal(t, FinvizRateLimit, cfg)
	_, ok = ProviderRateLimit("bloomberg")
	assert.False(t, ok)
}
