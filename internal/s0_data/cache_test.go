package s0_data

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/pkg/metrics"
)

func TestRunCache_Fundamentals(t *testing.T) {
	src := newCountingSource()
	src.failOn["BAD"] = true
	reg := metrics.New()
	c := NewRunCache(src, src).WithMetrics(reg)
	ctx := context.Background()

	first, err := c.FetchFundamentals(ctx, "AAPL")
	require.NoError(t, err)
	second, err := c.FetchFundamentals(ctx, "AAPL")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, src.calls["AAPL"])

	// 실패는 캐시하지 않음
	_, err = c.FetchFundamentals(ctx, "BAD")
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
	_, _ = c.FetchFundamentals(ctx, "BAD")
	assert.Equal(t, 2, src.calls["BAD"])

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 3, misses)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.CacheRequests.WithLabelValues("run_fundamentals", "hit")))
	assert.Len(t, c.Snapshots(), 1)
}

func TestRunCache_SeriesKeyedByWindow(t *testing.T) {
	src := newCountingSource()
	c := NewRunCache(src, src)
	ctx := context.Background()

	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	from2y := to.AddDate(-2, 0, 0)
	from1y := to.AddDate(-1, 0, 0)

	_, err := c.FetchPriceSeries(ctx, "MSFT", from2y, to)
	require.NoError(t, err)
	_, err = c.FetchPriceSeries(ctx, "MSFT", from2y, to)
	require.NoError(t, err)
	_, err = c.FetchPriceSeries(ctx, "MSFT", from1y, to)
	require.NoError(t, err)

	assert.Equal(t, 2, src.calls["series:MSFT"])
}

func TestRunCache_Reset(t *testing.T) {
	src := newCountingSource()
	c := NewRunCache(src, nil)
	ctx := context.Background()

	_, _ = c.FetchFundamentals(ctx, "AAPL")
	c.Reset()
	_, _ = c.FetchFundamentals(ctx, "AAPL")

	assert.Equal(t, 2, src.calls["AAPL"])
	hits, misses := c.Stats()
	assert.Zero(t, hits)
	assert.Equal(t, 1, misses)

	_, err := c.FetchPriceSeries(ctx, "AAPL", time.Now(), time.Now())
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}
