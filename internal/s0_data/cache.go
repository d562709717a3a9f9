package s0_data

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/pkg/metrics"
)

// RunCache memoizes fetches for the lifetime of one run (screen + backtest).
// Failures are not cached.
// ⭐ SSOT: 실행 단위 캐시 (프로세스 전역 상태 없음)
type RunCache struct {
	fundamentals contracts.FundamentalsSource
	prices       contracts.PriceSource

	mu        sync.Mutex
	snapshots map[string]*contracts.Fundamentals
	series    map[string][]contracts.PricePoint
	hits      int
	misses    int

	metrics *metrics.Registry
}

// NewRunCache wraps the given sources (either may be nil)
func NewRunCache(f contracts.FundamentalsSource, p contracts.PriceSource) *RunCache {
	return &RunCache{
		fundamentals: f,
		prices:       p,
		snapshots:    make(map[string]*contracts.Fundamentals),
		series:       make(map[string][]contracts.PricePoint),
	}
}

// WithMetrics attaches a metrics registry
func (c *RunCache) WithMetrics(m *metrics.Registry) *RunCache {
	c.metrics = m
	return c
}

// FetchFundamentals implements contracts.FundamentalsSource
func (c *RunCache) FetchFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	c.mu.Lock()
	f, ok := c.snapshots[ticker]
	c.record("fundamentals", ok)
	c.mu.Unlock()
	if ok {
		return f, nil
	}

	if c.fundamentals == nil {
		return nil, fmt.Errorf("no fundamentals source: %w", contracts.ErrDataUnavailable)
	}
	f, err := c.fundamentals.FetchFundamentals(ctx, ticker)
	if err != nil || f == nil {
		return f, err
	}

	c.mu.Lock()
	c.snapshots[ticker] = f
	c.mu.Unlock()
	return f, nil
}

// FetchPriceSeries implements contracts.PriceSource; keyed by ticker and window
func (c *RunCache) FetchPriceSeries(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PricePoint, error) {
	key := seriesKey(ticker, from, to)

	c.mu.Lock()
	s, ok := c.series[key]
	c.record("prices", ok)
	c.mu.Unlock()
	if ok {
		return s, nil
	}

	if c.prices == nil {
		return nil, fmt.Errorf("no price source: %w", contracts.ErrDataUnavailable)
	}
	s, err := c.prices.FetchPriceSeries(ctx, ticker, from, to)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.series[key] = s
	c.mu.Unlock()
	return s, nil
}

// Snapshots returns the cached fundamentals
func (c *RunCache) Snapshots() []*contracts.Fundamentals {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*contracts.Fundamentals, 0, len(c.snapshots))
	for _, f := range c.snapshots {
		out = append(out, f)
	}
	return out
}

// Stats returns hit and miss counts since the last Reset
func (c *RunCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Reset drops everything; call between runs
func (c *RunCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshots = make(map[string]*contracts.Fundamentals)
	c.series = make(map[string][]contracts.PricePoint)
	c.hits, c.misses = 0, 0
}

// record must be called with mu held
func (c *RunCache) record(kind string, hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.metrics.RecordCache("run_"+kind, hit)
}

func seriesKey(ticker string, from, to time.Time) string {
	return ticker + "|" + from.Format("2006-01-02") + "|" + to.Format("2006-01-02")
}
