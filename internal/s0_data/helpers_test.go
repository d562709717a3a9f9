package s0_data

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/valuefinder/internal/contracts"
)

// countingSource records upstream calls
type countingSource struct {
	mu     sync.Mutex
	calls  map[string]int
	failOn map[string]bool
}

func newCountingSource() *countingSource {
	return &countingSource{calls: make(map[string]int), failOn: make(map[string]bool)}
}

func (s *countingSource) hit(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[key]++
	return s.calls[key]
}

func (s *countingSource) FetchFundamentals(_ context.Context, ticker string) (*contracts.Fundamentals, error) {
	s.hit(ticker)
	if s.failOn[ticker] {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrDataUnavailable)
	}
	f := contracts.NewFundamentals(ticker, ticker, "Technology")
	f.Price = contracts.Some(10)
	return f, nil
}

func (s *countingSource) FetchPriceSeries(_ context.Context, ticker string, from, _ time.Time) ([]contracts.PricePoint, error) {
	s.hit("series:" + ticker)
	if s.failOn[ticker] {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrDataUnavailable)
	}
	return []contracts.PricePoint{{Date: from, Close: contracts.Some(100)}}, nil
}

// fakeClock advances only when slept on
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return ctx.Err()
}
