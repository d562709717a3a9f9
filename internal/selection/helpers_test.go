package selection

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/strategyconfig"
	"github.com/wonny/valuefinder/pkg/logger"
)

// fakeSource serves canned snapshots; unknown tickers fail
type fakeSource struct {
	mu       sync.Mutex
	data     map[string]*contracts.Fundamentals
	delay    map[string]time.Duration
	requests []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		data:  make(map[string]*contracts.Fundamentals),
		delay: make(map[string]time.Duration),
	}
}

func (s *fakeSource) add(f *contracts.Fundamentals) *fakeSource {
	s.data[f.Ticker] = f
	return s
}

func (s *fakeSource) FetchFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	s.mu.Lock()
	s.requests = append(s.requests, ticker)
	d := s.delay[ticker]
	s.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f, ok := s.data[ticker]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrDataUnavailable)
	}
	return f, nil
}

// healthyStock passes every quality check and lands in the Low risk tier
func healthyStock(ticker string, price float64) *contracts.Fundamentals {
	f := contracts.NewFundamentals(ticker, ticker+" Inc", "Industrials")
	f.Price = contracts.Some(price)
	f.EPS = contracts.Some(5)
	f.BookValue = contracts.Some(50)
	f.LongTermDebt = contracts.Some(100)
	f.OperatingCashFlow = contracts.Some(50)
	f.ROE = contracts.Some(0.20)
	f.ProfitMargin = contracts.Some(0.10)
	f.CurrentRatio = contracts.Some(1.2)
	f.DebtToEquity = contracts.Some(0.3)
	return f
}

func newTestScreener(t *testing.T, mutate func(*strategyconfig.Config)) *Screener {
	t.Helper()
	cfg := strategyconfig.Default()
	if mutate != nil {
		mutate(cfg)
	}
	s, err := NewScreenerFromConfig(cfg, logger.NewNop())
	require.NoError(t, err)
	return s
}
