package backtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/valuefinder/internal/contracts"
)

var refDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

// seriesOf builds daily points ending at refDate; NaN-free, every close present
func seriesOf(closes ...float64) []contracts.PricePoint {
	start := refDate.AddDate(0, 0, -len(closes)+1)
	out := make([]contracts.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = contracts.PricePoint{Date: start.AddDate(0, 0, i), Close: contracts.Some(c)}
	}
	return out
}

// padded repeats each level n times
func padded(n int, levels ...float64) []float64 {
	out := make([]float64, 0, n*len(levels))
	for _, l := range levels {
		for i := 0; i < n; i++ {
			out = append(out, l)
		}
	}
	return out
}

type fakePrices struct {
	mu      sync.Mutex
	series  map[string][]contracts.PricePoint
	windows map[string][2]time.Time
}

func newFakePrices() *fakePrices {
	return &fakePrices{
		series:  make(map[string][]contracts.PricePoint),
		windows: make(map[string][2]time.Time),
	}
}

func (f *fakePrices) FetchPriceSeries(_ context.Context, ticker string, from, to time.Time) ([]contracts.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows[ticker] = [2]time.Time{from, to}

	s, ok := f.series[ticker]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrDataUnavailable)
	}
	return s, nil
}

func candidates(tickers ...string) []contracts.ScreeningRecord {
	out := make([]contracts.ScreeningRecord, len(tickers))
	for i, t := range tickers {
		out[i] = contracts.ScreeningRecord{Ticker: t, DiscountPct: float64(10 * (len(tickers) - i))}
	}
	return out
}
