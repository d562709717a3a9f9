package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/valuefinder/internal/contracts"
)

// Simulator replays one daily close series and measures its performance
type Simulator struct {
	minObservations int
	minReturns      int
}

// NewSimulator creates a simulator with the given validation gates
func NewSimulator(minObservations, minReturns int) *Simulator {
	return &Simulator{
		minObservations: minObservations,
		minReturns:      minReturns,
	}
}

// observation is a cleaned series point
type observation struct {
	date  time.Time
	close float64
}

// Performance holds full-precision results; rounding happens in Record
type Performance struct {
	StartDate          time.Time
	EndDate            time.Time
	StartPrice         float64
	EndPrice           float64
	TotalReturn        float64 // %
	Volatility         float64 // %, sample stddev of daily returns, not annualised
	MaxDrawdown        float64 // %, <= 0
	ReturnToVolatility float64
	Observations       int
	Returns            int
}

// Replay validates the series and computes every metric.
// Gate failures wrap contracts.ErrInsufficientData.
func (s *Simulator) Replay(series []contracts.PricePoint) (*Performance, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: empty price series", contracts.ErrInsufficientData)
	}
	if len(series) < s.minObservations {
		return nil, fmt.Errorf("%w: %d observations, need %d", contracts.ErrInsufficientData, len(series), s.minObservations)
	}

	obs := clean(series)
	if len(obs) < s.minObservations {
		return nil, fmt.Errorf("%w: %d valid closes, need %d", contracts.ErrInsufficientData, len(obs), s.minObservations)
	}

	returns := dailyReturns(obs)
	if len(returns) < s.minReturns {
		return nil, fmt.Errorf("%w: %d daily returns, need %d", contracts.ErrInsufficientData, len(returns), s.minReturns)
	}

	first, last := obs[0], obs[len(obs)-1]
	perf := &Performance{
		StartDate:    first.date,
		EndDate:      last.date,
		StartPrice:   first.close,
		EndPrice:     last.close,
		TotalReturn:  (last.close - first.close) / first.close * 100,
		Volatility:   stddev(returns) * 100,
		MaxDrawdown:  maxDrawdown(obs),
		Observations: len(obs),
		Returns:      len(returns),
	}

	// 무위험수익률/연율화 없음: 단순 수익률 대비 변동성
	if perf.Volatility > 0 {
		perf.ReturnToVolatility = perf.TotalReturn / perf.Volatility
	}

	return perf, nil
}

// Record rounds the performance to 2 dp for output
func (p *Performance) Record(ticker string, years int) contracts.BacktestRecord {
	return contracts.BacktestRecord{
		Ticker:             ticker,
		HorizonYears:       years,
		StartPrice:         contracts.Round2(p.StartPrice),
		EndPrice:           contracts.Round2(p.EndPrice),
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		TotalReturn:        contracts.Round2(p.TotalReturn),
		Volatility:         contracts.Round2(p.Volatility),
		MaxDrawdown:        contracts.Round2(p.MaxDrawdown),
		ReturnToVolatility: contracts.Round2(p.ReturnToVolatility),
		Observations:       p.Observations,
	}
}

// clean drops missing, malformed and non-positive closes
func clean(series []contracts.PricePoint) []observation {
	obs := make([]observation, 0, len(series))
	for _, p := range series {
		v, ok := p.Close.Get()
		if !ok || v <= 0 {
			continue
		}
		obs = append(obs, observation{date: p.Date, close: v})
	}
	return obs
}

func dailyReturns(obs []observation) []float64 {
	if len(obs) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(obs)-1)
	for i := 1; i < len(obs); i++ {
		returns = append(returns, obs[i].close/obs[i-1].close-1)
	}
	return returns
}

// stddev is the sample standard deviation (n-1)
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values) - 1)

	return math.Sqrt(variance)
}

// maxDrawdown returns min((P - runningMax) / runningMax * 100), never positive
func maxDrawdown(obs []observation) float64 {
	if len(obs) == 0 {
		return 0
	}

	worst := 0.0
	peak := obs[0].close
	for _, o := range obs {
		if o.close > peak {
			peak = o.close
		}
		if dd := (o.close - peak) / peak * 100; dd < worst {
			worst = dd
		}
	}
	return worst
}
