package backtest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/valuefinder/internal/contracts"
)

func TestReplay_DrawdownScenario(t *testing.T) {
	series := seriesOf(padded(6, 100, 110, 90, 95, 130)...)
	require.Len(t, series, 30)

	perf, err := NewSimulator(30, 10).Replay(series)
	require.NoError(t, err)

	assert.InDelta(t, 30.0, perf.TotalReturn, 1e-9)
	assert.InDelta(t, -18.1818, perf.MaxDrawdown, 1e-3)
	assert.Equal(t, 30, perf.Observations)
	assert.Equal(t, 29, perf.Returns)
	assert.Greater(t, perf.Volatility, 0.0)
	assert.InDelta(t, perf.TotalReturn/perf.Volatility, perf.ReturnToVolatility, 1e-9)

	rec := perf.Record("XYZ", 2)
	assert.Equal(t, -18.18, rec.MaxDrawdown)
	assert.Equal(t, 30.0, rec.TotalReturn)
	assert.Equal(t, 100.0, rec.StartPrice)
	assert.Equal(t, 130.0, rec.EndPrice)
	assert.Equal(t, series[0].Date, rec.StartDate)
	assert.Equal(t, refDate, rec.EndDate)
	assert.Equal(t, 2, rec.HorizonYears)
}

func TestReplay_DrawdownBounds(t *testing.T) {
	crash := make([]float64, 40)
	for i := range crash {
		crash[i] = 100 * math.Pow(0.7, float64(i)) // 거의 0까지 하락
	}
	up := make([]float64, 40)
	vShape := make([]float64, 40)
	for i := range up {
		up[i] = 10 + float64(i)
		vShape[i] = 10 + math.Abs(float64(i-20))
	}

	tests := []struct {
		name   string
		closes []float64
	}{
		{"crash to near zero", crash},
		{"monotone up", up},
		{"v shape", vShape},
		{"scenario", padded(6, 100, 110, 90, 95, 130)},
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		closes := make([]float64, 30+rng.Intn(200))
		price := 1 + rng.Float64()*100
		for j := range closes {
			price *= math.Exp(rng.NormFloat64() * 0.05)
			closes[j] = price
		}
		tests = append(tests, struct {
			name   string
			closes []float64
		}{"random walk", closes})
	}

	sim := NewSimulator(30, 10)
	for _, tt := range tests {
		perf, err := sim.Replay(seriesOf(tt.closes...))
		require.NoError(t, err, tt.name)

		assert.LessOrEqual(t, perf.MaxDrawdown, 0.0, tt.name)
		assert.GreaterOrEqual(t, perf.MaxDrawdown, -100.0, tt.name)

		rec := perf.Record("X", 3)
		assert.LessOrEqual(t, rec.MaxDrawdown, 0.0, tt.name)
		assert.GreaterOrEqual(t, rec.MaxDrawdown, -100.0, tt.name)
	}
}

func TestReplay_Gates(t *testing.T) {
	sim := NewSimulator(30, 10)

	withGaps := seriesOf(padded(40, 100)...)
	for i := 0; i < 40; i += 3 {
		withGaps[i].Close = contracts.None()
	}
	withGaps[1].Close = contracts.Malformed("N/A")

	tests := []struct {
		name   string
		series []contracts.PricePoint
	}{
		{"empty", nil},
		{"too short", seriesOf(padded(29, 100)...)},
		{"too few valid closes", withGaps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Replay(tt.series)
			assert.ErrorIs(t, err, contracts.ErrInsufficientData)
		})
	}
}

func TestReplay_MinReturns(t *testing.T) {
	// 관측치 게이트를 통과해도 수익률 개수가 부족하면 제외
	_, err := NewSimulator(5, 10).Replay(seriesOf(100, 101, 102, 103, 104, 105))
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestReplay_MissingValuesDropped(t *testing.T) {
	series := seriesOf(padded(12, 100, 120, 150)...)
	series[0].Close = contracts.None()
	series[len(series)-1].Close = contracts.None()

	perf, err := NewSimulator(30, 10).Replay(series)
	require.NoError(t, err)

	assert.Equal(t, 34, perf.Observations)
	assert.Equal(t, series[1].Date, perf.StartDate)
	assert.Equal(t, series[len(series)-2].Date, perf.EndDate)
	assert.InDelta(t, 50.0, perf.TotalReturn, 1e-9)
	assert.Equal(t, 0.0, perf.MaxDrawdown)
}

func TestReplay_FlatSeries(t *testing.T) {
	perf, err := NewSimulator(30, 10).Replay(seriesOf(padded(30, 50)...))
	require.NoError(t, err)

	assert.Equal(t, 0.0, perf.Volatility)
	assert.Equal(t, 0.0, perf.ReturnToVolatility)
	assert.Equal(t, 0.0, perf.MaxDrawdown)
	assert.Equal(t, 0.0, perf.TotalReturn)
}

func TestStddevIsSample(t *testing.T) {
	// 표본 표준편차: [1,2,3,4] → sqrt(1.6667)
	assert.InDelta(t, math.Sqrt(5.0/3.0), stddev([]float64{1, 2, 3, 4}), 1e-12)
	assert.Equal(t, 0.0, stddev([]float64{1}))
}
