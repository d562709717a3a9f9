package s2_signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/strategyconfig"
	"github.com/wonny/valuefinder/pkg/logger"
)

func newValueCalc(t *testing.T) *ValueFactorCalculator {
	t.Helper()
	calc, err := NewValueFactorCalculator(strategyconfig.Default().ValueFactors, logger.NewNop())
	require.NoError(t, err)
	return calc
}

func withRatios(pe, pb, ev, de, roe contracts.Metric) *contracts.Fundamentals {
	f := snapshot("other", 60, 5, 50)
	f.PE = pe
	f.PriceToBook = pb
	f.EVToEBITDA = ev
	f.DebtToEquity = de
	f.ROE = roe
	return f
}

func TestScore_BestBands(t *testing.T) {
	calc := newValueCalc(t)

	vs := calc.Score(withRatios(contracts.Some(10), contracts.Some(0.8), contracts.Some(6), contracts.Some(0.3), contracts.Some(0.2)))

	// 예약 팩터(0.35)는 항상 0점
	assert.InDelta(t, 65.0, vs.Total, 1e-9)
	assert.Equal(t, RatingHold, vs.Rating)
	assert.Len(t, vs.Strengths, 5)
	assert.Empty(t, vs.Warnings)
	assert.Equal(t, 100.0, vs.Components[FactorPE])
	assert.Equal(t, 0.0, vs.Components[FactorDividendYield])
}

func TestScore_MiddleBands(t *testing.T) {
	calc := newValueCalc(t)

	vs := calc.Score(withRatios(contracts.Some(20), contracts.Some(2), contracts.Some(13), contracts.Some(1.2), contracts.Some(0.07)))

	assert.Equal(t, 70.0, vs.Components[FactorPE])
	assert.Equal(t, 50.0, vs.Components[FactorPriceToBook])
	assert.Equal(t, 50.0, vs.Components[FactorEVToEBITDA])
	assert.Equal(t, 50.0, vs.Components[FactorDebtToEquity])
	assert.Equal(t, 60.0, vs.Components[FactorROE])
	assert.InDelta(t, 36.5, vs.Total, 1e-9)
	assert.Equal(t, RatingSell, vs.Rating)
}

func TestScore_Bands(t *testing.T) {
	calc := newValueCalc(t)

	tests := []struct {
		name   string
		factor string
		f      *contracts.Fundamentals
		want   float64
	}{
		{"pe boundary 15 is second band", FactorPE, withRatios(contracts.Some(15), contracts.None(), contracts.None(), contracts.None(), contracts.None()), 70},
		{"pe 34.9", FactorPE, withRatios(contracts.Some(34.9), contracts.None(), contracts.None(), contracts.None(), contracts.None()), 40},
		{"pe 35", FactorPE, withRatios(contracts.Some(35), contracts.None(), contracts.None(), contracts.None(), contracts.None()), 10},
		{"negative pe unavailable", FactorPE, withRatios(contracts.Some(-8), contracts.None(), contracts.None(), contracts.None(), contracts.None()), 0},
		{"pb 1.0", FactorPriceToBook, withRatios(contracts.None(), contracts.Some(1.0), contracts.None(), contracts.None(), contracts.None()), 80},
		{"pb 3", FactorPriceToBook, withRatios(contracts.None(), contracts.Some(3), contracts.None(), contracts.None(), contracts.None()), 20},
		{"ev 8", FactorEVToEBITDA, withRatios(contracts.None(), contracts.None(), contracts.Some(8), contracts.None(), contracts.None()), 75},
		{"ev 20", FactorEVToEBITDA, withRatios(contracts.None(), contracts.None(), contracts.Some(20), contracts.None(), contracts.None()), 25},
		{"de absent neutral", FactorDebtToEquity, withRatios(contracts.None(), contracts.None(), contracts.None(), contracts.None(), contracts.None()), 50},
		{"de zero", FactorDebtToEquity, withRatios(contracts.None(), contracts.None(), contracts.None(), contracts.Some(0), contracts.None()), 100},
		{"de negative", FactorDebtToEquity, withRatios(contracts.None(), contracts.None(), contracts.None(), contracts.Some(-0.4), contracts.None()), 25},
		{"de 1.5", FactorDebtToEquity, withRatios(contracts.None(), contracts.None(), contracts.None(), contracts.Some(1.5), contracts.None()), 25},
		{"roe 0.15 is second band", FactorROE, withRatios(contracts.None(), contracts.None(), contracts.None(), contracts.None(), contracts.Some(0.15)), 80},
		{"roe zero", FactorROE, withRatios(contracts.None(), contracts.None(), contracts.None(), contracts.None(), contracts.Some(0)), 30},
		{"roe malformed unavailable", FactorROE, withRatios(contracts.None(), contracts.None(), contracts.None(), contracts.None(), contracts.Malformed("?")), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := calc.Score(tt.f)
			assert.Equal(t, tt.want, vs.Components[tt.factor])
		})
	}
}

func TestScore_NothingAvailable(t *testing.T) {
	calc := newValueCalc(t)

	vs := calc.Score(withRatios(contracts.None(), contracts.None(), contracts.None(), contracts.None(), contracts.None()))
	assert.InDelta(t, 5.0, vs.Total, 1e-9)
	assert.Contains(t, vs.Warnings, "P/E ratio unavailable")
}

func TestScore_CustomWeights(t *testing.T) {
	calc, err := NewValueFactorCalculator(strategyconfig.ValueFactors{PE: 0.5, ROE: 0.5}, logger.NewNop())
	require.NoError(t, err)

	vs := calc.Score(withRatios(contracts.Some(10), contracts.None(), contracts.None(), contracts.None(), contracts.Some(0.2)))
	assert.InDelta(t, 100.0, vs.Total, 1e-9)
	assert.Equal(t, RatingStrongBuy, vs.Rating)
}

func TestNewValueFactorCalculator_RejectsBadWeights(t *testing.T) {
	_, err := NewValueFactorCalculator(strategyconfig.ValueFactors{PE: 0.9, ROE: 0.9}, logger.NewNop())
	assert.Error(t, err)

	_, err = NewValueFactorCalculator(strategyconfig.ValueFactors{PE: -0.1, ROE: 0.5}, logger.NewNop())
	assert.Error(t, err)
}

func TestRatingFor(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{95, RatingStrongBuy},
		{80, RatingStrongBuy},
		{79.99, RatingBuy},
		{70, RatingBuy},
		{60, RatingHold},
		{50, RatingWeakHold},
		{49.9, RatingSell},
		{0, RatingSell},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RatingFor(tt.score))
	}
}
