package s2_signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/pkg/logger"
)

func TestClassify(t *testing.T) {
	calc := NewRiskCalculator(logger.NewNop())

	tests := []struct {
		name   string
		sector string
		beta   contracts.Metric
		de     contracts.Metric
		want   contracts.RiskTier
	}{
		{"defaults are low", "Utilities", contracts.None(), contracts.None(), contracts.RiskLow},
		{"beta at 1.2 adds nothing", "Utilities", contracts.Some(1.2), contracts.None(), contracts.RiskLow},
		{"beta at 1.5 adds one", "Utilities", contracts.Some(1.5), contracts.None(), contracts.RiskLow},
		{"volatile sector alone", "Energy", contracts.None(), contracts.None(), contracts.RiskLow},
		{"beta and sector", "Energy", contracts.Some(1.3), contracts.None(), contracts.RiskMedium},
		{"high beta", "Utilities", contracts.Some(1.6), contracts.None(), contracts.RiskMedium},
		{"leverage between 1 and 2", "Utilities", contracts.Some(1.3), contracts.Some(2.0), contracts.RiskMedium},
		{"three points", "Technology", contracts.Some(1.6), contracts.None(), contracts.RiskMedium},
		{"four points", "Healthcare", contracts.Some(1.3), contracts.Some(2.5), contracts.RiskHigh},
		{"maximum", "Technology", contracts.Some(2.0), contracts.Some(3.0), contracts.RiskHigh},
		{"malformed beta is neutral", "Utilities", contracts.Malformed("x"), contracts.None(), contracts.RiskMedium},
		{"malformed leverage is neutral", "Technology", contracts.Some(2.0), contracts.Malformed("x"), contracts.RiskMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := snapshot(tt.sector, 60, 5, 50)
			f.Beta = tt.beta
			f.DebtToEquity = tt.de
			assert.Equal(t, tt.want, calc.Classify(f))
		})
	}
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, contracts.RiskLow, tierFor(0))
	assert.Equal(t, contracts.RiskLow, tierFor(1))
	assert.Equal(t, contracts.RiskMedium, tierFor(2))
	assert.Equal(t, contracts.RiskMedium, tierFor(3))
	assert.Equal(t, contracts.RiskHigh, tierFor(4))
	assert.Equal(t, contracts.RiskHigh, tierFor(5))
}
