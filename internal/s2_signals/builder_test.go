package s2_signals

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/strategyconfig"
	"github.com/wonny/valuefinder/pkg/logger"
)

func TestBuilder_Build(t *testing.T) {
	b, err := NewBuilderFromConfig(strategyconfig.Default(), logger.NewNop())
	require.NoError(t, err)

	sig, err := b.Build(healthy())
	require.NoError(t, err)

	assert.InDelta(t, 20.0, sig.Valuation.DiscountPct, 1e-9)
	assert.True(t, sig.Quality.Passed)
	assert.Equal(t, 5, sig.Quality.Score)
	assert.Equal(t, 8, sig.QualityDetailed)
	assert.Equal(t, contracts.RiskLow, sig.Risk)
	assert.NotEmpty(t, sig.Value.Rating)
}

func TestBuilder_InsufficientData(t *testing.T) {
	b, err := NewBuilderFromConfig(strategyconfig.Default(), logger.NewNop())
	require.NoError(t, err)

	f := healthy()
	f.BookValue = contracts.None()

	sig, err := b.Build(f)
	assert.Nil(t, sig)
	assert.True(t, errors.Is(err, contracts.ErrInsufficientData))
}

func TestNewBuilderFromConfig_Invalid(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.Screening.MinQualityScore = 9

	_, err := NewBuilderFromConfig(cfg, logger.NewNop())
	assert.Error(t, err)
}
