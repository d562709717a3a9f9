package s2_signals

import (
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/strategyconfig"
	"github.com/wonny/valuefinder/pkg/logger"
)

// TickerSignals is everything S2 derives from one snapshot
type TickerSignals struct {
	Valuation       contracts.ValuationResult
	Quality         contracts.QualityVerdict
	QualityDetailed int
	Risk            contracts.RiskTier
	Value           ValueScore
}

// Builder orchestrates the calculators for one ticker
// ⭐ SSOT: 시그널 생성 오케스트레이션은 여기서만
type Builder struct {
	valuation *ValuationCalculator
	quality   *QualityCalculator
	risk      *RiskCalculator
	value     *ValueFactorCalculator

	minQuality int
	logger     *logger.Logger
}

// NewBuilder creates a new signal builder
func NewBuilder(
	valuation *ValuationCalculator,
	quality *QualityCalculator,
	risk *RiskCalculator,
	value *ValueFactorCalculator,
	minQuality int,
	log *logger.Logger,
) *Builder {
	return &Builder{
		valuation:  valuation,
		quality:    quality,
		risk:       risk,
		value:      value,
		minQuality: minQuality,
		logger:     log,
	}
}

// NewBuilderFromConfig wires all calculators from a strategy config
func NewBuilderFromConfig(cfg *strategyconfig.Config, log *logger.Logger) (*Builder, error) {
	if err := strategyconfig.Validate(cfg); err != nil {
		return nil, err
	}

	value, err := NewValueFactorCalculator(cfg.ValueFactors, log)
	if err != nil {
		return nil, err
	}

	return NewBuilder(
		NewValuationCalculator(log),
		NewQualityCalculator(log),
		NewRiskCalculator(log),
		value,
		cfg.Screening.MinQualityScore,
		log,
	), nil
}

// Build values the ticker first; InsufficientData short-circuits the rest
func (b *Builder) Build(f *contracts.Fundamentals) (*TickerSignals, error) {
	valuation, err := b.valuation.Value(f)
	if err != nil {
		return nil, err
	}

	return &TickerSignals{
		Valuation:       valuation,
		Quality:         b.quality.Assess(f, b.minQuality),
		QualityDetailed: b.quality.Detailed(f),
		Risk:            b.risk.Classify(f),
		Value:           b.value.Score(f),
	}, nil
}
