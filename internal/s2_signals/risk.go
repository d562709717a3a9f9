package s2_signals

import (
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/pkg/logger"
)

// RiskCalculator maps beta, leverage and sector onto a risk tier
// ⭐ SSOT: 리스크 등급 판정은 여기서만
type RiskCalculator struct {
	logger *logger.Logger
}

// NewRiskCalculator creates a new risk calculator
func NewRiskCalculator(log *logger.Logger) *RiskCalculator {
	return &RiskCalculator{
		logger: log,
	}
}

// Classify is deterministic. Malformed beta or leverage yields Medium.
func (c *RiskCalculator) Classify(f *contracts.Fundamentals) contracts.RiskTier {
	if f == nil {
		return contracts.RiskMedium
	}

	if err := firstMalformed(f.Beta, f.DebtToEquity); err != nil {
		c.logger.WithField("ticker", f.Ticker).WithError(err).Warn("Risk defaulted to neutral tier")
		return contracts.RiskMedium
	}

	return tierFor(riskPoints(f))
}

func riskPoints(f *contracts.Fundamentals) int {
	points := 0

	beta := 1.0
	if b, ok := f.Beta.Get(); ok {
		beta = b
	}
	switch {
	case beta > 1.5:
		points += 2
	case beta > 1.2:
		points++
	}

	if de, ok := f.DebtToEquity.Get(); ok {
		switch {
		case de > 2:
			points += 2
		case de > 1:
			points++
		}
	}

	if f.Sector.IsVolatile() {
		points++
	}

	return points
}

func tierFor(points int) contracts.RiskTier {
	switch {
	case points <= 1:
		return contracts.RiskLow
	case points <= 3:
		return contracts.RiskMedium
	default:
		return contracts.RiskHigh
	}
}
