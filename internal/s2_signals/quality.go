package s2_signals

import (
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/pkg/logger"
)

// DefaultMinQualityScore is the pass threshold out of 5
const DefaultMinQualityScore = 3

// QualityCalculator runs the value-trap health checks
// ⭐ SSOT: 재무 건전성 판정은 여기서만
type QualityCalculator struct {
	logger *logger.Logger
}

// NewQualityCalculator creates a new quality calculator
func NewQualityCalculator(log *logger.Logger) *QualityCalculator {
	return &QualityCalculator{
		logger: log,
	}
}

// Assess scores five one-point criteria. A missing metric fails its
// criterion; any malformed input forces Passed=false.
func (c *QualityCalculator) Assess(f *contracts.Fundamentals, minPass int) contracts.QualityVerdict {
	if f == nil {
		return contracts.QualityVerdict{Degraded: true}
	}

	score := 0
	if debtCovered(f.LongTermDebt, f.OperatingCashFlow) {
		score++
	}
	if above(f.OperatingCashFlow, 0) {
		score++
	}
	if above(f.ROE, 0.08) {
		score++
	}
	if above(f.ProfitMargin, 0.05) {
		score++
	}
	if above(f.CurrentRatio, 1.0) {
		score++
	}

	verdict := contracts.QualityVerdict{
		Passed: score >= minPass,
		Score:  score,
	}

	if malformed := firstMalformed(f.LongTermDebt, f.OperatingCashFlow, f.ROE, f.ProfitMargin, f.CurrentRatio); malformed != nil {
		verdict.Passed = false
		verdict.Degraded = true
		c.logger.WithFields(map[string]interface{}{
			"ticker": f.Ticker,
			"score":  score,
		}).WithError(malformed).Warn("Quality check degraded by malformed metric")
	}

	return verdict
}

// Detailed returns the 0-10 quality grade shown next to the verdict
func (c *QualityCalculator) Detailed(f *contracts.Fundamentals) int {
	if f == nil {
		return 0
	}

	score := 0
	score += banded(f.ROE, 0.15, 0.08)
	score += banded(f.ProfitMargin, 0.15, 0.08)

	if de, ok := f.DebtToEquity.Get(); ok {
		switch {
		case de < 0.5:
			score += 2
		case de < 1.0:
			score++
		}
	}

	if above(f.OperatingCashFlow, 0) {
		score += 2
	}

	score += banded(f.CurrentRatio, 1.5, 1.0)

	return score
}

// debtCovered: zero debt, or positive debt below 3x operating cash flow.
// Absent debt is not rewarded.
func debtCovered(debt, ocf contracts.Metric) bool {
	d, ok := debt.Get()
	if !ok {
		return false
	}
	if d == 0 {
		return true
	}
	cf, ok := ocf.Get()
	return ok && d > 0 && d < 3*cf
}

func above(m contracts.Metric, threshold float64) bool {
	v, ok := m.Get()
	return ok && v > threshold
}

// banded returns 2 above high, 1 above low, 0 otherwise (or when absent)
func banded(m contracts.Metric, high, low float64) int {
	v, ok := m.Get()
	switch {
	case !ok:
		return 0
	case v > high:
		return 2
	case v > low:
		return 1
	default:
		return 0
	}
}

func firstMalformed(metrics ...contracts.Metric) error {
	for _, m := range metrics {
		if err := m.Err(); err != nil {
			return err
		}
	}
	return nil
}
