package s2_signals

import (
	"fmt"
	"math"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/pkg/logger"
)

const (
	// grahamMultiplier: P/E 15 × P/B 1.5
	grahamMultiplier = 22.5
	// maxGrowthPremium caps the growth-adjusted uplift
	maxGrowthPremium = 0.15
	// bookMultiple for balance-sheet anchored sectors
	bookMultiple = 1.2
)

// ValuationCalculator computes sector-adjusted intrinsic value
// ⭐ SSOT: 내재가치 계산은 여기서만
type ValuationCalculator struct {
	logger *logger.Logger
}

// NewValuationCalculator creates a new valuation calculator
func NewValuationCalculator(log *logger.Logger) *ValuationCalculator {
	return &ValuationCalculator{
		logger: log,
	}
}

// Value returns the intrinsic value and discount for f.
// Unmet preconditions return an error wrapping contracts.ErrInsufficientData.
func (c *ValuationCalculator) Value(f *contracts.Fundamentals) (contracts.ValuationResult, error) {
	price, eps, bv, err := valuationInputs(f)
	if err != nil {
		return contracts.ValuationResult{}, err
	}

	var (
		intrinsic float64
		method    contracts.ValuationMethod
	)

	switch {
	case f.Sector.IsGrowth():
		intrinsic = grahamNumber(eps, bv) * (1 + growthPremium(f.EarningsGrowth))
		method = contracts.MethodGrowthAdjusted
	case f.Sector == contracts.SectorFinancial:
		intrinsic = bv * bookMultiple
		method = contracts.MethodBookAnchored
	default:
		intrinsic = grahamNumber(eps, bv)
		method = contracts.MethodGraham
	}

	// 장부가 0 → 내재가치 0, 나눗셈 불가
	if intrinsic <= 0 || math.IsNaN(intrinsic) || math.IsInf(intrinsic, 0) {
		return contracts.ValuationResult{}, fmt.Errorf("%w: non-positive intrinsic value for %s", contracts.ErrInsufficientData, f.Ticker)
	}

	result := contracts.ValuationResult{
		IntrinsicValue: intrinsic,
		DiscountPct:    (intrinsic - price) / intrinsic * 100,
		Method:         method,
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":    f.Ticker,
		"sector":    f.Sector,
		"method":    method,
		"intrinsic": intrinsic,
		"discount":  result.DiscountPct,
	}).Debug("Calculated intrinsic value")

	return result, nil
}

// valuationInputs enforces price > 0, EPS > 0 and book value >= 0, all present
func valuationInputs(f *contracts.Fundamentals) (price, eps, bv float64, err error) {
	if f == nil {
		return 0, 0, 0, fmt.Errorf("%w: no fundamentals", contracts.ErrInsufficientData)
	}

	price, ok := f.Price.Get()
	if !ok || price <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: price %s", contracts.ErrInsufficientData, f.Price)
	}

	eps, ok = f.EPS.Get()
	if !ok || eps <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: eps %s", contracts.ErrInsufficientData, f.EPS)
	}

	bv, ok = f.BookValue.Get()
	if !ok || bv < 0 {
		return 0, 0, 0, fmt.Errorf("%w: book value %s", contracts.ErrInsufficientData, f.BookValue)
	}

	return price, eps, bv, nil
}

func grahamNumber(eps, bv float64) float64 {
	return math.Sqrt(grahamMultiplier * eps * bv)
}

// growthPremium treats absent or malformed growth as 0 and caps the upside only
func growthPremium(growth contracts.Metric) float64 {
	g, ok := growth.Get()
	if !ok {
		return 0
	}
	return math.Min(g, maxGrowthPremium)
}
