package s2_signals

import (
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/strategyconfig"
	"github.com/wonny/valuefinder/pkg/logger"
)

// Factor names used in component breakdowns
const (
	FactorPE             = "pe_ratio"
	FactorPriceToBook    = "price_to_book"
	FactorPriceToSales   = "price_to_sales"
	FactorEVToEBITDA     = "ev_to_ebitda"
	FactorDividendYield  = "dividend_yield"
	FactorDebtToEquity   = "debt_to_equity"
	FactorROE            = "return_on_equity"
	FactorEarningsGrowth = "earnings_growth"
	FactorFCFYield       = "fcf_yield"
)

// Score used when a factor is unavailable. Leverage is neutral when unknown.
const (
	unavailableScore             = 0.0
	unavailableDebtToEquityScore = 50.0
)

// Value rating labels
const (
	RatingStrongBuy = "STRONG_BUY"
	RatingBuy       = "BUY"
	RatingHold      = "HOLD"
	RatingWeakHold  = "WEAK_HOLD"
	RatingSell      = "SELL"
)

// ValueScore is the multi-factor result
type ValueScore struct {
	Total      float64            `json:"total"`
	Components map[string]float64 `json:"components"`
	Rating     string             `json:"rating"`
	Strengths  []string           `json:"strengths"`
	Warnings   []string           `json:"warnings"`
}

// ValueFactorCalculator computes the banded multi-factor value score
// ⭐ SSOT: 멀티팩터 가치 점수는 여기서만
// Weights are not renormalised when factors are missing, so totals are only
// comparable across tickers with the same available factors.
type ValueFactorCalculator struct {
	weights strategyconfig.ValueFactors
	logger  *logger.Logger
}

// NewValueFactorCalculator creates a calculator with validated weights
func NewValueFactorCalculator(weights strategyconfig.ValueFactors, log *logger.Logger) (*ValueFactorCalculator, error) {
	if err := strategyconfig.ValidateValueFactors(weights); err != nil {
		return nil, err
	}
	return &ValueFactorCalculator{
		weights: weights,
		logger:  log,
	}, nil
}

// Score bands each factor and returns the weighted sum
func (c *ValueFactorCalculator) Score(f *contracts.Fundamentals) ValueScore {
	vs := ValueScore{
		Components: make(map[string]float64, 9),
		Strengths:  []string{},
		Warnings:   []string{},
	}
	if f == nil {
		vs.Rating = RatingFor(0)
		return vs
	}

	// P/E
	if pe, ok := f.PE.Get(); ok && pe > 0 {
		vs.Components[FactorPE] = bandLow(pe, [3]float64{15, 25, 35}, [4]float64{100, 70, 40, 10})
		switch {
		case pe < 15:
			vs.Strengths = append(vs.Strengths, "very low P/E ratio")
		case pe >= 35:
			vs.Warnings = append(vs.Warnings, "high P/E ratio")
		}
	} else {
		vs.Components[FactorPE] = unavailableScore
		vs.Warnings = append(vs.Warnings, "P/E ratio unavailable")
	}

	// P/B
	if pb, ok := f.PriceToBook.Get(); ok && pb > 0 {
		vs.Components[FactorPriceToBook] = bandLow(pb, [3]float64{1, 1.5, 2.5}, [4]float64{100, 80, 50, 20})
		if pb < 1 {
			vs.Strengths = append(vs.Strengths, "trading below book value")
		}
	} else {
		vs.Components[FactorPriceToBook] = unavailableScore
	}

	// EV/EBITDA
	if ev, ok := f.EVToEBITDA.Get(); ok && ev > 0 {
		vs.Components[FactorEVToEBITDA] = bandLow(ev, [3]float64{8, 12, 15}, [4]float64{100, 75, 50, 25})
		if ev < 8 {
			vs.Strengths = append(vs.Strengths, "very favourable EV/EBITDA")
		}
	} else {
		vs.Components[FactorEVToEBITDA] = unavailableScore
	}

	// Debt/Equity: 음수 = 자본잠식
	if de, ok := f.DebtToEquity.Get(); ok {
		if de < 0 {
			vs.Components[FactorDebtToEquity] = 25
			vs.Warnings = append(vs.Warnings, "negative shareholder equity")
		} else {
			vs.Components[FactorDebtToEquity] = bandLow(de, [3]float64{0.5, 1.0, 1.5}, [4]float64{100, 75, 50, 25})
			switch {
			case de < 0.5:
				vs.Strengths = append(vs.Strengths, "low debt level")
			case de >= 1.5:
				vs.Warnings = append(vs.Warnings, "high debt level")
			}
		}
	} else {
		vs.Components[FactorDebtToEquity] = unavailableDebtToEquityScore
	}

	// ROE
	if roe, ok := f.ROE.Get(); ok {
		vs.Components[FactorROE] = bandHigh(roe, [3]float64{0.15, 0.10, 0.05}, [4]float64{100, 80, 60, 30})
		if roe > 0.15 {
			vs.Strengths = append(vs.Strengths, "high return on equity")
		}
	} else {
		vs.Components[FactorROE] = unavailableScore
	}

	// 예약 팩터: 밴딩 미정의
	vs.Components[FactorPriceToSales] = unavailableScore
	vs.Components[FactorDividendYield] = unavailableScore
	vs.Components[FactorEarningsGrowth] = unavailableScore
	vs.Components[FactorFCFYield] = unavailableScore

	vs.Total = c.weighted(vs.Components)
	vs.Rating = RatingFor(vs.Total)

	c.logger.WithFields(map[string]interface{}{
		"ticker": f.Ticker,
		"total":  vs.Total,
		"rating": vs.Rating,
	}).Debug("Calculated value factor score")

	return vs
}

func (c *ValueFactorCalculator) weighted(components map[string]float64) float64 {
	w := c.weights
	return components[FactorPE]*w.PE +
		components[FactorPriceToBook]*w.PriceToBook +
		components[FactorPriceToSales]*w.PriceToSales +
		components[FactorEVToEBITDA]*w.EVToEBITDA +
		components[FactorDividendYield]*w.DividendYield +
		components[FactorDebtToEquity]*w.DebtToEquity +
		components[FactorROE]*w.ROE +
		components[FactorEarningsGrowth]*w.EarningsGrowth +
		components[FactorFCFYield]*w.FCFYield
}

// RatingFor maps a 0-100 value score onto a rating label
func RatingFor(score float64) string {
	switch {
	case score >= 80:
		return RatingStrongBuy
	case score >= 70:
		return RatingBuy
	case score >= 60:
		return RatingHold
	case score >= 50:
		return RatingWeakHold
	default:
		return RatingSell
	}
}

// bandLow: lower is better. v < bounds[i] → scores[i], else scores[3].
func bandLow(v float64, bounds [3]float64, scores [4]float64) float64 {
	for i, b := range bounds {
		if v < b {
			return scores[i]
		}
	}
	return scores[3]
}

// bandHigh: higher is better. v > bounds[i] → scores[i], else scores[3].
func bandHigh(v float64, bounds [3]float64, scores [4]float64) float64 {
	for i, b := range bounds {
		if v > b {
			return scores[i]
		}
	}
	return scores[3]
}
