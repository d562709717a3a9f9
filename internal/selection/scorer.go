package selection

import (
	"math"
	"strings"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/strategyconfig"
)

// Composite score components
const (
	maxValueComponent = 50.0 // discount 25% 이상에서 포화
	qualityComponent  = 30.0
	discountWeight    = 2.0
)

var riskComponent = map[contracts.RiskTier]float64{
	contracts.RiskLow:    20,
	contracts.RiskMedium: 15,
	contracts.RiskHigh:   5,
}

// Scorer turns valuation, quality and risk into a 0-100 score and a label
// ⭐ SSOT: 종합 투자 점수는 여기서만
type Scorer struct {
	minInvestmentScore float64
	strongBuyScore     float64
}

// NewScorer creates a scorer using the screening thresholds
func NewScorer(cfg strategyconfig.Screening) *Scorer {
	return &Scorer{
		minInvestmentScore: cfg.MinInvestmentScore,
		strongBuyScore:     cfg.StrongBuyScore,
	}
}

// InvestmentScore = clamp(discount*2, 0, 50) + 30 if quality passed + risk points.
// An unknown risk tier contributes 0.
func InvestmentScore(discountPct float64, quality contracts.QualityVerdict, risk contracts.RiskTier) float64 {
	value := discountPct * discountWeight
	if math.IsNaN(value) {
		value = 0
	}
	value = math.Max(0, math.Min(value, maxValueComponent))

	score := value + riskComponent[risk]
	if quality.Passed {
		score += qualityComponent
	}
	return score
}

// Recommend labels a scored ticker
func (s *Scorer) Recommend(score, discountPct float64, quality contracts.QualityVerdict) contracts.Recommendation {
	switch {
	case score >= s.strongBuyScore:
		return contracts.RecommendStrongBuy
	case score >= s.minInvestmentScore:
		return contracts.RecommendBuy
	case discountPct > 0 && !quality.Passed:
		return contracts.RecommendInvestigate
	default:
		return contracts.RecommendAvoid
	}
}

// Stars returns floor(score/20); negative or non-finite scores get 0
func Stars(score float64) int {
	if math.IsNaN(score) || math.IsInf(score, 0) || score <= 0 {
		return 0
	}
	return int(math.Floor(score / 20))
}

// StarString renders the star rating for terminal output
func StarString(score float64) string {
	return strings.Repeat("★", Stars(score))
}
