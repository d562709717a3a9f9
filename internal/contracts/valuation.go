package contracts

// ValuationMethod names the sector formula that produced an intrinsic value
type ValuationMethod string

const (
	MethodGraham         ValuationMethod = "graham"
	MethodGrowthAdjusted ValuationMethod = "growth_adjusted"
	MethodBookAnchored   ValuationMethod = "book_anchored"
)

// ValuationResult is the output of the valuation policy
type ValuationResult struct {
	IntrinsicValue float64         `json:"intrinsic_value"` // always > 0
	DiscountPct    float64         `json:"discount"`        // negative = premium
	Method         ValuationMethod `json:"method"`
}

// IsUndervalued reports a positive margin of safety
func (v ValuationResult) IsUndervalued() bool {
	return v.DiscountPct > 0
}

// QualityVerdict is the 5-point financial health check
// 매 스크리닝마다 재계산 (실행 간 캐시 금지)
type QualityVerdict struct {
	Passed   bool `json:"passed"`
	Score    int  `json:"score"`              // 0..5
	Degraded bool `json:"degraded,omitempty"` // malformed input forced a fail
}

// RiskTier is the discrete risk class
type RiskTier string

const (
	RiskLow    RiskTier = "Low"
	RiskMedium RiskTier = "Medium"
	RiskHigh   RiskTier = "High"
)

// Level orders tiers (Low=1, Medium=2, High=3, unknown=0)
func (r RiskTier) Level() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// Valid reports whether r is one of the three tiers
func (r RiskTier) Valid() bool {
	return r.Level() > 0
}

// AtMost reports whether r is no riskier than max
func (r RiskTier) AtMost(max RiskTier) bool {
	return r.Valid() && r.Level() <= max.Level()
}

// Recommendation is the action label attached to a screening record
type Recommendation string

const (
	RecommendStrongBuy   Recommendation = "STRONG_BUY"
	RecommendBuy         Recommendation = "BUY"
	RecommendInvestigate Recommendation = "INVESTIGATE"
	RecommendAvoid       Recommendation = "AVOID"
)
