package contracts

import "time"

// ScreeningRecord is one scored ticker, produced once per run
// ⭐ SSOT: S2 → 선별/백테스트 스크리닝 결과 전달
type ScreeningRecord struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector Sector `json:"sector"`

	Price          float64         `json:"price"`
	IntrinsicValue float64         `json:"intrinsic_value"`
	DiscountPct    float64         `json:"discount"`
	Method         ValuationMethod `json:"valuation_method"`

	Quality QualityVerdict `json:"quality"`
	Risk    RiskTier       `json:"risk"`

	InvestmentScore      float64        `json:"investment_score"`       // 0..100
	QualityScoreDetailed int            `json:"quality_score_detailed"` // 0..10
	ValueScore           float64        `json:"value_score"`            // multi-factor 0..100
	ValueRating          string         `json:"value_rating"`
	Recommendation       Recommendation `json:"recommendation"`

	// Raw metrics kept for display/audit (nil = absent)
	PERatio      *float64 `json:"pe_ratio"`
	ROE          *float64 `json:"roe"`
	DebtToEquity *float64 `json:"debt_equity"`
}

// SkipReason explains why a ticker produced no record
type SkipReason string

const (
	SkipInsufficientData SkipReason = "insufficient_data"
	SkipFetchFailed      SkipReason = "fetch_failed"
)

// SkippedTicker is a ticker excluded from a run
type SkippedTicker struct {
	Ticker string     `json:"ticker"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// ScreeningRun is the ordered output of one screening invocation
type ScreeningRun struct {
	ID         string            `json:"id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	ConfigHash string            `json:"config_hash,omitempty"`
	Requested  int               `json:"requested"`
	Records    []ScreeningRecord `json:"records"`
	Skipped    []SkippedTicker   `json:"skipped"`
}

// CountSkipped returns how many tickers were skipped for reason
func (r *ScreeningRun) CountSkipped(reason SkipReason) int {
	n := 0
	for _, s := range r.Skipped {
		if s.Reason == reason {
			n++
		}
	}
	return n
}

// Find returns the record for ticker
func (r *ScreeningRun) Find(ticker string) (ScreeningRecord, bool) {
	for _, rec := range r.Records {
		if rec.Ticker == ticker {
			return rec, true
		}
	}
	return ScreeningRecord{}, false
}

// Duration returns the wall time of the run
func (r *ScreeningRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
