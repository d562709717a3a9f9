package contracts

import (
	"encoding/json"
	"time"
)

// PricePoint is one daily observation. Close is absent for missing bars.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close Metric    `json:"close"`
}

// BacktestRecord is the historical replay of one candidate
// ⭐ SSOT: 모든 수치는 경계에서 소수 2자리 반올림
type BacktestRecord struct {
	Ticker       string    `json:"ticker"`
	HorizonYears int       `json:"years"`
	StartPrice   float64   `json:"start_price"`
	EndPrice     float64   `json:"end_price"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	TotalReturn  float64   `json:"total_return"` // %
	Volatility   float64   `json:"volatility"`   // stddev of daily returns, %, not annualised
	MaxDrawdown  float64   `json:"max_drawdown"` // %, <= 0
	// ReturnToVolatility is total return / volatility. Not a Sharpe ratio:
	// no risk-free rate and no annualisation.
	ReturnToVolatility float64 `json:"return_to_volatility"`
	Observations       int     `json:"observations"`
}

// MergedRecord is a screening record enriched with its backtest.
// Serialised as the union of both field sets; backtest fields win on collision.
type MergedRecord struct {
	Screening ScreeningRecord
	Backtest  BacktestRecord
}

func (m MergedRecord) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	for _, part := range []interface{}{m.Screening, m.Backtest} {
		data, err := json.Marshal(part)
		if err != nil {
			return nil, err
		}
		var partFields map[string]json.RawMessage
		if err := json.Unmarshal(data, &partFields); err != nil {
			return nil, err
		}
		for k, v := range partFields {
			fields[k] = v
		}
	}
	return json.Marshal(fields)
}

func (m *MergedRecord) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &m.Screening); err != nil {
		return err
	}
	return json.Unmarshal(data, &m.Backtest)
}

// Merge pairs each backtest with its screening record, in backtest order.
// Backtests without a matching screening record are dropped.
func Merge(records []ScreeningRecord, backtests []BacktestRecord) []MergedRecord {
	byTicker := make(map[string]ScreeningRecord, len(records))
	for _, r := range records {
		byTicker[r.Ticker] = r
	}

	merged := make([]MergedRecord, 0, len(backtests))
	for _, bt := range backtests {
		rec, ok := byTicker[bt.Ticker]
		if !ok {
			continue
		}
		merged = append(merged, MergedRecord{Screening: rec, Backtest: bt})
	}
	return merged
}
