package contracts

import (
	"context"
	"time"
)

// FundamentalsSource returns a snapshot per ticker
// ⭐ SSOT: S0 재무 데이터 수집 인터페이스
// Failures wrap ErrDataUnavailable.
type FundamentalsSource interface {
	FetchFundamentals(ctx context.Context, ticker string) (*Fundamentals, error)
}

// PriceSource returns an ordered daily close series for [from, to]
// ⭐ SSOT: S0 가격 시계열 수집 인터페이스
// Failures wrap ErrDataUnavailable.
type PriceSource interface {
	FetchPriceSeries(ctx context.Context, ticker string, from, to time.Time) ([]PricePoint, error)
}

// ResultSink persists screening and backtest output
type ResultSink interface {
	SaveScreening(ctx context.Context, run *ScreeningRun) error
	SaveBacktests(ctx context.Context, runID string, merged []MergedRecord) error
}
