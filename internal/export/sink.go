package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/valuefinder/internal/backtest"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/selection"
)

// DatabaseSink persists results through the PostgreSQL repositories
type DatabaseSink struct {
	screening *selection.Repository
	backtests *backtest.Repository
}

// NewDatabaseSink creates a sink over both repositories
func NewDatabaseSink(screening *selection.Repository, backtests *backtest.Repository) *DatabaseSink {
	return &DatabaseSink{
		screening: screening,
		backtests: backtests,
	}
}

// SaveScreening stores the run with rounded records
func (s *DatabaseSink) SaveScreening(ctx context.Context, run *contracts.ScreeningRun) error {
	out := *run
	out.Records = RoundRecords(run.Records)
	return s.screening.SaveRun(ctx, &out)
}

// SaveBacktests stores the backtest half of each merged record
func (s *DatabaseSink) SaveBacktests(ctx context.Context, runID string, merged []contracts.MergedRecord) error {
	records := make([]contracts.BacktestRecord, len(merged))
	for i, m := range merged {
		records[i] = m.Backtest
	}
	return s.backtests.SaveResults(ctx, runID, records)
}

// MultiSink fans out to several sinks; every sink is tried
type MultiSink []contracts.ResultSink

func (m MultiSink) SaveScreening(ctx context.Context, run *contracts.ScreeningRun) error {
	var errs []error
	for i, sink := range m {
		if err := sink.SaveScreening(ctx, run); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) SaveBacktests(ctx context.Context, runID string, merged []contracts.MergedRecord) error {
	var errs []error
	for i, sink := range m {
		if err := sink.SaveBacktests(ctx, runID, merged); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
