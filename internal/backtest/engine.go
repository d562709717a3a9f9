package backtest

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/s0_data/collector"
	"github.com/wonny/valuefinder/internal/strategyconfig"
	"github.com/wonny/valuefinder/pkg/logger"
	"github.com/wonny/valuefinder/pkg/metrics"
)

// Candidate outcomes reported to metrics
const (
	outcomeOK           = "ok"
	outcomeInsufficient = "insufficient_data"
	outcomeFetchFailed  = "fetch_failed"
)

// Engine replays price history for screening candidates
// ⭐ SSOT: 백테스팅 실행은 여기서만
type Engine struct {
	config    strategyconfig.Backtest
	simulator *Simulator
	now       func() time.Time
	metrics   *metrics.Registry
	logger    *logger.Logger
}

// NewEngine creates a new backtest engine
func NewEngine(config strategyconfig.Backtest, log *logger.Logger) *Engine {
	return &Engine{
		config:    config,
		simulator: NewSimulator(config.MinObservations, config.MinReturns),
		now:       time.Now,
		logger:    log.WithField("module", "backtest"),
	}
}

// WithMetrics attaches a metrics registry
func (e *Engine) WithMetrics(m *metrics.Registry) *Engine {
	e.metrics = m
	return e
}

// WithClock overrides the reference time for the lookback window
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// HorizonYears is the configured lookback
func (e *Engine) HorizonYears() int {
	return e.config.HorizonYears
}

// Window returns [now - horizon years, now]
func (e *Engine) Window() (from, to time.Time) {
	to = e.now()
	return to.AddDate(-e.config.HorizonYears, 0, 0), to
}

// Run backtests the first MaxCandidates candidates in order. Candidates that
// fail the data gates or the fetch are skipped; only invalid configuration
// or cancellation abort the run.
func (e *Engine) Run(ctx context.Context, candidates []contracts.ScreeningRecord, src contracts.PriceSource) ([]contracts.BacktestRecord, error) {
	if err := strategyconfig.ValidateBacktest(e.config); err != nil {
		return nil, err
	}

	if len(candidates) > e.config.MaxCandidates {
		candidates = candidates[:e.config.MaxCandidates]
	}
	from, to := e.Window()

	e.logger.WithFields(map[string]interface{}{
		"candidates": len(candidates),
		"years":      e.config.HorizonYears,
		"from":       from.Format("2006-01-02"),
		"to":         to.Format("2006-01-02"),
	}).Info("Starting backtest")

	results := collector.Map(ctx, candidates, e.config.Workers, func(ctx context.Context, _ int, c contracts.ScreeningRecord) *contracts.BacktestRecord {
		rec, err := e.backtestTicker(ctx, c.Ticker, from, to, src)
		if err != nil {
			return nil
		}
		return &rec
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]contracts.BacktestRecord, 0, len(results))
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}

	e.metrics.RecordRun("backtest")
	e.logger.WithFields(map[string]interface{}{
		"requested": len(candidates),
		"completed": len(records),
	}).Info("Backtest completed")

	return records, nil
}

// Backtest replays a single ticker over the configured horizon
func (e *Engine) Backtest(ctx context.Context, ticker string, src contracts.PriceSource) (contracts.BacktestRecord, error) {
	if err := strategyconfig.ValidateBacktest(e.config); err != nil {
		return contracts.BacktestRecord{}, err
	}
	from, to := e.Window()
	return e.backtestTicker(ctx, ticker, from, to, src)
}

func (e *Engine) backtestTicker(ctx context.Context, ticker string, from, to time.Time, src contracts.PriceSource) (contracts.BacktestRecord, error) {
	log := e.logger.WithField("ticker", ticker)

	series, err := src.FetchPriceSeries(ctx, ticker, from, to)
	if err != nil {
		log.WithError(err).Warn("Price series fetch failed, skipping")
		e.metrics.RecordBacktest(outcomeFetchFailed)
		return contracts.BacktestRecord{}, err
	}

	perf, err := e.simulator.Replay(series)
	if err != nil {
		if errors.Is(err, contracts.ErrInsufficientData) {
			log.WithError(err).Info("Not enough price history, skipping")
		} else {
			log.WithError(err).Warn("Replay failed, skipping")
		}
		e.metrics.RecordBacktest(outcomeInsufficient)
		return contracts.BacktestRecord{}, err
	}

	e.metrics.RecordBacktest(outcomeOK)
	log.WithFields(map[string]interface{}{
		"total_return": perf.TotalReturn,
		"volatility":   perf.Volatility,
		"max_drawdown": perf.MaxDrawdown,
	}).Debug("Backtested")

	return perf.Record(ticker, e.config.HorizonYears), nil
}
