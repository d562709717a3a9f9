package brain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/valuefinder/internal/backtest"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/s0_data"
	"github.com/wonny/valuefinder/internal/s0_data/quality"
	"github.com/wonny/valuefinder/internal/s1_universe"
	"github.com/wonny/valuefinder/internal/s2_signals"
	"github.com/wonny/valuefinder/internal/selection"
	"github.com/wonny/valuefinder/pkg/logger"
	"github.com/wonny/valuefinder/pkg/metrics"
)

// Stage names reported in results
const (
	StageUniverse  = "S1:Universe"
	StageScreening = "S2:Screening"
	StageQuality   = "S0:Coverage"
	StageRanking   = "S3:Ranking"
	StageBacktest  = "S4:Backtest"
	StageSave      = "S5:Save"
)

// Sources are the upstream collaborators of one orchestrator
type Sources struct {
	Fundamentals contracts.FundamentalsSource
	Prices       contracts.PriceSource
}

// Orchestrator coordinates universe → screening → ranking → backtest → save
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	universeBuilder *s1_universe.Builder
	screener        *selection.Screener
	ranker          *selection.Ranker
	engine          *backtest.Engine
	qualityGate     *quality.Gate
	sources         Sources

	// Optional persistence
	sink         contracts.ResultSink
	universeRepo *s1_universe.Repository

	metrics *metrics.Registry
	logger  *logger.Logger
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	universeBuilder *s1_universe.Builder,
	screener *selection.Screener,
	ranker *selection.Ranker,
	engine *backtest.Engine,
	sources Sources,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		universeBuilder: universeBuilder,
		screener:        screener,
		ranker:          ranker,
		engine:          engine,
		qualityGate:     quality.NewGate(quality.DefaultConfig()),
		sources:         sources,
		logger:          log.WithField("module", "orchestrator"),
	}
}

// WithSink persists screening and backtest output
func (o *Orchestrator) WithSink(sink contracts.ResultSink) *Orchestrator {
	o.sink = sink
	return o
}

// WithUniverseRepository stores each universe snapshot
func (o *Orchestrator) WithUniverseRepository(repo *s1_universe.Repository) *Orchestrator {
	o.universeRepo = repo
	return o
}

// WithMetrics records run cache hits and misses
func (o *Orchestrator) WithMetrics(m *metrics.Registry) *Orchestrator {
	o.metrics = m
	return o
}

// Ranker exposes the ranking rules used by this orchestrator
func (o *Orchestrator) Ranker() *selection.Ranker {
	return o.ranker
}

// RunConfig holds options for one pipeline run
type RunConfig struct {
	Tickers      []string // empty = configured universe
	WithBacktest bool
	Save         bool
}

// ScreeningResult is the screening half of a run
type ScreeningResult struct {
	Run           *contracts.ScreeningRun     `json:"run"`
	Universe      *contracts.Universe         `json:"universe"`
	Coverage      *quality.Snapshot           `json:"coverage"`
	Summary       selection.Summary           `json:"summary"`
	Opportunities []contracts.ScreeningRecord `json:"opportunities"`
	ValueTraps    []contracts.ScreeningRecord `json:"value_traps"`
}

// BacktestResult is the backtest half of a run
type BacktestResult struct {
	RunID    string                   `json:"run_id"`
	Years    int                      `json:"years"`
	From     time.Time                `json:"from"`
	To       time.Time                `json:"to"`
	Merged   []contracts.MergedRecord `json:"results"`
	Analysis backtest.Analysis        `json:"analysis"`
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	Screening       *ScreeningResult `json:"screening"`
	Backtest        *BacktestResult  `json:"backtest,omitempty"`
	CompletedStages []string         `json:"completed_stages"`
	Duration        time.Duration    `json:"duration"`
}

// Run executes the pipeline. Fundamentals and price series are cached for
// the duration of the run only.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()
	result := &RunResult{CompletedStages: make([]string, 0)}

	cache := o.newRunCache()
	defer cache.Reset()

	screening, stages, err := o.screen(ctx, config, cache)
	result.CompletedStages = append(result.CompletedStages, stages...)
	if err != nil {
		return result, err
	}
	result.Screening = screening

	if config.WithBacktest {
		bt, err := o.backtest(ctx, screening.Run, cache, config.Save)
		if err != nil {
			return result, fmt.Errorf("%s failed: %w", StageBacktest, err)
		}
		result.Backtest = bt
		result.CompletedStages = append(result.CompletedStages, StageBacktest)
	}

	hits, misses := cache.Stats()
	result.Duration = time.Since(startTime)
	o.logger.WithFields(map[string]interface{}{
		"run_id":       screening.Run.ID,
		"stages":       strings.Join(result.CompletedStages, ","),
		"cache_hits":   hits,
		"cache_misses": misses,
		"duration":     result.Duration.String(),
	}).Info("Pipeline run completed")

	return result, nil
}

func (o *Orchestrator) newRunCache() *s0_data.RunCache {
	return s0_data.NewRunCache(o.sources.Fundamentals, o.sources.Prices).WithMetrics(o.metrics)
}

// Screen runs universe → screening → ranking (and save when asked)
func (o *Orchestrator) Screen(ctx context.Context, config RunConfig) (*ScreeningResult, error) {
	cache := o.newRunCache()
	defer cache.Reset()

	res, _, err := o.screen(ctx, config, cache)
	return res, err
}

func (o *Orchestrator) screen(ctx context.Context, config RunConfig, cache *s0_data.RunCache) (*ScreeningResult, []string, error) {
	var stages []string

	// S1: Universe
	universe, err := o.universeBuilder.Build(config.Tickers)
	if err != nil {
		return nil, stages, fmt.Errorf("%s failed: %w", StageUniverse, err)
	}
	stages = append(stages, StageUniverse)

	if o.universeRepo != nil {
		if err := o.universeRepo.SaveUniverse(ctx, universe); err != nil {
			o.logger.WithError(err).Warn("Failed to save universe snapshot")
		}
	}

	// S2: Screening
	run, err := o.screener.Screen(ctx, universe.Tickers, cache)
	if err != nil {
		return nil, stages, fmt.Errorf("%s failed: %w", StageScreening, err)
	}
	stages = append(stages, StageScreening)

	// S0: 수집 데이터 커버리지 (경고만)
	coverage := o.qualityGate.Check(cache.Snapshots())
	if !coverage.Passed() {
		o.logger.WithFields(map[string]interface{}{
			"run_id":        run.ID,
			"quality_score": coverage.QualityScore,
			"failed":        strings.Join(coverage.Failed, ","),
		}).Warn("Upstream data coverage below threshold")
	}
	stages = append(stages, StageQuality)

	// S3: Ranking
	result := &ScreeningResult{
		Run:           run,
		Universe:      universe,
		Coverage:      coverage,
		Summary:       o.ranker.Summarize(run),
		Opportunities: o.ranker.TopOpportunities(run.Records),
		ValueTraps:    o.ranker.ValueTraps(run.Records),
	}
	stages = append(stages, StageRanking)

	if config.Save && o.sink != nil {
		if err := o.sink.SaveScreening(ctx, run); err != nil {
			return result, stages, fmt.Errorf("%s failed: %w", StageSave, err)
		}
		stages = append(stages, StageSave)
	}

	return result, stages, nil
}

// Backtest replays the top opportunities of a finished run
func (o *Orchestrator) Backtest(ctx context.Context, run *contracts.ScreeningRun, save bool) (*BacktestResult, error) {
	return o.backtest(ctx, run, o.sources.Prices, save)
}

func (o *Orchestrator) backtest(ctx context.Context, run *contracts.ScreeningRun, prices contracts.PriceSource, save bool) (*BacktestResult, error) {
	if prices == nil {
		return nil, fmt.Errorf("no price source configured")
	}

	candidates := o.ranker.TopOpportunities(run.Records)
	records, err := o.engine.Run(ctx, candidates, prices)
	if err != nil {
		return nil, err
	}

	from, to := o.engine.Window()
	merged := contracts.Merge(run.Records, records)
	result := &BacktestResult{
		RunID:    run.ID,
		Years:    o.engine.HorizonYears(),
		From:     from,
		To:       to,
		Merged:   merged,
		Analysis: backtest.Analyze(merged),
	}

	if save && o.sink != nil {
		if err := o.sink.SaveBacktests(ctx, run.ID, merged); err != nil {
			return result, fmt.Errorf("save backtests: %w", err)
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":     run.ID,
		"candidates": len(candidates),
		"backtested": len(merged),
		"win_rate":   result.Analysis.WinRate,
	}).Info("Backtest completed")

	return result, nil
}

// StockAnalysis is the single-ticker breakdown
type StockAnalysis struct {
	Record      contracts.ScreeningRecord `json:"record"`
	Stars       int                       `json:"stars"`
	Opportunity bool                      `json:"is_opportunity"`
	ValueTrap   bool                      `json:"is_value_trap"`
	ValueScore  s2_signals.ValueScore     `json:"value_score"`
	Snapshot    *contracts.Fundamentals   `json:"fundamentals"`
}

// Analyze fetches and scores one ticker outside of a run
func (o *Orchestrator) Analyze(ctx context.Context, ticker string) (*StockAnalysis, error) {
	tickers := selection.NormalizeTickers([]string{ticker})
	if len(tickers) == 0 {
		return nil, fmt.Errorf("ticker is required")
	}

	f, err := o.sources.Fundamentals.FetchFundamentals(ctx, tickers[0])
	if err == nil && f == nil {
		err = contracts.ErrDataUnavailable
	}
	if err != nil {
		return nil, err
	}

	record, sig, err := o.screener.ScreenOne(f)
	if err != nil {
		return nil, err
	}

	return &StockAnalysis{
		Record:      record,
		Stars:       selection.Stars(record.InvestmentScore),
		Opportunity: o.ranker.IsOpportunity(record),
		ValueTrap:   selection.IsValueTrap(record),
		ValueScore:  sig.Value,
		Snapshot:    f,
	}, nil
}
