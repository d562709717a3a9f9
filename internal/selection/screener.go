package selection

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/s0_data/collector"
	"github.com/wonny/valuefinder/internal/s2_signals"
	"github.com/wonny/valuefinder/internal/strategyconfig"
	"github.com/wonny/valuefinder/pkg/logger"
	"github.com/wonny/valuefinder/pkg/metrics"
)

// Ticker outcomes reported to metrics
const (
	outcomeScored = "scored"
)

// Screener scores every ticker of a universe, in input order
// ⭐ SSOT: 스크리닝 오케스트레이션은 여기서만
type Screener struct {
	config     strategyconfig.Screening
	configHash string
	signals    *s2_signals.Builder
	scorer     *Scorer
	metrics    *metrics.Registry
	onRecord   func(contracts.ScreeningRecord)
	now        func() time.Time
	logger     *logger.Logger
}

// NewScreener creates a new screener
func NewScreener(config strategyconfig.Screening, signals *s2_signals.Builder, log *logger.Logger) *Screener {
	return &Screener{
		config:  config,
		signals: signals,
		scorer:  NewScorer(config),
		now:     time.Now,
		logger:  log.WithField("module", "screener"),
	}
}

// NewScreenerFromConfig wires the signal builder from a full strategy config
func NewScreenerFromConfig(cfg *strategyconfig.Config, log *logger.Logger) (*Screener, error) {
	builder, err := s2_signals.NewBuilderFromConfig(cfg, log)
	if err != nil {
		return nil, err
	}

	s := NewScreener(cfg.Screening, builder, log)
	if hash, err := strategyconfig.Hash(cfg); err == nil {
		s.configHash = hash
	}
	return s, nil
}

// WithMetrics attaches a metrics registry
func (s *Screener) WithMetrics(m *metrics.Registry) *Screener {
	s.metrics = m
	return s
}

// OnRecord registers an observer called for every record as it is produced.
// With several workers it is called concurrently, in completion order.
func (s *Screener) OnRecord(fn func(contracts.ScreeningRecord)) *Screener {
	s.onRecord = fn
	return s
}

// tickerOutcome is the per-ticker result before assembly
type tickerOutcome struct {
	record  *contracts.ScreeningRecord
	skipped *contracts.SkippedTicker
}

// Screen fetches and scores each ticker. Per-ticker failures are recorded as
// skipped; only invalid configuration or cancellation return an error.
func (s *Screener) Screen(ctx context.Context, tickers []string, src contracts.FundamentalsSource) (*contracts.ScreeningRun, error) {
	if err := strategyconfig.ValidateScreening(s.config); err != nil {
		return nil, err
	}

	universe := NormalizeTickers(tickers)
	run := &contracts.ScreeningRun{
		ID:         uuid.NewString(),
		StartedAt:  s.now(),
		ConfigHash: s.configHash,
		Requested:  len(universe),
		Records:    make([]contracts.ScreeningRecord, 0, len(universe)),
		Skipped:    make([]contracts.SkippedTicker, 0),
	}

	s.logger.WithFields(map[string]interface{}{
		"run_id":  run.ID,
		"tickers": len(universe),
		"workers": s.config.Workers,
	}).Info("Starting screening")

	outcomes := collector.Map(ctx, universe, s.config.Workers, func(ctx context.Context, _ int, ticker string) tickerOutcome {
		return s.screenTicker(ctx, ticker, src)
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, o := range outcomes {
		switch {
		case o.record != nil:
			run.Records = append(run.Records, *o.record)
		case o.skipped != nil:
			run.Skipped = append(run.Skipped, *o.skipped)
		}
	}
	run.FinishedAt = s.now()

	s.metrics.RecordRun("screening")
	s.logger.WithFields(map[string]interface{}{
		"run_id":            run.ID,
		"scored":            len(run.Records),
		"insufficient_data": run.CountSkipped(contracts.SkipInsufficientData),
		"fetch_failed":      run.CountSkipped(contracts.SkipFetchFailed),
		"duration":          run.Duration().String(),
	}).Info("Screening completed")

	return run, nil
}

// ScreenOne scores a single snapshot (analysis endpoint, CLI)
func (s *Screener) ScreenOne(f *contracts.Fundamentals) (contracts.ScreeningRecord, *s2_signals.TickerSignals, error) {
	sig, err := s.signals.Build(f)
	if err != nil {
		return contracts.ScreeningRecord{}, nil, err
	}
	return s.buildRecord(f, sig), sig, nil
}

func (s *Screener) screenTicker(ctx context.Context, ticker string, src contracts.FundamentalsSource) tickerOutcome {
	log := s.logger.WithField("ticker", ticker)

	f, err := src.FetchFundamentals(ctx, ticker)
	if err == nil && f == nil {
		err = contracts.ErrDataUnavailable
	}
	if err != nil {
		log.WithError(err).Warn("Fundamentals fetch failed, skipping")
		s.metrics.RecordTicker(string(contracts.SkipFetchFailed))
		return tickerOutcome{skipped: &contracts.SkippedTicker{
			Ticker: ticker,
			Reason: contracts.SkipFetchFailed,
			Detail: err.Error(),
		}}
	}

	record, _, err := s.ScreenOne(f)
	if err != nil {
		if !errors.Is(err, contracts.ErrInsufficientData) {
			log.WithError(err).Warn("Unexpected scoring error, treating as insufficient data")
		} else {
			log.WithError(err).Debug("Excluded from scoring")
		}
		s.metrics.RecordTicker(string(contracts.SkipInsufficientData))
		return tickerOutcome{skipped: &contracts.SkippedTicker{
			Ticker: ticker,
			Reason: contracts.SkipInsufficientData,
			Detail: err.Error(),
		}}
	}

	s.metrics.RecordTicker(outcomeScored)
	if s.onRecord != nil {
		s.onRecord(record)
	}
	return tickerOutcome{record: &record}
}

func (s *Screener) buildRecord(f *contracts.Fundamentals, sig *s2_signals.TickerSignals) contracts.ScreeningRecord {
	price, _ := f.Price.Get()
	score := InvestmentScore(sig.Valuation.DiscountPct, sig.Quality, sig.Risk)

	return contracts.ScreeningRecord{
		Ticker:               f.Ticker,
		Name:                 f.DisplayName(),
		Sector:               f.Sector,
		Price:                price,
		IntrinsicValue:       sig.Valuation.IntrinsicValue,
		DiscountPct:          sig.Valuation.DiscountPct,
		Method:               sig.Valuation.Method,
		Quality:              sig.Quality,
		Risk:                 sig.Risk,
		InvestmentScore:      score,
		QualityScoreDetailed: sig.QualityDetailed,
		ValueScore:           sig.Value.Total,
		ValueRating:          sig.Value.Rating,
		Recommendation:       s.scorer.Recommend(score, sig.Valuation.DiscountPct, sig.Quality),
		PERatio:              f.PE.Ptr(),
		ROE:                  f.ROE.Ptr(),
		DebtToEquity:         f.DebtToEquity.Ptr(),
	}
}

// NormalizeTickers trims, upper-cases and de-duplicates, keeping first occurrence
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
