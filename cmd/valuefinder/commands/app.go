package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/valuefinder/internal/api/handlers"
	"github.com/wonny/valuefinder/internal/backtest"
	"github.com/wonny/valuefinder/internal/brain"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/export"
	"github.com/wonny/valuefinder/internal/external/finviz"
	"github.com/wonny/valuefinder/internal/external/yahoo"
	"github.com/wonny/valuefinder/internal/s0_data"
	"github.com/wonny/valuefinder/internal/s1_universe"
	"github.com/wonny/valuefinder/internal/selection"
	"github.com/wonny/valuefinder/internal/strategyconfig"
	"github.com/wonny/valuefinder/pkg/config"
	"github.com/wonny/valuefinder/pkg/database"
	"github.com/wonny/valuefinder/pkg/httputil"
	"github.com/wonny/valuefinder/pkg/logger"
	"github.com/wonny/valuefinder/pkg/metrics"
	"github.com/wonny/valuefinder/pkg/redis"
)

// memoryRuns is how many runs the API keeps without a database
const memoryRuns = 20

// app holds every wired component of one CLI invocation
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg      *config.Config
	strategy *strategyconfig.Config
	log      *logger.Logger
	metrics  *metrics.Registry

	redis *redis.Client
	db    *database.DB

	source       *s0_data.PacedSource
	screener     *selection.Screener
	orchestrator *brain.Orchestrator
	files        *export.FileSink
	store        handlers.RunStore
}

// appOptions tune the wiring per command
type appOptions struct {
	outputDir string                       // overrides OUTPUT_DIR
	tune      func(*strategyconfig.Config) // flag overrides, applied before validation
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	// 1. Load config
	cfg, err := config.LoadFrom(configFile, env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Strategy
	strategy, err := loadStrategy(cfg, opts.tune)
	if err != nil {
		return nil, err
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	a := &app{cfg: cfg, strategy: strategy, log: log}
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	// 4. Redis (선택): 실패 시 캐시/레이트리밋 없이 진행
	a.redis, err = redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		a.redis = redis.Disabled()
	}

	// 5. Market data
	a.source, err = a.newSource()
	if err != nil {
		a.Close()
		return nil, err
	}

	// 6. Pipeline
	a.screener, err = selection.NewScreenerFromConfig(strategy, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.screener.WithMetrics(a.metrics)

	engine := backtest.NewEngine(strategy.Backtest, log).WithMetrics(a.metrics)
	a.orchestrator = brain.NewOrchestrator(
		s1_universe.NewBuilder(strategy.Universe, log),
		a.screener,
		selection.NewRanker(strategy.Screening),
		engine,
		brain.Sources{Fundamentals: a.source, Prices: a.source},
		log,
	).WithMetrics(a.metrics)

	// 7. Sinks: 파일은 항상, DB는 설정 시
	a.files = export.NewFileSink(cfg.OutputDir, log)
	sinks := export.MultiSink{a.files}

	if cfg.Database.Enabled() {
		a.db, err = database.New(cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx, a.db.Pool); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}

		runRepo := selection.NewRepository(a.db.Pool)
		sinks = append(sinks, export.NewDatabaseSink(runRepo, backtest.NewRepository(a.db.Pool)))
		a.orchestrator.WithUniverseRepository(s1_universe.NewRepository(a.db.Pool))
		a.store = runRepo
		log.Info("Connected to database")
	} else {
		memory := export.NewMemorySink(memoryRuns)
		sinks = append(sinks, memory)
		a.store = memory
	}
	a.orchestrator.WithSink(sinks)

	return a, nil
}

func loadStrategy(cfg *config.Config, tune func(*strategyconfig.Config)) (*strategyconfig.Config, error) {
	path := strategyFile
	if path == "" {
		path = cfg.StrategyConfigPath
	}

	strategy, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	if tune != nil {
		tune(strategy)
		if err := strategyconfig.Validate(strategy); err != nil {
			return nil, fmt.Errorf("strategy overrides: %w", err)
		}
	}
	return strategy, nil
}

// newSource builds the paced provider. Finviz has no price history, so
// prices always come from Yahoo.
func (a *app) newSource() (*s0_data.PacedSource, error) {
	yahooClient := yahoo.NewClient(a.newHTTPClient("yahoo"), a.cfg.Data.YahooBaseURL, a.log)

	var fundamentals contracts.FundamentalsSource
	switch a.cfg.Data.Provider {
	case "yahoo":
		fundamentals = yahooClient
	case "finviz":
		fundamentals = finviz.NewClient(a.newHTTPClient("finviz"), a.cfg.Data.FinvizBaseURL, a.log)
	default:
		return nil, fmt.Errorf("unknown data provider %q", a.cfg.Data.Provider)
	}

	return s0_data.NewPacedSource(a.cfg.Data.Provider, fundamentals, yahooClient, a.strategy.DataSource, a.log).
		WithMetrics(a.metrics), nil
}

func (a *app) newHTTPClient(provider string) *httputil.Client {
	client := httputil.New(a.cfg, a.log).WithCircuitBreaker(provider, 5, time.Minute)
	if limit, ok := redis.ProviderRateLimit(provider); ok && a.redis.Enabled() {
		client.WithRateLimiter(redis.NewRateLimiter(a.redis, "valuefinder"), limit)
	}
	return client
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
