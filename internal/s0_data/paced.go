package s0_data

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/strategyconfig"
	"github.com/wonny/valuefinder/pkg/logger"
	"github.com/wonny/valuefinder/pkg/metrics"
)

// PacedSource throttles an upstream data provider. Every PauseEvery requests
// all callers wait PauseSeconds; an optional token bucket caps the rate.
// ⭐ SSOT: 외부 데이터 소스 호출 간격 조절은 여기서만
type PacedSource struct {
	name         string
	fundamentals contracts.FundamentalsSource
	prices       contracts.PriceSource

	pauseEvery int
	pause      time.Duration
	limiter    *rate.Limiter

	mu       sync.Mutex
	count    int
	resumeAt time.Time

	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
	metrics *metrics.Registry
	logger  *logger.Logger
}

// NewPacedSource wraps the provider's fundamentals and price sources.
// Either may be nil if the provider does not serve it.
func NewPacedSource(name string, f contracts.FundamentalsSource, p contracts.PriceSource, cfg strategyconfig.DataSource, log *logger.Logger) *PacedSource {
	s := &PacedSource{
		name:         name,
		fundamentals: f,
		prices:       p,
		pauseEvery:   cfg.PauseEvery,
		pause:        time.Duration(cfg.PauseSeconds * float64(time.Second)),
		now:          time.Now,
		sleep:        sleepContext,
		logger:       log.WithField("source", name),
	}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}
	return s
}

// WithMetrics attaches a metrics registry
func (s *PacedSource) WithMetrics(m *metrics.Registry) *PacedSource {
	s.metrics = m
	return s
}

// Requests returns how many upstream calls were admitted
func (s *PacedSource) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// FetchFundamentals implements contracts.FundamentalsSource
func (s *PacedSource) FetchFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	if s.fundamentals == nil {
		return nil, fmt.Errorf("%s does not serve fundamentals: %w", s.name, contracts.ErrDataUnavailable)
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	f, err := s.fundamentals.FetchFundamentals(ctx, ticker)
	s.metrics.ObserveFetch(s.name+"_fundamentals", start, err)
	return f, err
}

// FetchPriceSeries implements contracts.PriceSource
func (s *PacedSource) FetchPriceSeries(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PricePoint, error) {
	if s.prices == nil {
		return nil, fmt.Errorf("%s does not serve prices: %w", s.name, contracts.ErrDataUnavailable)
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	series, err := s.prices.FetchPriceSeries(ctx, ticker, from, to)
	s.metrics.ObserveFetch(s.name+"_prices", start, err)
	return series, err
}

// wait admits one request: token bucket first, then the periodic pause
func (s *PacedSource) wait(ctx context.Context) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	s.mu.Lock()
	if s.pauseEvery > 0 && s.pause > 0 && s.count > 0 && s.count%s.pauseEvery == 0 {
		s.resumeAt = s.now().Add(s.pause)
		s.logger.WithFields(map[string]interface{}{
			"requests": s.count,
			"pause":    s.pause.String(),
		}).Debug("Pausing between request batches")
	}
	s.count++
	resumeAt := s.resumeAt
	s.mu.Unlock()

	if d := resumeAt.Sub(s.now()); d > 0 {
		return s.sleep(ctx, d)
	}
	return ctx.Err()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
