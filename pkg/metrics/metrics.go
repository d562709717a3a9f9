package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus collectors of the process
// ⭐ SSOT: 메트릭 정의는 여기서만
// A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	ScreeningTickers *prometheus.CounterVec
	Backtests        *prometheus.CounterVec
	Runs             *prometheus.CounterVec
	FetchDuration    *prometheus.HistogramVec
	CacheRequests    *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New creates a registry with every collector registered
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		ScreeningTickers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valuefinder_screening_tickers_total",
				Help: "Tickers processed by the screener, by outcome",
			},
			[]string{"outcome"},
		),

		Backtests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valuefinder_backtests_total",
				Help: "Backtest candidates processed, by outcome",
			},
			[]string{"outcome"},
		),

		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valuefinder_runs_total",
				Help: "Completed runs by kind",
			},
			[]string{"kind"},
		),

		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "valuefinder_fetch_duration_seconds",
				Help:    "Duration of market data fetches",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"source", "result"},
		),

		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valuefinder_cache_requests_total",
				Help: "Run cache lookups by cache and result",
			},
			[]string{"cache", "result"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "valuefinder_http_request_duration_seconds",
				Help:    "API request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	r.reg.MustRegister(
		r.ScreeningTickers,
		r.Backtests,
		r.Runs,
		r.FetchDuration,
		r.CacheRequests,
		r.HTTPDuration,
		collectors.NewGoCollector(),
	)

	return r
}

// Gatherer exposes the underlying registry (tests, custom handlers)
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves /metrics
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Registry) RecordTicker(outcome string) {
	if r == nil {
		return
	}
	r.ScreeningTickers.WithLabelValues(outcome).Inc()
}

func (r *Registry) RecordBacktest(outcome string) {
	if r == nil {
		return
	}
	r.Backtests.WithLabelValues(outcome).Inc()
}

func (r *Registry) RecordRun(kind string) {
	if r == nil {
		return
	}
	r.Runs.WithLabelValues(kind).Inc()
}

// ObserveFetch records a data fetch that started at start
func (r *Registry) ObserveFetch(source string, start time.Time, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.FetchDuration.WithLabelValues(source, result).Observe(time.Since(start).Seconds())
}

func (r *Registry) RecordCache(cache string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.CacheRequests.WithLabelValues(cache, result).Inc()
}

func (r *Registry) ObserveHTTP(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
