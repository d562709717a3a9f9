package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/valuefinder/internal/api/handlers"
	"github.com/wonny/valuefinder/pkg/logger"
	"github.com/wonny/valuefinder/pkg/metrics"
)

// Handlers groups every endpoint handler
type Handlers struct {
	Screening *handlers.ScreeningHandler
	Backtest  *handlers.BacktestHandler
	Stock     *handlers.StockHandler
	Stream    *handlers.StreamHub
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, reg *metrics.Registry, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Prometheus
	if reg != nil {
		r.Handle("/metrics", reg.Handler()).Methods("GET")
	}

	// WebSocket
	r.HandleFunc("/ws/screening", h.Stream.ServeWS).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Screening endpoints
	api.HandleFunc("/screening/run", h.Screening.Run).Methods("POST")
	api.HandleFunc("/screening/latest", h.Screening.GetLatest).Methods("GET")
	api.HandleFunc("/screening/{runID}", h.Screening.GetRun).Methods("GET")
	api.HandleFunc("/screening/{runID}/opportunities", h.Screening.GetOpportunities).Methods("GET")
	api.HandleFunc("/screening/{runID}/value-traps", h.Screening.GetValueTraps).Methods("GET")

	// Backtest endpoints
	api.HandleFunc("/backtest/run", h.Backtest.Run).Methods("POST")

	// Stock endpoints
	api.HandleFunc("/stocks/{ticker}/analysis", h.Stock.GetAnalysis).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log, reg))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "valuefinder-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// loggingMiddleware logs HTTP requests and records their latency
func loggingMiddleware(log *logger.Logger, reg *metrics.Registry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// WebSocket 업그레이드는 Hijacker가 필요하므로 래핑하지 않음
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tmpl, err := current.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}
			reg.ObserveHTTP(r.Method, route, rec.status, time.Since(start))

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
