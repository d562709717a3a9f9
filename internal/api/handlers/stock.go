package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/valuefinder/internal/brain"
	"github.com/wonny/valuefinder/pkg/logger"
	"github.com/wonny/valuefinder/pkg/redis"
)

// StockHandler handles single-ticker endpoints
type StockHandler struct {
	orchestrator *brain.Orchestrator
	cache        *redis.Cache
	logger       *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(orchestrator *brain.Orchestrator, cache *redis.Cache, log *logger.Logger) *StockHandler {
	return &StockHandler{
		orchestrator: orchestrator,
		cache:        cache,
		logger:       log,
	}
}

// GetAnalysis returns the valuation, quality, risk and factor breakdown
// GET /api/stocks/{ticker}/analysis
func (h *StockHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := mux.Vars(r)["ticker"]

	var analysis brain.StockAnalysis
	key := redis.AnalysisKey(ticker, time.Now().Format("2006-01-02"))
	err := h.cache.GetOrSet(ctx, key, &analysis, redis.TTLLong, func() (interface{}, error) {
		return h.orchestrator.Analyze(ctx, ticker)
	})
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
			h.logger.WithError(err).WithField("ticker", ticker).Error("Stock analysis failed")
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}
