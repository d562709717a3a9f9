package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/valuefinder/internal/brain"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/pkg/logger"
)

// BacktestHandler handles backtest API endpoints
type BacktestHandler struct {
	orchestrator *brain.Orchestrator
	store        RunStore
	logger       *logger.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(orchestrator *brain.Orchestrator, store RunStore, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{
		orchestrator: orchestrator,
		store:        store,
		logger:       log,
	}
}

// BacktestRequest selects the run whose opportunities are replayed
type BacktestRequest struct {
	RunID string `json:"run_id"` // Optional: latest run
}

// Run backtests the top opportunities of a stored run
// POST /api/backtest/run
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BacktestRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	var run *contracts.ScreeningRun
	var err error
	if req.RunID == "" {
		run, err = h.store.LatestRun(ctx)
	} else {
		run, err = h.store.GetRun(ctx, req.RunID)
	}
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			respondError(w, status, "Screening run not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load run for backtest")
		respondError(w, status, "Failed to retrieve screening run")
		return
	}

	result, err := h.orchestrator.Backtest(ctx, run, true)
	if err != nil {
		h.logger.WithError(err).WithField("run_id", run.ID).Error("Backtest failed")
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}
