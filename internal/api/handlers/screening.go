package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/wonny/valuefinder/internal/brain"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/selection"
	"github.com/wonny/valuefinder/pkg/logger"
	"github.com/wonny/valuefinder/pkg/redis"
)

// ScreeningHandler handles screening API endpoints
// ⭐ SSOT: 스크리닝 API 핸들러는 이 구조체에서만
type ScreeningHandler struct {
	orchestrator *brain.Orchestrator
	store        RunStore
	cache        *redis.Cache
	stream       *StreamHub
	running      sync.Mutex // 동시에 하나의 스크리닝만
	logger       *logger.Logger
}

// NewScreeningHandler creates a new screening handler
func NewScreeningHandler(
	orchestrator *brain.Orchestrator,
	store RunStore,
	cache *redis.Cache,
	stream *StreamHub,
	log *logger.Logger,
) *ScreeningHandler {
	return &ScreeningHandler{
		orchestrator: orchestrator,
		store:        store,
		cache:        cache,
		stream:       stream,
		logger:       log,
	}
}

// RunRequest represents a screening run request
type RunRequest struct {
	Tickers  []string `json:"tickers"`  // Optional: default universe
	Backtest bool     `json:"backtest"` // Also backtest the top opportunities
}

// RunView is a run with its ranked views
type RunView struct {
	Run           *contracts.ScreeningRun     `json:"run"`
	Summary       selection.Summary           `json:"summary"`
	Opportunities []contracts.ScreeningRecord `json:"opportunities"`
	ValueTraps    []contracts.ScreeningRecord `json:"value_traps"`
}

// Run triggers a screening (and optionally a backtest)
// POST /api/screening/run
func (h *ScreeningHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if !h.running.TryLock() {
		respondError(w, http.StatusConflict, "A screening run is already in progress")
		return
	}
	defer h.running.Unlock()

	ctx := r.Context()
	h.stream.Publish(EventRunStarted, map[string]interface{}{"tickers": len(req.Tickers)})

	result, err := h.orchestrator.Run(ctx, brain.RunConfig{
		Tickers:      req.Tickers,
		WithBacktest: req.Backtest,
		Save:         true,
	})
	if err != nil {
		h.logger.WithError(err).Error("Screening run failed")
		h.stream.Publish(EventRunFailed, map[string]string{"error": err.Error()})
		respondError(w, statusFor(err), err.Error())
		return
	}

	// 새 실행 → 최신 캐시 무효화
	if err := h.cache.Delete(ctx, redis.LatestScreeningKey()); err != nil {
		h.logger.WithError(err).Warn("Failed to invalidate latest screening cache")
	}

	h.stream.Publish(EventRunCompleted, result.Screening.Summary)
	respondJSON(w, http.StatusOK, result)
}

// GetLatest returns the most recent run, optionally filtered
// GET /api/screening/latest?min_score=&sector=&quality_only=&max_risk=&undervalued=&limit=
func (h *ScreeningHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var run contracts.ScreeningRun
	err := h.cache.GetOrSet(ctx, redis.LatestScreeningKey(), &run, redis.TTLMedium, func() (interface{}, error) {
		return h.store.LatestRun(ctx)
	})
	if err != nil {
		h.respondLoadError(w, err, "latest")
		return
	}

	h.respondRun(w, r, &run)
}

// GetRun returns one run by ID
// GET /api/screening/{runID}
func (h *ScreeningHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	h.respondRun(w, r, run)
}

// GetOpportunities returns the ranked opportunities of a run
// GET /api/screening/{runID}/opportunities
func (h *ScreeningHandler) GetOpportunities(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	ranker := h.orchestrator.Ranker()
	opportunities := ranker.TopOpportunities(run.Records)
	if r.URL.Query().Get("all") == "true" {
		opportunities = ranker.Opportunities(run.Records)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":        run.ID,
		"count":         len(opportunities),
		"opportunities": opportunities,
	})
}

// GetValueTraps returns the value traps of a run
// GET /api/screening/{runID}/value-traps
func (h *ScreeningHandler) GetValueTraps(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	traps := h.orchestrator.Ranker().ValueTraps(run.Records)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":      run.ID,
		"count":       len(traps),
		"value_traps": traps,
	})
}

func (h *ScreeningHandler) loadRun(w http.ResponseWriter, r *http.Request) (*contracts.ScreeningRun, bool) {
	ctx := r.Context()
	runID := mux.Vars(r)["runID"]

	var run contracts.ScreeningRun
	err := h.cache.GetOrSet(ctx, redis.ScreeningRunKey(runID), &run, redis.TTLDaily, func() (interface{}, error) {
		return h.store.GetRun(ctx, runID)
	})
	if err != nil {
		h.respondLoadError(w, err, runID)
		return nil, false
	}
	return &run, true
}

func (h *ScreeningHandler) respondLoadError(w http.ResponseWriter, err error, runID string) {
	status := statusFor(err)
	if status == http.StatusNotFound {
		respondError(w, status, "Screening run not found")
		return
	}
	h.logger.WithError(err).WithField("run_id", runID).Error("Failed to load screening run")
	respondError(w, status, "Failed to retrieve screening run")
}

func (h *ScreeningHandler) respondRun(w http.ResponseWriter, r *http.Request, run *contracts.ScreeningRun) {
	ranker := h.orchestrator.Ranker()
	view := RunView{
		Run:           run,
		Summary:       ranker.Summarize(run),
		Opportunities: ranker.TopOpportunities(run.Records),
		ValueTraps:    ranker.ValueTraps(run.Records),
	}

	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter != nil {
		filtered := *run
		filtered.Records = filter.Apply(run.Records)
		view.Run = &filtered
	}

	respondJSON(w, http.StatusOK, view)
}

// parseFilter returns nil when no filter parameter is set
func parseFilter(r *http.Request) (*selection.Filter, error) {
	q := r.URL.Query()
	if len(q) == 0 {
		return nil, nil
	}

	f := &selection.Filter{
		QualityOnly:  q.Get("quality_only") == "true",
		UndervalOnly: q.Get("undervalued") == "true",
	}

	if v := q.Get("sector"); v != "" {
		f.Sector = contracts.ResolveSector(v)
	}
	if v := q.Get("min_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errInvalidParam("min_score")
		}
		f.MinScore = score
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return nil, errInvalidParam("limit")
		}
		f.Limit = limit
	}
	if v := q.Get("max_risk"); v != "" {
		tier, ok := parseRiskTier(v)
		if !ok {
			return nil, errInvalidParam("max_risk")
		}
		f.MaxRisk = tier
	}

	return f, nil
}

func parseRiskTier(v string) (contracts.RiskTier, bool) {
	for _, tier := range []contracts.RiskTier{contracts.RiskLow, contracts.RiskMedium, contracts.RiskHigh} {
		if strings.EqualFold(v, string(tier)) {
			return tier, true
		}
	}
	return "", false
}

type errInvalidParam string

func (e errInvalidParam) Error() string {
	return "Invalid query parameter: " + string(e)
}

var _ RunStore = (*selection.Repository)(nil)
