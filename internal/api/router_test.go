package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/valuefinder/internal/api/handlers"
	"github.com/wonny/valuefinder/internal/backtest"
	"github.com/wonny/valuefinder/internal/brain"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/export"
	"github.com/wonny/valuefinder/internal/s1_universe"
	"github.com/wonny/valuefinder/internal/selection"
	"github.com/wonny/valuefinder/internal/strategyconfig"
	"github.com/wonny/valuefinder/pkg/logger"
	"github.com/wonny/valuefinder/pkg/metrics"
	"github.com/wonny/valuefinder/pkg/redis"
)

var refDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

type fakeMarket struct {
	mu           sync.Mutex
	fundamentals map[string]*contracts.Fundamentals
	series       map[string][]contracts.PricePoint
}

func (m *fakeMarket) FetchFundamentals(_ context.Context, ticker string) (*contracts.Fundamentals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fundamentals[ticker]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrDataUnavailable)
	}
	return f, nil
}

func (m *fakeMarket) FetchPriceSeries(_ context.Context, ticker string, _, _ time.Time) ([]contracts.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.series[ticker]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrDataUnavailable)
	}
	return s, nil
}

func stock(ticker string, price float64) *contracts.Fundamentals {
	f := contracts.NewFundamentals(ticker, ticker+" Inc", "Industrials")
	f.Price = contracts.Some(price)
	f.EPS = contracts.Some(5)
	f.BookValue = contracts.Some(50)
	f.LongTermDebt = contracts.Some(100)
	f.OperatingCashFlow = contracts.Some(50)
	f.ROE = contracts.Some(0.20)
	f.ProfitMargin = contracts.Some(0.10)
	f.CurrentRatio = contracts.Some(1.2)
	f.DebtToEquity = contracts.Some(0.3)
	return f
}

func series() []contracts.PricePoint {
	out := make([]contracts.PricePoint, 40)
	for i := range out {
		out[i] = contracts.PricePoint{
			Date:  refDate.AddDate(0, 0, i-len(out)+1),
			Close: contracts.Some(100 + float64(i)),
		}
	}
	return out
}

type testServer struct {
	*httptest.Server
	mr  *miniredis.Miniredis
	hub *handlers.StreamHub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNop()
	cfg := strategyconfig.Default()

	market := &fakeMarket{
		fundamentals: map[string]*contracts.Fundamentals{
			"AAA": stock("AAA", 60),  // 20% 할인
			"BBB": stock("BBB", 200), // 프리미엄
		},
		series: map[string][]contracts.PricePoint{"AAA": series()},
	}

	hub := handlers.NewStreamHub(log)
	screener, err := selection.NewScreenerFromConfig(cfg, log)
	require.NoError(t, err)
	screener.OnRecord(hub.OnRecord)

	store := export.NewMemorySink(5)
	orch := brain.NewOrchestrator(
		s1_universe.NewBuilder(cfg.Universe, log),
		screener,
		selection.NewRanker(cfg.Screening),
		backtest.NewEngine(cfg.Backtest, log).WithClock(func() time.Time { return refDate }),
		brain.Sources{Fundamentals: market, Prices: market},
		log,
	).WithSink(store)

	mr := miniredis.RunT(t)
	client, err := redis.NewFromAddr(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	cache := redis.NewCache(client, "vf")

	router := NewRouter(Handlers{
		Screening: handlers.NewScreeningHandler(orch, store, cache, hub, log),
		Backtest:  handlers.NewBacktestHandler(orch, store, log),
		Stock:     handlers.NewStockHandler(orch, cache, log),
		Stream:    hub,
	}, metrics.New(), log)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, mr: mr, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (s *testServer) runScreening(t *testing.T) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/screening/run", `{"tickers":["AAA","BBB"]}`)
	require.Equal(t, http.StatusOK, status)
	run := body["screening"].(map[string]interface{})["run"].(map[string]interface{})
	return run["id"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestScreeningEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/api/screening/latest", "")
	assert.Equal(t, http.StatusNotFound, status)

	runID := s.runScreening(t)

	status, body := s.do(t, http.MethodGet, "/api/screening/latest", "")
	require.Equal(t, http.StatusOK, status)
	run := body["run"].(map[string]interface{})
	assert.Equal(t, runID, run["id"])
	assert.Len(t, run["records"], 2)
	assert.True(t, s.mr.Exists("vf:cache:screening:latest"))

	status, body = s.do(t, http.MethodGet, "/api/screening/"+runID+"?min_score=80", "")
	require.Equal(t, http.StatusOK, status)
	records := body["run"].(map[string]interface{})["records"].([]interface{})
	require.Len(t, records, 1)
	assert.Equal(t, "AAA", records[0].(map[string]interface{})["ticker"])

	status, body = s.do(t, http.MethodGet, "/api/screening/"+runID+"/opportunities", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	status, body = s.do(t, http.MethodGet, "/api/screening/"+runID+"/value-traps", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["count"])
}

func TestScreeningErrors(t *testing.T) {
	s := newTestServer(t)
	runID := s.runScreening(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown run", http.MethodGet, "/api/screening/missing", "", http.StatusNotFound},
		{"bad min_score", http.MethodGet, "/api/screening/" + runID + "?min_score=abc", "", http.StatusBadRequest},
		{"bad max_risk", http.MethodGet, "/api/screening/" + runID + "?max_risk=extreme", "", http.StatusBadRequest},
		{"bad body", http.MethodPost, "/api/screening/run", "{", http.StatusBadRequest},
		{"unknown backtest run", http.MethodPost, "/api/backtest/run", `{"run_id":"missing"}`, http.StatusNotFound},
		{"unavailable ticker", http.MethodGet, "/api/stocks/ZZZ/analysis", "", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestBacktestEndpoint(t *testing.T) {
	s := newTestServer(t)
	runID := s.runScreening(t)

	status, body := s.do(t, http.MethodPost, "/api/backtest/run", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, runID, body["run_id"])
	assert.Equal(t, float64(3), body["years"])

	results := body["results"].([]interface{})
	require.Len(t, results, 1)
	merged := results[0].(map[string]interface{})
	assert.Equal(t, "AAA", merged["ticker"])
	assert.Equal(t, 39.0, merged["total_return"])
}

func TestStockAnalysis(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/stocks/aaa/analysis", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(4), body["stars"])
	assert.Equal(t, true, body["is_opportunity"])

	keys := s.mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "vf:cache:analysis:AAA:"))
}

func TestStreamEvents(t *testing.T) {
	s := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws/screening"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello handlers.Event
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, handlers.EventHello, hello.Type)
	assert.Equal(t, 1, s.hub.Clients())

	s.runScreening(t)

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var types []string
	for {
		var ev handlers.Event
		require.NoError(t, conn.ReadJSON(&ev))
		types = append(types, ev.Type)
		if ev.Type == handlers.EventRunCompleted {
			break
		}
	}

	assert.Equal(t, []string{
		handlers.EventRunStarted,
		handlers.EventRecord,
		handlers.EventRecord,
		handlers.EventRunCompleted,
	}, types)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/api/screening/anything", "")
	require.Equal(t, http.StatusNotFound, status)

	resp, err := http.Get(s.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(data), "valuefinder_http_request_duration_seconds")
	assert.Contains(t, string(data), `route="/api/screening/{runID}"`)
	assert.Contains(t, string(data), `status="404"`)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
