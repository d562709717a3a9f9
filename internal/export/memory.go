package export

import (
	"context"
	"sync"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/selection"
)

// MemorySink keeps recent runs in process when no database is configured.
// It also serves reads for the API.
type MemorySink struct {
	mu        sync.RWMutex
	limit     int
	order     []string // 오래된 순
	runs      map[string]*contracts.ScreeningRun
	backtests map[string][]contracts.BacktestRecord
}

// NewMemorySink keeps at most limit runs (0 = 20)
func NewMemorySink(limit int) *MemorySink {
	if limit <= 0 {
		limit = 20
	}
	return &MemorySink{
		limit:     limit,
		runs:      make(map[string]*contracts.ScreeningRun),
		backtests: make(map[string][]contracts.BacktestRecord),
	}
}

// SaveScreening implements contracts.ResultSink
func (m *MemorySink) SaveScreening(_ context.Context, run *contracts.ScreeningRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; !exists {
		m.order = append(m.order, run.ID)
	}
	out := *run
	out.Records = RoundRecords(run.Records)
	m.runs[run.ID] = &out

	for len(m.order) > m.limit {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.runs, oldest)
		delete(m.backtests, oldest)
	}
	return nil
}

// SaveBacktests implements contracts.ResultSink
func (m *MemorySink) SaveBacktests(_ context.Context, runID string, merged []contracts.MergedRecord) error {
	records := make([]contracts.BacktestRecord, len(merged))
	for i, r := range merged {
		records[i] = r.Backtest
	}

	m.mu.Lock()
	m.backtests[runID] = records
	m.mu.Unlock()
	return nil
}

// GetRun returns a stored run or selection.ErrRunNotFound
func (m *MemorySink) GetRun(_ context.Context, runID string) (*contracts.ScreeningRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[runID]
	if !ok {
		return nil, selection.ErrRunNotFound
	}
	return run, nil
}

// LatestRun returns the most recently saved run
func (m *MemorySink) LatestRun(ctx context.Context) (*contracts.ScreeningRun, error) {
	m.mu.RLock()
	if len(m.order) == 0 {
		m.mu.RUnlock()
		return nil, selection.ErrRunNotFound
	}
	latest := m.order[len(m.order)-1]
	m.mu.RUnlock()
	return m.GetRun(ctx, latest)
}

// GetResults returns the backtests saved for a run
func (m *MemorySink) GetResults(_ context.Context, runID string) ([]contracts.BacktestRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.backtests[runID], nil
}
