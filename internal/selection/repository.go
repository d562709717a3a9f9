package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/pkg/database"
)

// ErrRunNotFound is returned when a run ID is unknown
var ErrRunNotFound = errors.New("screening run not found")

// Repository handles screening run persistence
// ⭐ SSOT: 스크리닝 결과 저장/조회는 여기서만
type Repository struct {
	db database.Querier
}

// NewRepository creates a new screening repository
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// RunInfo is a run header without its records
type RunInfo struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	ConfigHash string    `json:"config_hash"`
	Requested  int       `json:"requested"`
}

// SaveRun stores a run and replaces its records
func (r *Repository) SaveRun(ctx context.Context, run *contracts.ScreeningRun) error {
	skippedJSON, err := json.Marshal(run.Skipped)
	if err != nil {
		return fmt.Errorf("failed to marshal skipped: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO valuefinder.screening_runs (
			run_id, started_at, finished_at, config_hash, requested, skipped
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			config_hash = EXCLUDED.config_hash,
			requested = EXCLUDED.requested,
			skipped = EXCLUDED.skipped
	`, run.ID, run.StartedAt, run.FinishedAt, run.ConfigHash, run.Requested, skippedJSON)
	if err != nil {
		return fmt.Errorf("failed to save screening run: %w", err)
	}

	_, err = tx.Exec(ctx, "DELETE FROM valuefinder.screening_records WHERE run_id = $1", run.ID)
	if err != nil {
		return fmt.Errorf("failed to delete old records: %w", err)
	}

	query := `
		INSERT INTO valuefinder.screening_records (
			run_id, position, ticker, name, sector, price, intrinsic_value, discount,
			valuation_method, quality_passed, quality_score, quality_degraded, risk,
			investment_score, quality_score_detailed, value_score, value_rating,
			recommendation, pe_ratio, roe, debt_equity
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	for i, rec := range run.Records {
		_, err := tx.Exec(ctx, query,
			run.ID, i, rec.Ticker, rec.Name, string(rec.Sector), rec.Price, rec.IntrinsicValue, rec.DiscountPct,
			string(rec.Method), rec.Quality.Passed, rec.Quality.Score, rec.Quality.Degraded, string(rec.Risk),
			rec.InvestmentScore, rec.QualityScoreDetailed, rec.ValueScore, rec.ValueRating,
			string(rec.Recommendation), rec.PERatio, rec.ROE, rec.DebtToEquity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %s: %w", rec.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRun loads a run with its records in original order
func (r *Repository) GetRun(ctx context.Context, runID string) (*contracts.ScreeningRun, error) {
	run := &contracts.ScreeningRun{ID: runID}
	var skippedJSON []byte

	err := r.db.QueryRow(ctx, `
		SELECT started_at, finished_at, config_hash, requested, skipped
		FROM valuefinder.screening_runs
		WHERE run_id = $1
	`, runID).Scan(&run.StartedAt, &run.FinishedAt, &run.ConfigHash, &run.Requested, &skippedJSON)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get screening run: %w", err)
	}

	run.Skipped = make([]contracts.SkippedTicker, 0)
	if len(skippedJSON) > 0 {
		if err := json.Unmarshal(skippedJSON, &run.Skipped); err != nil {
			return nil, fmt.Errorf("failed to unmarshal skipped: %w", err)
		}
	}

	run.Records, err = r.getRecords(ctx, runID)
	if err != nil {
		return nil, err
	}

	return run, nil
}

// LatestRun loads the most recently started run
func (r *Repository) LatestRun(ctx context.Context) (*contracts.ScreeningRun, error) {
	var runID string
	err := r.db.QueryRow(ctx, `
		SELECT run_id FROM valuefinder.screening_runs
		ORDER BY started_at DESC
		LIMIT 1
	`).Scan(&runID)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return r.GetRun(ctx, runID)
}

// ListRuns returns run headers, newest first
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT run_id, started_at, finished_at, config_hash, requested
		FROM valuefinder.screening_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunInfo, 0)
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.ID, &info.StartedAt, &info.FinishedAt, &info.ConfigHash, &info.Requested); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, info)
	}

	return runs, rows.Err()
}

func (r *Repository) getRecords(ctx context.Context, runID string) ([]contracts.ScreeningRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ticker, name, sector, price, intrinsic_value, discount,
			valuation_method, quality_passed, quality_score, quality_degraded, risk,
			investment_score, quality_score_detailed, value_score, value_rating,
			recommendation, pe_ratio, roe, debt_equity
		FROM valuefinder.screening_records
		WHERE run_id = $1
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]contracts.ScreeningRecord, 0)
	for rows.Next() {
		var rec contracts.ScreeningRecord
		var sector, method, risk, recommendation string

		err := rows.Scan(
			&rec.Ticker, &rec.Name, &sector, &rec.Price, &rec.IntrinsicValue, &rec.DiscountPct,
			&method, &rec.Quality.Passed, &rec.Quality.Score, &rec.Quality.Degraded, &risk,
			&rec.InvestmentScore, &rec.QualityScoreDetailed, &rec.ValueScore, &rec.ValueRating,
			&recommendation, &rec.PERatio, &rec.ROE, &rec.DebtToEquity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		rec.Sector = contracts.Sector(sector)
		rec.Method = contracts.ValuationMethod(method)
		rec.Risk = contracts.RiskTier(risk)
		rec.Recommendation = contracts.Recommendation(recommendation)
		records = append(records, rec)
	}

	return records, rows.Err()
}
