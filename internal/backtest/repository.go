package backtest

import (
	"context"
	"fmt"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/pkg/database"
)

// Repository handles backtest result persistence
// ⭐ SSOT: 백테스트 결과 저장/조회는 여기서만
type Repository struct {
	db database.Querier
}

// NewRepository creates a new backtest repository
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// SaveResults replaces the backtests of a screening run
func (r *Repository) SaveResults(ctx context.Context, runID string, records []contracts.BacktestRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "DELETE FROM valuefinder.backtest_records WHERE run_id = $1", runID)
	if err != nil {
		return fmt.Errorf("failed to delete old backtests: %w", err)
	}

	query := `
		INSERT INTO valuefinder.backtest_records (
			run_id, ticker, years, start_price, end_price, start_date, end_date,
			total_return, volatility, max_drawdown, return_to_volatility, observations
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	for _, b := range records {
		_, err := tx.Exec(ctx, query,
			runID, b.Ticker, b.HorizonYears, b.StartPrice, b.EndPrice, b.StartDate, b.EndDate,
			b.TotalReturn, b.Volatility, b.MaxDrawdown, b.ReturnToVolatility, b.Observations,
		)
		if err != nil {
			return fmt.Errorf("failed to insert backtest %s: %w", b.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetResults returns the backtests of a run, best return first
func (r *Repository) GetResults(ctx context.Context, runID string) ([]contracts.BacktestRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ticker, years, start_price, end_price, start_date, end_date,
			total_return, volatility, max_drawdown, return_to_volatility, observations
		FROM valuefinder.backtest_records
		WHERE run_id = $1
		ORDER BY total_return DESC, ticker
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtests: %w", err)
	}
	defer rows.Close()

	records := make([]contracts.BacktestRecord, 0)
	for rows.Next() {
		var b contracts.BacktestRecord
		err := rows.Scan(
			&b.Ticker, &b.HorizonYears, &b.StartPrice, &b.EndPrice, &b.StartDate, &b.EndDate,
			&b.TotalReturn, &b.Volatility, &b.MaxDrawdown, &b.ReturnToVolatility, &b.Observations,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan backtest: %w", err)
		}
		records = append(records, b)
	}

	return records, rows.Err()
}
