package database

import (
	"context"
	"fmt"
)

// schemaStatements creates the result tables. Idempotent.
var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS valuefinder`,
	`CREATE TABLE IF NOT EXISTS valuefinder.screening_runs (
		run_id      TEXT PRIMARY KEY,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		config_hash TEXT NOT NULL DEFAULT '',
		requested   INTEGER NOT NULL,
		skipped     JSONB NOT NULL DEFAULT '[]',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS valuefinder.screening_records (
		run_id                 TEXT NOT NULL REFERENCES valuefinder.screening_runs(run_id) ON DELETE CASCADE,
		position               INTEGER NOT NULL,
		ticker                 TEXT NOT NULL,
		name                   TEXT NOT NULL,
		sector                 TEXT NOT NULL,
		price                  DOUBLE PRECISION NOT NULL,
		intrinsic_value        DOUBLE PRECISION NOT NULL,
		discount               DOUBLE PRECISION NOT NULL,
		valuation_method       TEXT NOT NULL,
		quality_passed         BOOLEAN NOT NULL,
		quality_score          INTEGER NOT NULL,
		quality_degraded       BOOLEAN NOT NULL DEFAULT FALSE,
		risk                   TEXT NOT NULL,
		investment_score       DOUBLE PRECISION NOT NULL,
		quality_score_detailed INTEGER NOT NULL,
		value_score            DOUBLE PRECISION NOT NULL,
		value_rating           TEXT NOT NULL,
		recommendation         TEXT NOT NULL,
		pe_ratio               DOUBLE PRECISION,
		roe                    DOUBLE PRECISION,
		debt_equity            DOUBLE PRECISION,
		PRIMARY KEY (run_id, ticker)
	)`,
	`CREATE TABLE IF NOT EXISTS valuefinder.backtest_records (
		run_id               TEXT NOT NULL REFERENCES valuefinder.screening_runs(run_id) ON DELETE CASCADE,
		ticker               TEXT NOT NULL,
		years                INTEGER NOT NULL,
		start_price          DOUBLE PRECISION NOT NULL,
		end_price            DOUBLE PRECISION NOT NULL,
		start_date           DATE NOT NULL,
		end_date             DATE NOT NULL,
		total_return         DOUBLE PRECISION NOT NULL,
		volatility           DOUBLE PRECISION NOT NULL,
		max_drawdown         DOUBLE PRECISION NOT NULL,
		return_to_volatility DOUBLE PRECISION NOT NULL,
		observations         INTEGER NOT NULL,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (run_id, ticker)
	)`,
	`CREATE TABLE IF NOT EXISTS valuefinder.universe_snapshots (
		snapshot_date DATE PRIMARY KEY,
		source        TEXT NOT NULL,
		tickers       TEXT[] NOT NULL,
		excluded      JSONB NOT NULL DEFAULT '{}',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_screening_runs_started ON valuefinder.screening_runs (started_at DESC)`,
}

// EnsureSchema creates the result tables if missing
func EnsureSchema(ctx context.Context, q Querier) error {
	for i, stmt := range schemaStatements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
