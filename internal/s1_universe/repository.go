package s1_universe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/pkg/database"
)

// ErrNoUniverse is returned when no snapshot was saved yet
var ErrNoUniverse = errors.New("no universe snapshot")

// Repository handles data persistence for S1
type Repository struct {
	db database.Querier
}

// NewRepository creates a new Repository instance
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// SaveUniverse saves a universe snapshot (one per day)
func (r *Repository) SaveUniverse(ctx context.Context, universe *contracts.Universe) error {
	excludedJSON, err := json.Marshal(universe.Excluded)
	if err != nil {
		return fmt.Errorf("marshal excluded: %w", err)
	}

	query := `
		INSERT INTO valuefinder.universe_snapshots (
			snapshot_date,
			source,
			tickers,
			excluded,
			created_at
		) VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (snapshot_date) DO UPDATE SET
			source = EXCLUDED.source,
			tickers = EXCLUDED.tickers,
			excluded = EXCLUDED.excluded,
			created_at = NOW()
	`

	_, err = r.db.Exec(ctx, query,
		universe.Date,
		universe.Source,
		universe.Tickers,
		excludedJSON,
	)
	if err != nil {
		return fmt.Errorf("insert universe: %w", err)
	}

	return nil
}

// GetLatestUniverse retrieves the most recent universe snapshot
func (r *Repository) GetLatestUniverse(ctx context.Context) (*contracts.Universe, error) {
	query := `
		SELECT
			snapshot_date,
			source,
			tickers,
			excluded
		FROM valuefinder.universe_snapshots
		ORDER BY snapshot_date DESC
		LIMIT 1
	`

	universe := &contracts.Universe{
		Excluded: make(map[string]string),
	}

	var excludedJSON []byte
	err := r.db.QueryRow(ctx, query).Scan(
		&universe.Date,
		&universe.Source,
		&universe.Tickers,
		&excludedJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoUniverse
	}
	if err != nil {
		return nil, fmt.Errorf("query latest universe: %w", err)
	}

	if len(excludedJSON) > 0 {
		if err := json.Unmarshal(excludedJSON, &universe.Excluded); err != nil {
			return nil, fmt.Errorf("unmarshal excluded: %w", err)
		}
	}

	return universe, nil
}
