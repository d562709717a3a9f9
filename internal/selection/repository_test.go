package selection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/valuefinder/internal/contracts"
)

var recordColumns = []string{
	"ticker", "name", "sector", "price", "intrinsic_value", "discount",
	"valuation_method", "quality_passed", "quality_score", "quality_degraded", "risk",
	"investment_score", "quality_score_detailed", "value_score", "value_rating",
	"recommendation", "pe_ratio", "roe", "debt_equity",
}

func sampleRun() *contracts.ScreeningRun {
	roe := 0.2
	start := time.Date(2026, 3, 2, 22, 30, 0, 0, time.UTC)
	return &contracts.ScreeningRun{
		ID:         "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(time.Minute),
		ConfigHash: "abc",
		Requested:  3,
		Records: []contracts.ScreeningRecord{
			{Ticker: "AAA", Name: "AAA Inc", Sector: contracts.SectorOther, Price: 60, IntrinsicValue: 75, DiscountPct: 20,
				Method: contracts.MethodGraham, Quality: contracts.QualityVerdict{Passed: true, Score: 5}, Risk: contracts.RiskLow,
				InvestmentScore: 90, QualityScoreDetailed: 8, ValueScore: 40, ValueRating: "SELL",
				Recommendation: contracts.RecommendStrongBuy, ROE: &roe},
			{Ticker: "BBB", Name: "BBB Inc", Sector: contracts.SectorEnergy, Price: 10, IntrinsicValue: 12, DiscountPct: 16.67,
				Method: contracts.MethodGraham, Quality: contracts.QualityVerdict{Score: 1}, Risk: contracts.RiskMedium,
				InvestmentScore: 48.33, Recommendation: contracts.RecommendInvestigate},
		},
		Skipped: []contracts.SkippedTicker{{Ticker: "CCC", Reason: contracts.SkipFetchFailed}},
	}
}

// recordArgs mirrors the 21 placeholders of one screening_records insert
func recordArgs(runID string, position int, rec contracts.ScreeningRecord) []interface{} {
	return []interface{}{
		runID, position, rec.Ticker, rec.Name, string(rec.Sector), rec.Price, rec.IntrinsicValue, rec.DiscountPct,
		string(rec.Method), rec.Quality.Passed, rec.Quality.Score, rec.Quality.Degraded, string(rec.Risk),
		rec.InvestmentScore, rec.QualityScoreDetailed, rec.ValueScore, rec.ValueRating,
		string(rec.Recommendation), rec.PERatio, rec.ROE, rec.DebtToEquity,
	}
}

func TestRepository_SaveRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	run := sampleRun()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO valuefinder.screening_runs").
		WithArgs(run.ID, run.StartedAt, run.FinishedAt, run.ConfigHash, run.Requested, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("DELETE FROM valuefinder.screening_records").
		WithArgs(run.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	for i, rec := range run.Records {
		mock.ExpectExec("INSERT INTO valuefinder.screening_records").
			WithArgs(recordArgs(run.ID, i, rec)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()
	mock.ExpectRollback()

	require.NoError(t, NewRepository(mock).SaveRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveRunRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	run := sampleRun()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO valuefinder.screening_runs").
		WithArgs(run.ID, run.StartedAt, run.FinishedAt, run.ConfigHash, run.Requested, pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = NewRepository(mock).SaveRun(context.Background(), run)
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	run := sampleRun()
	roe := 0.2

	mock.ExpectQuery("SELECT started_at, finished_at, config_hash, requested, skipped").
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"started_at", "finished_at", "config_hash", "requested", "skipped"}).
			AddRow(run.StartedAt, run.FinishedAt, "abc", 3, []byte(`[{"ticker":"CCC","reason":"fetch_failed"}]`)))
	mock.ExpectQuery("FROM valuefinder.screening_records").
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows(recordColumns).
			AddRow("AAA", "AAA Inc", "Other", 60.0, 75.0, 20.0,
				"graham", true, 5, false, "Low",
				90.0, 8, 40.0, "SELL",
				"STRONG_BUY", nil, &roe, nil))

	got, err := NewRepository(mock).GetRun(context.Background(), "run-1")
	require.NoError(t, err)

	assert.Equal(t, 3, got.Requested)
	assert.Equal(t, run.Skipped, got.Skipped)
	require.Len(t, got.Records, 1)
	assert.Equal(t, run.Records[0], got.Records[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetRunNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM valuefinder.screening_runs").
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err = NewRepository(mock).GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRepository_ListRuns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("FROM valuefinder.screening_runs").
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"run_id", "started_at", "finished_at", "config_hash", "requested"}).
			AddRow("b", now, now, "h", 10).
			AddRow("a", now.Add(-time.Hour), now.Add(-time.Hour), "h", 8))

	runs, err := NewRepository(mock).ListRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)
	assert.Equal(t, 8, runs[1].Requested)
}
