package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/valuefinder/internal/backtest"
	"github.com/wonny/valuefinder/internal/brain"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/export"
	"github.com/wonny/valuefinder/internal/s2_signals"
	"github.com/wonny/valuefinder/internal/selection"
	"github.com/wonny/valuefinder/internal/strategyconfig"
	"github.com/wonny/valuefinder/pkg/logger"
)

func sampleRecord() contracts.ScreeningRecord {
	pe := 15.0
	return contracts.ScreeningRecord{
		Ticker:          "AAA",
		Name:            "AAA Inc",
		Sector:          contracts.SectorTechnology,
		Price:           60,
		IntrinsicValue:  75,
		DiscountPct:     20,
		Method:          contracts.MethodGraham,
		Quality:         contracts.QualityVerdict{Passed: true, Score: 5},
		Risk:            contracts.RiskLow,
		InvestmentScore: 90,
		ValueRating:     "Good Value",
		Recommendation:  contracts.RecommendStrongBuy,
		PERatio:         &pe,
	}
}

func TestPrintRecords(t *testing.T) {
	var buf bytes.Buffer
	PrintRecords(&buf, []contracts.ScreeningRecord{sampleRecord()})

	out := buf.String()
	assert.Contains(t, out, "Ticker")
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "+20.0%")
	assert.Contains(t, out, "90 ★★★★")
	assert.Contains(t, out, "STRONG_BUY")

	buf.Reset()
	PrintRecords(&buf, nil)
	assert.Contains(t, buf.String(), "(none)")
}

func TestPrintBacktest(t *testing.T) {
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	merged := []contracts.MergedRecord{{
		Screening: sampleRecord(),
		Backtest: contracts.BacktestRecord{
			Ticker: "AAA", HorizonYears: 2, StartPrice: 100, EndPrice: 130,
			StartDate: start, EndDate: start.AddDate(2, 0, 0),
			TotalReturn: 30, Volatility: 1.5, MaxDrawdown: -18.18, ReturnToVolatility: 20,
		},
	}}

	var buf bytes.Buffer
	PrintBacktest(&buf, &brain.BacktestResult{
		Years:    2,
		From:     start,
		To:       start.AddDate(2, 0, 0),
		Merged:   merged,
		Analysis: backtest.Analyze(merged),
	})

	out := buf.String()
	assert.Contains(t, out, "Backtest 2 years (2024-06-03 ~ 2026-06-03)")
	assert.Contains(t, out, "+30.0%")
	assert.Contains(t, out, "-18.2%")
	assert.Contains(t, out, "Win rate")

	buf.Reset()
	PrintBacktest(&buf, &brain.BacktestResult{Years: 2})
	assert.Contains(t, buf.String(), "No candidate had enough price history")
}

func TestPrintStockAnalysis(t *testing.T) {
	rec := sampleRecord()
	rec.Quality.Degraded = true

	var buf bytes.Buffer
	PrintStockAnalysis(&buf, &brain.StockAnalysis{
		Record:      rec,
		Stars:       selection.Stars(rec.InvestmentScore),
		Opportunity: true,
		ValueScore: s2_signals.ValueScore{
			Total:     72.5,
			Rating:    "Good Value",
			Strengths: []string{"very low P/E ratio"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "AAA  AAA Inc (Technology)")
	assert.Contains(t, out, "(degraded)")
	assert.Contains(t, out, "15.00")
	assert.Regexp(t, `Debt/Equity\s+: -`, out)
	assert.Contains(t, out, "Value factors: 72.5 (Good Value)")
	assert.Contains(t, out, "very low P/E ratio")
	assert.Contains(t, out, "Opportunity")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "+5.0%", formatPct(5))
	assert.Equal(t, "-3.3%", formatPct(-3.26))
	assert.Equal(t, "-", formatOptional(nil, "%.2f"))

	v := 1.234
	assert.Equal(t, "1.23", formatOptional(&v, "%.2f"))
}

func TestBacktestOverrides(t *testing.T) {
	cfg := strategyconfig.Default()
	backtestOverrides(0, 0)(cfg)
	assert.Equal(t, strategyconfig.Default().Backtest, cfg.Backtest)

	backtestOverrides(5, 5)(cfg)
	assert.Equal(t, 5, cfg.Backtest.HorizonYears)
	assert.Equal(t, 5, cfg.Backtest.MaxCandidates)
}

func TestRunFromFile(t *testing.T) {
	dir := t.TempDir()
	sink := export.NewFileSink(dir, logger.NewNop())

	original := &contracts.ScreeningRun{
		ID:        "run-42",
		StartedAt: time.Date(2026, 6, 1, 22, 30, 0, 0, time.UTC),
		Requested: 1,
		Records:   []contracts.ScreeningRecord{sampleRecord()},
		Skipped:   []contracts.SkippedTicker{},
	}
	files, err := sink.WriteScreening(original)
	require.NoError(t, err)

	fromJSON, err := runFromFile(files.JSON)
	require.NoError(t, err)
	assert.Equal(t, "run-42", fromJSON.ID)
	require.Len(t, fromJSON.Records, 1)

	fromCSV, err := runFromFile(files.CSV)
	require.NoError(t, err)
	assert.NotEqual(t, "run-42", fromCSV.ID)
	assert.NotEmpty(t, fromCSV.ID)
	assert.Equal(t, 1, fromCSV.Requested)
	assert.Equal(t, "AAA", fromCSV.Records[0].Ticker)

	_, err = runFromFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestConfigValidateCommand(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("DATA_PROVIDER", "")
	t.Setenv("DATABASE_URL", "")

	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("screening:\n  min_discount_pct: 0\n"), 0o644))
	typo := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(typo, []byte("screening:\n  min_discont_pct: 10\n"), 0o644))
	badCron := filepath.Join(dir, "cron.yaml")
	require.NoError(t, os.WriteFile(badCron, []byte("schedule:\n  cron: \"30 22 * * *\"\n"), 0o644))

	tests := []struct {
		name    string
		path    string
		wantErr bool
		want    string
	}{
		{"valid with warning", good, false, "NO_MARGIN_OF_SAFETY"},
		{"unknown field", typo, true, ""},
		{"five-field cron", badCron, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			rootCmd.SetOut(&buf)
			rootCmd.SetErr(&buf)
			rootCmd.SetArgs([]string{"config", "validate", tt.path})

			err := rootCmd.Execute()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "Strategy OK")
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}
