package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wonny/valuefinder/internal/brain"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/export"
	"github.com/wonny/valuefinder/internal/strategyconfig"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest [tickers...]",
	Short: "상위 기회 백테스트",
	Long: `스크리닝 결과의 상위 기회를 과거 가격으로 재생합니다.

대상 실행:
  --run-id     저장된 실행 (DB 또는 현재 프로세스)
  --from-file  내보낸 screening_*.json / *.csv
  (없으면)     새로 스크리닝

Example:
  go run ./cmd/valuefinder backtest --years 3 --max 5
  go run ./cmd/valuefinder backtest --from-file data/screening_20260601_223000.csv`,
	RunE: runBacktest,
}

var (
	backtestRunID    string
	backtestFromFile string
	backtestYears    int
	backtestMax      int
	backtestOut      string
	backtestSave     bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&backtestRunID, "run-id", "", "저장된 스크리닝 실행 ID")
	backtestCmd.Flags().StringVar(&backtestFromFile, "from-file", "", "내보낸 스크리닝 파일 (.json|.csv)")
	backtestCmd.Flags().IntVar(&backtestYears, "years", 0, "백테스트 기간 (년, default: 전략 파일)")
	backtestCmd.Flags().IntVar(&backtestMax, "max", 0, "최대 후보 수 (default: 전략 파일)")
	backtestCmd.Flags().StringVar(&backtestOut, "out", "", "결과 디렉토리 (default: OUTPUT_DIR)")
	backtestCmd.Flags().BoolVar(&backtestSave, "save", false, "결과를 DB에도 저장")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	if backtestRunID != "" && backtestFromFile != "" {
		return fmt.Errorf("--run-id and --from-file are mutually exclusive")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{
		outputDir: backtestOut,
		tune:      backtestOverrides(backtestYears, backtestMax),
	})
	if err != nil {
		return err
	}
	defer a.Close()

	run, err := a.loadBacktestRun(ctx, args)
	if err != nil {
		return err
	}

	res, err := a.orchestrator.Backtest(ctx, run, backtestSave)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	out := cmd.OutOrStdout()
	PrintBacktest(out, res)

	// --save면 sink가 이미 파일을 기록
	if !backtestSave && len(res.Merged) > 0 {
		path, err := a.files.WriteBacktests(res.RunID, res.Merged)
		if err != nil {
			return fmt.Errorf("export backtest: %w", err)
		}
		fmt.Fprintln(out)
		PrintSuccess(out, "Exported "+path)
	}
	return nil
}

func backtestOverrides(years, maxCandidates int) func(*strategyconfig.Config) {
	return func(s *strategyconfig.Config) {
		if years > 0 {
			s.Backtest.HorizonYears = years
		}
		if maxCandidates > 0 {
			s.Backtest.MaxCandidates = maxCandidates
		}
	}
}

// loadBacktestRun resolves the run whose opportunities are replayed
func (a *app) loadBacktestRun(ctx context.Context, tickers []string) (*contracts.ScreeningRun, error) {
	switch {
	case backtestRunID != "":
		run, err := a.store.GetRun(ctx, backtestRunID)
		if err != nil {
			return nil, fmt.Errorf("load run %s: %w", backtestRunID, err)
		}
		return run, nil

	case backtestFromFile != "":
		return runFromFile(backtestFromFile)

	default:
		res, err := a.orchestrator.Screen(ctx, brain.RunConfig{Tickers: tickers})
		if err != nil {
			return nil, fmt.Errorf("screening: %w", err)
		}
		return res.Run, nil
	}
}

// runFromFile rebuilds a run from an exported screening file. JSON keeps the
// original run; CSV records get a fresh run ID.
func runFromFile(path string) (*contracts.ScreeningRun, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return export.ReadScreeningJSON(path)
	}

	records, err := export.ReadScreeningFile(path)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &contracts.ScreeningRun{
		ID:         uuid.NewString(),
		StartedAt:  now,
		FinishedAt: now,
		Requested:  len(records),
		Records:    records,
		Skipped:    []contracts.SkippedTicker{},
	}, nil
}
