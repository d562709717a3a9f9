package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/valuefinder/internal/brain"
	"github.com/wonny/valuefinder/internal/strategyconfig"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen [tickers...]",
	Short: "가치주 스크리닝 실행",
	Long: `유니버스를 스크리닝하고 상위 기회/가치 함정을 출력합니다.

티커 인자 > --universe-file > 전략 파일 > 기본 유니버스 순으로 대상을 결정합니다.

Example:
  go run ./cmd/valuefinder screen
  go run ./cmd/valuefinder screen AAPL MSFT KO --save
  go run ./cmd/valuefinder screen --universe-file tickers.txt --out results`,
	RunE: runScreen,
}

var (
	screenUniverseFile string
	screenOut          string
	screenSave         bool
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenUniverseFile, "universe-file", "", "티커 목록 파일 (한 줄에 하나, # 주석)")
	screenCmd.Flags().StringVar(&screenOut, "out", "", "결과 JSON/CSV 디렉토리 (default: OUTPUT_DIR)")
	screenCmd.Flags().BoolVar(&screenSave, "save", false, "결과를 파일/DB에 저장")
}

func runScreen(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{
		outputDir: screenOut,
		tune: func(s *strategyconfig.Config) {
			if screenUniverseFile != "" {
				s.Universe.File = screenUniverseFile
			}
		},
	})
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.orchestrator.Screen(ctx, brain.RunConfig{Tickers: args, Save: screenSave})
	if err != nil {
		return fmt.Errorf("screening: %w", err)
	}

	out := cmd.OutOrStdout()
	PrintScreening(out, res)
	if screenSave {
		fmt.Fprintln(out)
		PrintSuccess(out, fmt.Sprintf("Saved run %s to %s", res.Run.ID, a.cfg.OutputDir))
	}
	return nil
}
