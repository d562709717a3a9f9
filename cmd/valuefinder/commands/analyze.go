package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/valuefinder/internal/selection"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <ticker>",
	Short: "단일 종목 분석",
	Long: `한 종목의 내재가치, 품질, 리스크, 멀티팩터 점수를 출력합니다.

Example:
  go run ./cmd/valuefinder analyze KO`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(selection.NormalizeTickers(args)) == 0 {
		return fmt.Errorf("ticker is required")
	}

	a, err := newApp(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	analysis, err := a.orchestrator.Analyze(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("analyze %s: %w", args[0], err)
	}

	PrintStockAnalysis(cmd.OutOrStdout(), analysis)
	return nil
}
