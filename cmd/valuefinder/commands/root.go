package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile   string
	env          string
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "valuefinder",
	Short: "valuefinder - 가치주 스크리너 & 백테스터",
	Long: `valuefinder CLI

Graham 내재가치 기반 가치주 스크리닝.
유니버스 → 스크리닝 → 랭킹 → 백테스트 → 저장.

Usage:
  go run ./cmd/valuefinder [command]

Examples:
  go run ./cmd/valuefinder screen
  go run ./cmd/valuefinder screen AAPL MSFT JNJ --save
  go run ./cmd/valuefinder backtest --years 3
  go run ./cmd/valuefinder analyze KO
  go run ./cmd/valuefinder api --port 8089`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: STRATEGY_CONFIG or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
