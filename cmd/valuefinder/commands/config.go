package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/valuefinder/internal/scheduler"
	"github.com/wonny/valuefinder/internal/strategyconfig"
	"github.com/wonny/valuefinder/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "설정 관리",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [strategy.yaml]",
	Short: "전략 파일 및 환경 설정 검증",
	Long: `전략 YAML과 환경 설정을 검증하고 해시와 경고를 출력합니다.

Example:
  go run ./cmd/valuefinder config validate config/strategy/value_default.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.LoadFrom(configFile, env)
	if err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	PrintSuccess(out, fmt.Sprintf("Environment OK (env=%s, provider=%s)", cfg.Env, cfg.Data.Provider))

	path := strategyFile
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		path = cfg.StrategyConfigPath
	}

	strategy, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if err := scheduler.ValidateSchedule(strategy.Schedule.Cron); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "(built-in defaults)"
	}
	PrintSuccess(out, "Strategy OK: "+source)
	PrintKeyValue(out, "Strategy", strategy.Meta.StrategyID+" v"+strategy.Meta.Version, 10)
	PrintKeyValue(out, "Hash", hash, 10)
	PrintKeyValue(out, "Schedule", fmt.Sprintf("%s (enabled=%t)", strategy.Schedule.Cron, strategy.Schedule.Enabled), 10)

	for _, w := range strategyconfig.Warn(strategy) {
		PrintWarning(out, w.Code+": "+w.Message)
	}
	return nil
}
