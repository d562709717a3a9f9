package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/valuefinder/internal/scheduler"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `정기 스크리닝 스케줄러를 시작하거나 작업을 조회합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 작업 즉시 실행

Example:
  go run ./cmd/valuefinder scheduler start
  go run ./cmd/valuefinder scheduler run daily_screening`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 작업을 스케줄합니다.

등록되는 작업:
- daily_screening: 전략 파일 schedule.cron (기본 평일 22:30)`,
		RunE: runSchedulerStart,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  runSchedulerList,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run <job>",
		Short: "작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerRun,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}
	sched.Start()

	out := cmd.OutOrStdout()
	PrintSuccess(out, "Scheduler started")
	printJobs(cmd, sched.GetJobStats())
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	if !a.strategy.Schedule.Enabled {
		PrintWarning(cmd.OutOrStdout(), "schedule.enabled is false: jobs only run via 'scheduler start' or 'api --with-scheduler'")
	}
	printJobs(cmd, sched.GetJobStats())
	return nil
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := newScheduler(a)
	if err != nil {
		return err
	}

	result, err := sched.RunNow(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempts: %s", result.JobName, result.Attempts, result.Error)
	}
	PrintSuccess(out, fmt.Sprintf("Job %s completed in %s", result.JobName, result.Duration.Round(time.Millisecond)))
	return nil
}

func printJobs(cmd *cobra.Command, stats map[string]scheduler.JobStats) {
	out := cmd.OutOrStdout()
	widths := []int{18, 18, 20}
	PrintTableHeader(out, []string{"Job", "Schedule", "Next run"}, widths)
	for name, st := range stats {
		next := "-"
		if st.NextRun != nil {
			next = st.NextRun.Format("2006-01-02 15:04:05")
		}
		PrintTableRow(out, []string{name, st.Schedule, next}, widths)
	}
}
