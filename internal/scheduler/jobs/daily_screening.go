package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/valuefinder/internal/brain"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/strategyconfig"
	"github.com/wonny/valuefinder/pkg/logger"
)

// ErrNothingFetched marks a run where no ticker could be fetched at all
var ErrNothingFetched = errors.New("no fundamentals could be fetched")

// Runner is the pipeline entry point used by the job
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// DailyScreeningJob screens the configured universe, backtests the top
// opportunities and saves both through the orchestrator's sink
// ⭐ SSOT: 정기 스크리닝 스케줄은 이 Job에서만
type DailyScreeningJob struct {
	runner   Runner
	schedule string
	logger   *logger.Logger
}

// NewDailyScreeningJob creates the job from the strategy schedule
func NewDailyScreeningJob(runner Runner, schedule strategyconfig.Schedule, log *logger.Logger) *DailyScreeningJob {
	return &DailyScreeningJob{
		runner:   runner,
		schedule: schedule.Cron,
		logger:   log.WithField("job", "daily_screening"),
	}
}

// Name returns the job name
func (j *DailyScreeningJob) Name() string {
	return "daily_screening"
}

// Schedule returns the cron schedule (with seconds)
func (j *DailyScreeningJob) Schedule() string {
	return j.schedule
}

// Run executes one screening + backtest cycle
func (j *DailyScreeningJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled screening")

	result, err := j.runner.Run(ctx, brain.RunConfig{
		WithBacktest: true,
		Save:         true,
	})
	if err != nil {
		return fmt.Errorf("scheduled screening: %w", err)
	}

	run := result.Screening.Run
	// 전 종목 수집 실패 → 재시도 대상
	if run.Requested > 0 && run.CountSkipped(contracts.SkipFetchFailed) == run.Requested {
		return fmt.Errorf("run %s: %w", run.ID, ErrNothingFetched)
	}

	fields := map[string]interface{}{
		"run_id":        run.ID,
		"records":       len(run.Records),
		"opportunities": len(result.Screening.Opportunities),
		"value_traps":   len(result.Screening.ValueTraps),
		"duration":      result.Duration.String(),
	}
	if result.Backtest != nil {
		fields["backtested"] = len(result.Backtest.Merged)
		fields["average_return"] = result.Backtest.Analysis.AverageReturn
	}
	j.logger.WithFields(fields).Info("Scheduled screening completed")

	return nil
}
