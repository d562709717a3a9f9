package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/valuefinder/internal/api"
	"github.com/wonny/valuefinder/internal/api/handlers"
	"github.com/wonny/valuefinder/internal/scheduler"
	"github.com/wonny/valuefinder/internal/scheduler/jobs"
	"github.com/wonny/valuefinder/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                                  - Health check
  POST /api/screening/run                       - 스크리닝 실행 (옵션: 백테스트)
  GET  /api/screening/latest                    - 최신 실행 (필터: min_score, sector, ...)
  GET  /api/screening/{runID}                   - 실행 조회
  GET  /api/screening/{runID}/opportunities     - 상위 기회
  GET  /api/screening/{runID}/value-traps       - 가치 함정
  POST /api/backtest/run                        - 저장된 실행 백테스트
  GET  /api/stocks/{ticker}/analysis            - 단일 종목 분석
  GET  /ws/screening                            - 실시간 스크리닝 스트림
  GET  /metrics                                 - Prometheus

Example:
  go run ./cmd/valuefinder api
  go run ./cmd/valuefinder api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "전략 파일의 정기 스크리닝도 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	// 스크리닝 진행 상황을 WebSocket으로 중계
	hub := handlers.NewStreamHub(a.log)
	a.screener.OnRecord(hub.OnRecord)

	cache := redis.NewCache(a.redis, "valuefinder")
	router := api.NewRouter(api.Handlers{
		Screening: handlers.NewScreeningHandler(a.orchestrator, a.store, cache, hub, a.log),
		Backtest:  handlers.NewBacktestHandler(a.orchestrator, a.store, a.log),
		Stock:     handlers.NewStockHandler(a.orchestrator, cache, a.log),
		Stream:    hub,
	}, a.metrics, a.log)

	server := api.New(a.cfg, a.log, router)

	var sched *scheduler.Scheduler
	if apiWithScheduler || a.strategy.Schedule.Enabled {
		sched, err = newScheduler(a)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	// Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	out := cmd.OutOrStdout()
	PrintSuccess(out, fmt.Sprintf("Server running on http://localhost:%s", a.cfg.Port))
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	a.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}

// newScheduler registers the daily screening job
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log)
	job := jobs.NewDailyScreeningJob(a.orchestrator, a.strategy.Schedule, a.log)
	if err := sched.AddJob(job); err != nil {
		return nil, err
	}
	return sched, nil
}
