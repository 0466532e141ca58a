package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TangUsers/stock-analysis-saas/internal/scheduler"
	"github.com/TangUsers/stock-analysis-saas/internal/selection"
	"github.com/TangUsers/stock-analysis-saas/pkg/database"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "调度器管理",
	Long: `启动调度器或管理定时任务。

Subcommands:
  start   - 启动调度器
  list    - 查看已注册任务
  run     - 立即执行某个任务

Example:
  go run ./cmd/screener scheduler start
  go run ./cmd/screener scheduler run daily-recommend`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "启动调度器",
		Long: `启动调度器并注册所有任务。

注册的任务:
- daily-recommend: 每个交易日收盘后执行选股并生成报告

调度器通过 Ctrl+C 停止。`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "查看已注册任务",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "立即执行某个任务",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stock Analysis Scheduler ===")

	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	if err := sched.RunJobWait(context.Background(), jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Println("Job finished")
	return nil
}

func initScheduler() (*scheduler.Scheduler, func(), error) {
	d, err := initDeps(false)
	if err != nil {
		return nil, nil, err
	}

	var saver scheduler.RunSaver
	cleanup := d.close
	if d.cfg.Analysis.SaveToDB {
		db, err := database.New(d.cfg)
		if err != nil {
			d.close()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		saver = selection.NewRepository(db.Pool)
		cleanup = func() {
			db.Close()
			d.close()
		}
	}

	sched := scheduler.New(d.log)

	job := scheduler.NewDailyRecommendJob(
		d.pipeline, d.reports, saver,
		d.cfg.Analysis.TopN, d.cfg.Analysis.CronSpec, d.log,
	)
	if err := sched.AddJob(job); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("register job: %w", err)
	}

	return sched, cleanup, nil
}
