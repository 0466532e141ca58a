package scheduler

import (
	"context"
	"fmt"

	"github.com/TangUsers/stock-analysis-saas/internal/report"
	"github.com/TangUsers/stock-analysis-saas/internal/selection"
	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
)

// RunSaver persists a finished daily run
type RunSaver interface {
	SaveRun(ctx context.Context, result *selection.DailyResult) error
}

// DailyRecommendJob runs the daily recommendation flow, writes the
// reports and optionally persists the run.
type DailyRecommendJob struct {
	pipeline *selection.Pipeline
	reports  *report.Generator
	saver    RunSaver // nil disables persistence
	topN     int
	cronSpec string
	logger   *logger.Logger
}

// NewDailyRecommendJob creates the daily recommendation job
func NewDailyRecommendJob(pipeline *selection.Pipeline, reports *report.Generator, saver RunSaver, topN int, cronSpec string, log *logger.Logger) *DailyRecommendJob {
	return &DailyRecommendJob{
		pipeline: pipeline,
		reports:  reports,
		saver:    saver,
		topN:     topN,
		cronSpec: cronSpec,
		logger:   log,
	}
}

// Name implements Job
func (j *DailyRecommendJob) Name() string {
	return "daily-recommend"
}

// Schedule implements Job
func (j *DailyRecommendJob) Schedule() string {
	return j.cronSpec
}

// Run implements Job
func (j *DailyRecommendJob) Run(ctx context.Context) error {
	result, err := j.pipeline.RunDaily(ctx, j.topN)
	if err != nil {
		return fmt.Errorf("daily run failed: %w", err)
	}

	if result.Status != "success" {
		j.logger.WithFields(map[string]interface{}{
			"status":  result.Status,
			"message": result.Message,
		}).Warn("Daily run produced no recommendations")
		return nil
	}

	if _, err := j.reports.WriteJSON(result); err != nil {
		return fmt.Errorf("write JSON report failed: %w", err)
	}
	if _, err := j.reports.WriteMarkdown(result); err != nil {
		return fmt.Errorf("write Markdown report failed: %w", err)
	}

	if j.saver != nil {
		if err := j.saver.SaveRun(ctx, result); err != nil {
			return fmt.Errorf("persist run failed: %w", err)
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"trade_date":      result.TradeDate.Format("2006-01-02"),
		"recommendations": len(result.Recommendations),
	}).Info("Daily recommendation job finished")
	return nil
}
