package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TangUsers/stock-analysis-saas/internal/external/baostock"
	"github.com/TangUsers/stock-analysis-saas/internal/fundamental"
	"github.com/TangUsers/stock-analysis-saas/internal/indicator"
	"github.com/TangUsers/stock-analysis-saas/internal/report"
	"github.com/TangUsers/stock-analysis-saas/internal/selection"
	"github.com/TangUsers/stock-analysis-saas/pkg/config"
	"github.com/TangUsers/stock-analysis-saas/pkg/database"
	"github.com/TangUsers/stock-analysis-saas/pkg/httputil"
	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
	"github.com/TangUsers/stock-analysis-saas/pkg/redis"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "A股每日选股分析系统",
	Long: `Stock Analysis Screener CLI

技术指标 + 基本面筛选的每日选股系统。

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener analyze sh.600519
  go run ./cmd/screener recommend --top 10
  go run ./cmd/screener api
  go run ./cmd/screener scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// deps bundles the shared wiring every command needs
type deps struct {
	cfg      *config.Config
	log      *logger.Logger
	provider *baostock.Client
	pipeline *selection.Pipeline
	reports  *report.Generator
	db       *database.DB          // nil when persistence is off
	repo     *selection.Repository // nil when persistence is off
	rdb      *redis.Client
}

// initDeps wires config, logger, cache, the market data provider and the
// selection pipeline. needDB also opens the database connection.
func initDeps(needDB bool) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(rdb, "screener")

	httpClient := httputil.New(cfg, log)
	provider := baostock.New(cfg, httpClient, cache, log)

	scorer := fundamental.NewDefaultScorer(log)
	agg := indicator.NewAggregator(indicator.DefaultScoreParams(), log)
	pipeline := selection.NewPipeline(provider, scorer, agg, log)
	reports := report.NewGenerator(cfg.Analysis.OutputDir, log)

	d := &deps{
		cfg:      cfg,
		log:      log,
		provider: provider,
		pipeline: pipeline,
		reports:  reports,
		rdb:      rdb,
	}

	if needDB {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		d.db = db
		d.repo = selection.NewRepository(db.Pool)
	}

	return d, nil
}

// close releases every connection initDeps opened
func (d *deps) close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.rdb != nil {
		_ = d.rdb.Close()
	}
}
