package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/TangUsers/stock-analysis-saas/internal/api"
	"github.com/TangUsers/stock-analysis-saas/internal/api/handlers"
	"github.com/TangUsers/stock-analysis-saas/internal/selection"
	"github.com/TangUsers/stock-analysis-saas/pkg/database"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "启动 API 服务器",
	Long: `启动 REST API 服务器。

Endpoints:
  GET  /health                         - Health check
  GET  /api/stocks/{code}/analysis     - 单只股票技术分析
  GET  /api/recommendations            - 查询推荐结果
  POST /api/recommendations/run        - 立即执行每日选股

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8089`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 服务器端口 (默认取配置)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stock Analysis API Server ===")

	d, err := initDeps(false)
	if err != nil {
		return err
	}
	defer d.close()

	cfg := d.cfg
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// Persistence is optional for the API: runs are read from and saved
	// to the database only when it is configured.
	var store handlers.RunStore
	var saver handlers.RunSaver
	if cfg.Analysis.SaveToDB {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo := selection.NewRepository(db.Pool)
		store, saver = repo, repo
	}

	analysisHandler := handlers.NewAnalysisHandler(d.pipeline, d.provider, cfg, d.log)
	recommendHandler := handlers.NewRecommendationHandler(d.pipeline, d.reports, store, saver, cfg, d.log)

	router := api.NewRouter(analysisHandler, recommendHandler, d.log)
	server := api.New(cfg, d.log, router)

	go func() {
		if err := server.Start(); err != nil {
			d.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/stocks/{code}/analysis")
	fmt.Println("  GET  /api/recommendations")
	fmt.Println("  POST /api/recommendations/run")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	d.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	d.log.Info("Server stopped")
	return nil
}
