package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [code]",
	Short: "单只股票技术分析",
	Long: `对一只股票做完整的技术分析。

输出内容:
- MA / MACD / RSI / 布林带 / 量价关系
- 综合信号评分与趋势判断

Example:
  go run ./cmd/screener analyze sh.600519
  go run ./cmd/screener analyze sz.000001 --name 平安银行 --days 90`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeName string
	analyzeDays int
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "股票名称 (默认用代码)")
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 0, "K线历史天数 (默认取配置)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	code := args[0]

	d, err := initDeps(false)
	if err != nil {
		return err
	}
	defer d.close()

	days := analyzeDays
	if days <= 0 {
		days = d.cfg.Analysis.KlineDays
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := d.provider.Acquire(ctx); err != nil {
		return fmt.Errorf("provider acquire: %w", err)
	}
	defer d.provider.Release()

	analysis, err := d.pipeline.AnalyzeStock(ctx, code, analyzeName, days)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", code, err)
	}

	out, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	fmt.Println(string(out))
	return nil
}
