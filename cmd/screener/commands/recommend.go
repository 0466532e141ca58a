package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "运行每日选股并生成报告",
	Long: `执行完整的每日选股流程。

流程:
1. 抓取股票列表
2. 拉取基本面快照
3. 筛选 + 评分 + 排名
4. 写出 JSON 和 Markdown 报告

Example:
  go run ./cmd/screener recommend
  go run ./cmd/screener recommend --top 20 --save`,
	RunE: runRecommend,
}

var (
	recommendTopN int
	recommendSave bool
)

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().IntVar(&recommendTopN, "top", 0, "推荐数量 (默认取配置)")
	recommendCmd.Flags().BoolVar(&recommendSave, "save", false, "保存结果到数据库")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	fmt.Println("=== 每日股票推荐 ===")

	d, err := initDeps(recommendSave)
	if err != nil {
		return err
	}
	defer d.close()

	topN := recommendTopN
	if topN <= 0 {
		topN = d.cfg.Analysis.TopN
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := d.pipeline.RunDaily(ctx, topN)
	if err != nil {
		return fmt.Errorf("daily run: %w", err)
	}

	if result.Status != "success" {
		fmt.Printf("\n⚠️  %s: %s\n", result.Status, result.Message)
		return nil
	}

	jsonPath, err := d.reports.WriteJSON(result)
	if err != nil {
		return fmt.Errorf("write JSON report: %w", err)
	}
	mdPath, err := d.reports.WriteMarkdown(result)
	if err != nil {
		return fmt.Errorf("write Markdown report: %w", err)
	}

	if recommendSave && d.repo != nil {
		if err := d.repo.SaveRun(ctx, result); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Println("已保存到数据库")
	}

	fmt.Printf("\n✅ 交易日 %s, 分析 %d 只, 推荐 %d 只\n",
		result.TradeDate.Format("2006-01-02"), result.TotalAnalyzed, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		fmt.Printf("  %2d. %-10s %-8s 综合评分 %.1f\n", rec.Rank, rec.Code, rec.Name, rec.CompositeScore)
	}
	fmt.Printf("\n报告: %s\n      %s\n", jsonPath, mdPath)

	return nil
}
