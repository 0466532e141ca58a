package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
	"github.com/TangUsers/stock-analysis-saas/internal/selection"
	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
)

func sampleResult() *selection.DailyResult {
	return &selection.DailyResult{
		Status:        "success",
		TradeDate:     time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		TotalAnalyzed: 2,
		Recommendations: []contracts.InstrumentRecord{
			{
				Code: "sh.600519", Name: "贵州茅台", Rank: 1,
				PE: contracts.Float(8.5), PB: contracts.Float(1.2),
				ROE: contracts.Float(15), Dividend: contracts.Float(3.5),
				Turnover: contracts.Float(2.1), Close: contracts.Float(1680.5),
				PEScore: 53, PBScore: 38, ROEScore: 100,
				DividendScore: 70, LiquidityScore: 41,
				CompositeScore: 66.8,
			},
			{
				Code: "sz.000001", Rank: 2,
				PE: contracts.Float(12), CompositeScore: 55.1,
			},
		},
	}
}

func fixedGenerator(t *testing.T) *Generator {
	t.Helper()
	g := NewGenerator(t.TempDir(), logger.Nop())
	g.now = func() time.Time {
		return time.Date(2025, 6, 20, 18, 30, 0, 0, time.UTC)
	}
	return g
}

func TestBuildJSON(t *testing.T) {
	g := fixedGenerator(t)

	report := g.BuildJSON(sampleResult())

	assert.Equal(t, "2025-06-20", report.ReportDate)
	assert.Equal(t, 2, report.TotalRecommendations)
	require.Len(t, report.Recommendations, 2)

	first := report.Recommendations[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, "sh.600519", first.Code)
	assert.Equal(t, 8.5, first.PE)
	assert.Equal(t, 66.8, first.CompositeScore)
	assert.Equal(t, 100.0, first.ScoreBreakdown.ROEScore)
	assert.Nil(t, first.MarketCap)

	// Missing metrics serialize as zero
	assert.Equal(t, 0.0, report.Recommendations[1].ROE)
}

func TestWriteJSON(t *testing.T) {
	g := fixedGenerator(t)

	path, err := g.WriteJSON(sampleResult())
	require.NoError(t, err)
	assert.Equal(t, "recommendations-2025-06-20.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded JSONReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.TotalRecommendations)
}

func TestRenderMarkdown(t *testing.T) {
	g := fixedGenerator(t)

	content, err := g.RenderMarkdown(sampleResult())
	require.NoError(t, err)

	assert.Contains(t, content, "# 每日股票推荐报告")
	assert.Contains(t, content, "**生成时间**: 2025-06-20 18:30:00")
	assert.Contains(t, content, "**推荐股票数量**: 2 只")
	assert.Contains(t, content, "| 1 | sh.600519 | 1680.50 | 8.50 | 1.20 | 15.00 | 3.50 | 2.10 | **66.8** |")
	assert.Contains(t, content, "## ⚠️ 风险提示")
}

func TestWriteMarkdown(t *testing.T) {
	g := fixedGenerator(t)

	path, err := g.WriteMarkdown(sampleResult())
	require.NoError(t, err)
	assert.Equal(t, "recommendations-2025-06-20.md", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "🏆 推荐股票")
}

func TestRenderMarkdown_NoRecommendations(t *testing.T) {
	g := fixedGenerator(t)

	content, err := g.RenderMarkdown(&selection.DailyResult{Status: "warning"})
	require.NoError(t, err)
	assert.Contains(t, content, "**推荐股票数量**: 0 只")
}
