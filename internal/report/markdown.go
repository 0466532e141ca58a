package report

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/TangUsers/stock-analysis-saas/internal/selection"
)

const markdownTemplate = `# 每日股票推荐报告

**生成时间**: {{.GenTime}}

## 📊 报告摘要

- **分析日期**: {{.Date}}
- **推荐股票数量**: {{len .Rows}} 只

---

## 🏆 推荐股票

| 排名 | 代码 | 收盘价 | PE | PB | ROE(%) | 股息率(%) | 换手率(%) | 综合评分 |
|:---:|:---:|:---:|:---:|:---:|:---:|:---:|:---:|:---:|
{{- range .Rows}}
| {{.Rank}} | {{.Code}} | {{.Close}} | {{.PE}} | {{.PB}} | {{.ROE}} | {{.Dividend}} | {{.Turnover}} | **{{.Score}}** |
{{- end}}

---

## 📈 评分详情

### 评分体系说明

| 指标 | 权重 | 说明 |
|:---|:---:|:---|
| PE (市盈率) | 25% | 越低越好 |
| PB (市净率) | 20% | 越低越好 |
| ROE (净资产收益率) | 25% | 越高越好 |
| 股息率 | 20% | 越高越好 |
| 流动性 (换手率) | 10% | 适中为佳 |

---

## ⚠️ 风险提示

1. **市场风险**: 股市有风险，投资需谨慎
2. **模型局限**: 本推荐基于量化模型，不构成投资建议
3. **数据延迟**: 数据可能存在延迟，请以交易所公告为准
4. **个人判断**: 请结合个人风险承受能力和投资目标做出决策

---

*报告由 Stock Analysis SaaS 自动生成*
`

var markdownTmpl = template.Must(template.New("markdown").Parse(markdownTemplate))

type markdownRow struct {
	Rank     int
	Code     string
	Close    string
	PE       string
	PB       string
	ROE      string
	Dividend string
	Turnover string
	Score    string
}

type markdownView struct {
	GenTime string
	Date    string
	Rows    []markdownRow
}

// RenderMarkdown renders the Markdown report for a daily result
func (g *Generator) RenderMarkdown(result *selection.DailyResult) (string, error) {
	now := g.now()
	view := markdownView{
		GenTime: now.Format("2006-01-02 15:04:05"),
		Date:    now.Format("2006-01-02"),
		Rows:    make([]markdownRow, 0, len(result.Recommendations)),
	}

	for _, rec := range result.Recommendations {
		view.Rows = append(view.Rows, markdownRow{
			Rank:     rec.Rank,
			Code:     rec.Code,
			Close:    fmt.Sprintf("%.2f", deref(rec.Close)),
			PE:       fmt.Sprintf("%.2f", deref(rec.PE)),
			PB:       fmt.Sprintf("%.2f", deref(rec.PB)),
			ROE:      fmt.Sprintf("%.2f", deref(rec.ROE)),
			Dividend: fmt.Sprintf("%.2f", deref(rec.Dividend)),
			Turnover: fmt.Sprintf("%.2f", deref(rec.Turnover)),
			Score:    fmt.Sprintf("%.1f", rec.CompositeScore),
		})
	}

	var sb strings.Builder
	if err := markdownTmpl.Execute(&sb, view); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return sb.String(), nil
}
