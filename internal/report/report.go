package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/TangUsers/stock-analysis-saas/internal/selection"
	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
)

// Generator renders and writes recommendation reports
type Generator struct {
	outputDir string
	logger    *logger.Logger
	now       func() time.Time
}

// NewGenerator creates a report generator writing into outputDir
func NewGenerator(outputDir string, log *logger.Logger) *Generator {
	return &Generator{
		outputDir: outputDir,
		logger:    log,
		now:       time.Now,
	}
}

// JSONReport is the serialized recommendation report
type JSONReport struct {
	ReportDate           string       `json:"report_date"`
	ReportTime           string       `json:"report_time"`
	TotalRecommendations int          `json:"total_recommendations"`
	Recommendations      []JSONRecord `json:"recommendations"`
}

// JSONRecord is one recommendation entry in the JSON report
type JSONRecord struct {
	Rank           int            `json:"rank"`
	Code           string         `json:"code"`
	Name           string         `json:"name,omitempty"`
	Close          float64        `json:"close"`
	PE             float64        `json:"pe"`
	PB             float64        `json:"pb"`
	ROE            float64        `json:"roe"`
	DividendRatio  float64        `json:"dividend_ratio"`
	TurnoverRate   float64        `json:"turnover_rate"`
	MarketCap      *float64       `json:"market_cap"`
	CompositeScore float64        `json:"composite_score"`
	ScoreBreakdown ScoreBreakdown `json:"score_breakdown"`
}

// ScoreBreakdown lists the five component scores
type ScoreBreakdown struct {
	PEScore        float64 `json:"pe_score"`
	PBScore        float64 `json:"pb_score"`
	ROEScore       float64 `json:"roe_score"`
	DividendScore  float64 `json:"dividend_score"`
	LiquidityScore float64 `json:"liquidity_score"`
}

// BuildJSON assembles the JSON report from a daily result
func (g *Generator) BuildJSON(result *selection.DailyResult) *JSONReport {
	now := g.now()
	report := &JSONReport{
		ReportDate:           now.Format("2006-01-02"),
		ReportTime:           now.Format("2006-01-02 15:04:05"),
		TotalRecommendations: len(result.Recommendations),
		Recommendations:      make([]JSONRecord, 0, len(result.Recommendations)),
	}

	for _, rec := range result.Recommendations {
		report.Recommendations = append(report.Recommendations, JSONRecord{
			Rank:           rec.Rank,
			Code:           rec.Code,
			Name:           rec.Name,
			Close:          deref(rec.Close),
			PE:             deref(rec.PE),
			PB:             deref(rec.PB),
			ROE:            deref(rec.ROE),
			DividendRatio:  deref(rec.Dividend),
			TurnoverRate:   deref(rec.Turnover),
			MarketCap:      rec.MarketCap,
			CompositeScore: rec.CompositeScore,
			ScoreBreakdown: ScoreBreakdown{
				PEScore:        rec.PEScore,
				PBScore:        rec.PBScore,
				ROEScore:       rec.ROEScore,
				DividendScore:  rec.DividendScore,
				LiquidityScore: rec.LiquidityScore,
			},
		})
	}
	return report
}

// WriteJSON writes the JSON report and returns its path
func (g *Generator) WriteJSON(result *selection.DailyResult) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	report := g.BuildJSON(result)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(g.outputDir, fmt.Sprintf("recommendations-%s.json", g.now().Format("2006-01-02")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	g.logger.WithField("path", path).Info("JSON report saved")
	return path, nil
}

// WriteMarkdown renders and writes the Markdown report, returning its path
func (g *Generator) WriteMarkdown(result *selection.DailyResult) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	content, err := g.RenderMarkdown(result)
	if err != nil {
		return "", err
	}

	path := filepath.Join(g.outputDir, fmt.Sprintf("recommendations-%s.md", g.now().Format("2006-01-02")))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	g.logger.WithField("path", path).Info("Markdown report saved")
	return path, nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
