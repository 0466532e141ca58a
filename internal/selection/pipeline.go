package selection

import (
	"context"
	"fmt"
	"time"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
	"github.com/TangUsers/stock-analysis-saas/internal/fundamental"
	"github.com/TangUsers/stock-analysis-saas/internal/indicator"
	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
)

// minimum bars required for a meaningful technical analysis
const minAnalysisBars = 20

// relaxed PE ceiling used when the strict filter empties the universe
const relaxedPEMax = 100.0

// PriceData is the latest price view of one instrument
type PriceData struct {
	Close     float64 `json:"close"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	PctChange float64 `json:"pct_change"`
}

// Indicators bundles every computed technical indicator
type Indicators struct {
	MA        map[int]float64           `json:"ma"`
	MACD      indicator.MACDResult      `json:"macd"`
	RSI       map[int]float64           `json:"rsi"`
	Bollinger indicator.BollingerResult `json:"bollinger"`
	Volume    *indicator.VolumeSummary  `json:"volume,omitempty"`
}

// StockAnalysis is the full technical view of one instrument
type StockAnalysis struct {
	Code       string                    `json:"code"`
	Name       string                    `json:"name"`
	Date       time.Time                 `json:"date"`
	Price      PriceData                 `json:"price"`
	Indicators Indicators                `json:"indicators"`
	Composite  contracts.CompositeSignal `json:"composite_signal"`
}

// DailyResult is the outcome of one daily recommendation run
type DailyResult struct {
	Status          string                       `json:"status"`
	Message         string                       `json:"message,omitempty"`
	TradeDate       time.Time                    `json:"trade_date"`
	TotalAnalyzed   int                          `json:"total_analyzed"`
	Recommendations []contracts.InstrumentRecord `json:"recommendations"`
	CriteriaUsed    fundamental.FilterCriteria   `json:"criteria_used"`
	WeightsUsed     fundamental.ScoreWeights     `json:"weights_used"`
}

// Pipeline drives the full selection flow: market data in, technical
// analysis and ranked fundamental recommendations out.
// ⭐ SSOT: 选股主流程只在这里编排
type Pipeline struct {
	provider contracts.MarketDataProvider
	scorer   *fundamental.Scorer
	agg      *indicator.Aggregator
	logger   *logger.Logger
}

// NewPipeline creates a selection pipeline
func NewPipeline(provider contracts.MarketDataProvider, scorer *fundamental.Scorer, agg *indicator.Aggregator, log *logger.Logger) *Pipeline {
	return &Pipeline{
		provider: provider,
		scorer:   scorer,
		agg:      agg,
		logger:   log,
	}
}

// AnalyzeStock runs the full technical analysis for one instrument
// using roughly the last klineDays calendar days of history. Fewer
// than 20 bars is not enough to analyze.
func (p *Pipeline) AnalyzeStock(ctx context.Context, code, name string, klineDays int) (*StockAnalysis, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -klineDays)

	series, err := p.provider.PriceHistory(ctx, code, from, to)
	if err != nil {
		return nil, fmt.Errorf("price history for %s failed: %w", code, err)
	}
	if series.Len() < minAnalysisBars {
		return nil, contracts.NewValidationError("bars",
			fmt.Sprintf("need at least %d bars, got %d", minAnalysisBars, series.Len()))
	}

	engine, err := indicator.New(series, p.logger)
	if err != nil {
		return nil, err
	}

	indicators := Indicators{
		MA:        engine.MovingAverages(),
		MACD:      engine.MACD(indicator.DefaultMACDFast, indicator.DefaultMACDSlow, indicator.DefaultMACDSignal),
		RSI:       engine.RSI(),
		Bollinger: engine.Bollinger(indicator.DefaultBollingerWindow, indicator.DefaultBollingerK),
	}
	if series.HasVolume {
		if vs, err := engine.VolumeSummary(); err == nil {
			indicators.Volume = &vs
		}
	}

	latest, _ := series.Latest()
	price := PriceData{
		Close: latest.Close,
		Open:  latest.Open,
		High:  latest.High,
		Low:   latest.Low,
	}
	if series.Len() >= 2 {
		prev := series.Bars[series.Len()-2]
		if prev.Close > 0 {
			price.PctChange = (latest.Close - prev.Close) / prev.Close * 100
		}
	}

	if name == "" {
		name = code
	}

	return &StockAnalysis{
		Code:       code,
		Name:       name,
		Date:       latest.Date,
		Price:      price,
		Indicators: indicators,
		Composite:  p.agg.CompositeSignal(engine),
	}, nil
}

// TopRecommendations filters, scores and ranks a fundamental table.
// When the strict criteria leave nothing, the filter falls back to a
// relaxed screen keeping any instrument with a sane positive PE.
func (p *Pipeline) TopRecommendations(table *contracts.Table, topN int) ([]contracts.InstrumentRecord, error) {
	filtered, err := p.scorer.Filter(table)
	if err != nil {
		return nil, err
	}

	if filtered.Len() == 0 {
		p.logger.Warn("Strict filter left no stocks, relaxing criteria")
		filtered = relaxedFilter(table)
	}
	if filtered.Len() == 0 {
		return []contracts.InstrumentRecord{}, nil
	}

	ranked, err := p.scorer.RankByComposite(filtered, topN)
	if err != nil {
		return nil, err
	}
	return ranked.Rows, nil
}

// relaxedFilter keeps rows with a positive PE below the relaxed ceiling
func relaxedFilter(table *contracts.Table) *contracts.Table {
	out := table.Copy()
	kept := make([]contracts.InstrumentRecord, 0, table.Len())
	for _, rec := range table.Rows {
		pe, ok := rec.Get(contracts.MetricPE)
		if !ok || pe <= 0 || pe >= relaxedPEMax {
			continue
		}
		kept = append(kept, rec)
	}
	out.Rows = kept
	return out
}

// RunDaily executes the complete daily recommendation flow: listing,
// fundamental snapshot, name join, then the ranked top N.
func (p *Pipeline) RunDaily(ctx context.Context, topN int) (*DailyResult, error) {
	if err := p.provider.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("provider acquire failed: %w", err)
	}
	defer p.provider.Release()

	listing, err := p.provider.Listing(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing failed: %w", err)
	}
	if len(listing) == 0 {
		return &DailyResult{Status: "error", Message: "获取股票列表失败"}, nil
	}

	tradeDate, err := p.provider.LatestTradeDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest trade date failed: %w", err)
	}

	snapshot, err := p.provider.DailySnapshot(ctx, tradeDate)
	if err != nil {
		return nil, fmt.Errorf("daily snapshot failed: %w", err)
	}
	if snapshot.Len() == 0 {
		return &DailyResult{Status: "error", Message: "获取基本面数据失败", TradeDate: tradeDate}, nil
	}

	joinNames(snapshot, listing)

	p.logger.WithFields(map[string]interface{}{
		"trade_date": tradeDate.Format("2006-01-02"),
		"stocks":     snapshot.Len(),
	}).Info("Daily universe assembled")

	recommendations, err := p.TopRecommendations(snapshot, topN)
	if err != nil {
		return nil, err
	}

	result := &DailyResult{
		TradeDate:       tradeDate,
		TotalAnalyzed:   snapshot.Len(),
		Recommendations: recommendations,
		CriteriaUsed:    p.scorer.Criteria(),
		WeightsUsed:     p.scorer.Weights(),
	}
	if len(recommendations) == 0 {
		result.Status = "warning"
		result.Message = "未找到符合条件的股票"
		return result, nil
	}

	result.Status = "success"
	return result, nil
}

// joinNames fills row names from the listing, left-join on code
func joinNames(table *contracts.Table, listing []contracts.ListedInstrument) {
	names := make(map[string]string, len(listing))
	for _, li := range listing {
		names[li.Code] = li.Name
	}
	for i := range table.Rows {
		if name, ok := names[table.Rows[i].Code]; ok {
			table.Rows[i].Name = name
		}
	}
}
