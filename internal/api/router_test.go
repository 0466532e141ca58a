package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TangUsers/stock-analysis-saas/internal/api/handlers"
	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
	"github.com/TangUsers/stock-analysis-saas/internal/fundamental"
	"github.com/TangUsers/stock-analysis-saas/internal/indicator"
	"github.com/TangUsers/stock-analysis-saas/internal/report"
	"github.com/TangUsers/stock-analysis-saas/internal/selection"
	"github.com/TangUsers/stock-analysis-saas/pkg/config"
	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
)

type fakeProvider struct {
	bars     []contracts.Bar
	listing  []contracts.ListedInstrument
	snapshot *contracts.Table
}

func (f *fakeProvider) Acquire(ctx context.Context) error { return nil }
func (f *fakeProvider) Release()                          {}

func (f *fakeProvider) LatestTradeDate(ctx context.Context) (time.Time, error) {
	return time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), nil
}

func (f *fakeProvider) PriceHistory(ctx context.Context, code string, from, to time.Time) (*contracts.PriceSeries, error) {
	if len(f.bars) == 0 {
		return nil, errors.New("no data")
	}
	return contracts.NewPriceSeries(code, f.bars), nil
}

func (f *fakeProvider) DailySnapshot(ctx context.Context, tradeDate time.Time) (*contracts.Table, error) {
	if f.snapshot == nil {
		return contracts.NewTable(nil), nil
	}
	return f.snapshot, nil
}

func (f *fakeProvider) Listing(ctx context.Context) ([]contracts.ListedInstrument, error) {
	return f.listing, nil
}

type fakeStore struct {
	run *selection.DailyResult
}

func (f *fakeStore) GetRun(ctx context.Context, tradeDate time.Time) (*selection.DailyResult, error) {
	if f.run == nil || !f.run.TradeDate.Equal(tradeDate) {
		return nil, fmt.Errorf("no run found for date %s", tradeDate.Format("2006-01-02"))
	}
	return f.run, nil
}

func (f *fakeStore) LatestRun(ctx context.Context) (*selection.DailyResult, error) {
	if f.run == nil {
		return nil, errors.New("no runs found")
	}
	return f.run, nil
}

func testBars(n int) []contracts.Bar {
	bars := make([]contracts.Bar, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		close := 10.0 + float64(i)*0.5
		bars[i] = contracts.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   close - 0.2,
			High:   close + 0.3,
			Low:    close - 0.4,
			Close:  close,
			Volume: 1000 + float64(i)*10,
		}
	}
	return bars
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Analysis.TopN = 5
	cfg.Analysis.KlineDays = 90
	cfg.Analysis.OutputDir = t.TempDir()
	return cfg
}

func newTestRouter(t *testing.T, provider *fakeProvider, store handlers.RunStore) http.Handler {
	t.Helper()

	log := logger.Nop()
	cfg := testConfig(t)
	scorer := fundamental.NewDefaultScorer(log)
	agg := indicator.NewAggregator(indicator.DefaultScoreParams(), log)
	pipeline := selection.NewPipeline(provider, scorer, agg, log)
	reports := report.NewGenerator(cfg.Analysis.OutputDir, log)

	analysis := handlers.NewAnalysisHandler(pipeline, provider, cfg, log)
	recommend := handlers.NewRecommendationHandler(pipeline, reports, store, nil, cfg, log)

	return NewRouter(analysis, recommend, log)
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "stock-analysis-api", body["service"])
}

func TestGetAnalysis(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{bars: testBars(30)}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stocks/sh.600519/analysis?name=贵州茅台", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var analysis selection.StockAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, "sh.600519", analysis.Code)
	assert.Equal(t, "贵州茅台", analysis.Name)
	assert.NotEmpty(t, analysis.Indicators.MA)
	assert.NotZero(t, analysis.Price.Close)
}

func TestGetAnalysis_TooFewBars(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{bars: testBars(5)}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stocks/sh.600519/analysis", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetAnalysis_BadDays(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{bars: testBars(30)}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stocks/sh.600519/analysis?days=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRecommendations_StoreDisabled(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetRecommendations_Latest(t *testing.T) {
	store := &fakeStore{run: &selection.DailyResult{
		Status:        "success",
		TradeDate:     time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		TotalAnalyzed: 100,
		Recommendations: []contracts.InstrumentRecord{
			{Code: "sh.600519", Name: "贵州茅台", Rank: 1, CompositeScore: 66.8},
		},
	}}
	router := newTestRouter(t, &fakeProvider{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result selection.DailyResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "success", result.Status)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "sh.600519", result.Recommendations[0].Code)
}

func TestGetRecommendations_Limit(t *testing.T) {
	store := &fakeStore{run: &selection.DailyResult{
		Status:    "success",
		TradeDate: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		Recommendations: []contracts.InstrumentRecord{
			{Code: "sh.600519", Rank: 1},
			{Code: "sz.000001", Rank: 2},
		},
	}}
	router := newTestRouter(t, &fakeProvider{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations?limit=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result selection.DailyResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "sh.600519", result.Recommendations[0].Code)
}

func TestGetRecommendations_ByDate(t *testing.T) {
	store := &fakeStore{run: &selection.DailyResult{
		Status:    "success",
		TradeDate: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
	}}
	router := newTestRouter(t, &fakeProvider{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations?date=2025-06-20", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/recommendations?date=2025-06-21", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/recommendations?date=junk", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunNow(t *testing.T) {
	snapshot := contracts.NewTable([]contracts.InstrumentRecord{
		{
			Code:     "sh.600519",
			PE:       contracts.Float(8),
			PB:       contracts.Float(1.2),
			ROE:      contracts.Float(15),
			Dividend: contracts.Float(3.5),
			Turnover: contracts.Float(2.1),
			Close:    contracts.Float(1680.5),
		},
	},
		contracts.MetricPE, contracts.MetricPB, contracts.MetricROE,
		contracts.MetricDividend, contracts.MetricTurnover, contracts.MetricClose,
	)
	provider := &fakeProvider{
		listing:  []contracts.ListedInstrument{{Code: "sh.600519", Name: "贵州茅台"}},
		snapshot: snapshot,
	}
	router := newTestRouter(t, provider, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result selection.DailyResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "success", result.Status)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "贵州茅台", result.Recommendations[0].Name)
	assert.Equal(t, 1, result.Recommendations[0].Rank)
}

func TestRunNow_BadTopParam(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations/run?top=-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
