package baostock

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
	"github.com/TangUsers/stock-analysis-saas/pkg/redis"
)

// basicRow is one daily_basic entry. Empty strings mean missing values.
type basicRow struct {
	Code         string `json:"code"`
	Close        string `json:"close"`
	PE           string `json:"pe"`
	PB           string `json:"pb"`
	DvRatio      string `json:"dv_ratio"`
	TurnoverRate string `json:"turnover_rate"`
	MarketCap    string `json:"market_cap"`
}

// finaRow is one fina_indicator entry
type finaRow struct {
	Code              string `json:"code"`
	ROE               string `json:"roe"`
	NetprofitMargin   string `json:"netprofit_margin"`
	GrossprofitMargin string `json:"grossprofit_margin"`
}

// snapshotColumns are the metric columns the gateway delivers for the
// daily_basic call.
var snapshotColumns = []contracts.Metric{
	contracts.MetricClose, contracts.MetricPE, contracts.MetricPB,
	contracts.MetricDividend, contracts.MetricTurnover, contracts.MetricMarketCap,
}

// financialColumns are added when the fina_indicator merge succeeds
var financialColumns = []contracts.Metric{
	contracts.MetricROE, contracts.MetricNetMargin, contracts.MetricGrossMargin,
}

// DailySnapshot fetches the whole-market fundamental table for one
// trading day, merged with the latest financial indicators. A failed
// financial fetch degrades the snapshot instead of failing it: the
// financial columns are simply absent.
func (c *Client) DailySnapshot(ctx context.Context, tradeDate time.Time) (*contracts.Table, error) {
	dateStr := tradeDate.Format("2006-01-02")

	cacheKey := redis.SnapshotKey(dateStr)
	var cached snapshotPayload
	if hit, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached.toTable(), nil
	}

	var basics []basicRow
	basicURL := fmt.Sprintf("%s/api/daily_basic?trade_date=%s", c.cfg.Provider.QuoteBaseURL, dateStr)
	if err := c.getJSON(ctx, basicURL, &basics); err != nil {
		return nil, fmt.Errorf("daily basic fetch failed: %w", err)
	}

	rows := make([]contracts.InstrumentRecord, 0, len(basics))
	for _, b := range basics {
		if b.Code == "" {
			continue
		}
		rows = append(rows, contracts.InstrumentRecord{
			Code:      b.Code,
			Close:     parseOptional(b.Close),
			PE:        parseOptional(b.PE),
			PB:        parseOptional(b.PB),
			Dividend:  parseOptional(b.DvRatio),
			Turnover:  parseOptional(b.TurnoverRate),
			MarketCap: parseOptional(b.MarketCap),
		})
	}

	payload := snapshotPayload{Rows: rows, Columns: snapshotColumns}

	if err := c.mergeFinancials(ctx, &payload); err != nil {
		c.logger.WithError(err).Warn("Financial indicators unavailable, snapshot degraded")
	}

	if err := c.cache.Set(ctx, cacheKey, payload, redis.TTLSnapshot); err != nil {
		c.logger.WithError(err).Warn("Failed to cache snapshot")
	}

	c.logger.WithFields(map[string]interface{}{
		"trade_date": dateStr,
		"stocks":     len(rows),
	}).Debug("Fetched daily snapshot")
	return payload.toTable(), nil
}

// mergeFinancials joins ROE and margin data onto the snapshot rows
func (c *Client) mergeFinancials(ctx context.Context, payload *snapshotPayload) error {
	var fins []finaRow
	finaURL := fmt.Sprintf("%s/api/fina_indicator", c.cfg.Provider.QuoteBaseURL)
	if err := c.getJSON(ctx, finaURL, &fins); err != nil {
		return err
	}

	byCode := make(map[string]finaRow, len(fins))
	for _, f := range fins {
		byCode[f.Code] = f
	}

	for i := range payload.Rows {
		f, ok := byCode[payload.Rows[i].Code]
		if !ok {
			continue
		}
		payload.Rows[i].ROE = parseOptional(f.ROE)
		payload.Rows[i].NetMargin = parseOptional(f.NetprofitMargin)
		payload.Rows[i].GrossMargin = parseOptional(f.GrossprofitMargin)
	}

	payload.Columns = append(payload.Columns, financialColumns...)
	return nil
}

// snapshotPayload is the cacheable snapshot form: Table's column set is
// unexported, so the cache round-trips rows plus column list instead.
type snapshotPayload struct {
	Rows    []contracts.InstrumentRecord `json:"rows"`
	Columns []contracts.Metric           `json:"columns"`
}

func (p snapshotPayload) toTable() *contracts.Table {
	return contracts.NewTable(p.Rows, p.Columns...)
}

// parseOptional parses a gateway numeric string, nil when empty or bad
func parseOptional(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return contracts.Float(v)
}
