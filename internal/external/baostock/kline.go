package baostock

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
	"github.com/TangUsers/stock-analysis-saas/pkg/redis"
)

// klineRow is one daily bar as the gateway delivers it, all strings
type klineRow struct {
	Date   string `json:"date"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
}

// PriceHistory fetches forward-adjusted daily bars for one instrument,
// oldest first. Results are cached per code and range.
func (c *Client) PriceHistory(ctx context.Context, code string, from, to time.Time) (*contracts.PriceSeries, error) {
	fromStr := from.Format("2006-01-02")
	toStr := to.Format("2006-01-02")

	cacheKey := redis.KlineKey(code, fromStr, toStr)
	var cached contracts.PriceSeries
	if hit, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	var rows []klineRow
	klineURL := fmt.Sprintf("%s/api/kline?code=%s&start_date=%s&end_date=%s&frequency=d&adjustflag=qfq",
		c.cfg.Provider.ChartBaseURL, queryEscape(code), fromStr, toStr)
	if err := c.getJSON(ctx, klineURL, &rows); err != nil {
		return nil, fmt.Errorf("kline fetch for %s failed: %w", code, err)
	}

	bars := make([]contracts.Bar, 0, len(rows))
	for _, row := range rows {
		bar, ok := parseBar(row)
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}

	series := contracts.NewPriceSeries(code, bars)

	if err := c.cache.Set(ctx, cacheKey, series, redis.TTLKline); err != nil {
		c.logger.WithError(err).Warn("Failed to cache kline data")
	}

	c.logger.WithFields(map[string]interface{}{
		"code": code,
		"bars": len(bars),
	}).Debug("Fetched kline data")
	return series, nil
}

// parseBar converts one string row to a bar. Rows with an unparseable
// date or close are dropped.
func parseBar(row klineRow) (contracts.Bar, bool) {
	date, err := time.Parse("2006-01-02", row.Date)
	if err != nil {
		return contracts.Bar{}, false
	}

	closePrice, err := strconv.ParseFloat(row.Close, 64)
	if err != nil {
		return contracts.Bar{}, false
	}

	parse := func(s string) float64 {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}

	return contracts.Bar{
		Date:   date,
		Open:   parse(row.Open),
		High:   parse(row.High),
		Low:    parse(row.Low),
		Close:  closePrice,
		Volume: parse(row.Volume),
	}, true
}
