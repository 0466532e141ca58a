// Package baostock implements the market data provider against a
// baostock-style HTTP gateway: string-typed fields, an error_code
// envelope and a login session bracketing data calls.
package baostock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
	"github.com/TangUsers/stock-analysis-saas/pkg/config"
	"github.com/TangUsers/stock-analysis-saas/pkg/httputil"
	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
	"github.com/TangUsers/stock-analysis-saas/pkg/redis"
)

// Client talks to the baostock gateway
// ⭐ SSOT: 行情数据的外部调用只在这里
type Client struct {
	http   *httputil.Client
	cache  *redis.Cache
	cfg    *config.Config
	logger *logger.Logger

	mu      sync.Mutex
	session string
}

// New creates a gateway client. cache may be a disabled no-op cache.
func New(cfg *config.Config, http *httputil.Client, cache *redis.Cache, log *logger.Logger) *Client {
	return &Client{
		http:   http,
		cache:  cache,
		cfg:    cfg,
		logger: log,
	}
}

// apiEnvelope is the gateway response wrapper. error_code "0" is success.
type apiEnvelope struct {
	ErrorCode string          `json:"error_code"`
	ErrorMsg  string          `json:"error_msg"`
	Data      json.RawMessage `json:"data"`
}

// getJSON fetches a gateway endpoint and unwraps the envelope into dest
func (c *Client) getJSON(ctx context.Context, rawURL string, dest interface{}) error {
	body, err := c.http.GetBody(ctx, rawURL)
	if err != nil {
		return err
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode gateway response failed: %w", err)
	}
	if env.ErrorCode != "0" {
		return fmt.Errorf("gateway error %s: %s", env.ErrorCode, env.ErrorMsg)
	}
	if dest != nil {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			return fmt.Errorf("decode gateway data failed: %w", err)
		}
	}
	return nil
}

// Acquire opens a gateway session. Safe to call when already acquired.
func (c *Client) Acquire(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != "" {
		return nil
	}

	var login struct {
		SessionID string `json:"session_id"`
	}
	loginURL := c.cfg.Provider.QuoteBaseURL + "/api/login"
	if err := c.getJSON(ctx, loginURL, &login); err != nil {
		return fmt.Errorf("gateway login failed: %w", err)
	}

	c.session = login.SessionID
	c.logger.Debug("Gateway session acquired")
	return nil
}

// Release closes the gateway session
func (c *Client) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == "" {
		return
	}
	c.session = ""
	c.logger.Debug("Gateway session released")
}

// LatestTradeDate returns the most recent open trading day, looking at
// the surrounding trade calendar. Falls back to the previous weekday
// when the calendar has no open day.
func (c *Client) LatestTradeDate(ctx context.Context) (time.Time, error) {
	now := time.Now()
	start := now.AddDate(0, 0, -60)
	end := now.AddDate(0, 0, 30)

	var days []struct {
		CalDate string `json:"cal_date"`
		IsOpen  string `json:"is_open"`
	}

	calURL := fmt.Sprintf("%s/api/trade_dates?start_date=%s&end_date=%s",
		c.cfg.Provider.QuoteBaseURL,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err := c.getJSON(ctx, calURL, &days); err != nil {
		return time.Time{}, fmt.Errorf("trade calendar failed: %w", err)
	}

	var latest time.Time
	for _, d := range days {
		if d.IsOpen != "1" {
			continue
		}
		day, err := time.Parse("2006-01-02", d.CalDate)
		if err != nil || day.After(now) {
			continue
		}
		if day.After(latest) {
			latest = day
		}
	}

	if latest.IsZero() {
		latest = previousWeekday(now)
	}
	return latest, nil
}

// previousWeekday returns the last Mon-Fri before t
func previousWeekday(t time.Time) time.Time {
	d := t.AddDate(0, 0, -1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

func queryEscape(s string) string {
	return url.QueryEscape(s)
}

var _ contracts.MarketDataProvider = (*Client)(nil)
