package contracts

import (
	"context"
	"time"
)

// ListedInstrument is one entry of the exchange listing
type ListedInstrument struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// MarketDataProvider is the upstream market data source.
// Acquire/Release bracket a session; providers that need no session
// implement them as no-ops.
type MarketDataProvider interface {
	Acquire(ctx context.Context) error
	Release()

	// LatestTradeDate returns the most recent completed trading day
	LatestTradeDate(ctx context.Context) (time.Time, error)

	// PriceHistory returns daily bars for one instrument, oldest first
	PriceHistory(ctx context.Context, code string, from, to time.Time) (*PriceSeries, error)

	// DailySnapshot returns the fundamental table for one trading day
	DailySnapshot(ctx context.Context, tradeDate time.Time) (*Table, error)

	// Listing returns all listed instruments
	Listing(ctx context.Context) ([]ListedInstrument, error)
}
