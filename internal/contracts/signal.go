package contracts

// SignalCategory classifies one indicator's reading
type SignalCategory string

const (
	SignalBullish    SignalCategory = "bullish"
	SignalBearish    SignalCategory = "bearish"
	SignalNeutral    SignalCategory = "neutral"
	SignalOverbought SignalCategory = "overbought"
	SignalOversold   SignalCategory = "oversold"
)

// Signal is one indicator's classified reading with a human description
type Signal struct {
	Category    SignalCategory `json:"category"`
	Description string         `json:"description"`
}

// Trend is the overall direction derived from the composite score
type Trend string

const (
	TrendBullish Trend = "bullish" // composite >= 70
	TrendBearish Trend = "bearish" // composite <= 30
	TrendNeutral Trend = "neutral"
)

// CompositeSignal is the aggregated technical view of one instrument
type CompositeSignal struct {
	Code    string            `json:"code"`
	Score   float64           `json:"score"` // 0-100
	Trend   Trend             `json:"trend"`
	Signals map[string]Signal `json:"signals"`
}
