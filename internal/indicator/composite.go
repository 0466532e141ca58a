package indicator

import (
	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
)

// ScoreParams configures the composite score contributions
type ScoreParams struct {
	Base float64

	MAWeight   float64 // added on bullish alignment, subtracted on bearish
	MACDWeight float64

	RSINeutralBonus    float64 // 40 < rsi6 < 70
	RSIExtremePenalty  float64 // rsi6 >= 70 or <= 30
	BollingerBandBonus float64 // close below lower band
	BollingerBandRisk  float64 // close above upper band

	BullishThreshold float64 // score at or above is bullish
	BearishThreshold float64 // score at or below is bearish
}

// DefaultScoreParams returns the standard weighting
func DefaultScoreParams() ScoreParams {
	return ScoreParams{
		Base:               50,
		MAWeight:           15,
		MACDWeight:         10,
		RSINeutralBonus:    5,
		RSIExtremePenalty:  10,
		BollingerBandBonus: 5,
		BollingerBandRisk:  5,
		BullishThreshold:   70,
		BearishThreshold:   30,
	}
}

// Aggregator combines the individual indicator signals into one
// 0-100 composite score with an overall trend.
type Aggregator struct {
	params ScoreParams
	logger *logger.Logger
}

// NewAggregator creates an aggregator with the given params
func NewAggregator(params ScoreParams, log *logger.Logger) *Aggregator {
	return &Aggregator{params: params, logger: log}
}

// CompositeSignal scores one instrument from its indicator engine.
// Scoring starts at the base, the MA and MACD directions move it by
// their weights, RSI(6) and the Bollinger position adjust it, and the
// result is clamped to [0, 100].
func (a *Aggregator) CompositeSignal(e *Engine) contracts.CompositeSignal {
	maSignal := e.MASignal()
	macdSignal := e.MACDSignal()
	rsiSignal := e.RSISignal(6)
	bbSignal := e.BollingerSignal()

	score := a.params.Base

	switch maSignal.Category {
	case contracts.SignalBullish:
		score += a.params.MAWeight
	case contracts.SignalBearish:
		score -= a.params.MAWeight
	}

	switch macdSignal.Category {
	case contracts.SignalBullish:
		score += a.params.MACDWeight
	case contracts.SignalBearish:
		score -= a.params.MACDWeight
	}

	rsi6 := e.RSI(6)[6]
	switch {
	case rsi6 > 40 && rsi6 < 70:
		score += a.params.RSINeutralBonus
	case rsi6 >= 70 || rsi6 <= 30:
		score -= a.params.RSIExtremePenalty
	}

	bb := e.Bollinger(DefaultBollingerWindow, DefaultBollingerK)
	price := e.LatestClose()
	if price < bb.Lower {
		score += a.params.BollingerBandBonus
	} else if price > bb.Upper {
		score -= a.params.BollingerBandRisk
	}

	score = clamp(score, 0, 100)

	trend := contracts.TrendNeutral
	if score >= a.params.BullishThreshold {
		trend = contracts.TrendBullish
	} else if score <= a.params.BearishThreshold {
		trend = contracts.TrendBearish
	}

	a.logger.WithFields(map[string]interface{}{
		"code":  e.Code(),
		"score": score,
		"trend": string(trend),
		"ma":    string(maSignal.Category),
		"macd":  string(macdSignal.Category),
		"rsi6":  rsi6,
	}).Debug("Composite signal computed")

	return contracts.CompositeSignal{
		Code:  e.Code(),
		Score: score,
		Trend: trend,
		Signals: map[string]contracts.Signal{
			"ma":        maSignal,
			"macd":      macdSignal,
			"rsi":       rsiSignal,
			"bollinger": bbSignal,
		},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
