package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
)

func TestCompositeSignal_RisingSeries(t *testing.T) {
	e := newEngine(t, sequence(1, 30))
	agg := NewAggregator(DefaultScoreParams(), logger.Nop())

	sig := agg.CompositeSignal(e)

	assert.Equal(t, "600519", sig.Code)
	assert.Equal(t, contracts.SignalBullish, sig.Signals["ma"].Category)
	assert.GreaterOrEqual(t, sig.Score, 0.0)
	assert.LessOrEqual(t, sig.Score, 100.0)

	require.Len(t, sig.Signals, 4)
	for _, key := range []string{"ma", "macd", "rsi", "bollinger"} {
		assert.Contains(t, sig.Signals, key)
	}
}

func TestCompositeSignal_FallingSeries(t *testing.T) {
	e := newEngine(t, sequence(30, 1))
	agg := NewAggregator(DefaultScoreParams(), logger.Nop())

	sig := agg.CompositeSignal(e)

	// MA bearish -15, MACD bearish -10, RSI(6)=0 extreme -10: 50-35=15
	assert.Equal(t, 15.0, sig.Score)
	assert.Equal(t, contracts.TrendBearish, sig.Trend)
	assert.Equal(t, contracts.SignalBearish, sig.Signals["ma"].Category)
}

func TestCompositeSignal_FlatSeries(t *testing.T) {
	e := newEngine(t, []float64{5, 5, 5, 5, 5, 5, 5, 5})
	agg := NewAggregator(DefaultScoreParams(), logger.Nop())

	sig := agg.CompositeSignal(e)

	// MA neutral, MACD bearish (DEA at price level) -10, RSI(6)=50 bonus +5
	assert.Equal(t, 45.0, sig.Score)
	assert.Equal(t, contracts.TrendNeutral, sig.Trend)
}

func TestCompositeSignal_ScoreClamped(t *testing.T) {
	params := DefaultScoreParams()
	params.MAWeight = 500

	e := newEngine(t, sequence(30, 1))
	sig := NewAggregator(params, logger.Nop()).CompositeSignal(e)

	assert.Equal(t, 0.0, sig.Score)
	assert.Equal(t, contracts.TrendBearish, sig.Trend)
}

func TestCompositeSignal_TrendThresholds(t *testing.T) {
	params := DefaultScoreParams()
	// Lower the bullish bar so a mildly positive series crosses it
	params.BullishThreshold = 40

	e := newEngine(t, []float64{5, 5, 5, 5, 5, 5, 5, 5})
	sig := NewAggregator(params, logger.Nop()).CompositeSignal(e)

	assert.Equal(t, contracts.TrendBullish, sig.Trend)
}
