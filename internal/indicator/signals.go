package indicator

import (
	"fmt"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
)

// MASignal classifies the moving-average alignment: bullish when
// MA5 > MA10 > MA20, bearish when MA5 < MA10 < MA20, neutral otherwise.
func (e *Engine) MASignal() contracts.Signal {
	ma := e.MovingAverages(5, 10, 20)
	ma5, ma10, ma20 := ma[5], ma[10], ma[20]

	switch {
	case ma5 > ma10 && ma10 > ma20:
		return contracts.Signal{Category: contracts.SignalBullish, Description: "MA多头排列 - 短期上升趋势"}
	case ma5 < ma10 && ma10 < ma20:
		return contracts.Signal{Category: contracts.SignalBearish, Description: "MA空头排列 - 短期下降趋势"}
	default:
		return contracts.Signal{Category: contracts.SignalNeutral, Description: "MA震荡整理 - 方向不明确"}
	}
}

// MACDSignal classifies the MACD state. A golden/dead cross with a
// matching histogram sign dominates; otherwise the histogram sign alone
// decides.
func (e *Engine) MACDSignal() contracts.Signal {
	m := e.MACD(DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)

	switch {
	case m.DIF > m.DEA && m.Hist > 0:
		return contracts.Signal{Category: contracts.SignalBullish, Description: "MACD金叉多头 - 上升趋势确认"}
	case m.DIF < m.DEA && m.Hist < 0:
		return contracts.Signal{Category: contracts.SignalBearish, Description: "MACD死叉空头 - 下降趋势确认"}
	case m.Hist > 0:
		return contracts.Signal{Category: contracts.SignalBullish, Description: "MACD柱为正 - 多方市场"}
	case m.Hist < 0:
		return contracts.Signal{Category: contracts.SignalBearish, Description: "MACD柱为负 - 空方市场"}
	default:
		return contracts.Signal{Category: contracts.SignalNeutral, Description: "MACD零轴附近 - 震荡整理"}
	}
}

// RSISignal classifies the RSI for one period (6 is the usual reference)
func (e *Engine) RSISignal(period int) contracts.Signal {
	value := e.RSI(period)[period]

	switch {
	case value >= 80:
		return contracts.Signal{
			Category:    contracts.SignalOverbought,
			Description: fmt.Sprintf("RSI超买 (%.1f) - 严重超买，注意回调", value),
		}
	case value >= 70:
		return contracts.Signal{
			Category:    contracts.SignalOverbought,
			Description: fmt.Sprintf("RSI超买 (%.1f) - 警惕回调风险", value),
		}
	case value <= 20:
		return contracts.Signal{
			Category:    contracts.SignalOversold,
			Description: fmt.Sprintf("RSI超卖 (%.1f) - 严重超卖，可能反弹", value),
		}
	case value <= 30:
		return contracts.Signal{
			Category:    contracts.SignalOversold,
			Description: fmt.Sprintf("RSI超卖 (%.1f) - 关注反弹机会", value),
		}
	case value >= 40 && value <= 60:
		return contracts.Signal{
			Category:    contracts.SignalNeutral,
			Description: fmt.Sprintf("RSI中性 (%.1f) - 多空平衡", value),
		}
	case value > 60:
		return contracts.Signal{
			Category:    contracts.SignalBullish,
			Description: fmt.Sprintf("RSI偏多 (%.1f) - 多方占优", value),
		}
	default:
		return contracts.Signal{
			Category:    contracts.SignalBearish,
			Description: fmt.Sprintf("RSI偏空 (%.1f) - 空方占优", value),
		}
	}
}

// BollingerSignal classifies the latest close against the bands.
// Touching a band is overbought/oversold; inside the band the relative
// position decides.
func (e *Engine) BollingerSignal() contracts.Signal {
	bb := e.Bollinger(DefaultBollingerWindow, DefaultBollingerK)
	price := e.LatestClose()

	if price >= bb.Upper {
		return contracts.Signal{Category: contracts.SignalOverbought, Description: "价格触及上轨 - 超买风险"}
	}
	if price <= bb.Lower {
		return contracts.Signal{Category: contracts.SignalOversold, Description: "价格触及下轨 - 超卖机会"}
	}

	position := 0.5
	if bb.Upper != bb.Lower {
		position = (price - bb.Lower) / (bb.Upper - bb.Lower)
	}

	switch {
	case position > 0.75:
		return contracts.Signal{
			Category:    contracts.SignalBullish,
			Description: fmt.Sprintf("价格偏上轨 (%.0f%%) - 偏多", position*100),
		}
	case position < 0.25:
		return contracts.Signal{
			Category:    contracts.SignalBearish,
			Description: fmt.Sprintf("价格偏下轨 (%.0f%%) - 偏空", position*100),
		}
	default:
		return contracts.Signal{
			Category:    contracts.SignalNeutral,
			Description: fmt.Sprintf("价格中轨附近 (%.0f%%) - 震荡整理", position*100),
		}
	}
}
