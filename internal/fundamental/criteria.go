package fundamental

import "github.com/TangUsers/stock-analysis-saas/internal/contracts"

// FilterCriteria holds the screening bounds. A nil bound is not applied.
// All comparisons are strict: a value must be greater than the min and
// less than the max to pass.
type FilterCriteria struct {
	PEMin        *float64 `json:"pe_min"`
	PEMax        *float64 `json:"pe_max"`
	PBMin        *float64 `json:"pb_min"`
	PBMax        *float64 `json:"pb_max"`
	ROEMin       *float64 `json:"roe_min"`
	DividendMin  *float64 `json:"dividend_min"`
	TurnoverMin  *float64 `json:"turnover_rate_min"`
	TurnoverMax  *float64 `json:"turnover_rate_max"`
	MarketCapMin *float64 `json:"market_cap_min"`
}

// DefaultCriteria returns the standard value-screening bounds
// ⭐ SSOT: 默认筛选条件只定义在这里
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		PEMin:        contracts.Float(0),
		PEMax:        contracts.Float(50),
		PBMin:        contracts.Float(0),
		PBMax:        contracts.Float(5),
		ROEMin:       contracts.Float(5),
		DividendMin:  contracts.Float(1),
		TurnoverMin:  contracts.Float(0.5),
		TurnoverMax:  contracts.Float(15),
		MarketCapMin: nil, // no minimum market cap
	}
}

// ScoreWeights weights the five score components of the composite.
// The defaults sum to 1.0 but the scorer does not require that.
type ScoreWeights struct {
	PE        float64 `json:"pe_weight"`
	PB        float64 `json:"pb_weight"`
	ROE       float64 `json:"roe_weight"`
	Dividend  float64 `json:"dividend_weight"`
	Liquidity float64 `json:"liquidity_weight"`
}

// DefaultWeights returns the standard component weighting
func DefaultWeights() ScoreWeights {
	return ScoreWeights{
		PE:        0.25,
		PB:        0.20,
		ROE:       0.25,
		Dividend:  0.20,
		Liquidity: 0.10,
	}
}
