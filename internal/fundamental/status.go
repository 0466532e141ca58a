package fundamental

import (
	"fmt"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
)

// Single-metric valuation labels
const (
	StatusAbnormal = "异常"
	StatusUnderval = "低估"
	StatusFairLow  = "合理偏低"
	StatusFair     = "合理"
	StatusFairHigh = "合理偏高"
	StatusOverval  = "高估"
)

// Combined valuation labels
const (
	ValuationDeepUnderval = "严重低估"
	ValuationUnderval     = "相对低估"
	ValuationFair         = "估值合理"
	ValuationOverval      = "相对高估"
	ValuationDeepOverval  = "严重高估"
)

// ValuationDetails is the combined PE/PB valuation view of one instrument
type ValuationDetails struct {
	PE              *float64 `json:"pe"`
	PB              *float64 `json:"pb"`
	PEStatus        string   `json:"pe_status"`
	PBStatus        string   `json:"pb_status"`
	ValuationStatus string   `json:"valuation_status"`
}

// ValuationStatus classifies one instrument's valuation from PE and PB.
// Both metrics undervalued means deeply undervalued, one means relatively
// undervalued; the overvalued side mirrors this.
func ValuationStatus(rec *contracts.InstrumentRecord) ValuationDetails {
	peStat := peStatus(rec.PE)
	pbStat := pbStatus(rec.PB)

	var combined string
	switch {
	case peStat == StatusUnderval && pbStat == StatusUnderval:
		combined = ValuationDeepUnderval
	case peStat == StatusUnderval || pbStat == StatusUnderval:
		combined = ValuationUnderval
	case peStat == StatusOverval && pbStat == StatusOverval:
		combined = ValuationDeepOverval
	case peStat == StatusOverval || pbStat == StatusOverval:
		combined = ValuationOverval
	default:
		combined = ValuationFair
	}

	return ValuationDetails{
		PE:              rec.PE,
		PB:              rec.PB,
		PEStatus:        peStat,
		PBStatus:        pbStat,
		ValuationStatus: combined,
	}
}

func peStatus(pe *float64) string {
	if pe == nil || *pe <= 0 {
		return StatusAbnormal
	}
	switch {
	case *pe < 10:
		return StatusUnderval
	case *pe < 20:
		return StatusFairLow
	case *pe < 40:
		return StatusFair
	case *pe < 60:
		return StatusFairHigh
	default:
		return StatusOverval
	}
}

func pbStatus(pb *float64) string {
	if pb == nil || *pb <= 0 {
		return StatusAbnormal
	}
	switch {
	case *pb < 1:
		return StatusUnderval
	case *pb < 2:
		return StatusFairLow
	case *pb < 4:
		return StatusFair
	case *pb < 6:
		return StatusFairHigh
	default:
		return StatusOverval
	}
}

// DividendRating grades a dividend yield percentage
func DividendRating(ratio *float64) string {
	if ratio == nil {
		return "无股息"
	}
	switch {
	case *ratio >= 5:
		return "优秀"
	case *ratio >= 3:
		return "良好"
	case *ratio >= 1:
		return "一般"
	default:
		return "较低"
	}
}

// DividendSustainability grades the payout ratio percentage
func DividendSustainability(payoutRatio *float64) string {
	if payoutRatio == nil {
		return "未知"
	}
	switch {
	case *payoutRatio > 80:
		return "较高风险"
	case *payoutRatio > 50:
		return "适中"
	default:
		return "健康"
	}
}

// DividendAnalysis is the dividend view of one instrument
type DividendAnalysis struct {
	DividendRatio  *float64 `json:"dividend_ratio"`
	Rating         string   `json:"rating"`
	PayoutRatio    *float64 `json:"payout_ratio,omitempty"`
	Sustainability string   `json:"sustainability,omitempty"`
}

// AnalyzeDividend grades the dividend yield and, when given, the payout
// sustainability.
func AnalyzeDividend(dividendRatio, payoutRatio *float64) DividendAnalysis {
	out := DividendAnalysis{
		DividendRatio: dividendRatio,
		Rating:        DividendRating(dividendRatio),
	}
	if payoutRatio != nil {
		out.PayoutRatio = payoutRatio
		out.Sustainability = DividendSustainability(payoutRatio)
	}
	return out
}

// HealthReport is the financial health view of one instrument
type HealthReport struct {
	Score  float64  `json:"health_score"`
	Rating string   `json:"health_rating"`
	Checks []string `json:"checks"`
}

// FinancialHealth checks profitability quality from ROE and margins.
// The score starts at 60 and each delivered metric moves it; missing
// metrics are skipped entirely.
func FinancialHealth(rec *contracts.InstrumentRecord) HealthReport {
	checks := []string{}
	score := 60.0

	if rec.ROE != nil {
		roe := *rec.ROE
		switch {
		case roe > 15:
			checks = append(checks, "✓ ROE优秀 (>15%)")
			score += 10
		case roe > 10:
			checks = append(checks, "✓ ROE良好 (>10%)")
			score += 5
		case roe > 5:
			checks = append(checks, "○ ROE一般 (>5%)")
		default:
			checks = append(checks, "✗ ROE偏低")
			score -= 10
		}
	}

	if rec.NetMargin != nil {
		margin := *rec.NetMargin
		switch {
		case margin > 20:
			checks = append(checks, "✓ 净利润率高 (>20%)")
			score += 5
		case margin > 10:
			checks = append(checks, "✓ 净利润率良好 (>10%)")
			score += 3
		case margin > 0:
			checks = append(checks, "○ 净利润率为正")
		default:
			checks = append(checks, "✗ 净利润率为负")
			score -= 15
		}
	}

	if rec.GrossMargin != nil {
		margin := *rec.GrossMargin
		switch {
		case margin > 50:
			checks = append(checks, "✓ 毛利率优秀 (>50%)")
			score += 5
		case margin > 30:
			checks = append(checks, "✓ 毛利率良好 (>30%)")
			score += 3
		case margin > 0:
			checks = append(checks, "○ 毛利率为正")
		default:
			checks = append(checks, "✗ 毛利率为负")
			score -= 10
		}
	}

	score = clamp(score, 0, 100)

	var rating string
	switch {
	case score >= 80:
		rating = "优秀"
	case score >= 60:
		rating = "良好"
	case score >= 40:
		rating = "一般"
	default:
		rating = "较差"
	}

	return HealthReport{Score: score, Rating: rating, Checks: checks}
}

// FormatScore renders a score for display with two decimals
func FormatScore(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
