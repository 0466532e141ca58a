package fundamental

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
)

func TestValuationStatus(t *testing.T) {
	tests := []struct {
		name     string
		pe       *float64
		pb       *float64
		combined string
	}{
		{"both undervalued", contracts.Float(8), contracts.Float(0.8), ValuationDeepUnderval},
		{"pe undervalued only", contracts.Float(8), contracts.Float(2.5), ValuationUnderval},
		{"both overvalued", contracts.Float(80), contracts.Float(8), ValuationDeepOverval},
		{"pb overvalued only", contracts.Float(25), contracts.Float(8), ValuationOverval},
		{"fair", contracts.Float(25), contracts.Float(2.5), ValuationFair},
		{"missing metrics are abnormal", nil, nil, ValuationFair},
		{"negative pe is abnormal", contracts.Float(-5), contracts.Float(0.8), ValuationUnderval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := ValuationStatus(&contracts.InstrumentRecord{PE: tt.pe, PB: tt.pb})
			assert.Equal(t, tt.combined, details.ValuationStatus)
		})
	}
}

func TestPEStatusBuckets(t *testing.T) {
	details := ValuationStatus(&contracts.InstrumentRecord{
		PE: contracts.Float(15), PB: contracts.Float(1.5),
	})
	assert.Equal(t, StatusFairLow, details.PEStatus)
	assert.Equal(t, StatusFairLow, details.PBStatus)

	details = ValuationStatus(&contracts.InstrumentRecord{
		PE: contracts.Float(45), PB: contracts.Float(5),
	})
	assert.Equal(t, StatusFairHigh, details.PEStatus)
	assert.Equal(t, StatusFairHigh, details.PBStatus)
}

func TestDividendRating(t *testing.T) {
	assert.Equal(t, "优秀", DividendRating(contracts.Float(5.5)))
	assert.Equal(t, "良好", DividendRating(contracts.Float(3)))
	assert.Equal(t, "一般", DividendRating(contracts.Float(1.2)))
	assert.Equal(t, "较低", DividendRating(contracts.Float(0.4)))
	assert.Equal(t, "无股息", DividendRating(nil))
}

func TestDividendSustainability(t *testing.T) {
	assert.Equal(t, "较高风险", DividendSustainability(contracts.Float(90)))
	assert.Equal(t, "适中", DividendSustainability(contracts.Float(60)))
	assert.Equal(t, "健康", DividendSustainability(contracts.Float(30)))
	assert.Equal(t, "未知", DividendSustainability(nil))
}

func TestAnalyzeDividend(t *testing.T) {
	out := AnalyzeDividend(contracts.Float(4), contracts.Float(45))
	assert.Equal(t, "良好", out.Rating)
	assert.Equal(t, "健康", out.Sustainability)

	out = AnalyzeDividend(contracts.Float(4), nil)
	assert.Equal(t, "良好", out.Rating)
	assert.Empty(t, out.Sustainability)
}

func TestFinancialHealth(t *testing.T) {
	rec := &contracts.InstrumentRecord{
		ROE:         contracts.Float(20),
		NetMargin:   contracts.Float(25),
		GrossMargin: contracts.Float(55),
	}
	report := FinancialHealth(rec)

	// 60 + 10 + 5 + 5
	assert.Equal(t, 80.0, report.Score)
	assert.Equal(t, "优秀", report.Rating)
	assert.Len(t, report.Checks, 3)
}

func TestFinancialHealth_WeakMetrics(t *testing.T) {
	rec := &contracts.InstrumentRecord{
		ROE:         contracts.Float(2),
		NetMargin:   contracts.Float(-5),
		GrossMargin: contracts.Float(-1),
	}
	report := FinancialHealth(rec)

	// 60 - 10 - 15 - 10
	assert.Equal(t, 25.0, report.Score)
	assert.Equal(t, "较差", report.Rating)
}

func TestFinancialHealth_MissingMetricsSkipped(t *testing.T) {
	report := FinancialHealth(&contracts.InstrumentRecord{})

	assert.Equal(t, 60.0, report.Score)
	assert.Equal(t, "良好", report.Rating)
	assert.Empty(t, report.Checks)
}
