package fundamental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
)

func allColumns() []contracts.Metric {
	return []contracts.Metric{
		contracts.MetricPE, contracts.MetricPB, contracts.MetricROE,
		contracts.MetricDividend, contracts.MetricTurnover,
	}
}

func valueRecord(code string) contracts.InstrumentRecord {
	return contracts.InstrumentRecord{
		Code:     code,
		PE:       contracts.Float(8),
		PB:       contracts.Float(1.0),
		ROE:      contracts.Float(12),
		Dividend: contracts.Float(3.5),
		Turnover: contracts.Float(2.0),
	}
}

func TestScoreRecord_ValueStock(t *testing.T) {
	scorer := NewDefaultScorer(logger.Nop())

	rec := valueRecord("600519")
	composite := scorer.ScoreRecord(&rec)

	assert.Equal(t, 54.0, rec.PEScore)
	assert.Equal(t, 40.0, rec.PBScore)
	assert.Equal(t, 100.0, rec.ROEScore)
	assert.Equal(t, 70.0, rec.DividendScore)
	assert.Equal(t, 40.0, rec.LiquidityScore)
	assert.Equal(t, 64.5, composite)
	assert.Equal(t, 64.5, rec.CompositeScore)
}

func TestScoreRecord_NonPositiveValuation(t *testing.T) {
	scorer := NewDefaultScorer(logger.Nop())

	rec := contracts.InstrumentRecord{
		Code: "000001",
		PE:   contracts.Float(-5),
		PB:   contracts.Float(0),
	}
	scorer.ScoreRecord(&rec)

	// Negative earnings and zero book value both score the top mark
	assert.Equal(t, 100.0, rec.PEScore)
	assert.Equal(t, 100.0, rec.PBScore)
}

func TestScoreRecord_MissingValuePolicies(t *testing.T) {
	scorer := NewDefaultScorer(logger.Nop())

	rec := contracts.InstrumentRecord{Code: "000001"}
	scorer.ScoreRecord(&rec)

	assert.Equal(t, 100.0, rec.PEScore)
	assert.Equal(t, 100.0, rec.PBScore)
	assert.Equal(t, 50.0, rec.ROEScore)
	assert.Equal(t, 50.0, rec.DividendScore)
	assert.Equal(t, 50.0, rec.LiquidityScore)
}

func TestScore_AbsentColumnIsNeutral(t *testing.T) {
	scorer := NewDefaultScorer(logger.Nop())

	// Only the PE column was delivered
	table := contracts.NewTable([]contracts.InstrumentRecord{
		{Code: "600519", PE: contracts.Float(10), ROE: contracts.Float(30)},
	}, contracts.MetricPE)

	scored, err := scorer.Score(table)
	require.NoError(t, err)

	rec := scored.Rows[0]
	assert.Equal(t, 50.0, rec.PEScore)
	// ROE value exists on the row but the column was not delivered
	assert.Equal(t, 50.0, rec.ROEScore)
	assert.True(t, scored.HasColumn(contracts.MetricCompositeScore))
}

func TestScore_EmptyTable(t *testing.T) {
	scorer := NewDefaultScorer(logger.Nop())

	_, err := scorer.Score(contracts.NewTable(nil))
	require.Error(t, err)
	assert.True(t, contracts.IsValidation(err))
}

func TestScore_BoundedComponents(t *testing.T) {
	scorer := NewDefaultScorer(logger.Nop())

	extreme := contracts.InstrumentRecord{
		Code:     "000001",
		PE:       contracts.Float(200),
		PB:       contracts.Float(50),
		ROE:      contracts.Float(-20),
		Dividend: contracts.Float(30),
		Turnover: contracts.Float(50),
	}
	scorer.ScoreRecord(&extreme)

	assert.Equal(t, 0.0, extreme.PEScore)
	assert.Equal(t, 0.0, extreme.PBScore)
	assert.Equal(t, 0.0, extreme.ROEScore)
	assert.Equal(t, 100.0, extreme.DividendScore)
	assert.Equal(t, 0.0, extreme.LiquidityScore)
}

func TestScore_PEMonotonicity(t *testing.T) {
	scorer := NewDefaultScorer(logger.Nop())

	prev := 101.0
	for _, pe := range []float64{1, 5, 10, 20, 35, 50, 80} {
		rec := contracts.InstrumentRecord{Code: "x", PE: contracts.Float(pe)}
		scorer.ScoreRecord(&rec)
		assert.LessOrEqual(t, rec.PEScore, prev, "pe %v", pe)
		prev = rec.PEScore
	}
}

func TestFilter_Defaults(t *testing.T) {
	scorer := NewDefaultScorer(logger.Nop())

	rows := []contracts.InstrumentRecord{
		valueRecord("pass"),
		func() contracts.InstrumentRecord {
			r := valueRecord("pe_too_high")
			r.PE = contracts.Float(60)
			return r
		}(),
		func() contracts.InstrumentRecord {
			r := valueRecord("roe_too_low")
			r.ROE = contracts.Float(3)
			return r
		}(),
		func() contracts.InstrumentRecord {
			r := valueRecord("missing_dividend")
			r.Dividend = nil
			return r
		}(),
	}
	table := contracts.NewTable(rows, allColumns()...)

	filtered, err := scorer.Filter(table)
	require.NoError(t, err)

	require.Equal(t, 1, filtered.Len())
	assert.Equal(t, "pass", filtered.Rows[0].Code)
}

func TestFilter_SkipsAbsentColumns(t *testing.T) {
	scorer := NewDefaultScorer(logger.Nop())

	// Only PE delivered: the ROE/dividend/turnover bounds cannot apply
	table := contracts.NewTable([]contracts.InstrumentRecord{
		{Code: "600519", PE: contracts.Float(8)},
	}, contracts.MetricPE)

	filtered, err := scorer.Filter(table)
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.Len())
}

func TestFilter_NilBoundNotApplied(t *testing.T) {
	criteria := FilterCriteria{} // no bounds at all
	scorer := NewScorer(criteria, DefaultWeights(), logger.Nop())

	rows := []contracts.InstrumentRecord{
		{Code: "a", PE: contracts.Float(500)},
		{Code: "b"},
	}
	filtered, err := scorer.Filter(contracts.NewTable(rows, allColumns()...))
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.Len())
}

func TestFilter_StrictBounds(t *testing.T) {
	scorer := NewDefaultScorer(logger.Nop())

	// PE exactly at the max bound fails the strict comparison
	r := valueRecord("edge")
	r.PE = contracts.Float(50)
	filtered, err := scorer.Filter(contracts.NewTable(
		[]contracts.InstrumentRecord{r}, allColumns()...))
	require.NoError(t, err)
	assert.Equal(t, 0, filtered.Len())
}

func TestFilter_EmptyTable(t *testing.T) {
	scorer := NewDefaultScorer(logger.Nop())

	_, err := scorer.Filter(contracts.NewTable(nil))
	require.Error(t, err)
	assert.True(t, contracts.IsValidation(err))

	_, err = scorer.Filter(nil)
	require.Error(t, err)
	assert.True(t, contracts.IsValidation(err))
}
