package fundamental

import (
	"math"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
)

// turnover considered ideal for the liquidity score
const idealTurnover = 3.0

// Scorer filters and scores fundamental snapshot tables
type Scorer struct {
	criteria FilterCriteria
	weights  ScoreWeights
	logger   *logger.Logger
}

// NewScorer creates a scorer with the given criteria and weights
func NewScorer(criteria FilterCriteria, weights ScoreWeights, log *logger.Logger) *Scorer {
	return &Scorer{
		criteria: criteria,
		weights:  weights,
		logger:   log,
	}
}

// NewDefaultScorer creates a scorer with the standard criteria and weights
func NewDefaultScorer(log *logger.Logger) *Scorer {
	return NewScorer(DefaultCriteria(), DefaultWeights(), log)
}

// Criteria returns the active filter criteria
func (s *Scorer) Criteria() FilterCriteria {
	return s.criteria
}

// Weights returns the active score weights
func (s *Scorer) Weights() ScoreWeights {
	return s.weights
}

// Filter returns the rows passing every applicable bound. A bound is
// applicable when it is set and the table carries the column; a row
// with a missing value on an applicable column is rejected.
func (s *Scorer) Filter(table *contracts.Table) (*contracts.Table, error) {
	if table == nil || table.Len() == 0 {
		return nil, contracts.NewValidationError("table", "no data to filter")
	}

	kept := make([]contracts.InstrumentRecord, 0, table.Len())
	dropped := make(map[string]int)

	for _, rec := range table.Rows {
		if reason := s.rejectReason(table, &rec); reason != "" {
			dropped[reason]++
			continue
		}
		kept = append(kept, rec)
	}

	s.logger.WithFields(map[string]interface{}{
		"input":   table.Len(),
		"kept":    len(kept),
		"dropped": dropped,
	}).Debug("Fundamental filter applied")

	out := table.Copy()
	out.Rows = kept
	return out, nil
}

// rejectReason names the first bound the row fails, or "" when it passes
func (s *Scorer) rejectReason(table *contracts.Table, rec *contracts.InstrumentRecord) string {
	type bound struct {
		name   string
		metric contracts.Metric
		min    *float64
		max    *float64
	}

	bounds := []bound{
		{"pe", contracts.MetricPE, s.criteria.PEMin, s.criteria.PEMax},
		{"pb", contracts.MetricPB, s.criteria.PBMin, s.criteria.PBMax},
		{"roe", contracts.MetricROE, s.criteria.ROEMin, nil},
		{"dividend", contracts.MetricDividend, s.criteria.DividendMin, nil},
		{"turnover", contracts.MetricTurnover, s.criteria.TurnoverMin, s.criteria.TurnoverMax},
		{"market_cap", contracts.MetricMarketCap, s.criteria.MarketCapMin, nil},
	}

	for _, b := range bounds {
		if !table.HasColumn(b.metric) {
			continue
		}
		if b.min == nil && b.max == nil {
			continue
		}

		value, ok := rec.Get(b.metric)
		if !ok {
			// Bound applies but the row has no value
			return b.name
		}
		if b.min != nil && !(value > *b.min) {
			return b.name
		}
		if b.max != nil && !(value < *b.max) {
			return b.name
		}
	}
	return ""
}

// Score computes the five component scores and the weighted composite
// for every row. A column the source never delivered scores the neutral
// 50 for all rows; a missing value on a delivered column follows the
// per-component policy below.
func (s *Scorer) Score(table *contracts.Table) (*contracts.Table, error) {
	if table == nil || table.Len() == 0 {
		return nil, contracts.NewValidationError("table", "no data to score")
	}

	out := table.Copy()
	for i := range out.Rows {
		s.scoreRow(out, &out.Rows[i])
	}
	out.AddColumn(contracts.MetricCompositeScore)
	return out, nil
}

// ScoreRecord scores one instrument in isolation, treating every metric
// column as delivered.
func (s *Scorer) ScoreRecord(rec *contracts.InstrumentRecord) float64 {
	table := contracts.NewTable(nil,
		contracts.MetricPE, contracts.MetricPB, contracts.MetricROE,
		contracts.MetricDividend, contracts.MetricTurnover)
	s.scoreRow(table, rec)
	return rec.CompositeScore
}

func (s *Scorer) scoreRow(table *contracts.Table, rec *contracts.InstrumentRecord) {
	rec.PEScore = componentScore(table, rec, contracts.MetricPE, peScore, 100)
	rec.PBScore = componentScore(table, rec, contracts.MetricPB, pbScore, 100)
	rec.ROEScore = componentScore(table, rec, contracts.MetricROE, roeScore, 50)
	rec.DividendScore = componentScore(table, rec, contracts.MetricDividend, dividendScore, 50)
	rec.LiquidityScore = componentScore(table, rec, contracts.MetricTurnover, liquidityScore, 50)

	rec.CompositeScore = round2(rec.PEScore*s.weights.PE +
		rec.PBScore*s.weights.PB +
		rec.ROEScore*s.weights.ROE +
		rec.DividendScore*s.weights.Dividend +
		rec.LiquidityScore*s.weights.Liquidity)
}

// componentScore applies one scoring formula. The whole column missing
// scores the neutral 50; a single missing value scores missingValue.
func componentScore(table *contracts.Table, rec *contracts.InstrumentRecord,
	metric contracts.Metric, formula func(float64) float64, missingValue float64) float64 {

	if !table.HasColumn(metric) {
		return 50
	}
	value, ok := rec.Get(metric)
	if !ok {
		return missingValue
	}
	return round2(formula(value))
}

// peScore: lower is better, 50 at PE 10, non-positive PE scores 100
func peScore(pe float64) float64 {
	if pe <= 0 {
		return 100
	}
	return clamp(50-(pe-10)*2, 0, 100)
}

// pbScore: lower is better, 40 at PB 1, non-positive PB scores 100
func pbScore(pb float64) float64 {
	if pb <= 0 {
		return 100
	}
	return clamp(40-(pb-1)*10, 0, 100)
}

// roeScore: higher is better, 10x the percentage
func roeScore(roe float64) float64 {
	return clamp(roe*10, 0, 100)
}

// dividendScore: higher is better, 20x the yield
func dividendScore(dv float64) float64 {
	return math.Min(100, dv*20)
}

// liquidityScore: best at the ideal turnover, fading by distance
func liquidityScore(turnover float64) float64 {
	return clamp(50-math.Abs(turnover-idealTurnover)*10, 0, 100)
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

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
