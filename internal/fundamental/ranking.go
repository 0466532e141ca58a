package fundamental

import (
	"fmt"
	"sort"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
)

// Pipeline result statuses
const (
	PipelineSuccess = "success"
	PipelineWarning = "warning"
)

// PipelineResult is the outcome of the full screen-score-rank run
type PipelineResult struct {
	Status         string                       `json:"status"`
	Message        string                       `json:"message,omitempty"`
	TotalStocks    int                          `json:"total_stocks"`
	AnalyzedStocks int                          `json:"analyzed_stocks"`
	Stocks         []contracts.InstrumentRecord `json:"stocks"`
	CriteriaUsed   FilterCriteria               `json:"filters_used"`
	WeightsUsed    ScoreWeights                 `json:"weights_used"`
}

// RankBy sorts the table on one metric. Rows missing the metric sort
// last regardless of direction. topN <= 0 keeps all rows. The input
// table is not modified.
func RankBy(table *contracts.Table, metric contracts.Metric, ascending bool, topN int) (*contracts.Table, error) {
	if table == nil {
		return nil, contracts.NewValidationError("table", "no data to rank")
	}
	if !table.HasColumn(metric) && metric != contracts.MetricCompositeScore {
		return nil, contracts.NewValidationError(string(metric), "column not present")
	}

	out := table.Copy()
	sort.SliceStable(out.Rows, func(i, j int) bool {
		vi, oki := out.Rows[i].Get(metric)
		vj, okj := out.Rows[j].Get(metric)
		if oki != okj {
			return oki // rows with a value come first
		}
		if !oki {
			return false
		}
		if ascending {
			return vi < vj
		}
		return vi > vj
	})

	if topN > 0 && len(out.Rows) > topN {
		out.Rows = out.Rows[:topN]
	}
	return out, nil
}

// RankByComposite sorts by the weighted composite score, best first,
// and assigns 1-based ranks.
func (s *Scorer) RankByComposite(table *contracts.Table, topN int) (*contracts.Table, error) {
	if table == nil || table.Len() == 0 {
		return nil, contracts.NewValidationError("table", "no data to rank")
	}

	scored := table
	if !table.HasColumn(contracts.MetricCompositeScore) {
		var err error
		scored, err = s.Score(table)
		if err != nil {
			return nil, err
		}
	}

	ranked, err := RankBy(scored, contracts.MetricCompositeScore, false, topN)
	if err != nil {
		return nil, err
	}

	for i := range ranked.Rows {
		ranked.Rows[i].Rank = i + 1
	}
	return ranked, nil
}

// FullPipeline runs the complete screen: filter, score, rank, top N.
// An empty post-filter table is not an error but a warning result with
// no stocks.
func (s *Scorer) FullPipeline(table *contracts.Table, topN int) (*PipelineResult, error) {
	filtered, err := s.Filter(table)
	if err != nil {
		return nil, fmt.Errorf("filter failed: %w", err)
	}

	result := &PipelineResult{
		CriteriaUsed: s.criteria,
		WeightsUsed:  s.weights,
	}

	if filtered.Len() == 0 {
		result.Status = PipelineWarning
		result.Message = "筛选后无股票"
		result.Stocks = []contracts.InstrumentRecord{}

		s.logger.Warn("Fundamental pipeline produced no stocks after filtering")
		return result, nil
	}

	ranked, err := s.RankByComposite(filtered, topN)
	if err != nil {
		return nil, fmt.Errorf("rank failed: %w", err)
	}

	result.Status = PipelineSuccess
	result.TotalStocks = filtered.Len()
	result.AnalyzedStocks = ranked.Len()
	result.Stocks = ranked.Rows

	s.logger.WithFields(map[string]interface{}{
		"total":    result.TotalStocks,
		"analyzed": result.AnalyzedStocks,
	}).Info("Fundamental pipeline completed")

	return result, nil
}
