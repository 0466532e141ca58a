package selection

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
)

// Repository persists recommendation runs
// ⭐ SSOT: 推荐结果的存取只在这里
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new selection repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRun saves one daily run, replacing any earlier run for the same
// trade date.
func (r *Repository) SaveRun(ctx context.Context, result *DailyResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		"DELETE FROM selection.recommendation_items WHERE trade_date = $1", result.TradeDate)
	if err != nil {
		return fmt.Errorf("failed to delete old items: %w", err)
	}

	criteriaJSON, err := json.Marshal(result.CriteriaUsed)
	if err != nil {
		return fmt.Errorf("failed to encode criteria: %w", err)
	}
	weightsJSON, err := json.Marshal(result.WeightsUsed)
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}

	runQuery := `
		INSERT INTO selection.recommendation_runs (
			trade_date, status, total_analyzed, recommended, criteria, weights
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (trade_date) DO UPDATE SET
			status = EXCLUDED.status,
			total_analyzed = EXCLUDED.total_analyzed,
			recommended = EXCLUDED.recommended,
			criteria = EXCLUDED.criteria,
			weights = EXCLUDED.weights,
			created_at = NOW()
	`
	_, err = tx.Exec(ctx, runQuery,
		result.TradeDate, result.Status, result.TotalAnalyzed, len(result.Recommendations),
		criteriaJSON, weightsJSON)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	itemQuery := `
		INSERT INTO selection.recommendation_items (
			trade_date, rank, stock_code, stock_name,
			pe, pb, roe, dv_ratio, turnover_rate, close,
			pe_score, pb_score, roe_score, dividend_score, liquidity_score,
			composite_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	for _, rec := range result.Recommendations {
		_, err := tx.Exec(ctx, itemQuery,
			result.TradeDate, rec.Rank, rec.Code, rec.Name,
			rec.PE, rec.PB, rec.ROE, rec.Dividend, rec.Turnover, rec.Close,
			rec.PEScore, rec.PBScore, rec.ROEScore, rec.DividendScore, rec.LiquidityScore,
			rec.CompositeScore,
		)
		if err != nil {
			return fmt.Errorf("failed to insert recommendation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRun retrieves one daily run with its recommendations
func (r *Repository) GetRun(ctx context.Context, tradeDate time.Time) (*DailyResult, error) {
	runQuery := `
		SELECT status, total_analyzed, criteria, weights
		FROM selection.recommendation_runs
		WHERE trade_date = $1
	`

	result := &DailyResult{TradeDate: tradeDate}
	var criteriaJSON, weightsJSON []byte
	err := r.pool.QueryRow(ctx, runQuery, tradeDate).Scan(
		&result.Status, &result.TotalAnalyzed, &criteriaJSON, &weightsJSON)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("no run found for date %s", tradeDate.Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if len(criteriaJSON) > 0 {
		if err := json.Unmarshal(criteriaJSON, &result.CriteriaUsed); err != nil {
			return nil, fmt.Errorf("failed to decode criteria: %w", err)
		}
	}
	if len(weightsJSON) > 0 {
		if err := json.Unmarshal(weightsJSON, &result.WeightsUsed); err != nil {
			return nil, fmt.Errorf("failed to decode weights: %w", err)
		}
	}

	itemQuery := `
		SELECT
			rank, stock_code, stock_name,
			pe, pb, roe, dv_ratio, turnover_rate, close,
			pe_score, pb_score, roe_score, dividend_score, liquidity_score,
			composite_score
		FROM selection.recommendation_items
		WHERE trade_date = $1
		ORDER BY rank ASC
	`

	rows, err := r.pool.Query(ctx, itemQuery, tradeDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	items := make([]contracts.InstrumentRecord, 0)
	for rows.Next() {
		var rec contracts.InstrumentRecord
		err := rows.Scan(
			&rec.Rank, &rec.Code, &rec.Name,
			&rec.PE, &rec.PB, &rec.ROE, &rec.Dividend, &rec.Turnover, &rec.Close,
			&rec.PEScore, &rec.PBScore, &rec.ROEScore, &rec.DividendScore, &rec.LiquidityScore,
			&rec.CompositeScore,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	result.Recommendations = items
	return result, nil
}

// LatestRun retrieves the most recent daily run
func (r *Repository) LatestRun(ctx context.Context) (*DailyResult, error) {
	var tradeDate time.Time
	err := r.pool.QueryRow(ctx,
		"SELECT trade_date FROM selection.recommendation_runs ORDER BY trade_date DESC LIMIT 1",
	).Scan(&tradeDate)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("no runs found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run date: %w", err)
	}

	return r.GetRun(ctx, tradeDate)
}
