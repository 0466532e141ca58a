package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/TangUsers/stock-analysis-saas/internal/report"
	"github.com/TangUsers/stock-analysis-saas/internal/selection"
	"github.com/TangUsers/stock-analysis-saas/pkg/config"
	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
)

// RunStore reads persisted recommendation runs
type RunStore interface {
	GetRun(ctx context.Context, tradeDate time.Time) (*selection.DailyResult, error)
	LatestRun(ctx context.Context) (*selection.DailyResult, error)
}

// RunSaver persists a finished recommendation run
type RunSaver interface {
	SaveRun(ctx context.Context, result *selection.DailyResult) error
}

// RecommendationHandler serves the daily recommendation endpoints
type RecommendationHandler struct {
	pipeline *selection.Pipeline
	reports  *report.Generator
	store    RunStore // nil when persistence is disabled
	saver    RunSaver // nil when persistence is disabled
	config   *config.Config
	logger   *logger.Logger
}

// NewRecommendationHandler creates a recommendation handler. store and
// saver may be nil when the database is disabled.
func NewRecommendationHandler(pipeline *selection.Pipeline, reports *report.Generator, store RunStore, saver RunSaver, cfg *config.Config, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		pipeline: pipeline,
		reports:  reports,
		store:    store,
		saver:    saver,
		config:   cfg,
		logger:   log,
	}
}

// GetRecommendations handles GET /api/recommendations
// Optional query params: date=YYYY-MM-DD (defaults to the latest run)
// and limit (truncates the ranked list).
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "recommendation storage is disabled")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	ctx := r.Context()

	var (
		result *selection.DailyResult
		err    error
	)
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		tradeDate, parseErr := time.Parse("2006-01-02", dateStr)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		result, err = h.store.GetRun(ctx, tradeDate)
	} else {
		result, err = h.store.LatestRun(ctx)
	}
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if limit > 0 && limit < len(result.Recommendations) {
		result.Recommendations = result.Recommendations[:limit]
	}

	writeJSON(w, http.StatusOK, result)
}

// RunNow handles POST /api/recommendations/run
// Optional query param: top, defaults to the configured top N.
func (h *RecommendationHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	topN := h.config.Analysis.TopN
	if v := r.URL.Query().Get("top"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		topN = parsed
	}

	ctx := r.Context()
	result, err := h.pipeline.RunDaily(ctx, topN)
	if err != nil {
		h.logger.WithError(err).Error("On-demand daily run failed")
		writeError(w, http.StatusBadGateway, "recommendation run failed")
		return
	}

	if result.Status == "success" {
		if h.reports != nil {
			if _, err := h.reports.WriteJSON(result); err != nil {
				h.logger.WithError(err).Warn("Failed to write JSON report")
			}
			if _, err := h.reports.WriteMarkdown(result); err != nil {
				h.logger.WithError(err).Warn("Failed to write Markdown report")
			}
		}
		if h.saver != nil {
			if err := h.saver.SaveRun(ctx, result); err != nil {
				h.logger.WithError(err).Warn("Failed to persist run")
			}
		}
	}

	writeJSON(w, http.StatusOK, result)
}
