package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
	"github.com/TangUsers/stock-analysis-saas/internal/selection"
	"github.com/TangUsers/stock-analysis-saas/pkg/config"
	"github.com/TangUsers/stock-analysis-saas/pkg/logger"
)

// AnalysisHandler serves single-stock technical analysis
type AnalysisHandler struct {
	pipeline *selection.Pipeline
	provider contracts.MarketDataProvider
	config   *config.Config
	logger   *logger.Logger
}

// NewAnalysisHandler creates an analysis handler
func NewAnalysisHandler(pipeline *selection.Pipeline, provider contracts.MarketDataProvider, cfg *config.Config, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		pipeline: pipeline,
		provider: provider,
		config:   cfg,
		logger:   log,
	}
}

// GetAnalysis handles GET /api/stocks/{code}/analysis
// Optional query params: name, days (kline window in calendar days)
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	name := r.URL.Query().Get("name")

	days := h.config.Analysis.KlineDays
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}

	ctx := r.Context()
	if err := h.provider.Acquire(ctx); err != nil {
		h.logger.WithError(err).Error("Provider acquire failed")
		writeError(w, http.StatusBadGateway, "market data unavailable")
		return
	}
	defer h.provider.Release()

	analysis, err := h.pipeline.AnalyzeStock(ctx, code, name, days)
	if err != nil {
		if contracts.IsValidation(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.WithError(err).WithField("code", code).Error("Analysis failed")
		writeError(w, http.StatusBadGateway, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
