package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/mourafe/radarb3/internal/contracts"
	"github.com/mourafe/radarb3/internal/pipeline"
	"github.com/mourafe/radarb3/internal/report"
	"github.com/mourafe/radarb3/pkg/logger"
)

// ScanHandler handles the scan API endpoints
// ⭐ SSOT: 스캔 API 핸들러는 이 구조체에서만
type ScanHandler struct {
	pipeline *pipeline.Pipeline
	defaults contracts.Params
	logger   *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(p *pipeline.Pipeline, defaults contracts.Params, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		pipeline: p,
		defaults: defaults,
		logger:   log,
	}
}

// GetScan runs a scan and returns the ranked result as JSON
// GET /api/scan?weeks=12&min_return=30&batch_size=100
func (h *ScanHandler) GetScan(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.pipeline.Run(r.Context(), params)
	if err != nil {
		h.logger.WithError(err).Error("Scan failed")
		respondError(w, http.StatusBadGateway, "Scan failed: upstream data unavailable")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetScanCSV runs a scan and returns the ranked rows as a CSV download
// GET /api/scan/csv?weeks=12&min_return=30&batch_size=100
func (h *ScanHandler) GetScanCSV(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.pipeline.Run(r.Context(), params)
	if err != nil {
		h.logger.WithError(err).Error("Scan failed")
		respondError(w, http.StatusBadGateway, "Scan failed: upstream data unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", report.Filename(result.Params)))
	if err := report.WriteCSV(w, result.Rows); err != nil {
		h.logger.WithError(err).Error("CSV export failed")
	}
}

// GetUniverse returns the resolved candidate universe
// GET /api/universe
func (h *ScanHandler) GetUniverse(w http.ResponseWriter, r *http.Request) {
	universe, err := h.pipeline.Universe(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Universe resolution failed")
		respondError(w, http.StatusBadGateway, "Universe resolution failed")
		return
	}
	respondJSON(w, http.StatusOK, universe)
}

// Refresh force-evicts the universe and price caches so the next scan
// reissues upstream requests. In-flight scans are unaffected.
// POST /api/refresh
func (h *ScanHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.pipeline.ForceRefresh(r.Context()); err != nil {
		h.logger.WithError(err).Error("Cache refresh failed")
		respondError(w, http.StatusInternalServerError, "Cache refresh failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "caches cleared, next scan will refetch",
	})
}

// parseParams reads scan parameters from the query string, applying the
// configured defaults and clamping to the operator bounds. Unparseable
// values are a client error, out-of-range values are clamped.
func (h *ScanHandler) parseParams(r *http.Request) (contracts.Params, error) {
	params := h.defaults
	query := r.URL.Query()

	if raw := query.Get("weeks"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("weeks must be an integer, got %q", raw)
		}
		params.Weeks = v
	}
	if raw := query.Get("min_return"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return params, fmt.Errorf("min_return must be a number, got %q", raw)
		}
		params.MinReturnPct = v
	}
	if raw := query.Get("batch_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("batch_size must be an integer, got %q", raw)
		}
		params.BatchSize = v
	}

	return params.Clamped(), nil
}
