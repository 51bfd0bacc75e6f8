package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartsales-io/report-engine/pkg/apperrors"
	"github.com/smartsales-io/report-engine/pkg/services"
)

// RunReportRequest is the body of POST /api/reports/run.
type RunReportRequest struct {
	Prompt string `json:"prompt"`
	Format string `json:"format,omitempty"`
}

// ReportsHandler exposes the natural-language report endpoint.
type ReportsHandler struct {
	reports services.ReportService
	logger  *zap.Logger
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(reports services.ReportService, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{reports: reports, logger: logger}
}

// RegisterRoutes registers the report endpoints.
func (h *ReportsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/reports/run", h.handleRun)
}

func (h *ReportsHandler) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	result, err := h.reports.Run(r.Context(), req.Prompt, req.Format)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrEmptyPrompt):
			_ = ErrorResponse(w, http.StatusBadRequest, "empty_prompt", "prompt is required")
		case errors.Is(err, apperrors.ErrInvalidFormat):
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_format", "format must be one of json, csv, xlsx")
		default:
			h.logger.Error("Report run failed", zap.Error(err))
			_ = ErrorResponse(w, http.StatusInternalServerError, "report_failed", "failed to run report")
		}
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}
