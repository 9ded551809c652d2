package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/wonny/aegis-picker/backend/internal/audit"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
)

// RunLister reads the pipeline run log
type RunLister interface {
	ListRecent(ctx context.Context, limit int) ([]audit.RunSummary, error)
}

// RunsHandler serves the run log
type RunsHandler struct {
	runs   RunLister
	logger *logger.Logger
}

// NewRunsHandler creates a new RunsHandler
func NewRunsHandler(runs RunLister, log *logger.Logger) *RunsHandler {
	return &RunsHandler{
		runs:   runs,
		logger: log,
	}
}

// List returns the latest pipeline runs
// GET /api/v1/runs?limit=20
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > 200 {
		limit = 200
	}

	runs, err := h.runs.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list pipeline runs")
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}
