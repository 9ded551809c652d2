package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wonny/aegis-picker/backend/internal/brain"
	"github.com/wonny/aegis-picker/backend/internal/contracts"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Pipeline runs one brief through the candidate pipeline
type Pipeline interface {
	Run(ctx context.Context, req brain.Request) (*brain.Result, error)
}

// CandidateHandler serves the candidate pipeline
type CandidateHandler struct {
	pipeline Pipeline
	timeout  time.Duration
	logger   *logger.Logger
}

// NewCandidateHandler creates a new CandidateHandler
func NewCandidateHandler(pipeline Pipeline, timeout time.Duration, log *logger.Logger) *CandidateHandler {
	return &CandidateHandler{
		pipeline: pipeline,
		timeout:  timeout,
		logger:   log,
	}
}

// CandidatesResponse wraps a pipeline result for the selection collaborator
type CandidatesResponse struct {
	*brain.Result
	Message string `json:"message,omitempty"`
}

// Create runs the pipeline for the posted brief
// POST /api/v1/candidates
//
// 200: ranked or empty (outcome 필드로 구분), 400: invalid criteria, 503: provider down
func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req brain.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.pipeline.Run(ctx, req)
	if err != nil {
		status, message := classifyError(err)
		h.logger.WithError(err).WithField("status", status).Warn("Candidate pipeline failed")
		respondError(w, status, message)
		return
	}

	resp := CandidatesResponse{Result: result}
	if result.Outcome == brain.OutcomeEmpty {
		resp.Message = emptyMessage(result)
	}
	respondJSON(w, http.StatusOK, resp)
}

// Timeframes lists the accepted timeframe values
// GET /api/v1/timeframes
func (h *CandidateHandler) Timeframes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"timeframes": contracts.Timeframes,
	})
}

// emptyMessage tells "change the criteria" apart from "try again later"
func emptyMessage(result *brain.Result) string {
	if result.Retryable {
		return "market data provider unavailable for every candidate; try again later"
	}
	return "no candidates matched the criteria; try broader sectors or a different timeframe"
}

// classifyError maps pipeline errors so the caller can tell
// "change the criteria" from "try again later"
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, contracts.ErrInvalidCriteria):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, contracts.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "market data provider unavailable; try again later"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "candidate pipeline timed out"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
