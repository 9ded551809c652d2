package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/aegis-picker/backend/internal/api/handlers"
	"github.com/wonny/aegis-picker/backend/internal/brain"
	"github.com/wonny/aegis-picker/backend/internal/contracts"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
)

type stubPipeline struct{}

func (stubPipeline) Run(ctx context.Context, req brain.Request) (*brain.Result, error) {
	return &brain.Result{Outcome: brain.OutcomeEmpty, Selection: &contracts.SelectionRequest{}}, nil
}

type panicPipeline struct{}

func (panicPipeline) Run(ctx context.Context, req brain.Request) (*brain.Result, error) {
	panic("boom")
}

func TestRouter(t *testing.T) {
	log := logger.Nop()
	router := NewRouter(handlers.NewCandidateHandler(stubPipeline{}, 0, log), nil, log)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/v1/timeframes", "", http.StatusOK},
		{http.MethodPost, "/api/v1/candidates", `{"criteria":{"timeframe":"1Y"}}`, http.StatusOK},
		{http.MethodGet, "/api/v1/candidates", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/runs", "", http.StatusNotFound}, // run log disabled
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRouter_RecoversPanic(t *testing.T) {
	log := logger.Nop()
	router := NewRouter(handlers.NewCandidateHandler(panicPipeline{}, 0, log), nil, log)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
