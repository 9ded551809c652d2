package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-picker/backend/internal/audit"
	"github.com/wonny/aegis-picker/backend/internal/brain"
	"github.com/wonny/aegis-picker/backend/internal/contracts"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
)

type fakePipeline struct {
	result *brain.Result
	err    error
	got    brain.Request
}

func (p *fakePipeline) Run(ctx context.Context, req brain.Request) (*brain.Result, error) {
	p.got = req
	return p.result, p.err
}

func post(t *testing.T, h *CandidateHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestCreate_Ranked(t *testing.T) {
	p := &fakePipeline{result: &brain.Result{
		RunID:   "run-1",
		Outcome: brain.OutcomeRanked,
		Selection: &contracts.SelectionRequest{
			DirectionNote: "sorted best-to-worst",
			Candidates: []contracts.EnrichedCandidate{
				{CandidateAsset: contracts.CandidateAsset{Symbol: "NVDA"}, PeriodReturnPct: 10},
			},
		},
	}}
	h := NewCandidateHandler(p, time.Minute, logger.Nop())

	rec := post(t, h, `{"criteria":{"sectors":["Semiconductor"],"focus":"growth","timeframe":"1Y","maxStocks":5},"totalAmount":5000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ranked", body["outcome"])
	assert.Equal(t, "run-1", body["runId"])
	assert.NotContains(t, body, "message")

	assert.Equal(t, []string{"Semiconductor"}, p.got.Criteria.Sectors)
	assert.Equal(t, 5000.0, p.got.TotalAmount)
}

func TestCreate_Empty(t *testing.T) {
	p := &fakePipeline{result: &brain.Result{
		Outcome:    brain.OutcomeEmpty,
		EmptyStage: brain.StageEnrichment,
		Selection:  &contracts.SelectionRequest{},
	}}
	h := NewCandidateHandler(p, 0, logger.Nop())

	rec := post(t, h, `{"criteria":{"timeframe":"1M"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "empty", body["outcome"])
	assert.Equal(t, "enrichment", body["emptyStage"])
	assert.Equal(t, false, body["retryable"])
	assert.Contains(t, body["message"], "broader sectors")
}

func TestCreate_EmptyFromProviderOutage(t *testing.T) {
	p := &fakePipeline{result: &brain.Result{
		Outcome:    brain.OutcomeEmpty,
		EmptyStage: brain.StageEnrichment,
		Retryable:  true,
		Selection:  &contracts.SelectionRequest{ProcessedCount: 3, DroppedCount: 3},
		Failures: []contracts.EnrichmentFailure{
			{Symbol: "NVDA", Reason: contracts.FailureUnavailable, Detail: "unexpected status 503 from https://data.example/v2/stocks/NVDA/bars"},
		},
		DroppedByReason: map[contracts.FailureReason]int{contracts.FailureUnavailable: 3},
	}}
	h := NewCandidateHandler(p, 0, logger.Nop())

	rec := post(t, h, `{"criteria":{"sectors":["Semiconductor"],"timeframe":"1Y"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "data.example", "per-symbol detail stays in logs")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["retryable"])
	assert.Contains(t, body["message"], "try again later")
	assert.NotContains(t, body, "failures")
	assert.Equal(t, map[string]interface{}{"provider_unavailable": float64(3)}, body["droppedByReason"])
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		body   string
		status int
	}{
		{"malformed body", nil, `{"criteria":`, http.StatusBadRequest},
		{"invalid criteria", fmt.Errorf("%w: unknown timeframe", contracts.ErrInvalidCriteria), `{}`, http.StatusBadRequest},
		{"upstream", &contracts.UpstreamError{Op: "list assets", StatusCode: 502, Err: errors.New("bad gateway")}, `{}`, http.StatusServiceUnavailable},
		{"timeout", fmt.Errorf("universe stage: %w", context.DeadlineExceeded), `{}`, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), `{}`, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCandidateHandler(&fakePipeline{err: tt.err}, 0, logger.Nop())
			rec := post(t, h, tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestTimeframes(t *testing.T) {
	h := NewCandidateHandler(&fakePipeline{}, 0, logger.Nop())
	rec := httptest.NewRecorder()
	h.Timeframes(rec, httptest.NewRequest(http.MethodGet, "/api/v1/timeframes", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Timeframes []string `json:"timeframes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"1M", "3M", "6M", "1Y", "3Y", "5Y"}, body.Timeframes)
}

type fakeRuns struct {
	limit int
	err   error
}

func (f *fakeRuns) ListRecent(ctx context.Context, limit int) ([]audit.RunSummary, error) {
	f.limit = limit
	return []audit.RunSummary{{RunID: "a"}}, f.err
}

func TestRunsList(t *testing.T) {
	runs := &fakeRuns{}
	h := NewRunsHandler(runs, logger.Nop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=500", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 200, runs.limit)

	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	runs.err = errors.New("db down")
	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 20, runs.limit)
}
