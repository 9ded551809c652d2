package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/aegis-picker/backend/internal/audit"
	"github.com/wonny/aegis-picker/backend/internal/contracts"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
)

// Outcome is the terminal state of a successful run
type Outcome string

const (
	OutcomeRanked Outcome = "ranked"
	OutcomeEmpty  Outcome = "empty" // valid result: advise broader criteria
)

// Stage names where an empty set was produced
type Stage string

const (
	StageFilter     Stage = "filter"
	StageEnrichment Stage = "enrichment"
)

// topSymbolsLogged bounds the symbols written to the run log
const topSymbolsLogged = 10

// PostRanker orders enriched candidates by a ranking policy
type PostRanker interface {
	Rank(enriched []contracts.EnrichedCandidate, policy contracts.RankingPolicy) []contracts.EnrichedCandidate
}

// Orchestrator runs the candidate pipeline in strict stage order
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	fetcher   contracts.UniverseFetcher
	filter    contracts.SectorFilter
	preRanker contracts.CandidateRanker
	enricher  contracts.Enricher
	ranker    PostRanker
	recorder  audit.Recorder

	refDataVersion string
	clock          func() time.Time
	logger         *logger.Logger
}

// Request is one inbound brief
type Request struct {
	Criteria    contracts.InvestmentCriteria `json:"criteria"`
	TotalAmount float64                      `json:"totalAmount"`
}

// Result holds the results of a pipeline run
type Result struct {
	RunID      string                      `json:"runId"`
	Outcome    Outcome                     `json:"outcome"`
	EmptyStage Stage                       `json:"emptyStage,omitempty"`
	Selection  *contracts.SelectionRequest `json:"selection"`

	// Retryable marks an empty result caused by the provider, not the criteria:
	// every bar fetch failed transiently, so the caller should try again later.
	Retryable bool `json:"retryable"`

	// 종목별 실패는 로그 전용, 응답에는 사유별 개수만
	Failures        []contracts.EnrichmentFailure   `json:"-"`
	DroppedByReason map[contracts.FailureReason]int `json:"droppedByReason,omitempty"`

	Fallback        bool          `json:"sectorFallback"`
	CompletedStages []string      `json:"completedStages"`
	Duration        time.Duration `json:"duration"`
}

// NewOrchestrator creates a new orchestrator. recorder may be nil.
func NewOrchestrator(
	fetcher contracts.UniverseFetcher,
	filter contracts.SectorFilter,
	preRanker contracts.CandidateRanker,
	enricher contracts.Enricher,
	ranker PostRanker,
	recorder audit.Recorder,
	refDataVersion string,
	logger *logger.Logger,
) *Orchestrator {
	if recorder == nil {
		recorder = audit.NewNoopRecorder()
	}
	return &Orchestrator{
		fetcher:        fetcher,
		filter:         filter,
		preRanker:      preRanker,
		enricher:       enricher,
		ranker:         ranker,
		recorder:       recorder,
		refDataVersion: refDataVersion,
		clock:          time.Now,
		logger:         logger,
	}
}

// WithClock overrides the time source used to derive the window
func (o *Orchestrator) WithClock(clock func() time.Time) *Orchestrator {
	o.clock = clock
	return o
}

// Run executes universe → filter → pre-rank → enrich → rank.
// Returned errors are ErrInvalidCriteria or ErrUpstreamUnavailable; an empty
// candidate set is a Result with OutcomeEmpty, not an error.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	startTime := o.clock()
	criteria := req.Criteria

	result := &Result{
		RunID:           uuid.NewString(),
		CompletedStages: make([]string, 0, 5),
	}
	log := o.logger.WithField("run_id", result.RunID)

	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	window, err := contracts.WindowFor(criteria.Timeframe, startTime)
	if err != nil {
		return nil, err
	}
	policy := contracts.PolicyFromCriteria(criteria)

	selection := &contracts.SelectionRequest{
		Criteria:       criteria,
		TotalAmount:    req.TotalAmount,
		Window:         window,
		Policy:         policy,
		DirectionNote:  policy.Direction.Note(),
		Candidates:     make([]contracts.EnrichedCandidate, 0),
		RefDataVersion: o.refDataVersion,
	}
	result.Selection = selection

	log.WithFields(map[string]interface{}{
		"sectors":    criteria.Sectors,
		"timeframe":  criteria.Timeframe,
		"focus":      policy.Focus,
		"metric_key": policy.MetricKey,
		"direction":  policy.Direction,
	}).Info("Starting candidate pipeline")

	// 1. Universe (실패 시 전체 중단)
	universe, err := o.fetcher.Fetch(ctx)
	if err != nil {
		err = fmt.Errorf("universe stage: %w", err)
		o.record(ctx, result, startTime, err)
		return nil, err
	}
	selection.UniverseSize = len(universe)
	result.CompletedStages = append(result.CompletedStages, "universe")

	// 2. Sector filter
	filtered := o.filter.Filter(universe, criteria)
	selection.FilteredCount = len(filtered.Candidates)
	selection.SectorTag = filtered.SectorTag
	result.Fallback = filtered.Fallback
	result.CompletedStages = append(result.CompletedStages, "filter")
	if len(filtered.Candidates) == 0 {
		return o.finishEmpty(ctx, result, startTime, StageFilter), nil
	}

	// 3. Pre-rank + truncate
	bounded := o.preRanker.PreRank(filtered.Candidates)
	result.CompletedStages = append(result.CompletedStages, "prerank")

	// 4. Enrichment (종목 단위 실패는 결과 개수에만 반영)
	enrichment := o.enricher.Enrich(ctx, bounded, window)
	selection.ProcessedCount = enrichment.Processed
	selection.DroppedCount = len(enrichment.Failures)
	result.Failures = enrichment.Failures
	result.DroppedByReason = countByReason(enrichment.Failures)
	result.CompletedStages = append(result.CompletedStages, "enrich")
	if len(enrichment.Enriched) == 0 {
		result.Retryable = providerOutage(enrichment.Failures)
		return o.finishEmpty(ctx, result, startTime, StageEnrichment), nil
	}

	// 5. Post-rank
	selection.Candidates = o.ranker.Rank(enrichment.Enriched, policy)
	result.CompletedStages = append(result.CompletedStages, "rank")

	result.Outcome = OutcomeRanked
	result.Duration = o.clock().Sub(startTime)

	log.WithFields(map[string]interface{}{
		"universe":  selection.UniverseSize,
		"filtered":  selection.FilteredCount,
		"processed": selection.ProcessedCount,
		"enriched":  len(selection.Candidates),
		"dropped":   selection.DroppedCount,
		"duration":  result.Duration,
	}).Info("Candidate pipeline completed")

	o.record(ctx, result, startTime, nil)
	return result, nil
}

func (o *Orchestrator) finishEmpty(ctx context.Context, result *Result, startTime time.Time, stage Stage) *Result {
	result.Outcome = OutcomeEmpty
	result.EmptyStage = stage
	result.Duration = o.clock().Sub(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":    result.RunID,
		"stage":     stage,
		"retryable": result.Retryable,
		"dropped":   result.DroppedByReason,
	}).Warn("Candidate pipeline produced no candidates")

	o.record(ctx, result, startTime, nil)
	return result
}

// providerOutage reports whether every symbol was lost to the provider
// (timeouts, 429, 5xx, cancellation) rather than to its own data.
func providerOutage(failures []contracts.EnrichmentFailure) bool {
	if len(failures) == 0 {
		return false
	}
	for _, f := range failures {
		if f.Reason != contracts.FailureUnavailable && f.Reason != contracts.FailureCancelled {
			return false
		}
	}
	return true
}

func countByReason(failures []contracts.EnrichmentFailure) map[contracts.FailureReason]int {
	if len(failures) == 0 {
		return nil
	}
	counts := make(map[contracts.FailureReason]int)
	for _, f := range failures {
		counts[f.Reason]++
	}
	return counts
}

// record writes the run log. Errors are logged only.
func (o *Orchestrator) record(ctx context.Context, result *Result, startTime time.Time, runErr error) {
	sel := result.Selection
	run := &audit.Run{
		RunID:          result.RunID,
		StartedAt:      startTime,
		Duration:       o.clock().Sub(startTime),
		Outcome:        string(result.Outcome),
		EmptyStage:     string(result.EmptyStage),
		Criteria:       sel.Criteria,
		SectorTag:      sel.SectorTag,
		Direction:      string(sel.Policy.Direction),
		MetricKey:      string(sel.Policy.MetricKey),
		UniverseSize:   sel.UniverseSize,
		FilteredCount:  sel.FilteredCount,
		ProcessedCount: sel.ProcessedCount,
		EnrichedCount:  len(sel.Candidates),
		DroppedCount:   sel.DroppedCount,
		RefDataVersion: sel.RefDataVersion,
	}
	if runErr != nil {
		run.Outcome = "failed"
		run.Error = runErr.Error()
	}
	if result.Retryable {
		run.Error = "market data provider unavailable for every candidate"
	}
	for i, c := range sel.Candidates {
		if i == topSymbolsLogged {
			break
		}
		run.TopSymbols = append(run.TopSymbols, c.Symbol)
	}

	// 요청 취소와 무관하게 기록
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := o.recorder.Record(recordCtx, run); err != nil {
		o.logger.WithError(err).WithField("run_id", result.RunID).Warn("Failed to record pipeline run")
	}
}
