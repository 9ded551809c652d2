package s2_signals

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/aegis-picker/backend/internal/contracts"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
	"github.com/wonny/aegis-picker/backend/pkg/redis"
)

// DefaultBarLimit bounds the bars requested per symbol
const DefaultBarLimit = 10000

// EngineConfig bounds the enrichment stage
type EngineConfig struct {
	MaxCandidates int           // hard cap per request (기본: 150)
	BatchSize     int           // concurrent fetches per batch (기본: 15)
	BatchPause    time.Duration // pause between batches, 0 = none
	FetchTimeout  time.Duration // per symbol
	BatchTimeout  time.Duration // per batch
	CacheTTL      time.Duration
	BarLimit      int
}

// DefaultEngineConfig returns the default enrichment bounds
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxCandidates: 150,
		BatchSize:     15,
		BatchPause:    250 * time.Millisecond,
		FetchTimeout:  10 * time.Second,
		BatchTimeout:  60 * time.Second,
		CacheTTL:      10 * time.Minute,
		BarLimit:      DefaultBarLimit,
	}
}

// Engine attaches performance statistics to candidates
// ⭐ SSOT: 종목별 실패는 여기서 격리 (요청 전체를 실패시키지 않음)
type Engine struct {
	source contracts.BarSource
	cache  contracts.Cache
	config EngineConfig
	logger *logger.Logger
}

// NewEngine creates a new enrichment engine. cache may be nil.
func NewEngine(source contracts.BarSource, cache contracts.Cache, config EngineConfig, log *logger.Logger) *Engine {
	if config.BatchSize <= 0 {
		config.BatchSize = 1
	}
	if config.BarLimit <= 0 {
		config.BarLimit = DefaultBarLimit
	}
	return &Engine{
		source: source,
		cache:  cache,
		config: config,
		logger: log,
	}
}

// outcome is one fetch's independent result slot
type outcome struct {
	enriched contracts.EnrichedCandidate
	failure  *contracts.EnrichmentFailure
}

// Enrich processes at most MaxCandidates candidates in sequential batches.
// Every candidate in the capped set ends up either enriched or in Failures.
func (e *Engine) Enrich(ctx context.Context, candidates []contracts.CandidateAsset, window contracts.TimeWindow) contracts.EnrichmentResult {
	start := time.Now()

	capped := candidates
	if e.config.MaxCandidates > 0 && len(capped) > e.config.MaxCandidates {
		capped = capped[:e.config.MaxCandidates]
	}

	result := contracts.EnrichmentResult{
		Enriched:  make([]contracts.EnrichedCandidate, 0, len(capped)),
		Failures:  make([]contracts.EnrichmentFailure, 0),
		Processed: len(capped),
	}

	batches := 0
	for offset := 0; offset < len(capped); offset += e.config.BatchSize {
		end := offset + e.config.BatchSize
		if end > len(capped) {
			end = len(capped)
		}
		batch := capped[offset:end]

		if offset > 0 && e.config.BatchPause > 0 {
			_ = pause(ctx, e.config.BatchPause)
		}

		// 요청 취소 시 남은 종목은 시도하지 않고 취소로 기록
		if err := ctx.Err(); err != nil {
			for _, c := range capped[offset:] {
				result.Failures = append(result.Failures, contracts.EnrichmentFailure{
					Symbol: c.Symbol,
					Reason: contracts.FailureCancelled,
					Detail: err.Error(),
				})
			}
			break
		}

		for _, o := range e.runBatch(ctx, batch, window) {
			if o.failure != nil {
				result.Failures = append(result.Failures, *o.failure)
				continue
			}
			result.Enriched = append(result.Enriched, o.enriched)
		}
		batches++
	}

	e.logger.WithFields(map[string]interface{}{
		"input":     len(candidates),
		"processed": result.Processed,
		"enriched":  len(result.Enriched),
		"dropped":   len(result.Failures),
		"batches":   batches,
		"duration":  time.Since(start),
	}).Info("Enrichment completed")

	return result
}

// runBatch fetches every member concurrently and returns once all have resolved
func (e *Engine) runBatch(ctx context.Context, batch []contracts.CandidateAsset, window contracts.TimeWindow) []outcome {
	batchCtx := ctx
	if e.config.BatchTimeout > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, e.config.BatchTimeout)
		defer cancel()
	}

	slots := make([]outcome, len(batch))
	g, gctx := errgroup.WithContext(batchCtx)
	for i, candidate := range batch {
		i, candidate := i, candidate
		g.Go(func() error {
			slots[i] = e.enrichOne(gctx, candidate, window)
			return nil // 종목 단위 실패는 배치를 취소하지 않음
		})
	}
	_ = g.Wait()

	return slots
}

// enrichOne fetches (or reads from cache) one symbol's series and computes its stats
func (e *Engine) enrichOne(ctx context.Context, candidate contracts.CandidateAsset, window contracts.TimeWindow) outcome {
	log := e.logger.WithField("symbol", candidate.Symbol)

	bars, err := e.loadBars(ctx, candidate.Symbol, window)
	if err != nil {
		reason := contracts.FailureFetch
		switch {
		case errors.Is(err, context.Canceled) || ctx.Err() != nil:
			reason = contracts.FailureCancelled
		case contracts.IsTransient(err):
			reason = contracts.FailureUnavailable
		}
		log.WithError(err).Debug("Bar fetch failed, dropping symbol")
		return failed(candidate.Symbol, reason, err)
	}

	stats, err := ComputeStats(bars)
	if err != nil {
		reason := contracts.FailureBadSeries
		if errors.Is(err, errInsufficientData) {
			reason = contracts.FailureInsufficient
		}
		log.WithField("bars", len(bars)).Debug("Unusable series, dropping symbol")
		return failed(candidate.Symbol, reason, err)
	}

	return outcome{enriched: contracts.EnrichedCandidate{
		CandidateAsset:  candidate,
		Price:           stats.Price,
		PeriodReturnPct: stats.PeriodReturnPct,
		VolatilityPct:   stats.VolatilityPct,
		AverageVolume:   stats.AverageVolume,
		Bars:            stats.Bars,
	}}
}

// loadBars is a read-through over the optional cache
func (e *Engine) loadBars(ctx context.Context, symbol string, window contracts.TimeWindow) ([]contracts.Bar, error) {
	key := redis.BarsKey(symbol, string(window.Resolution), window.Start, window.End)

	if e.cache != nil {
		var cached []contracts.Bar
		hit, err := e.cache.Get(ctx, key, &cached)
		if err != nil {
			e.logger.WithError(err).WithField("symbol", symbol).Warn("Bar cache read failed")
		}
		if hit {
			return cached, nil
		}
	}

	fetchCtx := ctx
	if e.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, e.config.FetchTimeout)
		defer cancel()
	}

	bars, err := e.source.GetBars(fetchCtx, contracts.BarsRequest{
		Symbol: symbol,
		Window: window,
		Limit:  e.config.BarLimit,
	})
	if err != nil {
		return nil, err
	}

	// 계산 가능한 시계열만 캐시
	if e.cache != nil && len(bars) >= 2 {
		if err := e.cache.Set(ctx, key, bars, e.config.CacheTTL); err != nil {
			e.logger.WithError(err).WithField("symbol", symbol).Warn("Bar cache write failed")
		}
	}

	return bars, nil
}

func failed(symbol string, reason contracts.FailureReason, err error) outcome {
	return outcome{failure: &contracts.EnrichmentFailure{
		Symbol: symbol,
		Reason: reason,
		Detail: err.Error(),
	}}
}

// pause waits between batches unless the request is cancelled first
func pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
