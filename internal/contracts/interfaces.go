package contracts

import (
	"context"
	"time"
)

// UniverseFetcher returns the tradable equity universe
type UniverseFetcher interface {
	Fetch(ctx context.Context) ([]CandidateAsset, error)
}

// SectorFilter narrows the universe by the brief's sectors
type SectorFilter interface {
	Filter(universe []CandidateAsset, criteria InvestmentCriteria) FilterResult
}

// CandidateRanker orders and truncates the filtered set before enrichment
type CandidateRanker interface {
	PreRank(candidates []CandidateAsset) []CandidateAsset
}

// Enricher attaches performance statistics over the shared window
type Enricher interface {
	Enrich(ctx context.Context, candidates []CandidateAsset, window TimeWindow) EnrichmentResult
}

// FilterResult is the output of the sector filter
type FilterResult struct {
	Candidates []CandidateAsset
	SectorTag  string // empty when no sector rule applied
	Fallback   bool   // sector narrowing emptied the set and was dropped
	Excluded   map[string]string
}

// EnrichmentResult is the output of the enrichment engine
type EnrichmentResult struct {
	Enriched  []EnrichedCandidate
	Failures  []EnrichmentFailure
	Processed int
}

// BarSource fetches historical bars for one symbol
type BarSource interface {
	GetBars(ctx context.Context, req BarsRequest) ([]Bar, error)
}

// Cache is an optional read-through store (pkg/redis.Cache satisfies it).
// A miss returns (false, nil).
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}
