package selection

import (
	"sort"

	"github.com/wonny/aegis-picker/backend/internal/contracts"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
)

// Ranker orders enriched candidates by the request's ranking policy
// ⭐ SSOT: 최종 정렬 로직은 여기서만 (방향은 RankingPolicy가 결정)
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new post-enrichment ranker
func NewRanker(logger *logger.Logger) *Ranker {
	return &Ranker{logger: logger}
}

// Rank returns a total ordering by policy.MetricKey in policy.Direction.
// The ascending order is (value, symbol); descending is its exact reverse,
// so growth and decline lists mirror each other even with equal values.
func (r *Ranker) Rank(enriched []contracts.EnrichedCandidate, policy contracts.RankingPolicy) []contracts.EnrichedCandidate {
	ranked := make([]contracts.EnrichedCandidate, len(enriched))
	copy(ranked, enriched)

	ascending := func(a, b contracts.EnrichedCandidate) bool {
		va, vb := a.Value(policy.MetricKey), b.Value(policy.MetricKey)
		if va != vb {
			return va < vb
		}
		return a.Symbol < b.Symbol
	}

	sort.Slice(ranked, func(i, j int) bool {
		if policy.Direction == contracts.Ascending {
			return ascending(ranked[i], ranked[j])
		}
		return ascending(ranked[j], ranked[i])
	})

	fields := map[string]interface{}{
		"total":      len(ranked),
		"metric_key": policy.MetricKey,
		"direction":  policy.Direction,
	}
	if len(ranked) > 0 {
		fields["top_symbol"] = ranked[0].Symbol
		fields["top_value"] = ranked[0].Value(policy.MetricKey)
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return ranked
}
