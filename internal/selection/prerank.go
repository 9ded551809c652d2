package selection

import (
	"sort"

	"github.com/wonny/aegis-picker/backend/internal/contracts"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
)

// WellKnownList reports membership in the curated well-known names list
type WellKnownList interface {
	IsWellKnown(symbol string) bool
}

// PreRanker orders the filtered set by a static preference and truncates it
// ⭐ SSOT: 보강(enrichment) 입력 크기 제한은 여기서만
type PreRanker struct {
	wellKnown WellKnownList
	window    int
	logger    *logger.Logger
}

// NewPreRanker creates a pre-enrichment ranker keeping at most window candidates
func NewPreRanker(wellKnown WellKnownList, window int, logger *logger.Logger) *PreRanker {
	return &PreRanker{
		wellKnown: wellKnown,
		window:    window,
		logger:    logger,
	}
}

// PreRank sorts well-known symbols first, then shorter tickers, then by symbol.
// Truncation happens only after ordering. The input slice is not modified.
func (p *PreRanker) PreRank(candidates []contracts.CandidateAsset) []contracts.CandidateAsset {
	ordered := make([]contracts.CandidateAsset, len(candidates))
	copy(ordered, candidates)

	known := make(map[string]bool, len(ordered))
	for _, c := range ordered {
		known[c.Symbol] = p.wellKnown.IsWellKnown(c.Symbol)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if known[a.Symbol] != known[b.Symbol] {
			return known[a.Symbol]
		}
		if len(a.Symbol) != len(b.Symbol) {
			return len(a.Symbol) < len(b.Symbol)
		}
		return a.Symbol < b.Symbol
	})

	truncated := 0
	if p.window > 0 && len(ordered) > p.window {
		truncated = len(ordered) - p.window
		ordered = ordered[:p.window]
	}

	p.logger.WithFields(map[string]interface{}{
		"input":     len(candidates),
		"kept":      len(ordered),
		"truncated": truncated,
	}).Info("Pre-ranking completed")

	return ordered
}
