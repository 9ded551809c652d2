package s1_universe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wonny/aegis-picker/backend/internal/contracts"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
	"github.com/wonny/aegis-picker/backend/pkg/redis"
)

// AssetSource lists tradable assets from the market-data provider
type AssetSource interface {
	ListAssets(ctx context.Context) ([]contracts.CandidateAsset, error)
}

// Fetcher retrieves the tradable universe
type Fetcher struct {
	source   AssetSource
	cache    contracts.Cache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewFetcher creates a new universe Fetcher. cache may be nil.
func NewFetcher(source AssetSource, cache contracts.Cache, cacheTTL time.Duration, log *logger.Logger) *Fetcher {
	return &Fetcher{
		source:   source,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// Fetch returns the deduplicated universe ordered by symbol
// ⭐ SSOT: 유니버스 실패 시 요청 전체 중단 (부분 유니버스 없음)
func (f *Fetcher) Fetch(ctx context.Context) ([]contracts.CandidateAsset, error) {
	start := time.Now()

	if f.cache != nil {
		var cached []contracts.CandidateAsset
		hit, err := f.cache.Get(ctx, redis.AssetsKey(), &cached)
		if err != nil {
			f.logger.WithError(err).Warn("Universe cache read failed")
		}
		if hit && len(cached) > 0 {
			f.logger.WithField("count", len(cached)).Debug("Universe served from cache")
			return cached, nil
		}
	}

	assets, err := f.source.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch universe: %w", err)
	}

	universe := dedupe(assets)

	if f.cache != nil && len(universe) > 0 {
		if err := f.cache.Set(ctx, redis.AssetsKey(), universe, f.cacheTTL); err != nil {
			f.logger.WithError(err).Warn("Universe cache write failed")
		}
	}

	f.logger.WithFields(map[string]interface{}{
		"listed":   len(assets),
		"universe": len(universe),
		"duration": time.Since(start),
	}).Info("Universe fetched")

	return universe, nil
}

// dedupe drops blank and repeated symbols, keeping the first occurrence
func dedupe(assets []contracts.CandidateAsset) []contracts.CandidateAsset {
	seen := make(map[string]struct{}, len(assets))
	result := make([]contracts.CandidateAsset, 0, len(assets))
	for _, a := range assets {
		a.Symbol = strings.ToUpper(strings.TrimSpace(a.Symbol))
		if a.Symbol == "" {
			continue
		}
		if _, ok := seen[a.Symbol]; ok {
			continue
		}
		seen[a.Symbol] = struct{}{}
		result = append(result, a)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result
}
