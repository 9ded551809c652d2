package brain

import (
	"github.com/wonny/aegis-picker/backend/internal/audit"
	"github.com/wonny/aegis-picker/backend/internal/contracts"
	"github.com/wonny/aegis-picker/backend/internal/external/alpaca"
	"github.com/wonny/aegis-picker/backend/internal/refdata"
	"github.com/wonny/aegis-picker/backend/internal/s1_universe"
	"github.com/wonny/aegis-picker/backend/internal/s2_signals"
	"github.com/wonny/aegis-picker/backend/internal/selection"
	"github.com/wonny/aegis-picker/backend/pkg/config"
	"github.com/wonny/aegis-picker/backend/pkg/httputil"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
	"github.com/wonny/aegis-picker/backend/pkg/redis"
)

// universeCacheTTL keeps the asset listing longer than bar series
const universeCacheTTL = redis.TTLLong

// Dependencies are the shared resources a pipeline is built from
type Dependencies struct {
	Config   *config.Config
	RefData  *refdata.RefData
	Cache    *redis.Cache   // nil or disabled = no caching
	Recorder audit.Recorder // nil = no run log
	Logger   *logger.Logger
}

// Build wires the Alpaca client and every stage into an Orchestrator
func Build(deps Dependencies) *Orchestrator {
	cfg := deps.Config
	log := deps.Logger

	httpClient := httputil.New(log.Module("httputil")).
		WithRateLimit(cfg.Alpaca.RatePerMin, cfg.Pipeline.BatchSize)
	provider := alpaca.NewClient(httpClient, cfg.Alpaca, log.Module("alpaca"))

	var cache contracts.Cache
	if deps.Cache != nil {
		cache = deps.Cache
	}

	fetcher := s1_universe.NewFetcher(provider, cache, universeCacheTTL, log.Module("s1_universe"))
	filter := s1_universe.NewFilter(deps.RefData, log.Module("s1_universe"))
	preRanker := selection.NewPreRanker(deps.RefData, cfg.Pipeline.PreRankWindow, log.Module("selection"))
	engine := s2_signals.NewEngine(provider, cache, s2_signals.EngineConfig{
		MaxCandidates: cfg.Pipeline.MaxEnrichment,
		BatchSize:     cfg.Pipeline.BatchSize,
		BatchPause:    cfg.Pipeline.BatchPause,
		FetchTimeout:  cfg.Alpaca.FetchTimeout,
		BatchTimeout:  cfg.Pipeline.BatchTimeout,
		CacheTTL:      cfg.Pipeline.CacheTTL,
		BarLimit:      s2_signals.DefaultBarLimit,
	}, log.Module("s2_signals"))
	ranker := selection.NewRanker(log.Module("selection"))

	return NewOrchestrator(fetcher, filter, preRanker, engine, ranker,
		deps.Recorder, deps.RefData.Version, log.Module("brain"))
}
