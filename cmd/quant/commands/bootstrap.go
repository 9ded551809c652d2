package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/wonny/aegis-picker/backend/internal/audit"
	"github.com/wonny/aegis-picker/backend/internal/brain"
	"github.com/wonny/aegis-picker/backend/internal/refdata"
	"github.com/wonny/aegis-picker/backend/pkg/config"
	"github.com/wonny/aegis-picker/backend/pkg/database"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
	"github.com/wonny/aegis-picker/backend/pkg/redis"
)

const cachePrefix = "picker"

// app holds the shared resources every pipeline command starts from
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	refData  *refdata.RefData
	redis    *redis.Client
	db       *database.DB      // nil when DATABASE_URL is unset
	runs     *audit.Repository // nil when DATABASE_URL is unset
	pipeline *brain.Orchestrator
}

// loadConfig applies the global flags on top of the environment
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newApp wires config, logger, reference data, cache, run log and pipeline.
// Redis is optional: a failed connection degrades to uncached fetches.
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Reference data
	rd, err := refdata.Load(cfg.RefDataPath)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"version": rd.Version,
		"rules":   len(rd.SectorRules),
	}).Info("Reference data loaded")

	a := &app{cfg: cfg, log: log, refData: rd}

	// 4. Redis cache
	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		redisClient = nil // nil client = disabled cache
	}
	a.redis = redisClient

	// 5. Run log (optional)
	var recorder audit.Recorder
	if cfg.Database.Enabled() {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		a.runs = audit.NewRepository(db.Pool)

		schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := a.runs.EnsureSchema(schemaCtx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure run log schema: %w", err)
		}
		recorder = a.runs
		log.Info("Run log enabled")
	}

	// 6. Pipeline
	a.pipeline = brain.Build(brain.Dependencies{
		Config:   cfg,
		RefData:  rd,
		Cache:    redis.NewCache(redisClient, cachePrefix),
		Recorder: recorder,
		Logger:   log,
	})

	return a, nil
}

// Close releases the database pool and Redis connection
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
