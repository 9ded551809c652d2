package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS audit;
	CREATE TABLE IF NOT EXISTS audit.pipeline_runs (
		run_id           TEXT PRIMARY KEY,
		started_at       TIMESTAMPTZ NOT NULL,
		duration_ms      BIGINT NOT NULL,
		outcome          TEXT NOT NULL,
		empty_stage      TEXT,
		error            TEXT,
		criteria         JSONB NOT NULL,
		sector_tag       TEXT,
		direction        TEXT,
		metric_key       TEXT,
		universe_size    INT NOT NULL DEFAULT 0,
		filtered_count   INT NOT NULL DEFAULT 0,
		processed_count  INT NOT NULL DEFAULT 0,
		enriched_count   INT NOT NULL DEFAULT 0,
		dropped_count    INT NOT NULL DEFAULT 0,
		top_symbols      TEXT[],
		refdata_version  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON audit.pipeline_runs (started_at DESC);
`

// Repository writes and reads the pipeline run log
// ⭐ SSOT: 실행 로그 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the run log table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create run log schema: %w", err)
	}
	return nil
}

// Record saves one pipeline run
func (r *Repository) Record(ctx context.Context, run *Run) error {
	criteriaJSON, err := json.Marshal(run.Criteria)
	if err != nil {
		return fmt.Errorf("failed to marshal criteria: %w", err)
	}

	query := `
		INSERT INTO audit.pipeline_runs (
			run_id, started_at, duration_ms, outcome, empty_stage, error, criteria,
			sector_tag, direction, metric_key,
			universe_size, filtered_count, processed_count, enriched_count, dropped_count,
			top_symbols, refdata_version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (run_id) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query,
		run.RunID, run.StartedAt, run.Duration.Milliseconds(), run.Outcome,
		nullable(run.EmptyStage), nullable(run.Error), criteriaJSON,
		nullable(run.SectorTag), nullable(run.Direction), nullable(run.MetricKey),
		run.UniverseSize, run.FilteredCount, run.ProcessedCount, run.EnrichedCount, run.DroppedCount,
		run.TopSymbols, nullable(run.RefDataVersion),
	)
	if err != nil {
		return fmt.Errorf("failed to save pipeline run: %w", err)
	}

	return nil
}

// RunSummary is a run log row as read back for listing
type RunSummary struct {
	RunID         string    `json:"runId"`
	StartedAt     time.Time `json:"startedAt"`
	DurationMs    int64     `json:"durationMs"`
	Outcome       string    `json:"outcome"`
	SectorTag     string    `json:"sectorTag,omitempty"`
	Direction     string    `json:"direction,omitempty"`
	EnrichedCount int       `json:"enrichedCount"`
	TopSymbols    []string  `json:"topSymbols"`
}

// ListRecent returns the latest runs, newest first
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
		SELECT run_id, started_at, duration_ms, outcome,
			COALESCE(sector_tag, ''), COALESCE(direction, ''),
			enriched_count, COALESCE(top_symbols, '{}')
		FROM audit.pipeline_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (RunSummary, error) {
		var s RunSummary
		err := row.Scan(&s.RunID, &s.StartedAt, &s.DurationMs, &s.Outcome,
			&s.SectorTag, &s.Direction, &s.EnrichedCount, &s.TopSymbols)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan runs: %w", err)
	}

	return runs, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
