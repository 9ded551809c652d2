package audit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	assert.NoError(t, rec.Record(context.Background(), &Run{RunID: "x"}))
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	require.NotNil(t, nullable("filter"))
	assert.Equal(t, "filter", *nullable("filter"))
}

func TestRepository_RecordAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "database connection failed")
	defer pool.Close()

	repo := NewRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	run := &Run{
		RunID:          uuid.NewString(),
		StartedAt:      time.Now().UTC(),
		Duration:       1500 * time.Millisecond,
		Outcome:        "ranked",
		Criteria:       map[string]interface{}{"sectors": []string{"Semiconductor"}},
		SectorTag:      "semiconductor",
		Direction:      "descending",
		MetricKey:      "periodReturnPct",
		UniverseSize:   1000,
		FilteredCount:  40,
		ProcessedCount: 40,
		EnrichedCount:  38,
		DroppedCount:   2,
		TopSymbols:     []string{"NVDA", "AVGO"},
		RefDataVersion: "test",
	}
	require.NoError(t, repo.Record(ctx, run))
	// 동일 run_id 재기록은 무시
	require.NoError(t, repo.Record(ctx, run))

	runs, err := repo.ListRecent(ctx, 50)
	require.NoError(t, err)

	var found *RunSummary
	for i := range runs {
		if runs[i].RunID == run.RunID {
			found = &runs[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, int64(1500), found.DurationMs)
	assert.Equal(t, []string{"NVDA", "AVGO"}, found.TopSymbols)

	_, err = pool.Exec(ctx, "DELETE FROM audit.pipeline_runs WHERE run_id = $1", run.RunID)
	require.NoError(t, err)
}
