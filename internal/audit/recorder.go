package audit

import (
	"context"
	"time"
)

// Run is one pipeline execution as written to the run log
type Run struct {
	RunID          string
	StartedAt      time.Time
	Duration       time.Duration
	Outcome        string // ranked | empty | failed
	EmptyStage     string
	Error          string
	Criteria       interface{} // stored as JSON
	SectorTag      string
	Direction      string
	MetricKey      string
	UniverseSize   int
	FilteredCount  int
	ProcessedCount int
	EnrichedCount  int
	DroppedCount   int
	TopSymbols     []string
	RefDataVersion string
}

// Recorder persists pipeline runs. Failures to record never fail a request.
type Recorder interface {
	Record(ctx context.Context, run *Run) error
}

// NoopRecorder is used when no database is configured
type NoopRecorder struct{}

// NewNoopRecorder creates a recorder that discards every run
func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Record(_ context.Context, _ *Run) error { return nil }
