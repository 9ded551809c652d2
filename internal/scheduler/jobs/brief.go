package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wonny/aegis-picker/backend/internal/brain"
	"github.com/wonny/aegis-picker/backend/internal/contracts"
	"github.com/wonny/aegis-picker/backend/internal/scheduler"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
)

// Pipeline runs one brief through the candidate pipeline
type Pipeline interface {
	Run(ctx context.Context, req brain.Request) (*brain.Result, error)
}

// SavedBrief is one scheduled brief from the briefs file
type SavedBrief struct {
	Name        string    `yaml:"name"`
	Schedule    string    `yaml:"schedule"`
	TotalAmount float64   `yaml:"total_amount"`
	Criteria    BriefYAML `yaml:"criteria"`
}

// BriefYAML mirrors InvestmentCriteria with YAML field names
type BriefYAML struct {
	Sectors   []string `yaml:"sectors"`
	Focus     string   `yaml:"focus"`
	Metric    string   `yaml:"metric"`
	RiskLevel string   `yaml:"risk_level"`
	Timeframe string   `yaml:"timeframe"`
	MaxStocks int      `yaml:"max_stocks"`
	MinPrice  *float64 `yaml:"min_price"`
	MaxPrice  *float64 `yaml:"max_price"`
}

// InvestmentCriteria converts the YAML form into the pipeline input
func (b BriefYAML) InvestmentCriteria() contracts.InvestmentCriteria {
	return contracts.InvestmentCriteria{
		Sectors:   b.Sectors,
		Focus:     b.Focus,
		Metric:    b.Metric,
		RiskLevel: contracts.RiskLevel(b.RiskLevel),
		Timeframe: contracts.Timeframe(b.Timeframe),
		MaxStocks: b.MaxStocks,
		MinPrice:  b.MinPrice,
		MaxPrice:  b.MaxPrice,
	}
}

type briefsFile struct {
	Briefs []SavedBrief `yaml:"briefs"`
}

// LoadBriefs reads and validates the saved briefs file.
// KnownFields(true)로 오타 필드 즉시 실패
func LoadBriefs(path string) ([]SavedBrief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read briefs: %w", err)
	}

	var file briefsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode briefs: %w", err)
	}

	seen := make(map[string]bool, len(file.Briefs))
	for i, b := range file.Briefs {
		if strings.TrimSpace(b.Name) == "" {
			return nil, fmt.Errorf("briefs[%d].name: required", i)
		}
		if seen[b.Name] {
			return nil, fmt.Errorf("briefs[%d].name: duplicate %q", i, b.Name)
		}
		seen[b.Name] = true
		if strings.TrimSpace(b.Schedule) == "" {
			return nil, fmt.Errorf("briefs[%d].schedule: required", i)
		}
		criteria := b.Criteria.InvestmentCriteria()
		if err := criteria.Validate(); err != nil {
			return nil, fmt.Errorf("briefs[%d].criteria: %w", i, err)
		}
	}

	return file.Briefs, nil
}

// BriefJob runs a saved brief on its cron schedule
type BriefJob struct {
	brief    SavedBrief
	pipeline Pipeline
	logger   *logger.Logger
}

// NewBriefJob creates a new brief job
func NewBriefJob(brief SavedBrief, pipeline Pipeline, log *logger.Logger) *BriefJob {
	return &BriefJob{
		brief:    brief,
		pipeline: pipeline,
		logger:   log,
	}
}

// Name returns the job name
func (j *BriefJob) Name() string {
	return "brief:" + j.brief.Name
}

// Schedule returns the cron schedule from the briefs file
func (j *BriefJob) Schedule() string {
	return j.brief.Schedule
}

// Run executes the pipeline for the brief.
// Upstream outages are retried by the scheduler; invalid criteria are not.
func (j *BriefJob) Run(ctx context.Context) error {
	result, err := j.pipeline.Run(ctx, brain.Request{
		Criteria:    j.brief.Criteria.InvestmentCriteria(),
		TotalAmount: j.brief.TotalAmount,
	})
	if err != nil {
		if errors.Is(err, contracts.ErrInvalidCriteria) {
			return fmt.Errorf("%w: %v", scheduler.ErrPermanent, err)
		}
		return fmt.Errorf("run brief %s: %w", j.brief.Name, err)
	}

	fields := map[string]interface{}{
		"brief":   j.brief.Name,
		"run_id":  result.RunID,
		"outcome": result.Outcome,
	}
	if result.Outcome == brain.OutcomeEmpty {
		fields["stage"] = result.EmptyStage
		if result.Retryable {
			// 공급자 장애: 스케줄러 재시도 대상
			return fmt.Errorf("run brief %s: %w: every bar fetch failed", j.brief.Name, contracts.ErrUpstreamUnavailable)
		}
		j.logger.WithFields(fields).Warn("Scheduled brief produced no candidates")
		return nil
	}

	top := make([]string, 0, 5)
	for i, c := range result.Selection.Candidates {
		if i == 5 {
			break
		}
		top = append(top, c.Symbol)
	}
	fields["candidates"] = len(result.Selection.Candidates)
	fields["top"] = top
	fields["direction"] = result.Selection.Policy.Direction
	j.logger.WithFields(fields).Info("Scheduled brief completed")

	return nil
}
