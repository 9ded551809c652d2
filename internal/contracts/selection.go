package contracts

import "context"

// SelectionRequest is the handoff to the external stock selector
// ⭐ SSOT: 파이프라인 → 선택기 전달 형식
type SelectionRequest struct {
	Criteria       InvestmentCriteria  `json:"criteria"`
	TotalAmount    float64             `json:"totalAmount"`
	Window         TimeWindow          `json:"window"`
	Policy         RankingPolicy       `json:"policy"`
	DirectionNote  string              `json:"directionNote"`
	Candidates     []EnrichedCandidate `json:"candidates"`
	UniverseSize   int                 `json:"universeSize"`
	FilteredCount  int                 `json:"filteredCount"`
	ProcessedCount int                 `json:"processedCount"` // symbols actually sent to enrichment
	DroppedCount   int                 `json:"droppedCount"`
	SectorTag      string              `json:"sectorTag,omitempty"`
	RefDataVersion string              `json:"refDataVersion"`
}

// Selector picks final positions and weights from a ranked list.
// Implemented outside this module (language-model service).
type Selector interface {
	Select(ctx context.Context, req *SelectionRequest) error
}
