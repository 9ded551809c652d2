package s1_universe

import (
	"fmt"
	"strings"

	"github.com/wonny/aegis-picker/backend/internal/contracts"
	"github.com/wonny/aegis-picker/backend/internal/refdata"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
)

// Exclusion reasons recorded in FilterResult.Excluded
const (
	ReasonSymbolLength = "symbol too long"
	ReasonSymbolChars  = "special share class"
	ReasonFund         = "fund or trust"
	ReasonSector       = "sector mismatch"
)

// Filter narrows the universe by the brief's sectors
type Filter struct {
	refData *refdata.RefData
	logger  *logger.Logger
}

// NewFilter creates a new sector Filter over the given reference data
func NewFilter(rd *refdata.RefData, log *logger.Logger) *Filter {
	return &Filter{
		refData: rd,
		logger:  log,
	}
}

// Filter applies structural exclusions, then sector narrowing.
// 섹터 결과가 비면 구조적 제외만 적용한 집합으로 폴백
func (f *Filter) Filter(universe []contracts.CandidateAsset, criteria contracts.InvestmentCriteria) contracts.FilterResult {
	result := contracts.FilterResult{
		Candidates: make([]contracts.CandidateAsset, 0),
		Excluded:   make(map[string]string),
	}

	// 1. 구조적 제외 (항상 적용)
	wantsFunds := criteria.WantsFunds()
	eligible := make([]contracts.CandidateAsset, 0, len(universe))
	for _, asset := range universe {
		if reason := f.checkExclusion(asset, wantsFunds); reason != "" {
			result.Excluded[asset.Symbol] = reason
			continue
		}
		eligible = append(eligible, asset)
	}

	// 2. 섹터 규칙 분류 (첫 번째 매칭 규칙)
	rule := f.refData.Classify(criteria.SectorText())
	if rule == nil {
		result.Candidates = eligible
		f.logResult(criteria, result, len(universe))
		return result
	}
	result.SectorTag = rule.Tag

	// 3. 섹터 필터
	matched := make([]contracts.CandidateAsset, 0)
	mismatched := make([]string, 0)
	for _, asset := range eligible {
		if f.refData.Admits(rule, asset.Symbol, asset.Name) {
			matched = append(matched, asset)
			continue
		}
		mismatched = append(mismatched, asset.Symbol)
	}

	if len(matched) == 0 {
		result.Candidates = eligible
		result.Fallback = true
		f.logger.WithFields(map[string]interface{}{
			"sector_tag": rule.Tag,
			"eligible":   len(eligible),
		}).Warn("Sector filter matched nothing, falling back to structural exclusions")
		f.logResult(criteria, result, len(universe))
		return result
	}

	for _, symbol := range mismatched {
		result.Excluded[symbol] = ReasonSector
	}
	result.Candidates = matched
	f.logResult(criteria, result, len(universe))
	return result
}

// checkExclusion returns the structural exclusion reason, or "" when the asset passes
func (f *Filter) checkExclusion(asset contracts.CandidateAsset, wantsFunds bool) string {
	ex := f.refData.Exclusions

	// 1. 티커 길이
	if len(asset.Symbol) > ex.MaxSymbolLength {
		return fmt.Sprintf("%s (%d)", ReasonSymbolLength, len(asset.Symbol))
	}

	// 2. 워런트/특수 클래스 (하이픈, 마침표)
	if ex.SymbolChars != "" && strings.ContainsAny(asset.Symbol, ex.SymbolChars) {
		return ReasonSymbolChars
	}

	// 3. ETF/펀드/트러스트 (명시 요청 시 허용)
	if !wantsFunds && f.refData.IsFundName(asset.Name) {
		return ReasonFund
	}

	return ""
}

func (f *Filter) logResult(criteria contracts.InvestmentCriteria, result contracts.FilterResult, universeSize int) {
	f.logger.WithFields(map[string]interface{}{
		"sectors":    criteria.Sectors,
		"sector_tag": result.SectorTag,
		"fallback":   result.Fallback,
		"universe":   universeSize,
		"passed":     len(result.Candidates),
		"excluded":   len(result.Excluded),
	}).Info("Sector filter completed")
}
