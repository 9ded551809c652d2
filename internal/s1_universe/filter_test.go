package s1_universe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-picker/backend/internal/contracts"
	"github.com/wonny/aegis-picker/backend/internal/refdata"
	"github.com/wonny/aegis-picker/backend/pkg/logger"
)

func newTestFilter(t *testing.T) (*Filter, *refdata.RefData) {
	t.Helper()
	rd, err := refdata.Default()
	require.NoError(t, err)
	return NewFilter(rd, logger.Nop()), rd
}

func testUniverse() []contracts.CandidateAsset {
	return []contracts.CandidateAsset{
		{Symbol: "NVDA", Name: "NVIDIA Corporation", Exchange: "NASDAQ"},
		{Symbol: "AVGO", Name: "Broadcom Inc.", Exchange: "NASDAQ"},
		{Symbol: "ACMS", Name: "Acme Semiconductor Inc.", Exchange: "NYSE"},
		{Symbol: "KO", Name: "Coca-Cola Company", Exchange: "NYSE"},
		{Symbol: "PYPL", Name: "PayPal Holdings, Inc.", Exchange: "NASDAQ"},
		{Symbol: "SMH", Name: "VanEck Semiconductor ETF", Exchange: "NASDAQ"},
		{Symbol: "SPY", Name: "SPDR S&P 500 ETF Trust", Exchange: "ARCA"},
		{Symbol: "BRK.B", Name: "Berkshire Hathaway Inc.", Exchange: "NYSE"},
		{Symbol: "ABC-W", Name: "ABC Chip Corp Warrant", Exchange: "NYSE"},
		{Symbol: "LONGSY", Name: "Longsymbol Semiconductor", Exchange: "NYSE"},
	}
}

func symbols(assets []contracts.CandidateAsset) []string {
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.Symbol)
	}
	return out
}

func TestFilter_Semiconductor(t *testing.T) {
	f, rd := newTestFilter(t)

	criteria := contracts.InvestmentCriteria{
		Sectors:   []string{"Semiconductor"},
		Focus:     "growth",
		Metric:    "performance",
		Timeframe: contracts.Timeframe1Y,
		MaxStocks: 5,
	}
	result := f.Filter(testUniverse(), criteria)

	assert.Equal(t, "semiconductor", result.SectorTag)
	assert.False(t, result.Fallback)

	got := symbols(result.Candidates)
	// 이름에 키워드가 없어도 참조 목록 종목은 유지
	assert.Contains(t, got, "NVDA")
	assert.Contains(t, got, "AVGO")
	assert.Contains(t, got, "ACMS")
	assert.NotContains(t, got, "KO")
	assert.NotContains(t, got, "SMH", "ETF excluded unless requested")

	assert.Equal(t, ReasonSector, result.Excluded["KO"])
	assert.Equal(t, ReasonFund, result.Excluded["SMH"])
	assert.Equal(t, ReasonSymbolChars, result.Excluded["BRK.B"])
	assert.Equal(t, ReasonSymbolChars, result.Excluded["ABC-W"])
	assert.True(t, strings.HasPrefix(result.Excluded["LONGSY"], ReasonSymbolLength))

	// 모든 원소는 규칙을 만족하고 구조적 제외에 걸리지 않음
	rule := rd.Classify("Semiconductor")
	for _, c := range result.Candidates {
		assert.True(t, rd.Admits(rule, c.Symbol, c.Name), c.Symbol)
		assert.LessOrEqual(t, len(c.Symbol), 5)
		assert.NotContains(t, c.Symbol, "-")
		assert.NotContains(t, c.Symbol, ".")
		assert.False(t, rd.IsFundName(c.Name), c.Symbol)
	}
}

func TestFilter_NoSectors(t *testing.T) {
	f, _ := newTestFilter(t)

	result := f.Filter(testUniverse(), contracts.InvestmentCriteria{Focus: "growth"})

	assert.Empty(t, result.SectorTag)
	assert.ElementsMatch(t, []string{"NVDA", "AVGO", "ACMS", "KO", "PYPL"}, symbols(result.Candidates))
}

func TestFilter_UnrecognizedSector(t *testing.T) {
	f, _ := newTestFilter(t)

	result := f.Filter(testUniverse(), contracts.InvestmentCriteria{Sectors: []string{"Healthcare"}})

	assert.Empty(t, result.SectorTag)
	assert.False(t, result.Fallback)
	assert.Len(t, result.Candidates, 5)
}

func TestFilter_FundsRequested(t *testing.T) {
	f, _ := newTestFilter(t)

	result := f.Filter(testUniverse(), contracts.InvestmentCriteria{
		Sectors: []string{"Semiconductor"},
		Focus:   "growth via ETFs",
	})

	got := symbols(result.Candidates)
	assert.Contains(t, got, "SMH")
	assert.NotContains(t, got, "SPY", "fund allowed but still outside the sector")
}

func TestFilter_Fallback(t *testing.T) {
	f, _ := newTestFilter(t)

	universe := []contracts.CandidateAsset{
		{Symbol: "KO", Name: "Coca-Cola Company"},
		{Symbol: "PEP", Name: "PepsiCo, Inc."},
		{Symbol: "QQQ", Name: "Invesco QQQ Trust"},
	}
	result := f.Filter(universe, contracts.InvestmentCriteria{Sectors: []string{"Semiconductor"}})

	assert.True(t, result.Fallback)
	assert.Equal(t, "semiconductor", result.SectorTag)
	assert.ElementsMatch(t, []string{"KO", "PEP"}, symbols(result.Candidates))
	assert.Equal(t, ReasonFund, result.Excluded["QQQ"])
}

func TestFilter_Idempotent(t *testing.T) {
	f, _ := newTestFilter(t)

	tests := []struct {
		name     string
		universe []contracts.CandidateAsset
		criteria contracts.InvestmentCriteria
	}{
		{"sector", testUniverse(), contracts.InvestmentCriteria{Sectors: []string{"Semiconductor"}}},
		{"no sector", testUniverse(), contracts.InvestmentCriteria{}},
		{"fintech", testUniverse(), contracts.InvestmentCriteria{Sectors: []string{"Fintech"}}},
		{"fallback", []contracts.CandidateAsset{{Symbol: "KO", Name: "Coca-Cola Company"}}, contracts.InvestmentCriteria{Sectors: []string{"AI"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := f.Filter(tt.universe, tt.criteria)
			second := f.Filter(first.Candidates, tt.criteria)
			assert.Equal(t, first.Candidates, second.Candidates)
		})
	}
}
