package refdata

import (
	"regexp"
	"strings"
	"sync"
)

// RefData is the versioned reference data injected into the sector filter
// and the pre-enrichment ranker.
// ⭐ SSOT: 섹터 키워드/심볼 목록은 코드가 아닌 여기에만 존재
type RefData struct {
	Version     string       `yaml:"version" json:"version"`
	SectorRules []SectorRule `yaml:"sector_rules" json:"sector_rules"`
	WellKnown   []string     `yaml:"well_known" json:"well_known"`
	Exclusions  Exclusions   `yaml:"exclusions" json:"exclusions"`

	once      sync.Once
	compiled  []compiledRule
	wellKnown map[string]struct{}
	fundRe    *regexp.Regexp
}

// SectorRule maps criteria text onto a sector tag and the candidates it admits.
// Rules are evaluated in file order, first trigger match wins.
type SectorRule struct {
	Tag      string   `yaml:"tag" json:"tag"`
	Triggers []string `yaml:"triggers" json:"triggers"` // words in the brief's sector text
	Keywords []string `yaml:"keywords" json:"keywords"` // substrings of the asset name
	Symbols  []string `yaml:"symbols" json:"symbols"`   // curated reference list
}

// Exclusions are the structural filters applied regardless of sector
type Exclusions struct {
	MaxSymbolLength  int      `yaml:"max_symbol_length" json:"max_symbol_length"`
	SymbolChars      string   `yaml:"symbol_chars" json:"symbol_chars"`             // any of these in a ticker excludes it
	FundNamePatterns []string `yaml:"fund_name_patterns" json:"fund_name_patterns"` // whole words, case-insensitive
}

type compiledRule struct {
	rule     *SectorRule
	trigger  *regexp.Regexp
	keywords []string
	symbols  map[string]struct{}
}

// compile builds the lookup structures once. Validate must have passed.
func (r *RefData) compile() {
	r.once.Do(func() {
		r.compiled = make([]compiledRule, 0, len(r.SectorRules))
		for i := range r.SectorRules {
			rule := &r.SectorRules[i]
			cr := compiledRule{
				rule:    rule,
				trigger: wordPattern(rule.Triggers),
				symbols: toSet(rule.Symbols),
			}
			for _, kw := range rule.Keywords {
				cr.keywords = append(cr.keywords, strings.ToLower(kw))
			}
			r.compiled = append(r.compiled, cr)
		}
		r.wellKnown = toSet(r.WellKnown)
		if len(r.Exclusions.FundNamePatterns) > 0 {
			r.fundRe = wordPattern(r.Exclusions.FundNamePatterns)
		}
	})
}

// Classify returns the first rule triggered by the sector text, or nil
// when the text maps to no recognized rule.
func (r *RefData) Classify(sectorText string) *SectorRule {
	if strings.TrimSpace(sectorText) == "" {
		return nil
	}
	r.compile()
	for _, cr := range r.compiled {
		if cr.trigger.MatchString(sectorText) {
			return cr.rule
		}
	}
	return nil
}

// Admits reports whether the candidate belongs to the rule: its name holds
// one of the keywords or its symbol is in the curated list.
func (r *RefData) Admits(rule *SectorRule, symbol, name string) bool {
	r.compile()
	for _, cr := range r.compiled {
		if cr.rule != rule {
			continue
		}
		if _, ok := cr.symbols[strings.ToUpper(symbol)]; ok {
			return true
		}
		lower := strings.ToLower(name)
		for _, kw := range cr.keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
		return false
	}
	return false
}

// IsWellKnown reports whether the symbol is on the curated well-known list
func (r *RefData) IsWellKnown(symbol string) bool {
	r.compile()
	_, ok := r.wellKnown[strings.ToUpper(symbol)]
	return ok
}

// IsFundName reports whether the name looks like an ETF, fund, index or trust
func (r *RefData) IsFundName(name string) bool {
	r.compile()
	if r.fundRe == nil {
		return false
	}
	return r.fundRe.MatchString(name)
}

// wordPattern builds a case-insensitive whole-word alternation
func wordPattern(words []string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(strings.TrimSpace(w)))
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

func toSet(symbols []string) map[string]struct{} {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[strings.ToUpper(s)] = struct{}{}
	}
	return set
}
