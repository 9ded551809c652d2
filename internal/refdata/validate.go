package refdata

import (
	"fmt"
	"strings"
)

// ValidationError 검증 실패 (로드 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the reference data before it is compiled
func Validate(rd *RefData) error {
	// === Sector rules ===
	seen := make(map[string]bool, len(rd.SectorRules))
	for i, rule := range rd.SectorRules {
		field := fmt.Sprintf("sector_rules[%d]", i)
		if rule.Tag == "" {
			return ValidationError{field + ".tag", "required"}
		}
		if seen[rule.Tag] {
			return ValidationError{field + ".tag", fmt.Sprintf("duplicate tag %q", rule.Tag)}
		}
		seen[rule.Tag] = true

		if len(rule.Triggers) == 0 {
			return ValidationError{field + ".triggers", "at least one trigger required"}
		}
		for j, t := range rule.Triggers {
			if strings.TrimSpace(t) == "" {
				return ValidationError{fmt.Sprintf("%s.triggers[%d]", field, j), "empty trigger"}
			}
		}
		if len(rule.Keywords) == 0 && len(rule.Symbols) == 0 {
			return ValidationError{field, "keywords or symbols required"}
		}
		for j, kw := range rule.Keywords {
			if strings.TrimSpace(kw) == "" {
				return ValidationError{fmt.Sprintf("%s.keywords[%d]", field, j), "empty keyword"}
			}
		}
		if err := validateSymbols(field+".symbols", rule.Symbols); err != nil {
			return err
		}
	}

	// === Well-known ===
	if err := validateSymbols("well_known", rd.WellKnown); err != nil {
		return err
	}

	// === Exclusions ===
	if rd.Exclusions.MaxSymbolLength <= 0 {
		return ValidationError{"exclusions.max_symbol_length", "must be > 0"}
	}
	for j, p := range rd.Exclusions.FundNamePatterns {
		if strings.TrimSpace(p) == "" {
			return ValidationError{fmt.Sprintf("exclusions.fund_name_patterns[%d]", j), "empty pattern"}
		}
	}

	return nil
}

func validateSymbols(field string, symbols []string) error {
	for j, s := range symbols {
		if s == "" || s != strings.TrimSpace(s) {
			return ValidationError{fmt.Sprintf("%s[%d]", field, j), fmt.Sprintf("invalid symbol %q", s)}
		}
	}
	return nil
}
