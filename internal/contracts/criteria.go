package contracts

import (
	"fmt"
	"regexp"
	"strings"
)

// Timeframe is the lookback requested by the brief
type Timeframe string

const (
	Timeframe1M Timeframe = "1M"
	Timeframe3M Timeframe = "3M"
	Timeframe6M Timeframe = "6M"
	Timeframe1Y Timeframe = "1Y"
	Timeframe3Y Timeframe = "3Y"
	Timeframe5Y Timeframe = "5Y"
)

// Timeframes lists the accepted timeframes in ascending order
var Timeframes = []Timeframe{Timeframe1M, Timeframe3M, Timeframe6M, Timeframe1Y, Timeframe3Y, Timeframe5Y}

// ParseTimeframe normalizes user input ("1y", " 3M ") into a Timeframe
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Timeframes {
		if tf == known {
			return tf, nil
		}
	}
	return "", fmt.Errorf("%w: unknown timeframe %q", ErrInvalidCriteria, s)
}

// RiskLevel is informational only; it never filters candidates
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// InvestmentCriteria is the structured brief produced by the criteria extractor
// ⭐ SSOT: 파이프라인 입력은 이 구조체 하나
type InvestmentCriteria struct {
	Sectors   []string  `json:"sectors"`
	Focus     string    `json:"focus"`
	Metric    string    `json:"metric"`
	RiskLevel RiskLevel `json:"riskLevel"`
	Timeframe Timeframe `json:"timeframe"`
	MaxStocks int       `json:"maxStocks"`
	MinPrice  *float64  `json:"minPrice,omitempty"` // advisory, passed through
	MaxPrice  *float64  `json:"maxPrice,omitempty"` // advisory, passed through
}

// etfPattern detects an explicit request for fund exposure in the focus text
var etfPattern = regexp.MustCompile(`(?i)\b(etfs?|exchange[- ]traded|index funds?)\b`)

// Validate normalizes the timeframe and checks the remaining fields
func (c *InvestmentCriteria) Validate() error {
	tf, err := ParseTimeframe(string(c.Timeframe))
	if err != nil {
		return err
	}
	c.Timeframe = tf

	switch RiskLevel(strings.ToLower(string(c.RiskLevel))) {
	case "", RiskLow, RiskModerate, RiskHigh:
		c.RiskLevel = RiskLevel(strings.ToLower(string(c.RiskLevel)))
	default:
		return fmt.Errorf("%w: unknown risk level %q", ErrInvalidCriteria, c.RiskLevel)
	}

	if c.MaxStocks < 0 {
		return fmt.Errorf("%w: maxStocks must be >= 0", ErrInvalidCriteria)
	}
	if c.MinPrice != nil && *c.MinPrice < 0 {
		return fmt.Errorf("%w: minPrice must be >= 0", ErrInvalidCriteria)
	}
	if c.MaxPrice != nil && *c.MaxPrice < 0 {
		return fmt.Errorf("%w: maxPrice must be >= 0", ErrInvalidCriteria)
	}
	if c.MinPrice != nil && c.MaxPrice != nil && *c.MinPrice > *c.MaxPrice {
		return fmt.Errorf("%w: minPrice exceeds maxPrice", ErrInvalidCriteria)
	}
	return nil
}

// WantsFunds reports whether the focus explicitly asks for ETF exposure
func (c InvestmentCriteria) WantsFunds() bool {
	return etfPattern.MatchString(c.Focus)
}

// SectorText joins the sector labels for rule classification
func (c InvestmentCriteria) SectorText() string {
	return strings.Join(c.Sectors, " ")
}
