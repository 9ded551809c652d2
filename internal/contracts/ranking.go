package contracts

import (
	"regexp"
	"strings"
)

// Focus is the canonical form of the brief's free-text intent
type Focus string

const (
	FocusGrowth   Focus = "growth"
	FocusDecline  Focus = "decline"
	FocusValue    Focus = "value"
	FocusDividend Focus = "dividend"
	FocusBalanced Focus = "balanced"
)

// Metric is the canonical form of the brief's ranking quantity
type Metric string

const (
	MetricPerformance Metric = "performance"
	MetricVolatility  Metric = "volatility"
	MetricVolume      Metric = "volume"
)

// MetricKey names the EnrichedCandidate field a policy sorts on
type MetricKey string

const (
	MetricKeyPeriodReturn  MetricKey = "periodReturnPct"
	MetricKeyVolatility    MetricKey = "volatilityPct"
	MetricKeyAverageVolume MetricKey = "averageVolume"
)

// Direction is the sort order of the final list
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// Note renders the direction for the selection collaborator's explanations
func (d Direction) Note() string {
	if d == Ascending {
		return "sorted worst-to-best"
	}
	return "sorted best-to-worst"
}

type focusRule struct {
	focus   Focus
	pattern *regexp.Regexp
}

// Evaluated top to bottom, first match wins. Decline sits first so that
// "fallen growth names" is read as a decline brief.
var focusRules = []focusRule{
	{FocusDecline, regexp.MustCompile(`(?i)\b(fall|fallen|declin\w*|los(er|ers|ing)|worst|drop\w*|beaten|down\w*|crash\w*|slump\w*)\b`)},
	{FocusGrowth, regexp.MustCompile(`(?i)\b(growth|grow\w*|gain\w*|best|momentum|strong\w*|winners?|top|outperform\w*|rall\w*)\b`)},
	{FocusValue, regexp.MustCompile(`(?i)\b(value|undervalued|cheap\w*|bargains?)\b`)},
	{FocusDividend, regexp.MustCompile(`(?i)\b(dividends?|income|yield\w*)\b`)},
}

// ParseFocus maps free text onto the enumerated focus domain
func ParseFocus(text string) Focus {
	for _, rule := range focusRules {
		if rule.pattern.MatchString(text) {
			return rule.focus
		}
	}
	return FocusBalanced
}

// ParseMetric maps free text onto the enumerated metric domain.
// Revenue-growth style requests fall back to price performance as their proxy.
func ParseMetric(text string) Metric {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "volatil") || strings.Contains(t, "risk"):
		return MetricVolatility
	case strings.Contains(t, "volume") || strings.Contains(t, "liquid"):
		return MetricVolume
	default:
		return MetricPerformance
	}
}

// RankingPolicy is the single place that decides sort key and direction
type RankingPolicy struct {
	Focus     Focus     `json:"focus"`
	Metric    Metric    `json:"metric"`
	MetricKey MetricKey `json:"metricKey"`
	Direction Direction `json:"direction"`
}

// PolicyFor is a pure function over the enumerated (metric, focus) domain.
// Focus is the only input that can invert the order.
func PolicyFor(metric Metric, focus Focus) RankingPolicy {
	var key MetricKey
	switch metric {
	case MetricVolatility:
		key = MetricKeyVolatility
	case MetricVolume:
		key = MetricKeyAverageVolume
	default:
		metric = MetricPerformance
		key = MetricKeyPeriodReturn
	}

	direction := Descending
	switch focus {
	case FocusDecline:
		direction = Ascending
	case FocusGrowth, FocusValue, FocusDividend, FocusBalanced:
		direction = Descending
	default:
		focus = FocusBalanced
	}

	return RankingPolicy{
		Focus:     focus,
		Metric:    metric,
		MetricKey: key,
		Direction: direction,
	}
}

// PolicyFromCriteria parses the brief's free text and derives the policy
func PolicyFromCriteria(c InvestmentCriteria) RankingPolicy {
	return PolicyFor(ParseMetric(c.Metric), ParseFocus(c.Focus))
}
