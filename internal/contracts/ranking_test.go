package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFocus(t *testing.T) {
	tests := []struct {
		text string
		want Focus
	}{
		{"growth", FocusGrowth},
		{"fallen/decline", FocusDecline},
		{"biggest decliners", FocusDecline},
		{"fallen growth names", FocusDecline},
		{"best performers", FocusGrowth},
		{"strong momentum", FocusGrowth},
		{"undervalued", FocusValue},
		{"dividend income", FocusDividend},
		{"", FocusBalanced},
		{"something else", FocusBalanced},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFocus(tt.text))
		})
	}
}

func TestParseMetric(t *testing.T) {
	assert.Equal(t, MetricPerformance, ParseMetric("performance"))
	assert.Equal(t, MetricPerformance, ParseMetric("revenue growth"))
	assert.Equal(t, MetricPerformance, ParseMetric(""))
	assert.Equal(t, MetricVolatility, ParseMetric("low volatility"))
	assert.Equal(t, MetricVolume, ParseMetric("trading volume"))
}

func TestPolicyFor_Exhaustive(t *testing.T) {
	metrics := map[Metric]MetricKey{
		MetricPerformance: MetricKeyPeriodReturn,
		MetricVolatility:  MetricKeyVolatility,
		MetricVolume:      MetricKeyAverageVolume,
	}
	focuses := []Focus{FocusGrowth, FocusDecline, FocusValue, FocusDividend, FocusBalanced}

	for metric, key := range metrics {
		for _, focus := range focuses {
			p := PolicyFor(metric, focus)
			assert.Equal(t, key, p.MetricKey)
			if focus == FocusDecline {
				assert.Equal(t, Ascending, p.Direction, "%s/%s", metric, focus)
			} else {
				assert.Equal(t, Descending, p.Direction, "%s/%s", metric, focus)
			}
		}
	}
}

func TestPolicyFor_UnknownInputsNormalize(t *testing.T) {
	p := PolicyFor(Metric("bogus"), Focus("bogus"))
	assert.Equal(t, MetricPerformance, p.Metric)
	assert.Equal(t, MetricKeyPeriodReturn, p.MetricKey)
	assert.Equal(t, FocusBalanced, p.Focus)
	assert.Equal(t, Descending, p.Direction)
}

func TestDirectionNote(t *testing.T) {
	assert.Equal(t, "sorted worst-to-best", Ascending.Note())
	assert.Equal(t, "sorted best-to-worst", Descending.Note())
}

func TestEnrichedCandidate_Value(t *testing.T) {
	e := EnrichedCandidate{PeriodReturnPct: 10, VolatilityPct: 2, AverageVolume: 1e6}
	assert.Equal(t, 10.0, e.Value(MetricKeyPeriodReturn))
	assert.Equal(t, 2.0, e.Value(MetricKeyVolatility))
	assert.Equal(t, 1e6, e.Value(MetricKeyAverageVolume))
}
