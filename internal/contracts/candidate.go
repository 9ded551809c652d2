package contracts

import "time"

// CandidateAsset is one tradable instrument from the universe
type CandidateAsset struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}

// EnrichedCandidate is a candidate with performance statistics over the shared window.
// Only candidates with a usable series become EnrichedCandidates.
type EnrichedCandidate struct {
	CandidateAsset
	Price           float64 `json:"price"`           // last close in window
	PeriodReturnPct float64 `json:"periodReturnPct"` // (last-first)/first*100
	VolatilityPct   float64 `json:"volatilityPct"`   // population stddev of per-bar returns
	AverageVolume   float64 `json:"averageVolume"`
	Bars            int     `json:"bars"`
}

// Value returns the statistic named by key
func (e EnrichedCandidate) Value(key MetricKey) float64 {
	switch key {
	case MetricKeyVolatility:
		return e.VolatilityPct
	case MetricKeyAverageVolume:
		return e.AverageVolume
	default:
		return e.PeriodReturnPct
	}
}

// Bar is one OHLCV sample of a historical series
type Bar struct {
	Time   time.Time `json:"t"`
	Open   float64   `json:"o"`
	High   float64   `json:"h"`
	Low    float64   `json:"l"`
	Close  float64   `json:"c"`
	Volume float64   `json:"v"`
}

// BarsRequest asks the provider for one symbol's series over a window
type BarsRequest struct {
	Symbol string
	Window TimeWindow
	Limit  int
}
