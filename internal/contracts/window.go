package contracts

import (
	"fmt"
	"time"
)

// Resolution is the sampling interval of a bar series
type Resolution string

const (
	ResolutionDay  Resolution = "1Day"
	ResolutionWeek Resolution = "1Week"
)

// dataDelay keeps the window end outside the provider's delayed-data embargo
const dataDelay = 15 * time.Minute

// TimeWindow is computed once per request and shared by every enrichment call
type TimeWindow struct {
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
	Resolution Resolution `json:"resolution"`
}

// WindowFor maps a timeframe to its lookback window ending at now.
// 3Y and 5Y use weekly bars to bound payload size.
// Both resolutions are day-or-coarser, so the end is aligned to the UTC day:
// every request on the same day shares one window and one bar cache entry.
func WindowFor(tf Timeframe, now time.Time) (TimeWindow, error) {
	end := now.UTC().Add(-dataDelay).Truncate(24 * time.Hour)

	var start time.Time
	resolution := ResolutionDay
	switch tf {
	case Timeframe1M:
		start = end.AddDate(0, -1, 0)
	case Timeframe3M:
		start = end.AddDate(0, -3, 0)
	case Timeframe6M:
		start = end.AddDate(0, -6, 0)
	case Timeframe1Y:
		start = end.AddDate(-1, 0, 0)
	case Timeframe3Y:
		start = end.AddDate(-3, 0, 0)
		resolution = ResolutionWeek
	case Timeframe5Y:
		start = end.AddDate(-5, 0, 0)
		resolution = ResolutionWeek
	default:
		return TimeWindow{}, fmt.Errorf("%w: unknown timeframe %q", ErrInvalidCriteria, tf)
	}

	return TimeWindow{Start: start, End: end, Resolution: resolution}, nil
}
