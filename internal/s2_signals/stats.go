package s2_signals

import (
	"errors"
	"math"
	"sort"

	"github.com/wonny/aegis-picker/backend/internal/contracts"
)

var (
	errInsufficientData = errors.New("fewer than two bars")
	errUnusableSeries   = errors.New("non-positive or non-finite close")
)

// Stats holds the performance statistics of one bar series
type Stats struct {
	Price           float64 // last close
	PeriodReturnPct float64
	VolatilityPct   float64
	AverageVolume   float64
	Bars            int
}

// ComputeStats derives return, volatility and average volume from a bar series.
// Bars are ordered by time before use. Nothing is interpolated: a series with
// fewer than two bars or a non-positive close is rejected.
func ComputeStats(bars []contracts.Bar) (Stats, error) {
	if len(bars) < 2 {
		return Stats{}, errInsufficientData
	}

	ordered := make([]contracts.Bar, len(bars))
	copy(ordered, bars)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Time.Before(ordered[j].Time)
	})

	for _, b := range ordered {
		if b.Close <= 0 || math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			return Stats{}, errUnusableSeries
		}
	}

	first := ordered[0].Close
	last := ordered[len(ordered)-1].Close

	returns := periodReturns(ordered)

	return Stats{
		Price:           last,
		PeriodReturnPct: (last - first) / first * 100,
		VolatilityPct:   populationStdDev(returns),
		AverageVolume:   averageVolume(ordered),
		Bars:            len(ordered),
	}, nil
}

// periodReturns returns r[i] = (close[i]-close[i-1])/close[i-1]*100 for i = 1..n-1
func periodReturns(bars []contracts.Bar) []float64 {
	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		returns = append(returns, (bars[i].Close-prev)/prev*100)
	}
	return returns
}

// populationStdDev divides by n, not n-1
func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	// 모든 값이 같으면 정확히 0 (부동소수점 잔차 방지)
	identical := true
	for _, v := range values[1:] {
		if v != values[0] {
			identical = false
			break
		}
	}
	if identical {
		return 0.0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

func averageVolume(bars []contracts.Bar) float64 {
	if len(bars) == 0 {
		return 0.0
	}

	var sum float64
	for _, b := range bars {
		sum += b.Volume
	}
	return sum / float64(len(bars))
}
