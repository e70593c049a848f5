package batch

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates a run. Timing figures are in seconds and only cover
// images that were decoded; confidence figures cover every detected plate.
type Summary struct {
	SuccessRate float64 `json:"success_rate"`
	TotalPlates int     `json:"total_plates"`

	MeanTime   float64 `json:"mean_time"`
	StdDevTime float64 `json:"stddev_time"`
	MedianTime float64 `json:"median_time"`
	MaxTime    float64 `json:"max_time"`

	MeanConfidence   float64 `json:"mean_confidence"`
	MedianConfidence float64 `json:"median_confidence"`
}

// Summarize computes the Summary of results. Empty inputs give zeros.
func Summarize(results []ImageResult) Summary {
	var s Summary
	if len(results) == 0 {
		return s
	}

	var times, confidences []float64
	successful := 0
	for _, r := range results {
		if r.Success {
			successful++
		}
		if r.ProcessingTime > 0 {
			times = append(times, r.ProcessingTime)
		}
		for _, p := range r.Plates {
			confidences = append(confidences, p.Confidence)
		}
		s.TotalPlates += r.PlateCount
	}
	s.SuccessRate = float64(successful) / float64(len(results))

	if len(times) > 0 {
		sort.Float64s(times)
		s.MeanTime, s.StdDevTime = meanStdDev(times)
		s.MedianTime = stat.Quantile(0.5, stat.Empirical, times, nil)
		s.MaxTime = times[len(times)-1]
	}
	if len(confidences) > 0 {
		sort.Float64s(confidences)
		s.MeanConfidence = stat.Mean(confidences, nil)
		s.MedianConfidence = stat.Quantile(0.5, stat.Empirical, confidences, nil)
	}
	return s
}

// meanStdDev wraps stat.MeanStdDev; the sample deviation of a single value
// is reported as 0 rather than NaN so the report stays valid JSON.
func meanStdDev(x []float64) (float64, float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	return stat.MeanStdDev(x, nil)
}
