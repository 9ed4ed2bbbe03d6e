package dataset

import (
	"math"

	"github.com/montanaflynn/stats"
)

// GroupSummary holds the descriptive statistics reported per group
type GroupSummary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Q1       float64 `json:"q1"`
	Median   float64 `json:"median"`
	Q3       float64 `json:"q3"`
	StdErr   float64 `json:"std_err"`
	Variance float64 `json:"variance"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"` // excess kurtosis
}

// Summary computes descriptive statistics for every group
func (g *GroupedDataset) Summary() map[string]GroupSummary {
	out := make(map[string]GroupSummary, len(g.labels))
	for _, label := range g.labels {
		out[label] = summarize(g.samples[label])
	}
	return out
}

func summarize(sample GroupSample) GroupSummary {
	data := []float64(sample)
	n := len(data)
	mean, _ := stats.Mean(data)
	sd, _ := stats.StandardDeviationSample(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	median, _ := stats.Median(data)
	q1, _ := stats.Percentile(data, 25)
	q3, _ := stats.Percentile(data, 75)
	variance, _ := stats.SampleVariance(data)

	sem := 0.0
	if n > 0 {
		sem = sd / math.Sqrt(float64(n))
	}

	return GroupSummary{
		Count:    n,
		Mean:     mean,
		StdDev:   sd,
		Min:      min,
		Max:      max,
		Q1:       q1,
		Median:   median,
		Q3:       q3,
		StdErr:   sem,
		Variance: variance,
		Skewness: sampleSkewness(data, mean, sd),
		Kurtosis: sampleExcessKurtosis(data, mean, sd),
	}
}

// sampleSkewness computes the adjusted Fisher-Pearson coefficient
func sampleSkewness(data []float64, mean, sd float64) float64 {
	if len(data) < 3 || sd == 0 {
		return 0
	}
	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / sd
		sum += d * d * d
	}
	return sum / n * math.Sqrt(n*(n-1)) / (n - 2)
}

// sampleExcessKurtosis computes bias-corrected excess kurtosis
func sampleExcessKurtosis(data []float64, mean, sd float64) float64 {
	if len(data) < 4 || sd == 0 {
		return 0
	}
	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / sd
		sum += d * d * d * d
	}
	return (n*(n+1)/((n-1)*(n-2)*(n-3)))*sum - 3*(n-1)*(n-1)/((n-2)*(n-3))
}
