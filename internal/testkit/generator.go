// Package testkit builds deterministic samples and tables for tests.
// Samples come from quantile functions rather than a random source, so a
// fixture's moments and distribution shape are stable across runs.
package testkit

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"

	"ablab/domain/dataset"
)

// NormalScores returns n values placed at the standard normal quantiles of
// the evenly spaced probabilities (i-0.5)/n, shifted and scaled. The sample
// passes any reasonable normality check for n >= 10.
func NormalScores(n int, mean, sd float64) []float64 {
	norm := distuv.UnitNormal
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		p := (float64(i) + 0.5) / float64(n)
		out[i] = mean + sd*norm.Quantile(p)
	}
	return out
}

// ExponentialScores returns n values at the exponential quantiles with the
// given rate. Heavily right-skewed, so it reliably fails normality checks.
func ExponentialScores(n int, rate float64) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		p := (float64(i) + 0.5) / float64(n)
		out[i] = -math.Log(1-p) / rate
	}
	return out
}

// Table assembles a two-column table from labeled samples
func Table(groupCol, targetCol string, groups map[string][]float64, order []string) (*dataset.Dataset, error) {
	var records [][]string
	for _, label := range order {
		for _, v := range groups[label] {
			records = append(records, []string{label, strconv.FormatFloat(v, 'f', -1, 64)})
		}
	}
	return dataset.New([]string{groupCol, targetCol}, records)
}

// Grouped builds a GroupedDataset directly from labeled samples
func Grouped(groupCol, targetCol string, groups map[string][]float64, order []string) (*dataset.GroupedDataset, error) {
	ds, err := Table(groupCol, targetCol, groups, order)
	if err != nil {
		return nil, err
	}
	return dataset.NewGrouped(ds, groupCol, targetCol)
}

// MustGrouped is Grouped for fixtures that are known to be well-formed
func MustGrouped(groupCol, targetCol string, groups map[string][]float64, order []string) *dataset.GroupedDataset {
	g, err := Grouped(groupCol, targetCol, groups, order)
	if err != nil {
		panic(fmt.Sprintf("testkit: bad fixture: %v", err))
	}
	return g
}
