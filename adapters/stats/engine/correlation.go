package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"ablab/domain/analysis"
	"ablab/domain/dataset"
	"ablab/internal/errors"
)

// Correlation computes the Pearson correlation between the two groups'
// value sequences. Requires exactly two groups. When the groups differ in
// length the longer one is truncated to the shorter, a lossy alignment
// surfaced through the Truncated count.
func Correlation(g *dataset.GroupedDataset, alpha float64) (*analysis.CorrelationResult, error) {
	if g.GroupCount() != 2 {
		return nil, errors.Newf(errors.CodeInsufficientData,
			"correlation is defined for exactly 2 groups, got %d", g.GroupCount())
	}
	groups := g.SamplesInOrder()
	x, y := []float64(groups[0]), []float64(groups[1])

	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	truncated := (len(x) - n) + (len(y) - n)
	x, y = x[:n], y[:n]

	if n < 3 {
		return nil, errors.Newf(errors.CodeInsufficientData,
			"correlation needs at least 3 paired observations, got %d", n)
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return nil, errors.Computation(
			"correlation undefined when either group has zero variance")
	}

	p := correlationPValue(r, n)
	return &analysis.CorrelationResult{
		PearsonR:       r,
		PValue:         p,
		Significant:    p < alpha,
		Interpretation: interpretCorrelation(r),
		Truncated:      truncated,
	}, nil
}

// correlationPValue maps r to a two-sided p-value via the t transform
func correlationPValue(r float64, n int) float64 {
	if 1-r*r <= 0 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	return tTestPValue(t, df)
}

func interpretCorrelation(r float64) string {
	switch abs := math.Abs(r); {
	case abs < 0.1:
		return "very weak"
	case abs < 0.3:
		return "weak"
	case abs < 0.5:
		return "moderate"
	case abs < 0.7:
		return "strong"
	default:
		return "very strong"
	}
}
