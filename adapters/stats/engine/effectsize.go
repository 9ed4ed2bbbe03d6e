package engine

import (
	"fmt"
	"math"

	"ablab/domain/analysis"
	"ablab/domain/dataset"
	"ablab/internal/errors"
)

// ComputeEffectSize computes the standardized effect for the selected branch:
// Cohen's d for two groups, eta-squared for more. The banding follows the
// conventional thresholds; d keeps its sign for direction while banding on
// magnitude.
func ComputeEffectSize(g *dataset.GroupedDataset, sel analysis.TestSelection) (analysis.EffectSize, error) {
	labels := g.Labels()
	groups := g.SamplesInOrder()
	if len(groups) < 2 {
		return analysis.EffectSize{}, errors.InsufficientData(
			"effect size needs at least 2 groups")
	}

	if sel.TwoSample() {
		d, err := cohensD(groups[0], groups[1])
		if err != nil {
			return analysis.EffectSize{}, err
		}
		return analysis.EffectSize{
			Measure:    "Cohen's d",
			Value:      d,
			Band:       bandCohensD(d),
			Comparison: fmt.Sprintf("%s vs %s", labels[0], labels[1]),
		}, nil
	}

	eta, err := etaSquared(groups)
	if err != nil {
		return analysis.EffectSize{}, err
	}
	return analysis.EffectSize{
		Measure:    "Eta-squared",
		Value:      eta,
		Band:       bandEtaSquared(eta),
		Comparison: "across all groups",
	}, nil
}

// cohensD is the standardized mean difference with the (n1-1, n2-1)-weighted
// pooled standard deviation
func cohensD(g1, g2 dataset.GroupSample) (float64, error) {
	n1, n2 := float64(len(g1)), float64(len(g2))
	if n1 < 2 || n2 < 2 {
		return 0, errors.InsufficientData(
			"Cohen's d needs at least 2 observations per group")
	}
	pooled := ((n1-1)*sampleVariance(g1) + (n2-1)*sampleVariance(g2)) / (n1 + n2 - 2)
	if pooled <= 0 {
		return 0, errors.Computation(
			"pooled standard deviation is zero; Cohen's d undefined")
	}
	return (mean(g1) - mean(g2)) / math.Sqrt(pooled), nil
}

// etaSquared is the between-group share of the total sum of squares, from
// the same ANOVA decomposition the F-test uses
func etaSquared(groups []dataset.GroupSample) (float64, error) {
	ssb, ssw, _, _ := anovaDecompose(groups)
	sst := ssb + ssw
	if sst == 0 {
		return 0, errors.Computation(
			"total sum of squares is zero; eta-squared undefined")
	}
	return ssb / sst, nil
}

func bandCohensD(d float64) string {
	switch abs := math.Abs(d); {
	case abs < 0.2:
		return "negligible"
	case abs < 0.5:
		return "small"
	case abs < 0.8:
		return "medium"
	default:
		return "large"
	}
}

func bandEtaSquared(eta float64) string {
	switch {
	case eta < 0.01:
		return "negligible"
	case eta < 0.06:
		return "small"
	case eta < 0.14:
		return "medium"
	default:
		return "large"
	}
}
