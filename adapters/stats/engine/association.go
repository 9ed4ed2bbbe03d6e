package engine

import (
	"math"

	"ablab/domain/analysis"
	"ablab/domain/dataset"
	"ablab/internal/errors"
)

// Association binarizes each group's values at a threshold (the group's own
// median by default, or a caller-supplied global threshold) and tests the
// resulting groups x {below, at-or-above} contingency table for association.
// With exactly two groups an odds ratio is derived when neither cross term
// is structurally zero.
func Association(g *dataset.GroupedDataset, alpha float64, threshold *float64) (*analysis.AssociationResult, error) {
	labels := g.Labels()
	if len(labels) < 2 {
		return nil, errors.InsufficientData(
			"association test needs at least 2 groups")
	}
	groups := g.SamplesInOrder()

	thresholds := make(map[string]float64, len(labels))
	table := make([][]float64, len(labels))
	for i, grp := range groups {
		if len(grp) == 0 {
			return nil, errors.Newf(errors.CodeInsufficientData,
				"group %q has no observations", labels[i])
		}
		t := median(grp)
		if threshold != nil {
			t = *threshold
		}
		thresholds[labels[i]] = t

		row := make([]float64, 2)
		for _, v := range grp {
			if v >= t {
				row[1]++
			} else {
				row[0]++
			}
		}
		table[i] = row
	}

	chi2, p, df, expected, err := chiSquareContingency(table)
	if err != nil {
		return nil, err
	}

	result := &analysis.AssociationResult{
		ChiSquare:   chi2,
		PValue:      p,
		DF:          df,
		Significant: p < alpha,
		Contingency: table,
		Expected:    expected,
		Thresholds:  thresholds,
	}

	if len(labels) == 2 {
		a, b := table[0][0], table[0][1]
		c, d := table[1][0], table[1][1]
		if b*c != 0 {
			or := a * d / (b * c)
			result.OddsRatio = &or
		}
	}
	return result, nil
}

// chiSquareContingency runs the chi-square test of independence on a
// contingency table, with the Yates continuity correction on 2x2 tables
func chiSquareContingency(table [][]float64) (chi2, p float64, df int, expected [][]float64, err error) {
	rows := len(table)
	cols := len(table[0])

	rowSums := make([]float64, rows)
	colSums := make([]float64, cols)
	total := 0.0
	for i, row := range table {
		for j, v := range row {
			rowSums[i] += v
			colSums[j] += v
			total += v
		}
	}
	if total == 0 {
		return 0, 0, 0, nil, errors.Computation("contingency table is empty")
	}

	correction := 0.0
	if rows == 2 && cols == 2 {
		correction = 0.5
	}

	expected = make([][]float64, rows)
	for i := range table {
		expected[i] = make([]float64, cols)
		for j := range table[i] {
			e := rowSums[i] * colSums[j] / total
			if e == 0 {
				return 0, 0, 0, nil, errors.Computation(
					"contingency table has a zero expected frequency")
			}
			expected[i][j] = e
			d := math.Abs(table[i][j]-e) - correction
			if d < 0 {
				d = 0
			}
			chi2 += d * d / e
		}
	}

	df = (rows - 1) * (cols - 1)
	return chi2, chiSquarePValue(chi2, float64(df)), df, expected, nil
}
