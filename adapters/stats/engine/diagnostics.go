package engine

import (
	"math"
	"sort"

	"ablab/domain/analysis"
	"ablab/domain/dataset"
	"ablab/internal/errors"
)

// TestNormality runs the Shapiro-Wilk test per group at the given alpha.
// Groups with fewer than 3 observations get a null verdict (no statistic, no
// p-value, undefined normality) instead of an error; downstream selection
// treats them as non-normal. Each defined result also carries quantile
// pairing data for QQ plotting by external visualizers.
func TestNormality(g *dataset.GroupedDataset, alpha float64) (map[string]analysis.NormalityResult, error) {
	out := make(map[string]analysis.NormalityResult, g.GroupCount())
	for _, label := range g.Labels() {
		values, err := g.Values(label)
		if err != nil {
			return nil, err
		}
		if len(values) < 3 {
			out[label] = analysis.NormalityResult{}
			continue
		}
		w, p, err := shapiroWilk(values)
		if err != nil {
			return nil, errors.Wrapf(err, "normality test failed for group %q", label)
		}
		normal := p > alpha
		out[label] = analysis.NormalityResult{
			Statistic: &w,
			PValue:    &p,
			Normal:    &normal,
			QQ:        qqPairing(values),
		}
	}
	return out, nil
}

// qqPairing pairs the sorted sample against theoretical normal quantiles at
// evenly spaced probability points in (0.01, 0.99)
func qqPairing(values dataset.GroupSample) *analysis.QQData {
	n := len(values)
	sample := make([]float64, n)
	copy(sample, values)
	sort.Float64s(sample)

	theoretical := make([]float64, n)
	if n == 1 {
		theoretical[0] = normalQuantile(0.5)
	} else {
		step := (0.99 - 0.01) / float64(n-1)
		for i := 0; i < n; i++ {
			theoretical[i] = normalQuantile(0.01 + float64(i)*step)
		}
	}
	return &analysis.QQData{Theoretical: theoretical, Sample: sample}
}

// TestHomogeneity checks variance equality across all groups jointly by two
// independent methods: Bartlett (assumes normality) and median-centered
// Levene (robust without it). The selector branches on the Levene verdict
// only; both are reported.
func TestHomogeneity(g *dataset.GroupedDataset, alpha float64) (analysis.Homogeneity, error) {
	groups := g.SamplesInOrder()
	if len(groups) < 2 {
		return analysis.Homogeneity{}, errors.InsufficientData(
			"homogeneity test needs at least 2 groups")
	}
	for i, grp := range groups {
		if len(grp) < 2 {
			return analysis.Homogeneity{}, errors.Newf(errors.CodeInsufficientData,
				"group %q needs at least 2 observations for a variance test", g.Labels()[i])
		}
	}

	bStat, bP, err := bartlett(groups)
	if err != nil {
		return analysis.Homogeneity{}, err
	}
	lStat, lP := leveneMedian(groups)

	return analysis.Homogeneity{
		Bartlett: analysis.HomogeneityTest{
			Statistic:      bStat,
			PValue:         bP,
			EqualVariances: bP > alpha,
		},
		Levene: analysis.HomogeneityTest{
			Statistic:      lStat,
			PValue:         lP,
			EqualVariances: lP > alpha,
		},
	}, nil
}

// bartlett computes Bartlett's test statistic and chi-square p-value
func bartlett(groups []dataset.GroupSample) (stat, p float64, err error) {
	k := len(groups)
	total := 0
	pooled := 0.0
	variances := make([]float64, k)
	for i, grp := range groups {
		v := sampleVariance(grp)
		if v <= 0 {
			return 0, 0, errors.Computation(
				"variance test undefined when a group has zero variance")
		}
		variances[i] = v
		total += len(grp)
		pooled += float64(len(grp)-1) * v
	}
	nk := float64(total - k)
	pooled /= nk

	num := nk * math.Log(pooled)
	corr := 0.0
	for i, grp := range groups {
		df := float64(len(grp) - 1)
		num -= df * math.Log(variances[i])
		corr += 1 / df
	}
	corr = 1 + (corr-1/nk)/(3*float64(k-1))

	stat = num / corr
	return stat, chiSquarePValue(stat, float64(k-1)), nil
}

// leveneMedian computes the Brown-Forsythe variant of Levene's test:
// absolute deviations from the group median, compared by one-way F
func leveneMedian(groups []dataset.GroupSample) (stat, p float64) {
	k := len(groups)
	total := 0
	devs := make([][]float64, k)
	for i, grp := range groups {
		med := median(grp)
		z := make([]float64, len(grp))
		for j, v := range grp {
			z[j] = math.Abs(v - med)
		}
		devs[i] = z
		total += len(grp)
	}

	grand := 0.0
	for _, z := range devs {
		for _, v := range z {
			grand += v
		}
	}
	grand /= float64(total)

	ssb, ssw := 0.0, 0.0
	for _, z := range devs {
		zm := mean(z)
		ssb += float64(len(z)) * (zm - grand) * (zm - grand)
		for _, v := range z {
			ssw += (v - zm) * (v - zm)
		}
	}

	df1 := float64(k - 1)
	df2 := float64(total - k)
	if ssw == 0 {
		// No within-group spread in the deviations; nothing to distinguish
		return 0, 1
	}
	stat = (df2 / df1) * (ssb / ssw)
	return stat, fTestPValue(stat, df1, df2)
}

func median(data []float64) float64 {
	n := len(data)
	s := make([]float64, n)
	copy(s, data)
	sort.Float64s(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
