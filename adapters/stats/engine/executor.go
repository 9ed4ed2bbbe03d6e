package engine

import (
	"math"
	"sort"

	"ablab/domain/analysis"
	"ablab/domain/dataset"
	"ablab/internal/errors"
)

// RunHypothesisTest executes the selected procedure against the grouped data.
// Significance is strict: p < alpha, never <=.
func RunHypothesisTest(g *dataset.GroupedDataset, sel analysis.TestSelection, alpha float64) (analysis.HypothesisResult, error) {
	labels := g.Labels()
	if len(labels) < 2 {
		return analysis.HypothesisResult{}, errors.Newf(errors.CodeInsufficientData,
			"hypothesis test needs at least 2 groups, got %d", len(labels))
	}
	groups := g.SamplesInOrder()
	for i, grp := range groups {
		if len(grp) == 0 {
			return analysis.HypothesisResult{}, errors.Newf(errors.CodeInsufficientData,
				"group %q has no observations", labels[i])
		}
	}

	switch sel {
	case analysis.SelectTwoSamplePooled:
		return independentTTest(groups[0], groups[1], labels, alpha, true)
	case analysis.SelectTwoSampleWelch:
		return independentTTest(groups[0], groups[1], labels, alpha, false)
	case analysis.SelectTwoSampleRank:
		return mannWhitneyResult(groups[0], groups[1], labels, alpha)
	case analysis.SelectKSampleANOVA:
		return oneWayANOVA(groups, labels, alpha)
	case analysis.SelectKSampleKruskal:
		return kruskalWallis(groups, labels, alpha)
	default:
		return analysis.HypothesisResult{}, errors.Newf(errors.CodeComputation,
			"unknown test selection %q", sel)
	}
}

// independentTTest compares two group means, pooled-variance form when
// equalVar, Welch otherwise
func independentTTest(g1, g2 dataset.GroupSample, labels []string, alpha float64, equalVar bool) (analysis.HypothesisResult, error) {
	n1, n2 := float64(len(g1)), float64(len(g2))
	if n1 < 2 || n2 < 2 {
		return analysis.HypothesisResult{}, errors.InsufficientData(
			"t-test needs at least 2 observations per group")
	}
	m1, m2 := mean(g1), mean(g2)
	v1, v2 := sampleVariance(g1), sampleVariance(g2)

	var t, df float64
	name := "Welch's t-test"
	if equalVar {
		name = "Independent samples t-test"
		sp2 := ((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2)
		if sp2 == 0 {
			return analysis.HypothesisResult{}, errors.Computation(
				"pooled variance is zero; t statistic undefined")
		}
		t = (m1 - m2) / math.Sqrt(sp2*(1/n1+1/n2))
		df = n1 + n2 - 2
	} else {
		se2 := v1/n1 + v2/n2
		if se2 == 0 {
			return analysis.HypothesisResult{}, errors.Computation(
				"both group variances are zero; t statistic undefined")
		}
		t = (m1 - m2) / math.Sqrt(se2)
		df = se2 * se2 / (v1*v1/(n1*n1*(n1-1)) + v2*v2/(n2*n2*(n2-1)))
	}

	p := tTestPValue(t, df)
	return analysis.HypothesisResult{
		TestName:       name,
		Statistic:      t,
		PValue:         p,
		Significant:    p < alpha,
		EqualVariances: &equalVar,
		GroupsCompared: labels,
	}, nil
}

// mannWhitneyResult wraps the rank-sum test as a HypothesisResult
func mannWhitneyResult(g1, g2 dataset.GroupSample, labels []string, alpha float64) (analysis.HypothesisResult, error) {
	u, p, err := mannWhitneyU(g1, g2)
	if err != nil {
		return analysis.HypothesisResult{}, err
	}
	return analysis.HypothesisResult{
		TestName:       "Mann-Whitney U test",
		Statistic:      u,
		PValue:         p,
		Significant:    p < alpha,
		GroupsCompared: labels,
	}, nil
}

// mannWhitneyU computes the U statistic of the first sample and a two-sided
// p-value from the tie-corrected normal approximation with continuity
// correction
func mannWhitneyU(g1, g2 []float64) (u, p float64, err error) {
	n1, n2 := float64(len(g1)), float64(len(g2))
	if n1 == 0 || n2 == 0 {
		return 0, 0, errors.InsufficientData("rank-sum test needs observations in both groups")
	}

	combined := make([]float64, 0, len(g1)+len(g2))
	combined = append(combined, g1...)
	combined = append(combined, g2...)
	ranks, tieTerm := midranks(combined)

	r1 := 0.0
	for i := range g1 {
		r1 += ranks[i]
	}
	u = r1 - n1*(n1+1)/2

	n := n1 + n2
	mu := n1 * n2 / 2
	sigma2 := n1 * n2 / 12 * ((n + 1) - tieTerm/(n*(n-1)))
	if sigma2 <= 0 {
		// All values tied; no evidence either way
		return u, 1, nil
	}
	sigma := math.Sqrt(sigma2)

	// Continuity correction toward the mean
	diff := u - mu
	var z float64
	switch {
	case diff > 0:
		z = (diff - 0.5) / sigma
	case diff < 0:
		z = (diff + 0.5) / sigma
	}
	p = clampP(2 * (1 - normalCDF(math.Abs(z))))
	return u, p, nil
}

// midranks assigns average ranks to tied values and returns the tie
// correction term sum(t^3 - t) over tie groups
func midranks(data []float64) (ranks []float64, tieTerm float64) {
	n := len(data)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return data[idx[a]] < data[idx[b]] })

	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && data[idx[j+1]] == data[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		t := float64(j - i + 1)
		tieTerm += t*t*t - t
		i = j + 1
	}
	return ranks, tieTerm
}

// anovaDecompose splits total variation into between- and within-group sums
// of squares. Shared by the F-test, Tukey's HSD and the eta-squared effect
// size so all three read the same decomposition.
func anovaDecompose(groups []dataset.GroupSample) (ssb, ssw float64, dfb, dfw int) {
	total := 0
	grand := 0.0
	for _, grp := range groups {
		total += len(grp)
		for _, v := range grp {
			grand += v
		}
	}
	grand /= float64(total)

	for _, grp := range groups {
		gm := mean(grp)
		ssb += float64(len(grp)) * (gm - grand) * (gm - grand)
		for _, v := range grp {
			ssw += (v - gm) * (v - gm)
		}
	}
	return ssb, ssw, len(groups) - 1, total - len(groups)
}

// oneWayANOVA runs the omnibus F-test and, on top of it, Tukey's HSD
// post-hoc pairwise table at the configured alpha
func oneWayANOVA(groups []dataset.GroupSample, labels []string, alpha float64) (analysis.HypothesisResult, error) {
	ssb, ssw, dfb, dfw := anovaDecompose(groups)
	if dfw <= 0 {
		return analysis.HypothesisResult{}, errors.InsufficientData(
			"ANOVA needs more observations than groups")
	}
	if ssw == 0 {
		return analysis.HypothesisResult{}, errors.Computation(
			"ANOVA undefined with zero within-group variance")
	}
	f := (ssb / float64(dfb)) / (ssw / float64(dfw))
	p := fTestPValue(f, float64(dfb), float64(dfw))

	posthoc, err := tukeyHSD(groups, labels, ssw/float64(dfw), dfw, alpha)
	if err != nil {
		return analysis.HypothesisResult{}, err
	}

	return analysis.HypothesisResult{
		TestName:       "One-way ANOVA",
		Statistic:      f,
		PValue:         p,
		Significant:    p < alpha,
		GroupsCompared: labels,
		PostHoc:        posthoc,
	}, nil
}

// kruskalWallis runs the tie-corrected H test with Bonferroni-adjusted
// pairwise Mann-Whitney comparisons as post-hoc
func kruskalWallis(groups []dataset.GroupSample, labels []string, alpha float64) (analysis.HypothesisResult, error) {
	total := 0
	for _, grp := range groups {
		total += len(grp)
	}
	combined := make([]float64, 0, total)
	for _, grp := range groups {
		combined = append(combined, grp...)
	}
	ranks, tieTerm := midranks(combined)

	n := float64(total)
	h := 0.0
	offset := 0
	for _, grp := range groups {
		ri := 0.0
		for j := range grp {
			ri += ranks[offset+j]
		}
		h += ri * ri / float64(len(grp))
		offset += len(grp)
	}
	h = 12/(n*(n+1))*h - 3*(n+1)

	// Tie correction
	c := 1 - tieTerm/(n*n*n-n)
	if c <= 0 {
		return analysis.HypothesisResult{}, errors.Computation(
			"Kruskal-Wallis undefined when every value is tied")
	}
	h /= c

	p := chiSquarePValue(h, float64(len(groups)-1))

	posthoc, err := bonferroniPairwise(groups, labels, alpha)
	if err != nil {
		return analysis.HypothesisResult{}, err
	}

	return analysis.HypothesisResult{
		TestName:       "Kruskal-Wallis test",
		Statistic:      h,
		PValue:         p,
		Significant:    p < alpha,
		GroupsCompared: labels,
		PostHoc:        posthoc,
	}, nil
}

// bonferroniPairwise runs all pairwise rank-sum tests, multiplying each raw
// p-value by the number of comparisons (capped at 1) for family-wise control
func bonferroniPairwise(groups []dataset.GroupSample, labels []string, alpha float64) (*analysis.PostHoc, error) {
	k := len(groups)
	pairs := k * (k - 1) / 2
	comparisons := make([]analysis.PairwiseComparison, 0, pairs)
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			u, raw, err := mannWhitneyU(groups[i], groups[j])
			if err != nil {
				return nil, errors.Wrapf(err, "pairwise comparison %s vs %s failed",
					labels[i], labels[j])
			}
			adj := math.Min(raw*float64(pairs), 1)
			comparisons = append(comparisons, analysis.PairwiseComparison{
				Group1:    labels[i],
				Group2:    labels[j],
				Statistic: u,
				PValue:    adj,
				Reject:    adj < alpha,
			})
		}
	}
	return &analysis.PostHoc{
		Method:      "Pairwise Mann-Whitney (Bonferroni)",
		Comparisons: comparisons,
	}, nil
}
