package engine

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"

	"ablab/domain/analysis"
	"ablab/domain/dataset"
	"ablab/internal/errors"
)

// tukeyHSD builds the simultaneous-confidence-level pairwise table after a
// one-way ANOVA. Unequal group sizes use the Tukey-Kramer standard error.
func tukeyHSD(groups []dataset.GroupSample, labels []string, msw float64, dfw int, alpha float64) (*analysis.PostHoc, error) {
	k := len(groups)
	if msw <= 0 {
		return nil, errors.Computation("Tukey HSD undefined with zero mean square error")
	}

	qCrit, err := studentizedRangeQuantile(1-alpha, k, float64(dfw))
	if err != nil {
		return nil, err
	}

	comparisons := make([]analysis.PairwiseComparison, 0, k*(k-1)/2)
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			diff := mean(groups[i]) - mean(groups[j])
			se := math.Sqrt(msw / 2 * (1/float64(len(groups[i])) + 1/float64(len(groups[j]))))
			q := math.Abs(diff) / se
			adj := clampP(1 - studentizedRangeCDF(q, k, float64(dfw)))
			hw := qCrit * se
			comparisons = append(comparisons, analysis.PairwiseComparison{
				Group1:   labels[i],
				Group2:   labels[j],
				MeanDiff: diff,
				PValue:   adj,
				CILower:  diff - hw,
				CIUpper:  diff + hw,
				Reject:   adj < alpha,
			})
		}
	}
	return &analysis.PostHoc{
		Method:      "Tukey HSD",
		Comparisons: comparisons,
	}, nil
}

// studentizedRangeCDF computes P(Q <= q) for the studentized range of k
// groups with df error degrees of freedom, by numerical quadrature over the
// scale distribution and the range of k standard normals.
func studentizedRangeCDF(q float64, k int, df float64) float64 {
	if q <= 0 {
		return 0
	}

	// CDF of the range of k iid standard normals at r
	rangeCDF := func(r float64) float64 {
		if r <= 0 {
			return 0
		}
		f := func(z float64) float64 {
			d := distuv.UnitNormal.CDF(z) - distuv.UnitNormal.CDF(z-r)
			if d <= 0 {
				return 0
			}
			return distuv.UnitNormal.Prob(z) * math.Pow(d, float64(k-1))
		}
		return clampP(float64(k) * quad.Fixed(f, -8, 8+r, 96, nil, 0))
	}

	// Large df: the scale estimate is effectively 1
	if df > 200 {
		return rangeCDF(q)
	}

	// S = sqrt(chi2_df/df); density via log form to stay finite at high df
	logNorm := math.Log(2) + 0.5*df*math.Log(df/2)
	lg, _ := math.Lgamma(df / 2)
	logNorm -= lg
	integrand := func(s float64) float64 {
		if s <= 0 {
			return 0
		}
		logf := logNorm + (df-1)*math.Log(s) - df*s*s/2
		return math.Exp(logf) * rangeCDF(q*s)
	}

	upper := math.Max(4, 1+12/math.Sqrt(2*df))
	return clampP(quad.Fixed(integrand, 1e-9, upper, 128, nil, 0))
}

// studentizedRangeQuantile inverts the CDF by bisection
func studentizedRangeQuantile(p float64, k int, df float64) (float64, error) {
	if p <= 0 || p >= 1 {
		return 0, errors.Newf(errors.CodeComputation,
			"studentized range quantile undefined at p=%g", p)
	}
	lo, hi := 0.0, 1.0
	for studentizedRangeCDF(hi, k, df) < p {
		hi *= 2
		if hi > 1e4 {
			return 0, errors.Computation("studentized range quantile did not converge")
		}
	}
	for iter := 0; iter < 80 && hi-lo > 1e-8*(1+hi); iter++ {
		mid := (lo + hi) / 2
		if studentizedRangeCDF(mid, k, df) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}
