package engine

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// tTestPValue computes the two-tailed p-value for a t statistic
func tTestPValue(t, df float64) float64 {
	if df <= 0 {
		return 1.0
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return clampP(2 * (1 - dist.CDF(math.Abs(t))))
}

// fTestPValue computes the upper-tail p-value for an F statistic. A
// statistic at or below zero, which cancellation can produce for
// near-identical groups, gives p = 1.
func fTestPValue(f float64, df1, df2 float64) float64 {
	if df1 <= 0 || df2 <= 0 || f <= 0 {
		return 1.0
	}
	dist := distuv.F{D1: df1, D2: df2}
	return clampP(1 - dist.CDF(f))
}

// chiSquarePValue computes the upper-tail p-value for a chi-square
// statistic, treating a non-positive statistic as no evidence (p = 1)
func chiSquarePValue(x2 float64, df float64) float64 {
	if df <= 0 || x2 <= 0 {
		return 1.0
	}
	dist := distuv.ChiSquared{K: df}
	return clampP(1 - dist.CDF(x2))
}

// normalCDF is the standard normal cumulative distribution function
func normalCDF(z float64) float64 {
	return distuv.UnitNormal.CDF(z)
}

// normalQuantile is the standard normal inverse CDF
func normalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

func clampP(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// sampleVariance is the unbiased (n-1) estimator
func sampleVariance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	m := mean(data)
	sum := 0.0
	for _, v := range data {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(data)-1)
}
