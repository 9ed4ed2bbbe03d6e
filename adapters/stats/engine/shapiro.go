package engine

import (
	"math"
	"sort"

	"ablab/internal/errors"
)

// shapiroWilk runs the Shapiro-Wilk normality test using Royston's AS R94
// approximation for the weights and the p-value transforms. Requires n >= 3;
// above ~5000 observations the large-sample transform loses accuracy but is
// still applied.
func shapiroWilk(data []float64) (w, p float64, err error) {
	n := len(data)
	if n < 3 {
		return 0, 0, errors.Newf(errors.CodeInsufficientData,
			"normality test needs at least 3 observations, got %d", n)
	}

	x := make([]float64, n)
	copy(x, data)
	sort.Float64s(x)
	if x[0] == x[n-1] {
		return 0, 0, errors.Computation("normality test undefined for zero-variance sample")
	}

	// Expected normal order statistics (Blom scores)
	m := make([]float64, n)
	mss := 0.0
	for i := 0; i < n; i++ {
		m[i] = normalQuantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
		mss += m[i] * m[i]
	}

	a := make([]float64, n)
	if n == 3 {
		a[0] = -math.Sqrt(0.5)
		a[2] = math.Sqrt(0.5)
	} else {
		u := 1 / math.Sqrt(float64(n))
		rm := math.Sqrt(mss)
		an := m[n-1]/rm + u*(0.221157+u*(-0.147981+u*(-2.071190+u*(4.434685+u*(-2.706056)))))
		var an1, phi float64
		if n > 5 {
			an1 = m[n-2]/rm + u*(0.042981+u*(-0.293762+u*(-1.752461+u*(5.682633+u*(-3.582633)))))
			phi = (mss - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) /
				(1 - 2*an*an - 2*an1*an1)
			a[n-2], a[1] = an1, -an1
		} else {
			phi = (mss - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
		}
		a[n-1], a[0] = an, -an
		lo, hi := 1, n-2
		if n > 5 {
			lo, hi = 2, n-3
		}
		for i := lo; i <= hi; i++ {
			a[i] = m[i] / math.Sqrt(phi)
		}
	}

	xbar := mean(x)
	num, den := 0.0, 0.0
	for i := 0; i < n; i++ {
		num += a[i] * x[i]
		den += (x[i] - xbar) * (x[i] - xbar)
	}
	w = num * num / den
	if w > 1 {
		w = 1
	}

	p = shapiroWilkPValue(w, n)
	return w, p, nil
}

// shapiroWilkPValue applies Royston's normalizing transforms of W
func shapiroWilkPValue(w float64, n int) float64 {
	switch {
	case n == 3:
		// Exact small-sample distribution
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return clampP(p)
	case n <= 11:
		fn := float64(n)
		g := -2.273 + 0.459*fn
		lw := -math.Log(g - math.Log(1-w))
		mu := 0.5440 + fn*(-0.39978+fn*(0.025054+fn*(-0.0006714)))
		sigma := math.Exp(1.3822 + fn*(-0.77857+fn*(0.062767+fn*(-0.0020322))))
		return clampP(1 - normalCDF((lw-mu)/sigma))
	default:
		ln := math.Log(float64(n))
		lw := math.Log(1 - w)
		mu := -1.5861 + ln*(-0.31082+ln*(-0.083751+ln*0.0038915))
		sigma := math.Exp(-0.4803 + ln*(-0.082676+ln*0.0030302))
		return clampP(1 - normalCDF((lw-mu)/sigma))
	}
}
