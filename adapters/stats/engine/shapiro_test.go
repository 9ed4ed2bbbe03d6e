package engine

import (
	"testing"

	"ablab/internal/errors"
	"ablab/internal/testkit"
)

// TestShapiroWilk_NormalSample verifies that values placed at normal
// quantiles pass the test
func TestShapiroWilk_NormalSample(t *testing.T) {
	data := testkit.NormalScores(30, 0.12, 0.05)

	w, p, err := shapiroWilk(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w <= 0 || w > 1 {
		t.Errorf("W should be in (0,1], got %f", w)
	}
	if w < 0.95 {
		t.Errorf("normal-quantile sample should give W near 1, got %f", w)
	}
	if p <= 0.05 {
		t.Errorf("normal-quantile sample should not be rejected, got p=%f", p)
	}
}

// TestShapiroWilk_SkewedSample verifies that an exponential sample is rejected
func TestShapiroWilk_SkewedSample(t *testing.T) {
	data := testkit.ExponentialScores(30, 2.0)

	w, p, err := shapiroWilk(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p >= 0.05 {
		t.Errorf("exponential sample should be rejected at 0.05, got p=%f", p)
	}
	if w >= 0.95 {
		t.Errorf("exponential sample should show depressed W, got %f", w)
	}
}

// TestShapiroWilk_SmallSamples covers the small-n p-value branches
func TestShapiroWilk_SmallSamples(t *testing.T) {
	for _, n := range []int{3, 5, 8, 11, 12} {
		data := testkit.NormalScores(n, 0, 1)
		w, p, err := shapiroWilk(data)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if w <= 0 || w > 1 {
			t.Errorf("n=%d: W out of range: %f", n, w)
		}
		if p < 0 || p > 1 {
			t.Errorf("n=%d: p out of range: %f", n, p)
		}
	}
}

func TestShapiroWilk_TooFewObservations(t *testing.T) {
	_, _, err := shapiroWilk([]float64{1.0, 2.0})
	if err == nil {
		t.Fatal("expected error for n=2")
	}
	if !errors.HasCode(err, errors.CodeInsufficientData) {
		t.Errorf("expected INSUFFICIENT_DATA, got %s", errors.GetCode(err))
	}
}

func TestShapiroWilk_ZeroVariance(t *testing.T) {
	_, _, err := shapiroWilk([]float64{3, 3, 3, 3, 3})
	if err == nil {
		t.Fatal("expected error for constant sample")
	}
	if !errors.HasCode(err, errors.CodeComputation) {
		t.Errorf("expected COMPUTATION_ERROR, got %s", errors.GetCode(err))
	}
}
