package engine

import (
	"testing"

	"ablab/internal/errors"
	"ablab/internal/testkit"
)

func TestTestNormality_VerdictsPerGroup(t *testing.T) {
	g := testkit.MustGrouped("variant", "value", map[string][]float64{
		"control":   testkit.NormalScores(30, 0.10, 0.05),
		"treatment": testkit.ExponentialScores(30, 4.0),
	}, []string{"control", "treatment"})

	results, err := TestNormality(g, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	ctrl := results["control"]
	if ctrl.Normal == nil || !*ctrl.Normal {
		t.Error("control group should pass normality")
	}
	trt := results["treatment"]
	if trt.Normal == nil || *trt.Normal {
		t.Error("treatment group should fail normality")
	}

	for label, r := range results {
		if r.QQ == nil {
			t.Fatalf("group %s missing QQ pairing", label)
		}
		if len(r.QQ.Theoretical) != 30 || len(r.QQ.Sample) != 30 {
			t.Errorf("group %s QQ lengths should match sample size", label)
		}
	}
}

// TestTestNormality_TinyGroup verifies that groups below 3 observations get a
// null verdict instead of an error
func TestTestNormality_TinyGroup(t *testing.T) {
	g := testkit.MustGrouped("variant", "value", map[string][]float64{
		"a": {1.0, 2.0},
		"b": testkit.NormalScores(20, 5, 1),
	}, []string{"a", "b"})

	results, err := TestNormality(g, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	small := results["a"]
	if small.Statistic != nil || small.PValue != nil || small.Normal != nil {
		t.Error("group with n<3 should carry a null verdict")
	}
}

func TestTestHomogeneity_EqualSpread(t *testing.T) {
	g := testkit.MustGrouped("variant", "value", map[string][]float64{
		"a": testkit.NormalScores(30, 0.10, 0.05),
		"b": testkit.NormalScores(30, 0.15, 0.05),
	}, []string{"a", "b"})

	h, err := TestHomogeneity(g, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.Levene.EqualVariances {
		t.Errorf("identical spreads should pass Levene, p=%f", h.Levene.PValue)
	}
	if !h.Bartlett.EqualVariances {
		t.Errorf("identical spreads should pass Bartlett, p=%f", h.Bartlett.PValue)
	}
}

func TestTestHomogeneity_UnequalSpread(t *testing.T) {
	g := testkit.MustGrouped("variant", "value", map[string][]float64{
		"a": testkit.NormalScores(40, 0.10, 0.02),
		"b": testkit.NormalScores(40, 0.10, 0.20),
	}, []string{"a", "b"})

	h, err := TestHomogeneity(g, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Levene.EqualVariances {
		t.Errorf("10x spread ratio should fail Levene, p=%f", h.Levene.PValue)
	}
	if h.Bartlett.EqualVariances {
		t.Errorf("10x spread ratio should fail Bartlett, p=%f", h.Bartlett.PValue)
	}
}

// TestTestHomogeneity_IdenticalSpreads pins the cancellation edge: groups
// with exactly equal variances can drive the Bartlett statistic a hair below
// zero, which must come back as p = 1, not a distribution-domain failure
func TestTestHomogeneity_IdenticalSpreads(t *testing.T) {
	g := testkit.MustGrouped("variant", "value", map[string][]float64{
		"a": testkit.NormalScores(20, 1.0, 0.2),
		"b": testkit.NormalScores(20, 1.2, 0.2),
		"c": testkit.NormalScores(20, 1.4, 0.2),
	}, []string{"a", "b", "c"})

	h, err := TestHomogeneity(g, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.Bartlett.EqualVariances {
		t.Errorf("identical spreads should pass Bartlett, p=%f", h.Bartlett.PValue)
	}
	if h.Bartlett.PValue < 0.99 {
		t.Errorf("equal variances should give p near 1, got %f", h.Bartlett.PValue)
	}
	if !h.Levene.EqualVariances {
		t.Errorf("identical spreads should pass Levene, p=%f", h.Levene.PValue)
	}
}

func TestChiSquarePValue_NonPositiveStatistic(t *testing.T) {
	if p := chiSquarePValue(-1e-15, 2); p != 1 {
		t.Errorf("negative statistic should give p = 1, got %f", p)
	}
	if p := chiSquarePValue(0, 2); p != 1 {
		t.Errorf("zero statistic should give p = 1, got %f", p)
	}
	if p := fTestPValue(-1e-15, 2, 40); p != 1 {
		t.Errorf("negative F should give p = 1, got %f", p)
	}
}

func TestTestHomogeneity_TooFewObservations(t *testing.T) {
	g := testkit.MustGrouped("variant", "value", map[string][]float64{
		"a": {1.0},
		"b": {2.0, 3.0},
	}, []string{"a", "b"})

	_, err := TestHomogeneity(g, 0.05)
	if err == nil {
		t.Fatal("expected error for a single-observation group")
	}
	if !errors.HasCode(err, errors.CodeInsufficientData) {
		t.Errorf("expected INSUFFICIENT_DATA, got %s", errors.GetCode(err))
	}
}

func TestBartlett_ZeroVariance(t *testing.T) {
	g := testkit.MustGrouped("variant", "value", map[string][]float64{
		"a": {2.0, 2.0, 2.0},
		"b": {1.0, 2.0, 3.0},
	}, []string{"a", "b"})

	_, err := TestHomogeneity(g, 0.05)
	if err == nil {
		t.Fatal("expected error for a zero-variance group")
	}
	if !errors.HasCode(err, errors.CodeComputation) {
		t.Errorf("expected COMPUTATION_ERROR, got %s", errors.GetCode(err))
	}
}
