package analysis

// NormalityResult is the per-group Shapiro-Wilk verdict. For groups smaller
// than three observations the test is undefined: statistic, p-value and
// verdict are all nil, and downstream selection treats the group as
// non-normal rather than failing.
type NormalityResult struct {
	Statistic *float64 `json:"statistic"`
	PValue    *float64 `json:"p_value"`
	Normal    *bool    `json:"normal"`
	QQ        *QQData  `json:"qq,omitempty"`
}

// QQData pairs sorted sample values against theoretical normal quantiles at
// evenly spaced probability points in (0.01, 0.99), for diagnostic plotting.
type QQData struct {
	Theoretical []float64 `json:"theoretical"`
	Sample      []float64 `json:"sample"`
}

// HomogeneityTest is one variance-equality test computed jointly across groups
type HomogeneityTest struct {
	Statistic      float64 `json:"statistic"`
	PValue         float64 `json:"p_value"`
	EqualVariances bool    `json:"equal_variances"`
}

// Homogeneity holds the two independent variance-equality verdicts. Bartlett
// assumes normality; Levene (median-centered) is robust without it. The test
// selector branches on Levene only.
type Homogeneity struct {
	Bartlett HomogeneityTest `json:"bartlett"`
	Levene   HomogeneityTest `json:"levene"`
}

// Diagnostics aggregates the assumption checks feeding the test selector
type Diagnostics struct {
	Normality   map[string]NormalityResult `json:"normality"`
	Homogeneity Homogeneity                `json:"homogeneity"`
}

// AllNormal reports whether every group passed normality; an undefined
// verdict counts as non-normal.
func (d Diagnostics) AllNormal() bool {
	if len(d.Normality) == 0 {
		return false
	}
	for _, r := range d.Normality {
		if r.Normal == nil || !*r.Normal {
			return false
		}
	}
	return true
}

// TestSelection identifies the hypothesis test procedure chosen for a run.
// It is computed once per run and shared by the executor, the effect-size
// calculator and the power analyzer; none of them re-derive it.
type TestSelection string

const (
	SelectTwoSamplePooled TestSelection = "two_sample_parametric_equal_var"
	SelectTwoSampleWelch  TestSelection = "two_sample_parametric_unequal_var"
	SelectTwoSampleRank   TestSelection = "two_sample_nonparametric"
	SelectKSampleANOVA    TestSelection = "k_sample_parametric"
	SelectKSampleKruskal  TestSelection = "k_sample_nonparametric"
)

// Parametric reports whether the selection is a parametric procedure
func (s TestSelection) Parametric() bool {
	return s == SelectTwoSamplePooled || s == SelectTwoSampleWelch || s == SelectKSampleANOVA
}

// TwoSample reports whether the selection compares exactly two groups
func (s TestSelection) TwoSample() bool {
	return s == SelectTwoSamplePooled || s == SelectTwoSampleWelch || s == SelectTwoSampleRank
}

// PairwiseComparison is one row of a post-hoc table
type PairwiseComparison struct {
	Group1    string  `json:"group1"`
	Group2    string  `json:"group2"`
	MeanDiff  float64 `json:"mean_diff,omitempty"`
	Statistic float64 `json:"statistic,omitempty"`
	PValue    float64 `json:"p_value"`
	CILower   float64 `json:"ci_lower,omitempty"`
	CIUpper   float64 `json:"ci_upper,omitempty"`
	Reject    bool    `json:"reject"`
}

// PostHoc holds the pairwise comparisons following a significant omnibus test
type PostHoc struct {
	Method      string               `json:"method"`
	Comparisons []PairwiseComparison `json:"comparisons"`
}

// HypothesisResult is the outcome of the selected test procedure. Created
// once per run and never mutated; re-running the analysis builds a new one.
type HypothesisResult struct {
	TestName       string   `json:"test_name"`
	Statistic      float64  `json:"statistic"`
	PValue         float64  `json:"p_value"`
	Significant    bool     `json:"significant"`
	EqualVariances *bool    `json:"equal_variances,omitempty"`
	GroupsCompared []string `json:"groups_compared"`
	PostHoc        *PostHoc `json:"post_hoc,omitempty"`
}

// EffectSize is the standardized magnitude paired 1:1 with a HypothesisResult
type EffectSize struct {
	Measure    string  `json:"measure"` // "Cohen's d" or "Eta-squared"
	Value      float64 `json:"value"`
	Band       string  `json:"band"` // negligible, small, medium, large
	Comparison string  `json:"comparison"`
}

// GroupBootstrap is the percentile-bootstrap estimate for one group's mean
type GroupBootstrap struct {
	Mean         float64 `json:"mean"` // observed mean
	ResampleMean float64 `json:"resample_mean"`
	CILower      float64 `json:"ci_lower"`
	CIUpper      float64 `json:"ci_upper"`
}

// DifferenceBootstrap is the lockstep two-group mean-difference estimate.
// Significant is true only when the interval excludes zero entirely.
type DifferenceBootstrap struct {
	Groups           string  `json:"groups"` // "A - B"
	MeanDiff         float64 `json:"mean_diff"`
	ResampleMeanDiff float64 `json:"resample_mean_diff"`
	CILower          float64 `json:"ci_lower"`
	CIUpper          float64 `json:"ci_upper"`
	Significant      bool    `json:"significant"`
}

// BootstrapEstimate aggregates the resampling results for one run
type BootstrapEstimate struct {
	Resamples  int                       `json:"resamples"`
	Groups     map[string]GroupBootstrap `json:"groups"`
	Difference *DifferenceBootstrap      `json:"difference,omitempty"`
}

// DecisionMatrix is the 2x2 matrix of decision probabilities
type DecisionMatrix struct {
	RejectGivenNoDiff float64 `json:"reject_null_no_diff"`       // alpha
	RetainGivenNoDiff float64 `json:"not_reject_null_no_diff"`   // 1 - alpha
	RejectGivenDiff   float64 `json:"reject_null_true_diff"`     // power
	RetainGivenDiff   float64 `json:"not_reject_null_true_diff"` // beta
}

// ErrorAnalysis reports Type I/II error rates and power consistent with the
// selected test and observed effect size
type ErrorAnalysis struct {
	Alpha       float64        `json:"type_1_error"`
	Beta        float64        `json:"type_2_error"`
	Power       float64        `json:"power"`
	EffectSize  float64        `json:"effect_size"`
	SampleSizes map[string]int `json:"sample_sizes"`
	Matrix      DecisionMatrix `json:"error_matrix"`
}

// CorrelationResult is the ancillary two-group Pearson correlation.
// Truncated records how many trailing observations of the longer group were
// discarded to align lengths; this asymmetric loss is a documented behavior.
type CorrelationResult struct {
	PearsonR       float64 `json:"pearson_r"`
	PValue         float64 `json:"p_value"`
	Significant    bool    `json:"significant"`
	Interpretation string  `json:"interpretation"`
	Truncated      int     `json:"truncated"`
}

// AssociationResult is the ancillary categorical association test on
// threshold-binarized values
type AssociationResult struct {
	ChiSquare   float64            `json:"chi2"`
	PValue      float64            `json:"p_value"`
	DF          int                `json:"dof"`
	Significant bool               `json:"significant"`
	Contingency [][]float64        `json:"contingency_table"`
	Expected    [][]float64        `json:"expected"`
	Thresholds  map[string]float64 `json:"thresholds"`
	OddsRatio   *float64           `json:"odds_ratio,omitempty"`
}
