package engine

import (
	"ablab/domain/analysis"
	"ablab/internal/errors"
)

// Select maps (group count, joint normality verdict, Levene variance
// verdict) to a test procedure. It is a pure function: the selection is
// computed once per run and handed to the executor, the effect-size
// calculator and the power analyzer, which must all branch on the same
// value. Only the Levene verdict participates; Bartlett never does.
func Select(groupCount int, allNormal, leveneEqualVariance bool) (analysis.TestSelection, error) {
	if groupCount < 2 {
		return "", errors.Newf(errors.CodeInsufficientData,
			"group comparison needs at least 2 groups, got %d", groupCount)
	}
	if groupCount == 2 {
		if !allNormal {
			return analysis.SelectTwoSampleRank, nil
		}
		if leveneEqualVariance {
			return analysis.SelectTwoSamplePooled, nil
		}
		return analysis.SelectTwoSampleWelch, nil
	}
	if allNormal {
		return analysis.SelectKSampleANOVA, nil
	}
	return analysis.SelectKSampleKruskal, nil
}
