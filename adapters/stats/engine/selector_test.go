package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ablab/domain/analysis"
	"ablab/internal/errors"
)

func TestSelect_DecisionTable(t *testing.T) {
	cases := []struct {
		name      string
		groups    int
		allNormal bool
		equalVar  bool
		want      analysis.TestSelection
	}{
		{"two normal equal variance", 2, true, true, analysis.SelectTwoSamplePooled},
		{"two normal unequal variance", 2, true, false, analysis.SelectTwoSampleWelch},
		{"two non-normal equal variance", 2, false, true, analysis.SelectTwoSampleRank},
		{"two non-normal unequal variance", 2, false, false, analysis.SelectTwoSampleRank},
		{"three normal equal variance", 3, true, true, analysis.SelectKSampleANOVA},
		{"three normal unequal variance", 3, true, false, analysis.SelectKSampleANOVA},
		{"three non-normal", 3, false, true, analysis.SelectKSampleKruskal},
		{"five non-normal", 5, false, false, analysis.SelectKSampleKruskal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Select(tc.groups, tc.allNormal, tc.equalVar)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSelect_SingleGroupRejected(t *testing.T) {
	_, err := Select(1, true, true)
	assert.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInsufficientData))
}
