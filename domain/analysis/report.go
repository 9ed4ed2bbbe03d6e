package analysis

import (
	"fmt"
	"strings"

	"ablab/domain/core"
	"ablab/domain/dataset"
)

// Hypotheses states the null and alternative for the run in plain language
type Hypotheses struct {
	Null        string `json:"null"`
	Alternative string `json:"alternative"`
}

// Report is the immutable aggregate of one analysis run, consumed as-is by
// rendering collaborators. All fields are plain structured values with no
// behavior; the whole report serializes to any hierarchical format.
type Report struct {
	RunID        core.RunID                      `json:"run_id"`
	CreatedAt    core.Timestamp                  `json:"created_at"`
	GroupColumn  string                          `json:"group_column"`
	TargetColumn string                          `json:"target_column"`
	Groups       []string                        `json:"groups"`
	Params       Params                          `json:"params"`
	Hypotheses   Hypotheses                      `json:"hypotheses"`
	Summary      map[string]dataset.GroupSummary `json:"summary"`
	Diagnostics  Diagnostics                     `json:"diagnostics"`
	Selection    TestSelection                   `json:"test_selection"`
	Hypothesis   HypothesisResult                `json:"hypothesis_test"`
	Effect       EffectSize                      `json:"effect_size"`
	Bootstrap    BootstrapEstimate               `json:"bootstrap"`
	Errors       ErrorAnalysis                   `json:"error_analysis"`
	Correlation  *CorrelationResult              `json:"correlation,omitempty"`
	Association  *AssociationResult              `json:"association,omitempty"`

	// Warnings records ancillary-analysis failures that did not abort the run
	Warnings []string `json:"warnings,omitempty"`
}

// StateHypotheses builds the null/alternative statements for a grouping
func StateHypotheses(groups []string, targetCol string) Hypotheses {
	if len(groups) == 2 {
		return Hypotheses{
			Null: fmt.Sprintf("H0: the mean of %s does not differ between groups %s and %s",
				targetCol, groups[0], groups[1]),
			Alternative: fmt.Sprintf("H1: the mean of %s differs between groups %s and %s",
				targetCol, groups[0], groups[1]),
		}
	}
	all := strings.Join(groups, ", ")
	return Hypotheses{
		Null: fmt.Sprintf("H0: the mean of %s is equal across all groups (%s)",
			targetCol, all),
		Alternative: fmt.Sprintf("H1: at least one group's mean of %s differs from the others",
			targetCol),
	}
}
