package analysis

import (
	"ablab/internal/errors"
)

// Bounds for the resampling configuration
const (
	MinResamples     = 100
	MaxResamples     = 5000
	DefaultResamples = 1000
	DefaultAlpha     = 0.05
)

// Params carries the per-run analysis configuration. It is threaded
// explicitly into every component call so runs stay reproducible and
// testable in isolation; no component reads ambient state.
type Params struct {
	Alpha       float64 `json:"alpha"`
	Resamples   int     `json:"resamples"`
	Correlation bool    `json:"correlation"` // two-group Pearson correlation toggle
	Association bool    `json:"association"` // categorical association test toggle

	// AssociationThreshold overrides the per-group median when binarizing
	// values for the association test.
	AssociationThreshold *float64 `json:"association_threshold,omitempty"`
}

// DefaultParams returns the conventional configuration: alpha 0.05,
// 1000 bootstrap resamples, ancillary analyses off.
func DefaultParams() Params {
	return Params{
		Alpha:     DefaultAlpha,
		Resamples: DefaultResamples,
	}
}

// Validate checks the configuration surface; failures carry CONFIGURATION_ERROR
func (p Params) Validate() error {
	if p.Alpha <= 0 || p.Alpha >= 1 {
		return errors.Newf(errors.CodeConfiguration,
			"alpha must lie strictly between 0 and 1, got %g", p.Alpha)
	}
	if p.Resamples < MinResamples || p.Resamples > MaxResamples {
		return errors.Newf(errors.CodeConfiguration,
			"resample count must lie in [%d,%d], got %d", MinResamples, MaxResamples, p.Resamples)
	}
	return nil
}
