package app

import (
	"context"
	"math/rand"
	"time"

	"ablab/adapters/stats/engine"
	"ablab/domain/analysis"
	"ablab/domain/core"
	"ablab/domain/dataset"
	"ablab/internal"
	"ablab/internal/errors"
	"ablab/ports"
)

// Session owns one analysis workflow: the loaded dataset, the designated
// columns, and the current parameters. All derived results belong to a
// single run; changing columns or parameters discards the previous run's
// outputs and the next Run recomputes everything. At most one analysis is
// in flight per session; Session is not safe for concurrent use.
type Session struct {
	logger *internal.Logger
	rng    *rand.Rand

	ds      *dataset.Dataset
	grouped *dataset.GroupedDataset
	params  analysis.Params
}

// NewSession creates a session with default parameters and a time-seeded
// random source for resampling
func NewSession(logger *internal.Logger) *Session {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Session{
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		params: analysis.DefaultParams(),
	}
}

// Seed replaces the resampling source for reproducible bootstrap intervals
func (s *Session) Seed(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
}

// Load reads a tabular source and validates it. A previously grouped dataset
// is discarded.
func (s *Session) Load(reader ports.TableReader) (*dataset.Dataset, error) {
	ds, err := reader.Read()
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	s.ds = ds
	s.grouped = nil
	s.logger.Info("dataset loaded: %d rows, %d columns", ds.RowCount(), len(ds.Headers))
	return ds, nil
}

// SetDataset installs an already-parsed dataset, validating it first
func (s *Session) SetDataset(ds *dataset.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	s.ds = ds
	s.grouped = nil
	return nil
}

// Dataset returns the currently loaded dataset, or nil
func (s *Session) Dataset() *dataset.Dataset {
	return s.ds
}

// SelectColumns designates the group and target columns; schema failures
// block every downstream stage
func (s *Session) SelectColumns(groupCol, targetCol string) error {
	if s.ds == nil {
		return errors.Validation("no dataset loaded")
	}
	grouped, err := dataset.NewGrouped(s.ds, groupCol, targetCol)
	if err != nil {
		return err
	}
	s.grouped = grouped
	s.logger.Info("columns selected: group=%s target=%s groups=%d",
		groupCol, targetCol, grouped.GroupCount())
	return nil
}

// SetParams validates and installs the run configuration
func (s *Session) SetParams(p analysis.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	return nil
}

// Params returns the current run configuration
func (s *Session) Params() analysis.Params {
	return s.params
}

// Run executes the full pipeline: diagnostics, selection, hypothesis test,
// effect size, bootstrap and error analysis, plus any enabled ancillary
// analyses. The report it returns is immutable; a second Run builds a fresh
// one. Ancillary failures are downgraded to report warnings.
func (s *Session) Run(ctx context.Context) (*analysis.Report, error) {
	if s.grouped == nil {
		return nil, errors.Validation("group and target columns are not selected")
	}
	if err := s.params.Validate(); err != nil {
		return nil, err
	}
	g := s.grouped
	p := s.params

	normality, err := engine.TestNormality(g, p.Alpha)
	if err != nil {
		return nil, errors.Wrap(err, "assumption diagnostics failed")
	}
	homogeneity, err := engine.TestHomogeneity(g, p.Alpha)
	if err != nil {
		return nil, errors.Wrap(err, "assumption diagnostics failed")
	}
	diagnostics := analysis.Diagnostics{
		Normality:   normality,
		Homogeneity: homogeneity,
	}

	// Single shared selection for executor, effect size and power
	selection, err := engine.Select(g.GroupCount(), diagnostics.AllNormal(),
		homogeneity.Levene.EqualVariances)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("test selected: %s", selection)

	hypothesis, err := engine.RunHypothesisTest(g, selection, p.Alpha)
	if err != nil {
		return nil, errors.Wrap(err, "hypothesis test failed")
	}

	effect, err := engine.ComputeEffectSize(g, selection)
	if err != nil {
		return nil, errors.Wrap(err, "effect size computation failed")
	}

	bootstrap, err := engine.Bootstrap(ctx, g, p.Resamples, s.rng)
	if err != nil {
		return nil, errors.Wrap(err, "bootstrap estimation failed")
	}

	errAnalysis, err := engine.AnalyzeErrors(g, selection, effect, p.Alpha)
	if err != nil {
		return nil, errors.Wrap(err, "error analysis failed")
	}

	report := &analysis.Report{
		RunID:        core.NewID(),
		CreatedAt:    core.Now(),
		GroupColumn:  g.GroupColumn(),
		TargetColumn: g.TargetColumn(),
		Groups:       g.Labels(),
		Params:       p,
		Hypotheses:   analysis.StateHypotheses(g.Labels(), g.TargetColumn()),
		Summary:      g.Summary(),
		Diagnostics:  diagnostics,
		Selection:    selection,
		Hypothesis:   hypothesis,
		Effect:       effect,
		Bootstrap:    bootstrap,
		Errors:       errAnalysis,
	}

	// Ancillary analyses never abort the main pipeline
	if p.Correlation {
		corr, err := engine.Correlation(g, p.Alpha)
		if err != nil {
			s.logger.Warn("correlation analysis skipped: %v", err)
			report.Warnings = append(report.Warnings, "correlation: "+err.Error())
		} else {
			report.Correlation = corr
		}
	}
	if p.Association {
		assoc, err := engine.Association(g, p.Alpha, p.AssociationThreshold)
		if err != nil {
			s.logger.Warn("association analysis skipped: %v", err)
			report.Warnings = append(report.Warnings, "association: "+err.Error())
		} else {
			report.Association = assoc
		}
	}

	return report, nil
}
