package engine

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"ablab/domain/analysis"
	"ablab/domain/dataset"
	"ablab/internal/errors"
)

// Bootstrap estimates percentile confidence intervals for every group mean
// and, for exactly two groups, the mean difference. Per-group resampling is
// independent, so groups run concurrently; the difference pass draws from
// both groups in lockstep and runs as its own unit.
//
// rng seeds one private generator per unit of work; pass a seeded source for
// reproducible intervals.
func Bootstrap(ctx context.Context, g *dataset.GroupedDataset, resamples int, rng *rand.Rand) (analysis.BootstrapEstimate, error) {
	if resamples < analysis.MinResamples || resamples > analysis.MaxResamples {
		return analysis.BootstrapEstimate{}, errors.Newf(errors.CodeConfiguration,
			"resample count must lie in [%d,%d], got %d",
			analysis.MinResamples, analysis.MaxResamples, resamples)
	}

	labels := g.Labels()
	groups := g.SamplesInOrder()
	for i, grp := range groups {
		if len(grp) == 0 {
			return analysis.BootstrapEstimate{}, errors.Newf(errors.CodeInsufficientData,
				"group %q has no observations to resample", labels[i])
		}
	}

	// Derive one seed per unit up front so concurrency never touches the
	// shared source.
	seeds := make([]int64, len(groups)+1)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	results := make([]analysis.GroupBootstrap, len(groups))
	eg, _ := errgroup.WithContext(ctx)
	for i := range groups {
		i := i
		eg.Go(func() error {
			est, err := resampleMeans(groups[i], resamples, rand.New(rand.NewSource(seeds[i])))
			if err != nil {
				return errors.Wrapf(err, "bootstrap failed for group %q", labels[i])
			}
			results[i] = est
			return nil
		})
	}

	var difference *analysis.DifferenceBootstrap
	if len(groups) == 2 {
		eg.Go(func() error {
			diff, err := resampleDifference(groups[0], groups[1], labels, resamples,
				rand.New(rand.NewSource(seeds[len(groups)])))
			if err != nil {
				return err
			}
			difference = diff
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return analysis.BootstrapEstimate{}, err
	}

	byGroup := make(map[string]analysis.GroupBootstrap, len(groups))
	for i, label := range labels {
		byGroup[label] = results[i]
	}
	return analysis.BootstrapEstimate{
		Resamples:  resamples,
		Groups:     byGroup,
		Difference: difference,
	}, nil
}

// resampleMeans draws resamples of the original size with replacement and
// summarizes the resampled-mean distribution
func resampleMeans(data dataset.GroupSample, resamples int, rng *rand.Rand) (analysis.GroupBootstrap, error) {
	means := make([]float64, resamples)
	for r := 0; r < resamples; r++ {
		means[r] = resampleMean(data, rng)
	}
	lower, upper, err := percentileBounds(means)
	if err != nil {
		return analysis.GroupBootstrap{}, err
	}
	return analysis.GroupBootstrap{
		Mean:         mean(data),
		ResampleMean: mean(means),
		CILower:      lower,
		CIUpper:      upper,
	}, nil
}

// resampleDifference draws from both groups on the same iteration and
// summarizes the mean-difference distribution. The interval flags
// significance only when both bounds share a sign.
func resampleDifference(g1, g2 dataset.GroupSample, labels []string, resamples int, rng *rand.Rand) (*analysis.DifferenceBootstrap, error) {
	diffs := make([]float64, resamples)
	for r := 0; r < resamples; r++ {
		diffs[r] = resampleMean(g1, rng) - resampleMean(g2, rng)
	}
	lower, upper, err := percentileBounds(diffs)
	if err != nil {
		return nil, errors.Wrap(err, "difference bootstrap failed")
	}
	return &analysis.DifferenceBootstrap{
		Groups:           fmt.Sprintf("%s - %s", labels[0], labels[1]),
		MeanDiff:         mean(g1) - mean(g2),
		ResampleMeanDiff: mean(diffs),
		CILower:          lower,
		CIUpper:          upper,
		Significant:      (lower > 0 && upper > 0) || (lower < 0 && upper < 0),
	}, nil
}

func resampleMean(data dataset.GroupSample, rng *rand.Rand) float64 {
	sum := 0.0
	for i := 0; i < len(data); i++ {
		sum += data[rng.Intn(len(data))]
	}
	return sum / float64(len(data))
}

func percentileBounds(values []float64) (lower, upper float64, err error) {
	lower, err = stats.Percentile(values, 2.5)
	if err != nil {
		return 0, 0, errors.Wrap(err, "percentile bound computation failed")
	}
	upper, err = stats.Percentile(values, 97.5)
	if err != nil {
		return 0, 0, errors.Wrap(err, "percentile bound computation failed")
	}
	return lower, upper, nil
}
