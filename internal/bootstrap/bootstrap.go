package bootstrap

import (
	"math/rand"

	"golang.org/x/sync/errgroup"

	"aggstat/domain/table"
	apperrors "aggstat/internal/errors"
)

// StatFunc reduces a table to a scalar. A nil result marks a statistic that
// could not be computed for the given rows.
type StatFunc func(t *table.Table) *float64

// Distribution is the outcome of one estimate: the point value on the
// original rows, the confidence bounds when resampling ran, and optionally
// the original table retained for derived-series pairing. Immutable once
// returned.
type Distribution struct {
	Value      *float64
	LowerBound *float64
	UpperBound *float64
	Original   *table.Table
}

// Options control one estimate call.
type Options struct {
	// Iterations is the number of resamples. One means no resampling:
	// the point value is computed once and the bounds stay nil.
	Iterations int
	// Workers caps parallel resample evaluation. Purely a speed knob;
	// results are identical for any worker count.
	Workers int
	// Method selects the confidence interval: perc, basic or bca.
	Method string
	// Alpha is the significance level, e.g. 0.05 for a 95% interval.
	Alpha float64
	// Source supplies resample indices. Sharing one seeded source across
	// every estimate of a run makes the whole run reproducible.
	Source *rand.Rand
	// KeepOriginal retains the input table on the result for later
	// paired derived computation.
	KeepOriginal bool
}

// Estimate computes a statistic and, when Iterations > 1, a bootstrap
// confidence interval around it. An empty table yields a Distribution with
// every field nil. All resample indices are drawn sequentially from the
// source before any parallel evaluation starts, so the worker count never
// changes the draw sequence.
func Estimate(data *table.Table, fn StatFunc, opts Options) (Distribution, error) {
	if !knownMethod(opts.Method) {
		return Distribution{}, apperrors.ConfigInvalid("unknown confidence interval method " + opts.Method)
	}
	if opts.Alpha <= 0 || opts.Alpha >= 1 {
		return Distribution{}, apperrors.ConfigInvalid("alpha must be in (0, 1)")
	}
	if data == nil || data.Empty() {
		return Distribution{}, nil
	}

	dist := Distribution{Value: fn(data)}
	if opts.KeepOriginal {
		dist.Original = data
	}
	if opts.Iterations <= 1 {
		return dist, nil
	}

	src := opts.Source
	if src == nil {
		src = rand.New(rand.NewSource(1))
	}
	n := data.Len()
	indices := make([][]int, opts.Iterations)
	for i := range indices {
		idx := make([]int, n)
		for j := range idx {
			idx[j] = src.Intn(n)
		}
		indices[i] = idx
	}

	replicates := make([]*float64, opts.Iterations)
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range indices {
		i := i
		g.Go(func() error {
			replicates[i] = fn(data.Take(indices[i]))
			return nil
		})
	}
	// Workers never return errors; failed replicates surface as nils.
	_ = g.Wait()

	lower, upper := interval(opts.Method, opts.Alpha, dist.Value, replicates, func() []*float64 {
		return jackknife(data, fn)
	})
	dist.LowerBound = lower
	dist.UpperBound = upper
	return dist, nil
}

// jackknife computes the leave-one-out statistic values used by the BCa
// acceleration estimate.
func jackknife(data *table.Table, fn StatFunc) []*float64 {
	n := data.Len()
	out := make([]*float64, n)
	idx := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		idx = idx[:0]
		for j := 0; j < n; j++ {
			if j != i {
				idx = append(idx, j)
			}
		}
		out[i] = fn(data.Take(idx))
	}
	return out
}
