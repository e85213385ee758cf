package bootstrap

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Confidence interval methods.
const (
	MethodPercentile = "perc"
	MethodBasic      = "basic"
	MethodBCa        = "bca"
)

func knownMethod(method string) bool {
	switch method {
	case MethodPercentile, MethodBasic, MethodBCa:
		return true
	}
	return false
}

// interval derives the confidence bounds from the bootstrap replicates.
// Replicates that failed to compute are dropped; if none survive, both
// bounds are nil. The jackknife is computed lazily since only BCa needs it.
func interval(method string, alpha float64, value *float64, replicates []*float64, jack func() []*float64) (*float64, *float64) {
	values := compact(replicates)
	if len(values) == 0 {
		return nil, nil
	}

	switch method {
	case MethodBasic:
		lo, hi, ok := percentileBounds(values, alpha)
		if !ok || value == nil {
			return nil, nil
		}
		lower := 2**value - hi
		upper := 2**value - lo
		return &lower, &upper
	case MethodBCa:
		if value == nil {
			return nil, nil
		}
		if lo, hi, ok := bcaBounds(values, *value, alpha, jack()); ok {
			return lo, hi
		}
		// Degenerate acceleration or bias falls back to the plain
		// percentile bounds.
		fallthrough
	default:
		lo, hi, ok := percentileBounds(values, alpha)
		if !ok {
			return nil, nil
		}
		return &lo, &hi
	}
}

// percentileBounds returns the alpha/2 and 1-alpha/2 empirical quantiles.
func percentileBounds(values []float64, alpha float64) (float64, float64, bool) {
	lo, err1 := stats.Percentile(values, 100*alpha/2)
	hi, err2 := stats.Percentile(values, 100*(1-alpha/2))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lo, hi, true
}

// bcaBounds computes bias-corrected and accelerated bounds. Returns ok=false
// when the bias correction is degenerate (every replicate on one side of the
// point value) so the caller can fall back.
func bcaBounds(values []float64, value, alpha float64, jack []*float64) (*float64, *float64, bool) {
	below := 0
	for _, v := range values {
		if v < value {
			below++
		}
	}
	if below == 0 || below == len(values) {
		return nil, nil, false
	}

	normal := distuv.UnitNormal
	z0 := normal.Quantile(float64(below) / float64(len(values)))
	accel := acceleration(compact(jack))

	zLo := normal.Quantile(alpha / 2)
	zHi := normal.Quantile(1 - alpha/2)
	adjLo := normal.CDF(z0 + (z0+zLo)/(1-accel*(z0+zLo)))
	adjHi := normal.CDF(z0 + (z0+zHi)/(1-accel*(z0+zHi)))
	if !validLevel(adjLo) || !validLevel(adjHi) {
		return nil, nil, false
	}

	lo, err1 := stats.Percentile(values, 100*adjLo)
	hi, err2 := stats.Percentile(values, 100*adjHi)
	if err1 != nil || err2 != nil {
		return nil, nil, false
	}
	return &lo, &hi, true
}

// acceleration estimates the BCa acceleration constant from jackknife values.
func acceleration(jack []float64) float64 {
	if len(jack) == 0 {
		return 0
	}
	var mean float64
	for _, v := range jack {
		mean += v
	}
	mean /= float64(len(jack))

	var sum2, sum3 float64
	for _, v := range jack {
		d := mean - v
		sum2 += d * d
		sum3 += d * d * d
	}
	den := 6 * math.Pow(sum2, 1.5)
	if den == 0 {
		return 0
	}
	return sum3 / den
}

func validLevel(p float64) bool {
	return p > 0 && p < 1 && !math.IsNaN(p)
}

func compact(replicates []*float64) []float64 {
	out := make([]float64, 0, len(replicates))
	for _, r := range replicates {
		if r != nil && !math.IsNaN(*r) && !math.IsInf(*r, 0) {
			out = append(out, *r)
		}
	}
	return out
}
