package stat

import (
	"math"

	"aggstat/domain/table"
)

// statPrecision is the number of decimals every statistic is rounded to.
const statPrecision = 5

// Func computes a single statistic over the rows of a table. A nil result
// means a required column was missing, a value was non-finite, or the
// formula hit a numeric domain error (divide by zero, sqrt of a negative,
// log of a non-positive).
type Func func(t *table.Table) *float64

// sumColumn sums the named column across all rows. It fails when the column
// is absent or any cell is missing or non-finite, matching the all-or-nothing
// semantics of the aggregate columns.
func sumColumn(t *table.Table, name string) (float64, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return 0, false
	}
	var sum float64
	for i := 0; i < t.Len(); i++ {
		f, ok := t.Row(i)[idx].Float()
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		sum += f
	}
	return sum, true
}

// roundHalfUp rounds to statPrecision decimals, halves away from the floor.
func roundHalfUp(x float64) float64 {
	const multiplier = 1e5
	return math.Floor(x*multiplier+0.5) / multiplier
}

// finish validates and rounds a computed statistic.
func finish(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	r := roundHalfUp(x)
	return &r
}

// safeSqrt returns sqrt(x), failing on negatives.
func safeSqrt(x float64) (float64, bool) {
	if x < 0 {
		return 0, false
	}
	return math.Sqrt(x), true
}

// safeLog returns ln(x), failing on non-positives.
func safeLog(x float64) (float64, bool) {
	if x <= 0 {
		return 0, false
	}
	return math.Log(x), true
}

// sampleStddev computes a standard deviation from a sum, a sum of squares
// and a count.
func sampleStddev(sumTotal, sumSq, n float64) (float64, bool) {
	if n < 1 {
		return 0, false
	}
	v := (sumSq - sumTotal*sumTotal/n) / (n - 1)
	return safeSqrt(v)
}

// windDirection converts u/v wind components to a direction in degrees
// normalized to [0, 360). Near-zero vectors have no defined direction.
func windDirection(u, v float64) (float64, bool) {
	const tolerance = 1e-5
	if math.Abs(u) < tolerance && math.Abs(v) < tolerance {
		return 0, false
	}
	dir := math.Atan2(u, v) * 180 / math.Pi
	dir -= 360 * math.Floor(dir/360)
	return dir, true
}

// windSpeed computes the wind speed from u/v components.
func windSpeed(u, v float64) float64 {
	return math.Sqrt(u*u + v*v)
}

// windCorrelation computes the correlation between forecast and observed
// wind fields from their partial sums.
func windCorrelation(uf, vf, uo, vo, uvfo, uvff, uvoo float64) (float64, bool) {
	fs, ok := safeSqrt(uvff - uf*uf - vf*vf)
	if !ok {
		return 0, false
	}
	os, ok := safeSqrt(uvoo - uo*uo - vo*vo)
	if !ok {
		return 0, false
	}
	den := fs * os
	if den == 0 {
		return 0, false
	}
	return (uvfo - uf*uo - vf*vo) / den, true
}

// columnMeans fetches the listed columns as sums divided by the summed total
// column, plus the total itself. Fails if any column (or total) fails to sum
// or total is zero.
func columnMeans(t *table.Table, names ...string) ([]float64, float64, bool) {
	total, ok := sumColumn(t, "total")
	if !ok || total == 0 {
		return nil, 0, false
	}
	means := make([]float64, len(names))
	for i, name := range names {
		s, ok := sumColumn(t, name)
		if !ok {
			return nil, 0, false
		}
		means[i] = s / total
	}
	return means, total, true
}
