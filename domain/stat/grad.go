package stat

import (
	"aggstat/domain/table"
)

// Gradient (GRAD) statistics over forecast/observed gradient partial sums.

// forecastGradBar computes FGBAR, the mean absolute forecast gradient.
func forecastGradBar(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "fgbar")
	if !ok {
		return nil
	}
	return finish(m[0])
}

// obsGradBar computes OGBAR, the mean absolute observed gradient.
func obsGradBar(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "ogbar")
	if !ok {
		return nil
	}
	return finish(m[0])
}

// maxGradBar computes MGBAR, the mean of the pointwise maximum gradient.
func maxGradBar(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "mgbar")
	if !ok {
		return nil
	}
	return finish(m[0])
}

// errGradBar computes EGBAR, the mean absolute gradient error.
func errGradBar(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "egbar")
	if !ok {
		return nil
	}
	return finish(m[0])
}

// s1Score computes S1, scaled gradient error against the max gradient.
func s1Score(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "egbar", "mgbar")
	if !ok || m[1] == 0 {
		return nil
	}
	return finish(100 * m[0] / m[1])
}

// s1ObsGradScore computes S1_OG, gradient error against the observed gradient.
func s1ObsGradScore(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "egbar", "ogbar")
	if !ok || m[1] == 0 {
		return nil
	}
	return finish(100 * m[0] / m[1])
}

// gradRatio computes FGOG_RATIO, forecast over observed gradient, percent.
func gradRatio(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "fgbar", "ogbar")
	if !ok || m[1] == 0 {
		return nil
	}
	return finish(100 * m[0] / m[1])
}
