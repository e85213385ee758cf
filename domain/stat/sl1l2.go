package stat

import (
	"aggstat/domain/table"
)

// Scalar partial-sum (SL1L2) statistics. Input columns hold per-record means
// (fbar, obar, ffbar, oobar, fobar, mae) that the orchestrator scales by each
// record's total before these run, so column sums divided by the summed
// total recover the pooled means.

// forecastBar computes FBAR, the pooled forecast mean.
func forecastBar(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "fbar")
	if !ok {
		return nil
	}
	return finish(m[0])
}

// obsBar computes OBAR, the pooled observation mean.
func obsBar(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "obar")
	if !ok {
		return nil
	}
	return finish(m[0])
}

// forecastStdev computes FSTDEV.
func forecastStdev(t *table.Table) *float64 {
	m, total, ok := columnMeans(t, "fbar", "ffbar")
	if !ok {
		return nil
	}
	sd, ok := sampleStddev(m[0]*total, m[1]*total, total)
	if !ok {
		return nil
	}
	return finish(sd)
}

// obsStdev computes OSTDEV.
func obsStdev(t *table.Table) *float64 {
	m, total, ok := columnMeans(t, "obar", "oobar")
	if !ok {
		return nil
	}
	sd, ok := sampleStddev(m[0]*total, m[1]*total, total)
	if !ok {
		return nil
	}
	return finish(sd)
}

// forecastObsBar computes FOBAR, the pooled mean forecast*observation product.
func forecastObsBar(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "fobar")
	if !ok {
		return nil
	}
	return finish(m[0])
}

// forecastSquareBar computes FFBAR.
func forecastSquareBar(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "ffbar")
	if !ok {
		return nil
	}
	return finish(m[0])
}

// obsSquareBar computes OOBAR.
func obsSquareBar(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "oobar")
	if !ok {
		return nil
	}
	return finish(m[0])
}

// meanAbsError computes MAE.
func meanAbsError(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "mae")
	if !ok {
		return nil
	}
	return finish(m[0])
}

// multiplicativeBias computes MBIAS as FBAR/OBAR.
func multiplicativeBias(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "obar", "fbar")
	if !ok || m[0] == 0 {
		return nil
	}
	return finish(m[1] / m[0])
}

// pearsonCorr computes PR_CORR from the partial sums.
func pearsonCorr(t *table.Table) *float64 {
	m, total, ok := columnMeans(t, "ffbar", "fbar", "oobar", "obar", "fobar")
	if !ok {
		return nil
	}
	ffbar, fbar, oobar, obar, fobar := m[0], m[1], m[2], m[3], m[4]
	t2 := total * total
	v := (t2*ffbar - t2*fbar*fbar) * (t2*oobar - t2*obar*obar)
	if v <= 0 {
		return nil
	}
	corr := (t2*fobar - t2*fbar*obar) / (sqrtOf(v))
	if corr > 1 {
		return nil
	}
	return finish(corr)
}

// anomalyCorr computes ANOM_CORR. The partial sums are anomalies (value
// minus climatology), so the formula matches PR_CORR.
func anomalyCorr(t *table.Table) *float64 {
	return pearsonCorr(t)
}

// rmsForecastAnomaly computes RMSFA.
func rmsForecastAnomaly(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "ffbar")
	if !ok {
		return nil
	}
	s, ok := safeSqrt(m[0])
	if !ok {
		return nil
	}
	return finish(s)
}

// rmsObsAnomaly computes RMSOA.
func rmsObsAnomaly(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "oobar")
	if !ok {
		return nil
	}
	s, ok := safeSqrt(m[0])
	if !ok {
		return nil
	}
	return finish(s)
}

// meanError computes ME, the additive bias FBAR - OBAR.
func meanError(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "fbar", "obar")
	if !ok {
		return nil
	}
	return finish(m[0] - m[1])
}

// meanErrorSquared computes ME2 as the square of ME.
func meanErrorSquared(t *table.Table) *float64 {
	me := meanError(t)
	if me == nil {
		return nil
	}
	return finish(*me * *me)
}

// meanSquaredError computes MSE.
func meanSquaredError(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "ffbar", "oobar", "fobar")
	if !ok {
		return nil
	}
	return finish(m[0] + m[1] - 2*m[2])
}

// mseSkillScore computes MSESS against the observation variance.
func mseSkillScore(t *table.Table) *float64 {
	ostdev := obsStdev(t)
	mse := meanSquaredError(t)
	if ostdev == nil || mse == nil || *ostdev == 0 {
		return nil
	}
	return finish(1.0 - *mse/(*ostdev**ostdev))
}

// rootMeanSquaredError computes RMSE.
func rootMeanSquaredError(t *table.Table) *float64 {
	mse := meanSquaredError(t)
	if mse == nil {
		return nil
	}
	s, ok := safeSqrt(*mse)
	if !ok {
		return nil
	}
	return finish(s)
}

// errorStdev computes ESTDEV, the standard deviation of the error.
func errorStdev(t *table.Table) *float64 {
	total, ok := sumColumn(t, "total")
	if !ok || total == 0 {
		return nil
	}
	me := meanError(t)
	mse := meanSquaredError(t)
	if me == nil || mse == nil {
		return nil
	}
	sd, ok := sampleStddev(*me*total, *mse*total, total)
	if !ok {
		return nil
	}
	return finish(sd)
}

// biasCorrectedMSE computes BCMSE as MSE - ME^2.
func biasCorrectedMSE(t *table.Table) *float64 {
	mse := meanSquaredError(t)
	me := meanError(t)
	if mse == nil || me == nil {
		return nil
	}
	return finish(*mse - *me**me)
}

// biasCorrectedRMSE computes BCRMSE.
func biasCorrectedRMSE(t *table.Table) *float64 {
	bcmse := biasCorrectedMSE(t)
	if bcmse == nil {
		return nil
	}
	s, ok := safeSqrt(*bcmse)
	if !ok {
		return nil
	}
	return finish(s)
}

func sqrtOf(x float64) float64 {
	s, _ := safeSqrt(x)
	return s
}
