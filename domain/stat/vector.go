package stat

import (
	"math"

	"aggstat/domain/table"
)

// Vector wind statistics: VL1L2 partial-sum statistics, the VCNT continuous
// statistics derived from them, and the VAL1L2 anomaly correlation.

// vl1l2Bias computes VL1L2_BIAS, the RMS speed bias.
func vl1l2Bias(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "uvffbar", "uvoobar")
	if !ok {
		return nil
	}
	f, ok1 := safeSqrt(m[0])
	o, ok2 := safeSqrt(m[1])
	if !ok1 || !ok2 {
		return nil
	}
	return finish(f - o)
}

// vl1l2ForecastVar computes VL1L2_FVAR.
func vl1l2ForecastVar(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "uvffbar", "f_speed_bar")
	if !ok {
		return nil
	}
	return finish(m[0] - m[1]*m[1])
}

// vl1l2ObsVar computes VL1L2_OVAR.
func vl1l2ObsVar(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "uvoobar", "o_speed_bar")
	if !ok {
		return nil
	}
	return finish(m[0] - m[1]*m[1])
}

// vl1l2ForecastSpeed computes VL1L2_FSPD, the speed of the mean forecast wind.
func vl1l2ForecastSpeed(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "ufbar", "vfbar")
	if !ok {
		return nil
	}
	return finish(windSpeed(m[0], m[1]))
}

// vl1l2ObsSpeed computes VL1L2_OSPD, the speed of the mean observed wind.
func vl1l2ObsSpeed(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "uobar", "vobar")
	if !ok {
		return nil
	}
	return finish(windSpeed(m[0], m[1]))
}

// vl1l2SpeedErr computes VL1L2_SPEED_ERR as FSPD - OSPD.
func vl1l2SpeedErr(t *table.Table) *float64 {
	f := vl1l2ForecastSpeed(t)
	o := vl1l2ObsSpeed(t)
	if f == nil || o == nil {
		return nil
	}
	return finish(*f - *o)
}

// vl1l2MSVE computes VL1L2_MSVE, the mean squared vector error.
func vl1l2MSVE(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "uvffbar", "uvfobar", "uvoobar")
	if !ok {
		return nil
	}
	msve := m[0] - 2.0*m[1] + m[2]
	if msve < 0 {
		return nil
	}
	return finish(msve)
}

// vl1l2RMSVE computes VL1L2_RMSVE.
func vl1l2RMSVE(t *table.Table) *float64 {
	msve := vl1l2MSVE(t)
	if msve == nil {
		return nil
	}
	s, ok := safeSqrt(*msve)
	if !ok {
		return nil
	}
	return finish(s)
}

// vcntForecastBar computes VCNT_FBAR, the mean forecast wind speed.
func vcntForecastBar(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "f_speed_bar")
	if !ok {
		return nil
	}
	return finish(m[0])
}

// vcntObsBar computes VCNT_OBAR, the mean observed wind speed.
func vcntObsBar(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "o_speed_bar")
	if !ok {
		return nil
	}
	return finish(m[0])
}

// vcntForecastRMS computes VCNT_FS_RMS.
func vcntForecastRMS(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "uvffbar")
	if !ok {
		return nil
	}
	s, ok := safeSqrt(m[0])
	if !ok {
		return nil
	}
	return finish(s)
}

// vcntObsRMS computes VCNT_OS_RMS.
func vcntObsRMS(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "uvoobar")
	if !ok {
		return nil
	}
	s, ok := safeSqrt(m[0])
	if !ok {
		return nil
	}
	return finish(s)
}

// vcntMSVE computes VCNT_MSVE, same partial sums as VL1L2_MSVE.
func vcntMSVE(t *table.Table) *float64 {
	return vl1l2MSVE(t)
}

// vcntRMSVE computes VCNT_RMSVE.
func vcntRMSVE(t *table.Table) *float64 {
	return vl1l2RMSVE(t)
}

// vcntForecastStdev computes VCNT_FSTDEV as sqrt of the forecast speed variance.
func vcntForecastStdev(t *table.Table) *float64 {
	fvar := vl1l2ForecastVar(t)
	if fvar == nil {
		return nil
	}
	s, ok := safeSqrt(*fvar)
	if !ok {
		return nil
	}
	return finish(s)
}

// vcntObsStdev computes VCNT_OSTDEV as sqrt of the observed speed variance.
func vcntObsStdev(t *table.Table) *float64 {
	ovar := vl1l2ObsVar(t)
	if ovar == nil {
		return nil
	}
	s, ok := safeSqrt(*ovar)
	if !ok {
		return nil
	}
	return finish(s)
}

// vcntForecastDir computes VCNT_FDIR, the direction of the mean forecast wind.
func vcntForecastDir(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "ufbar", "vfbar")
	if !ok {
		return nil
	}
	dir, ok := windDirection(-m[0], -m[1])
	if !ok {
		return nil
	}
	return finish(dir)
}

// vcntObsDir computes VCNT_ODIR, the direction of the mean observed wind.
func vcntObsDir(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "uobar", "vobar")
	if !ok {
		return nil
	}
	dir, ok := windDirection(-m[0], -m[1])
	if !ok {
		return nil
	}
	return finish(dir)
}

// vcntForecastBarSpeed computes VCNT_FBAR_SPEED.
func vcntForecastBarSpeed(t *table.Table) *float64 {
	return vl1l2ForecastSpeed(t)
}

// vcntObsBarSpeed computes VCNT_OBAR_SPEED.
func vcntObsBarSpeed(t *table.Table) *float64 {
	return vl1l2ObsSpeed(t)
}

// vcntVdiffSpeed computes VCNT_VDIFF_SPEED, the speed of the mean wind
// vector difference.
func vcntVdiffSpeed(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "ufbar", "uobar", "vfbar", "vobar")
	if !ok {
		return nil
	}
	return finish(windSpeed(m[0]-m[1], m[2]-m[3]))
}

// vcntVdiffDir computes VCNT_VDIFF_DIR, the direction of the mean wind
// vector difference.
func vcntVdiffDir(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "ufbar", "uobar", "vfbar", "vobar")
	if !ok {
		return nil
	}
	dir, ok := windDirection(-(m[0] - m[1]), -(m[2] - m[3]))
	if !ok {
		return nil
	}
	return finish(dir)
}

// vcntSpeedErr computes VCNT_SPEED_ERR.
func vcntSpeedErr(t *table.Table) *float64 {
	f := vcntForecastBarSpeed(t)
	o := vcntObsBarSpeed(t)
	if f == nil || o == nil {
		return nil
	}
	return finish(*f - *o)
}

// vcntSpeedAbsErr computes VCNT_SPEED_ABSERR.
func vcntSpeedAbsErr(t *table.Table) *float64 {
	err := vcntSpeedErr(t)
	if err == nil {
		return nil
	}
	return finish(math.Abs(*err))
}

// vcntDirErr computes VCNT_DIR_ERR, the signed angle between the mean
// forecast and observed wind directions.
func vcntDirErr(t *table.Table) *float64 {
	fLen := vcntForecastBarSpeed(t)
	oLen := vcntObsBarSpeed(t)
	if fLen == nil || oLen == nil || *fLen == 0 || *oLen == 0 {
		return nil
	}
	m, _, ok := columnMeans(t, "ufbar", "vfbar", "uobar", "vobar")
	if !ok {
		return nil
	}
	uf, vf := m[0] / *fLen, m[1] / *fLen
	uo, vo := m[2] / *oLen, m[3] / *oLen
	dir, ok := windDirection(vf*uo-uf*vo, uf*uo+vf*vo)
	if !ok {
		return nil
	}
	return finish(dir)
}

// vcntDirAbsErr computes VCNT_DIR_ABSERR.
func vcntDirAbsErr(t *table.Table) *float64 {
	err := vcntDirErr(t)
	if err == nil {
		return nil
	}
	return finish(math.Abs(*err))
}

// val1l2AnomCorr computes VAL1L2_ANOM_CORR, the wind anomaly correlation.
func val1l2AnomCorr(t *table.Table) *float64 {
	m, _, ok := columnMeans(t,
		"ufabar", "vfabar", "uoabar", "voabar", "uvfoabar", "uvffabar", "uvooabar")
	if !ok {
		return nil
	}
	corr, ok := windCorrelation(m[0], m[1], m[2], m[3], m[4], m[5], m[6])
	if !ok {
		return nil
	}
	return finish(corr)
}
