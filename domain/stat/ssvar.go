package stat

import (
	"aggstat/domain/table"
)

// Spread/skill variance (SSVAR) statistics. The line type carries the same
// partial sums as SL1L2 plus a var_mean column, so most entries delegate to
// the scalar formulas.

func ssvarForecastBar(t *table.Table) *float64      { return forecastBar(t) }
func ssvarObsBar(t *table.Table) *float64           { return obsBar(t) }
func ssvarForecastStdev(t *table.Table) *float64    { return forecastStdev(t) }
func ssvarObsStdev(t *table.Table) *float64         { return obsStdev(t) }
func ssvarPearsonCorr(t *table.Table) *float64      { return pearsonCorr(t) }
func ssvarAnomCorr(t *table.Table) *float64         { return anomalyCorr(t) }
func ssvarMeanError(t *table.Table) *float64        { return meanError(t) }
func ssvarMeanErrorSquared(t *table.Table) *float64 { return meanErrorSquared(t) }
func ssvarErrorStdev(t *table.Table) *float64       { return errorStdev(t) }
func ssvarMSE(t *table.Table) *float64              { return meanSquaredError(t) }
func ssvarMSESkillScore(t *table.Table) *float64    { return mseSkillScore(t) }
func ssvarBCMSE(t *table.Table) *float64            { return biasCorrectedMSE(t) }
func ssvarBCRMSE(t *table.Table) *float64           { return biasCorrectedRMSE(t) }
func ssvarRMSE(t *table.Table) *float64             { return rootMeanSquaredError(t) }

// ssvarSpread computes SSVAR_SPREAD, the square root of the mean ensemble
// variance.
func ssvarSpread(t *table.Table) *float64 {
	m, _, ok := columnMeans(t, "var_mean")
	if !ok {
		return nil
	}
	s, ok := safeSqrt(m[0])
	if !ok {
		return nil
	}
	return finish(s)
}
