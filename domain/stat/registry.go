package stat

import (
	"sort"
	"strings"
)

// Registry maps statistic names to their calculation functions. Names are
// case-insensitive; the canonical form is lower case.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry builds the full statistic catalog.
func NewRegistry() *Registry {
	r := &Registry{funcs: map[string]Func{
		// contingency table
		"baser": baseRate,
		"acc":   accuracy,
		"fbias": frequencyBias,
		"fmean": forecastMean,
		"pody":  probDetectYes,
		"pofd":  probFalseDetect,
		"podn":  probDetectNo,
		"far":   falseAlarmRatio,
		"csi":   criticalSuccess,
		"gss":   gilbertSkill,
		"hk":    hanssenKuipers,
		"hss":   heidkeSkill,
		"odds":  oddsRatio,
		"lodds": logOddsRatio,
		"bagss": biasAdjustedGilbert,

		// scalar partial sums
		"fbar":      forecastBar,
		"obar":      obsBar,
		"fstdev":    forecastStdev,
		"ostdev":    obsStdev,
		"fobar":     forecastObsBar,
		"ffbar":     forecastSquareBar,
		"oobar":     obsSquareBar,
		"mae":       meanAbsError,
		"mbias":     multiplicativeBias,
		"pr_corr":   pearsonCorr,
		"corr":      pearsonCorr,
		"anom_corr": anomalyCorr,
		"rmsfa":     rmsForecastAnomaly,
		"rmsoa":     rmsObsAnomaly,
		"me":        meanError,
		"me2":       meanErrorSquared,
		"mse":       meanSquaredError,
		"msess":     mseSkillScore,
		"rmse":      rootMeanSquaredError,
		"estdev":    errorStdev,
		"bcmse":     biasCorrectedMSE,
		"bcrmse":    biasCorrectedRMSE,

		// gradient
		"fgbar":      forecastGradBar,
		"ogbar":      obsGradBar,
		"mgbar":      maxGradBar,
		"egbar":      errGradBar,
		"s1":         s1Score,
		"s1_og":      s1ObsGradScore,
		"fgog_ratio": gradRatio,

		// vector partial sums
		"vl1l2_bias":      vl1l2Bias,
		"vl1l2_fvar":      vl1l2ForecastVar,
		"vl1l2_ovar":      vl1l2ObsVar,
		"vl1l2_fspd":      vl1l2ForecastSpeed,
		"vl1l2_ospd":      vl1l2ObsSpeed,
		"vl1l2_speed_err": vl1l2SpeedErr,
		"vl1l2_msve":      vl1l2MSVE,
		"vl1l2_rmsve":     vl1l2RMSVE,

		// vector continuous
		"vcnt_fbar":         vcntForecastBar,
		"vcnt_obar":         vcntObsBar,
		"vcnt_fs_rms":       vcntForecastRMS,
		"vcnt_os_rms":       vcntObsRMS,
		"vcnt_msve":         vcntMSVE,
		"vcnt_rmsve":        vcntRMSVE,
		"vcnt_fstdev":       vcntForecastStdev,
		"vcnt_ostdev":       vcntObsStdev,
		"vcnt_fdir":         vcntForecastDir,
		"vcnt_odir":         vcntObsDir,
		"vcnt_fbar_speed":   vcntForecastBarSpeed,
		"vcnt_obar_speed":   vcntObsBarSpeed,
		"vcnt_vdiff_speed":  vcntVdiffSpeed,
		"vcnt_vdiff_dir":    vcntVdiffDir,
		"vcnt_speed_err":    vcntSpeedErr,
		"vcnt_speed_abserr": vcntSpeedAbsErr,
		"vcnt_dir_err":      vcntDirErr,
		"vcnt_dir_abserr":   vcntDirAbsErr,

		// vector anomaly partial sums
		"val1l2_anom_corr": val1l2AnomCorr,

		// spread/skill variance
		"ssvar_fbar":      ssvarForecastBar,
		"ssvar_obar":      ssvarObsBar,
		"ssvar_fstdev":    ssvarForecastStdev,
		"ssvar_ostdev":    ssvarObsStdev,
		"ssvar_pr_corr":   ssvarPearsonCorr,
		"ssvar_anom_corr": ssvarAnomCorr,
		"ssvar_me":        ssvarMeanError,
		"ssvar_me2":       ssvarMeanErrorSquared,
		"ssvar_estdev":    ssvarErrorStdev,
		"ssvar_mse":       ssvarMSE,
		"ssvar_msess":     ssvarMSESkillScore,
		"ssvar_bcmse":     ssvarBCMSE,
		"ssvar_bcrmse":    ssvarBCRMSE,
		"ssvar_rmse":      ssvarRMSE,
		"ssvar_spread":    ssvarSpread,
	}}
	return r
}

// Lookup returns the calculation function for a statistic name.
func (r *Registry) Lookup(name string) (Func, bool) {
	f, ok := r.funcs[strings.ToLower(name)]
	return f, ok
}

// Has reports whether the statistic is in the catalog.
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[strings.ToLower(name)]
	return ok
}

// Names returns every registered statistic name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// scaleColumns lists, per scalar partial-sum statistic, the columns that hold
// per-record means and must be multiplied by the record's total before
// aggregation. Only consulted for the sl1l2 and sal1l2 line types; count
// based line types carry raw counts and need no scaling.
var scaleColumns = map[string][]string{
	"fbar":      {"fbar"},
	"obar":      {"obar"},
	"fstdev":    {"fbar", "ffbar"},
	"ostdev":    {"obar", "oobar"},
	"fobar":     {"fobar"},
	"ffbar":     {"ffbar"},
	"oobar":     {"oobar"},
	"mae":       {"mae"},
	"mbias":     {"obar", "fbar"},
	"pr_corr":   {"ffbar", "fbar", "oobar", "obar", "fobar"},
	"corr":      {"ffbar", "fbar", "oobar", "obar", "fobar"},
	"anom_corr": {"ffbar", "fbar", "oobar", "obar", "fobar"},
	"rmsfa":     {"ffbar"},
	"rmsoa":     {"oobar"},
	"me":        {"fbar", "obar"},
	"me2":       {"fbar", "obar"},
	"mse":       {"ffbar", "oobar", "fobar"},
	"msess":     {"ffbar", "oobar", "fobar", "obar"},
	"rmse":      {"ffbar", "oobar", "fobar"},
	"estdev":    {"ffbar", "oobar", "fobar", "fbar", "obar"},
	"bcmse":     {"ffbar", "oobar", "fobar", "fbar", "obar"},
	"bcrmse":    {"ffbar", "oobar", "fobar", "fbar", "obar"},
}

// ScaleColumns returns the columns a statistic needs pre-multiplied by total,
// or nil when the statistic operates on raw sums.
func ScaleColumns(statistic string) []string {
	return scaleColumns[strings.ToLower(statistic)]
}

// exemptedStats are spread/skill names allowed to repeat across the series
// pair of a derived curve.
var exemptedStats = map[string]struct{}{
	"ssvar_spread": {},
	"ssvar_rmse":   {},
}

// ExemptFromUniqueness reports whether a statistic may appear more than once
// per case when validating the operands of a derived series.
func ExemptFromUniqueness(statistic string) bool {
	_, ok := exemptedStats[strings.ToLower(statistic)]
	return ok
}
