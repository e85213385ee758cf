package stat

import (
	"math"

	"aggstat/domain/table"
)

// Contingency-table (CTC) statistics. All operate on the summed fy_oy,
// fy_on, fn_oy, fn_on and total counts.

// baseRate computes BASER, the observed relative frequency.
func baseRate(t *table.Table) *float64 {
	fyOy, ok1 := sumColumn(t, "fy_oy")
	fnOy, ok2 := sumColumn(t, "fn_oy")
	total, ok3 := sumColumn(t, "total")
	if !ok1 || !ok2 || !ok3 || total == 0 {
		return nil
	}
	return finish((fyOy + fnOy) / total)
}

// accuracy computes ACC, the fraction of correct yes and no forecasts.
func accuracy(t *table.Table) *float64 {
	fyOy, ok1 := sumColumn(t, "fy_oy")
	fnOn, ok2 := sumColumn(t, "fn_on")
	total, ok3 := sumColumn(t, "total")
	if !ok1 || !ok2 || !ok3 || total == 0 {
		return nil
	}
	return finish((fyOy + fnOn) / total)
}

// frequencyBias computes FBIAS, forecast frequency over observed frequency.
func frequencyBias(t *table.Table) *float64 {
	fyOy, ok1 := sumColumn(t, "fy_oy")
	fnOy, ok2 := sumColumn(t, "fn_oy")
	fyOn, ok3 := sumColumn(t, "fy_on")
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	oy := fyOy + fnOy
	if oy == 0 {
		return nil
	}
	return finish((fyOy + fyOn) / oy)
}

// forecastMean computes FMEAN, the forecast yes rate.
func forecastMean(t *table.Table) *float64 {
	fyOy, ok1 := sumColumn(t, "fy_oy")
	fyOn, ok2 := sumColumn(t, "fy_on")
	total, ok3 := sumColumn(t, "total")
	if !ok1 || !ok2 || !ok3 || total == 0 {
		return nil
	}
	return finish((fyOy + fyOn) / total)
}

// probDetectYes computes PODY, the probability of detecting yes.
func probDetectYes(t *table.Table) *float64 {
	fyOy, ok1 := sumColumn(t, "fy_oy")
	fnOy, ok2 := sumColumn(t, "fn_oy")
	if !ok1 || !ok2 || fyOy+fnOy == 0 {
		return nil
	}
	return finish(fyOy / (fyOy + fnOy))
}

// probFalseDetect computes POFD, the probability of false detection.
func probFalseDetect(t *table.Table) *float64 {
	fyOn, ok1 := sumColumn(t, "fy_on")
	fnOn, ok2 := sumColumn(t, "fn_on")
	if !ok1 || !ok2 || fyOn+fnOn == 0 {
		return nil
	}
	return finish(fyOn / (fyOn + fnOn))
}

// probDetectNo computes PODN, the probability of detecting no.
func probDetectNo(t *table.Table) *float64 {
	fnOn, ok1 := sumColumn(t, "fn_on")
	fyOn, ok2 := sumColumn(t, "fy_on")
	if !ok1 || !ok2 || fyOn+fnOn == 0 {
		return nil
	}
	return finish(fnOn / (fyOn + fnOn))
}

// falseAlarmRatio computes FAR.
func falseAlarmRatio(t *table.Table) *float64 {
	fyOn, ok1 := sumColumn(t, "fy_on")
	fyOy, ok2 := sumColumn(t, "fy_oy")
	if !ok1 || !ok2 || fyOy+fyOn == 0 {
		return nil
	}
	return finish(fyOn / (fyOy + fyOn))
}

// criticalSuccess computes CSI, aka threat score.
func criticalSuccess(t *table.Table) *float64 {
	fyOy, ok1 := sumColumn(t, "fy_oy")
	fyOn, ok2 := sumColumn(t, "fy_on")
	fnOy, ok3 := sumColumn(t, "fn_oy")
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	den := fyOy + fyOn + fnOy
	if den == 0 {
		return nil
	}
	return finish(fyOy / den)
}

// gilbertSkill computes GSS, aka equitable threat score.
func gilbertSkill(t *table.Table) *float64 {
	total, ok := sumColumn(t, "total")
	if !ok || total == 0 {
		return nil
	}
	fyOy, ok1 := sumColumn(t, "fy_oy")
	fyOn, ok2 := sumColumn(t, "fy_on")
	fnOy, ok3 := sumColumn(t, "fn_oy")
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	chance := ((fyOy + fyOn) / total) * (fyOy + fnOy)
	den := fyOy + fyOn + fnOy - chance
	if den == 0 {
		return nil
	}
	return finish((fyOy - chance) / den)
}

// hanssenKuipers computes HK as PODY - POFD.
func hanssenKuipers(t *table.Table) *float64 {
	pody := probDetectYes(t)
	pofd := probFalseDetect(t)
	if pody == nil || pofd == nil {
		return nil
	}
	return finish(*pody - *pofd)
}

// heidkeSkill computes HSS.
func heidkeSkill(t *table.Table) *float64 {
	total, ok := sumColumn(t, "total")
	if !ok || total == 0 {
		return nil
	}
	fyOy, ok1 := sumColumn(t, "fy_oy")
	fyOn, ok2 := sumColumn(t, "fy_on")
	fnOy, ok3 := sumColumn(t, "fn_oy")
	fnOn, ok4 := sumColumn(t, "fn_on")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}
	chance := ((fyOy + fyOn) / total) * (fyOy + fnOy)
	if total == chance {
		return nil
	}
	return finish((fyOy + fnOn - chance) / (total - chance))
}

// oddsRatio computes ODDS from PODY and POFD.
func oddsRatio(t *table.Table) *float64 {
	pody := probDetectYes(t)
	pofd := probFalseDetect(t)
	if pody == nil || pofd == nil {
		return nil
	}
	den := *pofd * (1 - *pody)
	if den == 0 {
		return nil
	}
	return finish((*pody * (1 - *pofd)) / den)
}

// logOddsRatio computes LODDS.
func logOddsRatio(t *table.Table) *float64 {
	fyOy, ok1 := sumColumn(t, "fy_oy")
	fyOn, ok2 := sumColumn(t, "fy_on")
	fnOy, ok3 := sumColumn(t, "fn_oy")
	fnOn, ok4 := sumColumn(t, "fn_on")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}
	a, ok1 := safeLog(fyOy)
	b, ok2 := safeLog(fnOn)
	c, ok3 := safeLog(fyOn)
	d, ok4 := safeLog(fnOy)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}
	return finish(a + b - c - d)
}

// biasAdjustedGilbert computes BAGSS, the bias-corrected Gilbert skill
// score. The hit-rate adjustment solves for the contingency table a
// bias-free forecast would have produced, via the Lambert W function.
func biasAdjustedGilbert(t *table.Table) *float64 {
	fyOy, ok1 := sumColumn(t, "fy_oy")
	fnOy, ok2 := sumColumn(t, "fn_oy")
	total, ok3 := sumColumn(t, "total")
	fyOn, ok4 := sumColumn(t, "fy_on")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil
	}
	if fyOy == 0 || fnOy == 0 || total == 0 || fyOn == 0 {
		return nil
	}
	obs := fyOy + fnOy
	lf, ok := safeLog(obs / fnOy)
	if !ok || lf == 0 {
		return nil
	}
	w, ok := lambertW(obs / fyOn * lf)
	if !ok {
		return nil
	}
	ha := obs - (fyOn/lf)*w
	chance := obs * obs / total
	den := 2*obs - ha - chance
	if den == 0 {
		return nil
	}
	return finish((ha - chance) / den)
}

// lambertW evaluates the principal branch of the Lambert W function by
// Halley iteration. Valid for x >= -1/e.
func lambertW(x float64) (float64, bool) {
	if x < -1/math.E || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	// Initial guess: log-based for large x, series-based near zero.
	var w float64
	if x > math.E {
		l := math.Log(x)
		w = l - math.Log(l)
	} else if x > 0 {
		w = x / math.E
	} else {
		w = x
	}
	for i := 0; i < 64; i++ {
		ew := math.Exp(w)
		f := w*ew - x
		den := ew*(w+1) - (w+2)*f/(2*w+2)
		if den == 0 {
			return 0, false
		}
		next := w - f/den
		if math.Abs(next-w) < 1e-12*(1+math.Abs(next)) {
			return next, true
		}
		w = next
	}
	return w, true
}

// economicValue computes the cost/loss value curve for a contingency table
// summary (fy_oy, fy_on, fn_oy, fn_on) over the given cost/loss ratios.
// It backs the ECLV line type, which produces a curve rather than a single
// scalar and is therefore not registered as an aggregation statistic.
func economicValue(counts [4]float64, costLossRatios []float64) (values []float64, vmax float64, ok bool) {
	a, b, c, d := counts[0], counts[1], counts[2], counts[3]
	n := a + b + c + d
	if n == 0 || b+d == 0 || a+c == 0 {
		return nil, 0, false
	}
	f := b / (b + d)
	h := a / (a + c)
	s := (a + c) / n
	if s == 0 || s == 1 {
		return nil, 0, false
	}

	ratios := append(append([]float64{}, costLossRatios...), s)
	values = make([]float64, len(ratios))
	for i, cl := range ratios {
		if cl <= 0 || cl >= 1 {
			return nil, 0, false
		}
		if cl < s {
			values[i] = (1 - f) - s/(1-s)*(1-cl)/cl*(1-h)
		} else {
			values[i] = h - (1-s)/s*cl/(1-cl)*f
		}
	}
	return values, h - f, true
}
