package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"climdiag/domain/core"
	"climdiag/domain/dataset"
	"climdiag/internal/errors"
)

// StatsEngine provides the shared statistical reductions of the diagnostic
// scripts: spatial averaging, climatologies, anomalies, and ensemble spread.
// Missing-value sentinels drop out of every reduction; they are never treated
// as zero.
type StatsEngine struct{}

// NewStatsEngine creates a new statistics engine
func NewStatsEngine() *StatsEngine {
	return &StatsEngine{}
}

// Box bounds a lat/lon crop region in degrees.
type Box struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// AreaWeightedAverage crops the field to the box, weights each latitude row by
// cos(latitude), normalizes weights over the valid points of the cropped box,
// and reduces over lat/lon. Returns one value per timestep; a timestep with no
// valid samples yields the field's sentinel.
func (e *StatsEngine) AreaWeightedAverage(f *core.Field, box Box) ([]float64, error) {
	var latIdx, lonIdx []int
	for j, lat := range f.Lats {
		if lat >= box.LatMin && lat <= box.LatMax {
			latIdx = append(latIdx, j)
		}
	}
	for i, lon := range f.Lons {
		if lon >= box.LonMin && lon <= box.LonMax {
			lonIdx = append(lonIdx, i)
		}
	}
	if len(latIdx) == 0 || len(lonIdx) == 0 {
		return nil, errors.EmptyRegion(fmt.Sprintf(
			"no grid points in box lat [%g, %g] lon [%g, %g]",
			box.LatMin, box.LatMax, box.LonMin, box.LonMax))
	}

	series := make([]float64, len(f.Steps))
	for t := range f.Steps {
		sum := 0.0
		weightSum := 0.0
		for _, j := range latIdx {
			w := math.Cos(f.Lats[j] * math.Pi / 180)
			for _, i := range lonIdx {
				v := f.At(t, j, i)
				if core.IsMissing(v, f.Missing) {
					continue
				}
				sum += w * v
				weightSum += w
			}
		}
		if weightSum == 0 {
			series[t] = f.Missing
			continue
		}
		series[t] = sum / weightSum
	}
	return series, nil
}

// MonthlyClimatology averages a monthly series per calendar month across the
// year range. Sentinel samples are excluded from both sum and count; a month
// with zero valid samples yields the sentinel, never zero.
func (e *StatsEngine) MonthlyClimatology(series []float64, steps []core.TimeStep, startYear, endYear int, missing float64) ([]float64, error) {
	if len(series) != len(steps) {
		return nil, errors.InternalError(fmt.Sprintf(
			"series length %d does not match %d timesteps", len(series), len(steps)))
	}
	sums := make([]float64, 12)
	counts := make([]int, 12)
	for t, step := range steps {
		if step.Year < startYear || step.Year > endYear {
			continue
		}
		if core.IsMissing(series[t], missing) {
			continue
		}
		m := int(step.Month) - 1
		sums[m] += series[t]
		counts[m]++
	}
	clim := make([]float64, 12)
	for m := range clim {
		if counts[m] == 0 {
			clim[m] = missing
			continue
		}
		clim[m] = sums[m] / float64(counts[m])
	}
	return clim, nil
}

// Anomaly subtracts the climatology's own mean over its valid entries. The
// baseline is per-dataset: each model is assessed against its own annual mean.
func (e *StatsEngine) Anomaly(clim []float64, missing float64) []float64 {
	sum := 0.0
	count := 0
	for _, v := range clim {
		if core.IsMissing(v, missing) {
			continue
		}
		sum += v
		count++
	}
	anom := make([]float64, len(clim))
	if count == 0 {
		for i := range anom {
			anom[i] = missing
		}
		return anom
	}
	mean := sum / float64(count)
	for i, v := range clim {
		if core.IsMissing(v, missing) {
			anom[i] = missing
			continue
		}
		anom[i] = v - mean
	}
	return anom
}

// WeightedStdDev computes the weighted population standard deviation of
// values. Every weight must be positive and the slices equal length; sentinel
// samples drop out together with their weights. All samples missing yields
// the sentinel.
func (e *StatsEngine) WeightedStdDev(values, weights []float64, missing float64) (float64, error) {
	if len(values) != len(weights) {
		return 0, errors.InvalidWeights(fmt.Sprintf(
			"%d weights for %d values", len(weights), len(values)))
	}
	for _, w := range weights {
		if w <= 0 {
			return 0, errors.InvalidWeights(fmt.Sprintf("non-positive weight %g", w))
		}
	}
	var vals, ws []float64
	for i, v := range values {
		if core.IsMissing(v, missing) {
			continue
		}
		vals = append(vals, v)
		ws = append(ws, weights[i])
	}
	if len(vals) == 0 {
		return missing, nil
	}
	mean := stat.Mean(vals, ws)
	sumSq := 0.0
	wSum := 0.0
	for i, v := range vals {
		d := v - mean
		sumSq += ws[i] * d * d
		wSum += ws[i]
	}
	return math.Sqrt(sumSq / wSum), nil
}

// SeasonalMean reduces a 12-month climatology over a season, weighting each
// month by its day count.
func (e *StatsEngine) SeasonalMean(clim []float64, season dataset.Season, missing float64) (float64, error) {
	if len(clim) != 12 {
		return 0, errors.InternalError(fmt.Sprintf("climatology has %d months", len(clim)))
	}
	dayWeights := season.DayWeights()
	var vals, ws []float64
	for i, m := range season.Months {
		v := clim[int(m)-1]
		if core.IsMissing(v, missing) {
			continue
		}
		vals = append(vals, v)
		ws = append(ws, dayWeights[i])
	}
	if len(vals) == 0 {
		return missing, nil
	}
	return stat.Mean(vals, ws), nil
}
