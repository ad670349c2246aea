package temporal

import (
	"fmt"

	"gonum.org/v1/gonum/interp"

	"climdiag/domain/core"
	"climdiag/internal/errors"
)

// DaysPerYear is the fixed no-leap calendar of the archives.
const DaysPerYear = 365

// MidMonthAnchors returns the standard day-of-year anchor for each month's
// midpoint on the 365-day calendar.
func MidMonthAnchors() []float64 {
	daysInMonth := []float64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	anchors := make([]float64, 12)
	start := 0.0
	for m, days := range daysInMonth {
		anchors[m] = start + days/2 + 0.5
		start += days
	}
	return anchors
}

// DailyCycle converts K ordered periodic control points (day-of-year anchors
// and their values) into a 365-value daily cycle via piecewise-linear
// interpolation. The control set is periodically extended across the year
// boundary before fitting, so day 365 and day 1 agree within interpolation
// tolerance and every anchor day reproduces its control value exactly.
// Sentinel control points are dropped; fewer than two valid points is an
// error.
func DailyCycle(anchors, values []float64, missing float64) ([]float64, error) {
	if len(anchors) != len(values) {
		return nil, errors.InternalError(fmt.Sprintf(
			"%d anchors for %d control values", len(anchors), len(values)))
	}
	var xs, ys []float64
	last := 0.0
	for i, day := range anchors {
		if day <= 0 || day > DaysPerYear {
			return nil, errors.InternalError(fmt.Sprintf("anchor day %g outside 1..365", day))
		}
		if day <= last {
			return nil, errors.InternalError("anchor days must be strictly increasing")
		}
		last = day
		if core.IsMissing(values[i], missing) {
			continue
		}
		xs = append(xs, day)
		ys = append(ys, values[i])
	}
	if len(xs) < 2 {
		return nil, errors.InternalError("need at least two valid control points")
	}

	// Periodic extension: the last point wrapped before day 1, the first
	// wrapped after day 365. Interpolate over one period, then truncate.
	extX := make([]float64, 0, len(xs)+2)
	extY := make([]float64, 0, len(ys)+2)
	extX = append(extX, xs[len(xs)-1]-DaysPerYear)
	extY = append(extY, ys[len(ys)-1])
	extX = append(extX, xs...)
	extY = append(extY, ys...)
	extX = append(extX, xs[0]+DaysPerYear)
	extY = append(extY, ys[0])

	var pl interp.PiecewiseLinear
	if err := pl.Fit(extX, extY); err != nil {
		return nil, errors.Wrap(err, "fitting periodic control points")
	}

	cycle := make([]float64, DaysPerYear)
	for d := 1; d <= DaysPerYear; d++ {
		cycle[d-1] = pl.Predict(float64(d))
	}
	return cycle, nil
}
