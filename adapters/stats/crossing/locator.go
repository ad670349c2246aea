package crossing

import (
	"fmt"
	"math"

	"climdiag/domain/core"
	"climdiag/internal/errors"
)

// Locate finds, per timestep, the physical coordinate of the level where the
// condition value ≥ threshold first holds, taking the satisfying index with
// minimum coordinate magnitude. A timestep with no satisfying index yields
// the profile's sentinel — never zero, never extrapolated.
func Locate(p *core.Profile, threshold float64) []float64 {
	coords := make([]float64, len(p.Values))
	for t, column := range p.Values {
		coords[t] = locateStep(column, p.Levels, threshold, p.Missing)
	}
	return coords
}

func locateStep(column, levels []float64, threshold, missing float64) float64 {
	found := false
	best := 0.0
	for k, v := range column {
		if k >= len(levels) || core.IsMissing(v, missing) || v < threshold {
			continue
		}
		if !found || math.Abs(levels[k]) < math.Abs(best) {
			best = levels[k]
			found = true
		}
	}
	if !found {
		return missing
	}
	return best
}

// Envelope brackets the reference dataset's crossing coordinate with the
// crossings of value ± its own per-timestep uncertainty. Cross-model spread
// plays no part here.
func Envelope(p *core.Profile, uncertainty [][]float64, threshold float64) (*core.EnsembleEnvelope, error) {
	if len(uncertainty) != len(p.Values) {
		return nil, errors.InternalError(fmt.Sprintf(
			"uncertainty has %d timesteps, profile has %d", len(uncertainty), len(p.Values)))
	}
	for t, column := range p.Values {
		if len(uncertainty[t]) != len(column) {
			return nil, errors.InternalError(fmt.Sprintf(
				"timestep %d: uncertainty has %d levels, profile has %d", t, len(uncertainty[t]), len(column)))
		}
	}

	shifted := func(sign float64) *core.Profile {
		values := make([][]float64, len(p.Values))
		for t, column := range p.Values {
			row := make([]float64, len(column))
			for k, v := range column {
				if core.IsMissing(v, p.Missing) || core.IsMissing(uncertainty[t][k], p.Missing) {
					row[k] = p.Missing
					continue
				}
				row[k] = v + sign*uncertainty[t][k]
			}
			values[t] = row
		}
		return &core.Profile{Steps: p.Steps, Levels: p.Levels, Values: values, Units: p.Units, Missing: p.Missing}
	}

	return &core.EnsembleEnvelope{
		Center:  Locate(p, threshold),
		Upper:   Locate(shifted(+1), threshold),
		Lower:   Locate(shifted(-1), threshold),
		Missing: p.Missing,
	}, nil
}
