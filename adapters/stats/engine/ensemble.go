package engine

import (
	"fmt"

	mstats "github.com/montanaflynn/stats"

	"climdiag/domain/core"
	"climdiag/internal/errors"
)

// EnsembleSpread computes the per-timestep population standard deviation
// across members, skipping the excluded indices (reference/observational
// datasets — spread characterizes model disagreement only). A timestep with
// fewer than two valid member samples yields the sentinel.
func (e *StatsEngine) EnsembleSpread(members [][]float64, exclude []int, missing float64) ([]float64, error) {
	if len(members) == 0 {
		return nil, errors.InternalError("ensemble spread of zero members")
	}
	excluded := make(map[int]bool, len(exclude))
	for _, idx := range exclude {
		excluded[idx] = true
	}
	n := len(members[0])
	for k, m := range members {
		if len(m) != n {
			return nil, errors.InternalError(fmt.Sprintf(
				"member %d has %d timesteps, expected %d", k, len(m), n))
		}
	}

	spread := make([]float64, n)
	sample := make([]float64, 0, len(members))
	for t := 0; t < n; t++ {
		sample = sample[:0]
		for k, m := range members {
			if excluded[k] || core.IsMissing(m[t], missing) {
				continue
			}
			sample = append(sample, m[t])
		}
		if len(sample) < 2 {
			spread[t] = missing
			continue
		}
		sd, err := mstats.StandardDeviationPopulation(sample)
		if err != nil {
			return nil, errors.Wrap(err, "ensemble spread")
		}
		spread[t] = sd
	}
	return spread, nil
}

// MultiModelMean builds the synthetic averaged member from the non-excluded
// model members, per timestep. All members missing at a timestep yields the
// sentinel.
func (e *StatsEngine) MultiModelMean(members [][]float64, exclude []int, missing float64) ([]float64, error) {
	if len(members) == 0 {
		return nil, errors.InternalError("multi-model mean of zero members")
	}
	excluded := make(map[int]bool, len(exclude))
	for _, idx := range exclude {
		excluded[idx] = true
	}
	n := len(members[0])
	mean := make([]float64, n)
	for t := 0; t < n; t++ {
		sum := 0.0
		count := 0
		for k, m := range members {
			if excluded[k] || t >= len(m) || core.IsMissing(m[t], missing) {
				continue
			}
			sum += m[t]
			count++
		}
		if count == 0 {
			mean[t] = missing
			continue
		}
		mean[t] = sum / float64(count)
	}
	return mean, nil
}
