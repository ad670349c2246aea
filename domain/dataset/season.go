package dataset

import (
	"strings"
	"time"

	"climdiag/internal/errors"
)

// monthAlphabet is the calendar year spelled as month initials, doubled so a
// season that wraps the year end (DJF, NDJFM) still matches contiguously.
const monthAlphabet = "JFMAMJJASONDJFMAMJJASOND"

// daysInMonth uses the fixed 365-day calendar of the archives (no leap days).
var daysInMonth = [12]float64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Season is an ordered subset of calendar months, e.g. JJAS.
type Season struct {
	Name   string
	Months []time.Month
}

// ParseSeason resolves a season string like "JJAS" or "DJF" to its ordered
// month list. The string must be a contiguous run in the calendar; a run
// crossing the year boundary is allowed.
func ParseSeason(s string) (Season, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return Season{}, errors.ConfigError("season is empty")
	}
	if len(name) > 12 {
		return Season{}, errors.ConfigError("season " + name + " longer than a year")
	}
	// Only match starts within the first calendar year of the doubled alphabet.
	for start := 0; start < 12; start++ {
		if monthAlphabet[start:start+len(name)] != name {
			continue
		}
		months := make([]time.Month, len(name))
		for i := range name {
			months[i] = time.Month((start+i)%12 + 1)
		}
		return Season{Name: name, Months: months}, nil
	}
	return Season{}, errors.ConfigError("season " + name + " is not a contiguous month run")
}

// Contains reports whether m falls inside the season.
func (s Season) Contains(m time.Month) bool {
	for _, sm := range s.Months {
		if sm == m {
			return true
		}
	}
	return false
}

// DayWeights returns the days-in-month weight for each month of the season,
// in season order. Used for length-weighted seasonal statistics.
func (s Season) DayWeights() []float64 {
	weights := make([]float64, len(s.Months))
	for i, m := range s.Months {
		weights[i] = daysInMonth[int(m)-1]
	}
	return weights
}
