package testkit

import (
	"context"
	"fmt"
	"math"
	"time"

	"climdiag/domain/core"
	"climdiag/domain/dataset"
	"climdiag/internal/errors"
	"climdiag/ports"
)

// Testkit builds synthetic fields and an in-memory DatasetReader so pipeline
// and statistics tests run without any file archive.

// MonthlySteps enumerates every (year, month) sample in the range.
func MonthlySteps(startYear, endYear int) []core.TimeStep {
	var steps []core.TimeStep
	for y := startYear; y <= endYear; y++ {
		for m := time.January; m <= time.December; m++ {
			steps = append(steps, core.TimeStep{Year: y, Month: m})
		}
	}
	return steps
}

// LatGrid returns n latitude centers spanning the globe.
func LatGrid(n int) []float64 {
	lats := make([]float64, n)
	step := 180.0 / float64(n)
	for j := range lats {
		lats[j] = -90 + step*(float64(j)+0.5)
	}
	return lats
}

// LonGrid returns n longitude centers on [0, 360).
func LonGrid(n int) []float64 {
	lons := make([]float64, n)
	step := 360.0 / float64(n)
	for i := range lons {
		lons[i] = step * float64(i)
	}
	return lons
}

// FieldFromFunc fills a field by evaluating f(t, lat, lon) at every sample.
func FieldFromFunc(startYear, endYear, nLat, nLon int, f func(t int, lat, lon float64) float64) *core.Field {
	steps := MonthlySteps(startYear, endYear)
	lats := LatGrid(nLat)
	lons := LonGrid(nLon)
	values := make([]float64, 0, len(steps)*nLat*nLon)
	for t := range steps {
		for _, lat := range lats {
			for _, lon := range lons {
				values = append(values, f(t, lat, lon))
			}
		}
	}
	return &core.Field{
		Steps:   steps,
		Lats:    lats,
		Lons:    lons,
		Values:  values,
		Units:   "K",
		Missing: core.DefaultMissing,
	}
}

// UniformField is constant everywhere.
func UniformField(value float64, startYear, endYear, nLat, nLon int) *core.Field {
	return FieldFromFunc(startYear, endYear, nLat, nLon, func(int, float64, float64) float64 {
		return value
	})
}

// SinLatField equals sin(latitude) everywhere. The field is odd in latitude,
// so its global area-weighted average cancels symmetrically.
func SinLatField(startYear, endYear, nLat, nLon int) *core.Field {
	return FieldFromFunc(startYear, endYear, nLat, nLon, func(_ int, lat, _ float64) float64 {
		return math.Sin(lat * math.Pi / 180)
	})
}

// MemoryReader serves descriptors, fields and profiles from maps keyed by
// "dataset/variable". Implements the DatasetReader port.
type MemoryReader struct {
	Descriptors []dataset.Descriptor
	Fields      map[string]*core.Field
	Profiles    map[string]*core.Profile
}

// NewMemoryReader creates an empty reader.
func NewMemoryReader() *MemoryReader {
	return &MemoryReader{
		Fields:   make(map[string]*core.Field),
		Profiles: make(map[string]*core.Profile),
	}
}

// Key builds the lookup key for a dataset/variable pair.
func Key(datasetID, variable string) string {
	return datasetID + "/" + variable
}

func (r *MemoryReader) Datasets(context.Context, string) ([]dataset.Descriptor, error) {
	return r.Descriptors, nil
}

func (r *MemoryReader) ExtractField(_ context.Context, datasetID, variable, _ string, _ ports.TimeRange) (*core.Field, error) {
	field, ok := r.Fields[Key(datasetID, variable)]
	if !ok {
		return nil, errors.DataUnavailable(datasetID, variable, fmt.Errorf("not registered"))
	}
	return field, nil
}

func (r *MemoryReader) ExtractProfile(_ context.Context, datasetID, variable, _ string, _ ports.TimeRange) (*core.Profile, error) {
	profile, ok := r.Profiles[Key(datasetID, variable)]
	if !ok {
		return nil, errors.DataUnavailable(datasetID, variable, fmt.Errorf("not registered"))
	}
	return profile, nil
}
