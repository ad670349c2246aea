package core

import (
	"math"
	"time"
)

// DefaultMissing is the sentinel used for "no data" throughout the pipeline.
// It matches the fill value convention of the upstream archives (1e20).
const DefaultMissing = 1.0e20

// IsMissing reports whether v is the sentinel (or NaN, which some readers
// produce instead of the archive fill value).
func IsMissing(v, missing float64) bool {
	if math.IsNaN(v) {
		return true
	}
	return v == missing
}

// Axis is one labeled dimension of a DiagnosticArray. Categorical axes
// (dataset, season, statistic kind) carry Labels; numeric axes (month, day,
// level) carry Coords. Exactly one of the two is set.
type Axis struct {
	Name   string    `json:"name"`
	Labels []string  `json:"labels,omitempty"`
	Coords []float64 `json:"coords,omitempty"`
}

// Len returns the axis length regardless of kind.
func (a Axis) Len() int {
	if len(a.Labels) > 0 {
		return len(a.Labels)
	}
	return len(a.Coords)
}

// DiagnosticArray is a named, axis-labeled numeric array produced by the
// statistics engine and cached in the vault. Values are stored flat in
// row-major order over Axes.
type DiagnosticArray struct {
	Name     string    `json:"name"`
	LongName string    `json:"long_name"`
	Units    string    `json:"units"`
	Axes     []Axis    `json:"axes"`
	Values   []float64 `json:"values"`
	Missing  float64   `json:"missing_value"`
}

// Shape returns the per-axis lengths.
func (d *DiagnosticArray) Shape() []int {
	shape := make([]int, len(d.Axes))
	for i, ax := range d.Axes {
		shape[i] = ax.Len()
	}
	return shape
}

// ConsistentShape reports whether the flat value count matches the product of
// the axis lengths.
func (d *DiagnosticArray) ConsistentShape() bool {
	n := 1
	for _, ax := range d.Axes {
		n *= ax.Len()
	}
	return n == len(d.Values)
}

// At indexes a two-axis array by (row, col).
func (d *DiagnosticArray) At(row, col int) float64 {
	return d.Values[row*d.Axes[1].Len()+col]
}

// TimeStep identifies one sample of a monthly-resolution series.
type TimeStep struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Field is an extracted {time, lat, lon} block for one dataset/variable, the
// shape the DatasetReader contract delivers for surface fields. Values are
// flat, time-major then lat-major.
type Field struct {
	Steps   []TimeStep `json:"steps"`
	Lats    []float64  `json:"lats"`
	Lons    []float64  `json:"lons"`
	Values  []float64  `json:"values"`
	Units   string     `json:"units"`
	Missing float64    `json:"missing_value"`
}

// At returns the value at timestep t, latitude row j, longitude column i.
func (f *Field) At(t, j, i int) float64 {
	return f.Values[(t*len(f.Lats)+j)*len(f.Lons)+i]
}

// Profile is an extracted {time, level} block, the shape the reader delivers
// for vertically resolved fields after horizontal reduction. Levels follow
// the archive order and are monotonic.
type Profile struct {
	Steps   []TimeStep  `json:"steps"`
	Levels  []float64   `json:"levels"`
	Values  [][]float64 `json:"values"`
	Units   string      `json:"units"`
	Missing float64     `json:"missing_value"`
}

// EnsembleEnvelope is the reference dataset's crossing coordinate per
// timestep bracketed by the crossings of value ± its own uncertainty.
type EnsembleEnvelope struct {
	Center  []float64
	Lower   []float64
	Upper   []float64
	Missing float64
}
