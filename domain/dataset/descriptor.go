package dataset

import "fmt"

// Class distinguishes model members from the observational/reanalysis
// reference used as ground truth.
type Class string

const (
	ClassModel       Class = "model"
	ClassObservation Class = "observation"
)

// Descriptor identifies one dataset contributing to a diagnostic. Immutable
// once read from the reader.
type Descriptor struct {
	Name       string `json:"name"`
	Class      Class  `json:"class"`
	StartYear  int    `json:"start_year"`
	EndYear    int    `json:"end_year"`
	EnsembleID string `json:"ensemble_id"`
}

// PeriodLabel renders the dataset's declared period for export labels.
func (d Descriptor) PeriodLabel() string {
	return fmt.Sprintf("%d-%d", d.StartYear, d.EndYear)
}

// IsReference reports whether this descriptor is the configured reference.
func (d Descriptor) IsReference(reference string) bool {
	return d.Name == reference
}
