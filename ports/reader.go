package ports

import (
	"context"

	"climdiag/domain/core"
	"climdiag/domain/dataset"
)

// TimeRange bounds an extraction request in whole years.
type TimeRange struct {
	StartYear int
	EndYear   int
}

// DatasetReader supplies extracted labeled arrays per dataset/variable
// request. Raw-archive conversion happens upstream of this port; readers only
// deliver already-extracted fields with an explicit missing-value sentinel.
type DatasetReader interface {
	// Datasets lists the descriptors available for a diagnostic.
	Datasets(ctx context.Context, diagnosticID string) ([]dataset.Descriptor, error)

	// ExtractField returns a {time, lat, lon} block.
	ExtractField(ctx context.Context, datasetID, variable, fieldType string, tr TimeRange) (*core.Field, error)

	// ExtractProfile returns a {time, level} block for vertically resolved
	// variables.
	ExtractProfile(ctx context.Context, datasetID, variable, fieldType string, tr TimeRange) (*core.Profile, error)
}
