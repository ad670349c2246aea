package fieldstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"climdiag/domain/core"
	"climdiag/domain/dataset"
	"climdiag/internal/errors"
	"climdiag/ports"
)

// Reader implements the DatasetReader port over a directory of extracted,
// self-describing field files. CMORization of the raw archives happens
// upstream; this adapter only reads what that step produced.
//
// Layout under the root directory:
//
//	<diagnostic_id>_datasets.json                   descriptor list
//	<dataset>_<variable>_<fieldtype>.json           Field document
//	<dataset>_<variable>_<fieldtype>_profile.json   Profile document
type Reader struct {
	dir string
}

// NewReader creates a reader rooted at dir.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// Datasets lists the descriptors declared for a diagnostic.
func (r *Reader) Datasets(_ context.Context, diagnosticID string) ([]dataset.Descriptor, error) {
	path := filepath.Join(r.dir, diagnosticID+"_datasets.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.DataUnavailable(diagnosticID, "datasets.json", err)
	}
	var descriptors []dataset.Descriptor
	if err := json.Unmarshal(raw, &descriptors); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return descriptors, nil
}

// ExtractField reads a {time, lat, lon} block and restricts it to the
// requested year range.
func (r *Reader) ExtractField(_ context.Context, datasetID, variable, fieldType string, tr ports.TimeRange) (*core.Field, error) {
	path := r.fieldPath(datasetID, variable, fieldType, "")
	var field core.Field
	if err := r.readDoc(path, datasetID, variable, &field); err != nil {
		return nil, err
	}

	nLat, nLon := len(field.Lats), len(field.Lons)
	if len(field.Values) != len(field.Steps)*nLat*nLon {
		return nil, errors.DataUnavailable(datasetID, variable, fmt.Errorf(
			"%s: %d values for %d timesteps on a %dx%d grid",
			path, len(field.Values), len(field.Steps), nLat, nLon))
	}
	var steps []core.TimeStep
	var values []float64
	for t, step := range field.Steps {
		if step.Year < tr.StartYear || step.Year > tr.EndYear {
			continue
		}
		steps = append(steps, step)
		values = append(values, field.Values[t*nLat*nLon:(t+1)*nLat*nLon]...)
	}
	if len(steps) == 0 {
		return nil, errors.DataUnavailable(datasetID, variable,
			fmt.Errorf("no timesteps in %d-%d", tr.StartYear, tr.EndYear))
	}
	field.Steps = steps
	field.Values = values
	return &field, nil
}

// ExtractProfile reads a {time, level} block restricted to the year range.
func (r *Reader) ExtractProfile(_ context.Context, datasetID, variable, fieldType string, tr ports.TimeRange) (*core.Profile, error) {
	path := r.fieldPath(datasetID, variable, fieldType, "_profile")
	var profile core.Profile
	if err := r.readDoc(path, datasetID, variable, &profile); err != nil {
		return nil, err
	}
	if len(profile.Values) != len(profile.Steps) {
		return nil, errors.DataUnavailable(datasetID, variable, fmt.Errorf(
			"%s: %d value rows for %d timesteps", path, len(profile.Values), len(profile.Steps)))
	}
	for t, row := range profile.Values {
		if len(row) != len(profile.Levels) {
			return nil, errors.DataUnavailable(datasetID, variable, fmt.Errorf(
				"%s: timestep %d has %d values for %d levels", path, t, len(row), len(profile.Levels)))
		}
	}

	var steps []core.TimeStep
	var values [][]float64
	for t, step := range profile.Steps {
		if step.Year < tr.StartYear || step.Year > tr.EndYear {
			continue
		}
		steps = append(steps, step)
		values = append(values, profile.Values[t])
	}
	if len(steps) == 0 {
		return nil, errors.DataUnavailable(datasetID, variable,
			fmt.Errorf("no timesteps in %d-%d", tr.StartYear, tr.EndYear))
	}
	profile.Steps = steps
	profile.Values = values
	return &profile, nil
}

func (r *Reader) fieldPath(datasetID, variable, fieldType, suffix string) string {
	name := fmt.Sprintf("%s_%s_%s%s.json", datasetID, variable, fieldType, suffix)
	return filepath.Join(r.dir, name)
}

func (r *Reader) readDoc(path, datasetID, variable string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.DataUnavailable(datasetID, variable, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}
	return nil
}
