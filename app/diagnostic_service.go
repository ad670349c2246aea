package app

import (
	"context"

	"climdiag/adapters/stats/crossing"
	"climdiag/adapters/stats/engine"
	"climdiag/adapters/stats/temporal"
	"climdiag/adapters/vault"
	"climdiag/domain/core"
	"climdiag/domain/dataset"
	"climdiag/internal/config"
	"climdiag/internal/errors"
	"climdiag/ports"
)

// Names of the vault entries one run produces.
const (
	EntryClimatology  = "climatology"
	EntryAnomaly      = "anomaly"
	EntrySeasonalMean = "seasonal_mean"
	EntrySpread       = "spread"
)

// MultiModelMemberName labels the synthetic averaged member.
const MultiModelMemberName = "multi-model mean"

// DiagnosticService runs the sequential batch pipeline: per-dataset spatial
// reduction, climatology and anomaly, cross-dataset spread, vault persistence
// or retrieval, then the derived products (daily cycles, crossing envelope)
// handed to the exporter.
type DiagnosticService struct {
	cfg    *config.Config
	reader ports.DatasetReader
	vault  *vault.Vault
	engine *engine.StatsEngine
}

// NewDiagnosticService wires the pipeline. The vault is passed by reference
// and owned by this run.
func NewDiagnosticService(cfg *config.Config, reader ports.DatasetReader, v *vault.Vault) *DiagnosticService {
	return &DiagnosticService{
		cfg:    cfg,
		reader: reader,
		vault:  v,
		engine: engine.NewStatsEngine(),
	}
}

// Run executes one invocation. Mode selects compute-and-store or
// retrieve-without-recompute; the two paths are mutually exclusive. Any fatal
// condition aborts the run before persistence or export.
func (s *DiagnosticService) Run(ctx context.Context) (*ports.RunResults, error) {
	descriptors, err := s.reader.Datasets(ctx, s.cfg.DiagnosticID)
	if err != nil {
		return nil, err
	}
	if len(descriptors) == 0 {
		return nil, errors.DataUnavailable(s.cfg.DiagnosticID, s.cfg.Variable, nil)
	}
	reference := -1
	for i, d := range descriptors {
		if d.IsReference(s.cfg.ReferenceDataset) {
			reference = i
		}
	}
	if reference < 0 {
		return nil, errors.ConfigError("reference dataset " + s.cfg.ReferenceDataset + " not among datasets")
	}

	periods := dataset.CheckPeriods(descriptors)
	identity := vault.Identity{
		DiagnosticID: s.cfg.DiagnosticID,
		Variable:     s.cfg.Variable,
		FieldType:    s.cfg.FieldType,
	}

	var diagnostics []core.DiagnosticArray
	switch s.cfg.Mode {
	case config.ModeCompute:
		diagnostics, err = s.compute(ctx, descriptors, reference, identity)
	case config.ModeRetrieve:
		diagnostics, err = s.retrieve(identity)
	default:
		err = errors.ConfigError("unknown mode " + string(s.cfg.Mode))
	}
	if err != nil {
		return nil, err
	}

	cycles, err := s.dailyCycles(diagnostics)
	if err != nil {
		return nil, err
	}

	var envelope *core.EnsembleEnvelope
	if s.cfg.Threshold != 0 {
		envelope, err = s.referenceEnvelope(ctx, descriptors[reference])
		if err != nil {
			return nil, err
		}
	}

	return &ports.RunResults{
		Diagnostics: diagnostics,
		DailyCycles: cycles,
		Envelope:    envelope,
		Periods:     periods,
		Datasets:    descriptors,
	}, nil
}

// compute walks the datasets sequentially. Each iteration's raw field is
// released before the next dataset is read, so working memory stays bounded
// by one dataset plus the cumulative result rows.
func (s *DiagnosticService) compute(ctx context.Context, descriptors []dataset.Descriptor, reference int, identity vault.Identity) ([]core.DiagnosticArray, error) {
	season, err := dataset.ParseSeason(s.cfg.Season)
	if err != nil {
		return nil, err
	}
	box := engine.Box{
		LatMin: s.cfg.LatMin, LatMax: s.cfg.LatMax,
		LonMin: s.cfg.LonMin, LonMax: s.cfg.LonMax,
	}

	labels := make([]string, 0, len(descriptors)+1)
	climRows := make([][]float64, 0, len(descriptors)+1)
	anomRows := make([][]float64, 0, len(descriptors)+1)
	seasonal := make([]float64, 0, len(descriptors)+1)
	units := ""

	for _, d := range descriptors {
		field, err := s.reader.ExtractField(ctx, d.Name, s.cfg.Variable, s.cfg.FieldType,
			ports.TimeRange{StartYear: d.StartYear, EndYear: d.EndYear})
		if err != nil {
			return nil, errors.Wrapf(err, "diagnostic %s dataset %s extract", s.cfg.DiagnosticID, d.Name)
		}
		series, err := s.engine.AreaWeightedAverage(field, box)
		if err != nil {
			return nil, errors.Wrapf(err, "diagnostic %s dataset %s area average", s.cfg.DiagnosticID, d.Name)
		}
		clim, err := s.engine.MonthlyClimatology(series, field.Steps, d.StartYear, d.EndYear, field.Missing)
		if err != nil {
			return nil, errors.Wrapf(err, "diagnostic %s dataset %s climatology", s.cfg.DiagnosticID, d.Name)
		}
		clim = normalizeMissing(clim, field.Missing)
		anom := s.engine.Anomaly(clim, core.DefaultMissing)
		seasonalMean, err := s.engine.SeasonalMean(clim, season, core.DefaultMissing)
		if err != nil {
			return nil, errors.Wrapf(err, "diagnostic %s dataset %s seasonal mean", s.cfg.DiagnosticID, d.Name)
		}

		labels = append(labels, d.Name)
		climRows = append(climRows, clim)
		anomRows = append(anomRows, anom)
		seasonal = append(seasonal, seasonalMean)
		if units == "" {
			units = field.Units
		}
	}

	exclude := []int{reference}
	for i, d := range descriptors {
		if i != reference && d.Class == dataset.ClassObservation {
			exclude = append(exclude, i)
		}
	}

	if s.cfg.MultiModelMean {
		mmm, err := s.engine.MultiModelMean(climRows, exclude, core.DefaultMissing)
		if err != nil {
			return nil, err
		}
		labels = append(labels, MultiModelMemberName)
		climRows = append(climRows, mmm)
		anomRows = append(anomRows, s.engine.Anomaly(mmm, core.DefaultMissing))
		seasonalMean, err := s.engine.SeasonalMean(mmm, season, core.DefaultMissing)
		if err != nil {
			return nil, err
		}
		seasonal = append(seasonal, seasonalMean)
		// The synthetic member never feeds the spread.
		exclude = append(exclude, len(climRows)-1)
	}

	spread, err := s.engine.EnsembleSpread(climRows, exclude, core.DefaultMissing)
	if err != nil {
		return nil, err
	}

	monthAxis := core.Axis{Name: "month", Coords: monthCoords()}
	datasetAxis := core.Axis{Name: "dataset", Labels: labels}

	s.vault.Store(EntryClimatology, core.DiagnosticArray{
		LongName: "monthly climatology of " + s.cfg.Variable,
		Units:    units,
		Axes:     []core.Axis{datasetAxis, monthAxis},
		Values:   flatten(climRows),
		Missing:  core.DefaultMissing,
	})
	s.vault.Store(EntryAnomaly, core.DiagnosticArray{
		LongName: "monthly anomaly of " + s.cfg.Variable,
		Units:    units,
		Axes:     []core.Axis{datasetAxis, monthAxis},
		Values:   flatten(anomRows),
		Missing:  core.DefaultMissing,
	})
	s.vault.Store(EntrySeasonalMean, core.DiagnosticArray{
		LongName: season.Name + " mean of " + s.cfg.Variable,
		Units:    units,
		Axes:     []core.Axis{datasetAxis},
		Values:   seasonal,
		Missing:  core.DefaultMissing,
	})
	s.vault.Store(EntrySpread, core.DiagnosticArray{
		LongName: "ensemble spread of " + s.cfg.Variable + " climatology",
		Units:    units,
		Axes:     []core.Axis{monthAxis},
		Values:   spread,
		Missing:  core.DefaultMissing,
	})

	if _, err := s.vault.Persist(identity); err != nil {
		return nil, err
	}
	return s.collect()
}

// retrieve reads the prior run's entries back without recomputation.
func (s *DiagnosticService) retrieve(identity vault.Identity) ([]core.DiagnosticArray, error) {
	names := []string{EntryClimatology, EntryAnomaly, EntrySeasonalMean, EntrySpread}
	return s.vault.Load(identity, names)
}

func (s *DiagnosticService) collect() ([]core.DiagnosticArray, error) {
	out := make([]core.DiagnosticArray, 0, len(s.vault.Names()))
	for _, name := range s.vault.Names() {
		entry, err := s.vault.Retrieve(name)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// dailyCycles resamples each dataset's 12-month climatology to the periodic
// daily cycle.
func (s *DiagnosticService) dailyCycles(diagnostics []core.DiagnosticArray) ([]core.DiagnosticArray, error) {
	var clim *core.DiagnosticArray
	for i := range diagnostics {
		if diagnostics[i].Name == EntryClimatology {
			clim = &diagnostics[i]
			break
		}
	}
	if clim == nil {
		return nil, errors.NotFound("climatology entry")
	}

	anchors := temporal.MidMonthAnchors()
	nDatasets := clim.Axes[0].Len()
	values := make([]float64, 0, nDatasets*temporal.DaysPerYear)
	for i := 0; i < nDatasets; i++ {
		row := make([]float64, 12)
		for m := 0; m < 12; m++ {
			row[m] = clim.At(i, m)
		}
		cycle, err := temporal.DailyCycle(anchors, row, clim.Missing)
		if err != nil {
			return nil, errors.Wrapf(err, "daily cycle for %s", clim.Axes[0].Labels[i])
		}
		values = append(values, cycle...)
	}

	days := make([]float64, temporal.DaysPerYear)
	for d := range days {
		days[d] = float64(d + 1)
	}
	return []core.DiagnosticArray{{
		Name:     "daily_cycle",
		LongName: "daily annual cycle of " + s.cfg.Variable,
		Units:    clim.Units,
		Axes: []core.Axis{
			{Name: "dataset", Labels: clim.Axes[0].Labels},
			{Name: "day", Coords: days},
		},
		Values:  values,
		Missing: clim.Missing,
	}}, nil
}

// referenceEnvelope locates the threshold crossing for the reference dataset
// and brackets it with the crossings of value ± its own uncertainty.
func (s *DiagnosticService) referenceEnvelope(ctx context.Context, ref dataset.Descriptor) (*core.EnsembleEnvelope, error) {
	tr := ports.TimeRange{StartYear: ref.StartYear, EndYear: ref.EndYear}
	profile, err := s.reader.ExtractProfile(ctx, ref.Name, s.cfg.Variable, s.cfg.FieldType, tr)
	if err != nil {
		return nil, errors.Wrapf(err, "diagnostic %s dataset %s profile", s.cfg.DiagnosticID, ref.Name)
	}
	uncProfile, err := s.reader.ExtractProfile(ctx, ref.Name, s.cfg.Variable+"_err", s.cfg.FieldType, tr)
	if err != nil {
		return nil, errors.Wrapf(err, "diagnostic %s dataset %s uncertainty", s.cfg.DiagnosticID, ref.Name)
	}
	return crossing.Envelope(profile, uncProfile.Values, s.cfg.Threshold)
}

func monthCoords() []float64 {
	coords := make([]float64, 12)
	for m := range coords {
		coords[m] = float64(m + 1)
	}
	return coords
}

func flatten(rows [][]float64) []float64 {
	var flat []float64
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return flat
}

// normalizeMissing maps a reader-specific sentinel onto the shared one so
// cross-dataset matrices carry a single missing value.
func normalizeMissing(values []float64, missing float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if core.IsMissing(v, missing) {
			out[i] = core.DefaultMissing
			continue
		}
		out[i] = v
	}
	return out
}
