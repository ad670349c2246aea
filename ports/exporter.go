package ports

import (
	"climdiag/domain/core"
	"climdiag/domain/dataset"
)

// RunResults is everything the pipeline hands to the plotting/export side.
type RunResults struct {
	Diagnostics []core.DiagnosticArray
	DailyCycles []core.DiagnosticArray
	Envelope    *core.EnsembleEnvelope
	Periods     dataset.PeriodStatus
	Datasets    []dataset.Descriptor
}

// Exporter receives computed results. Rendering and layout are owned by the
// implementation; the core never draws.
type Exporter interface {
	Export(results *RunResults) error
}
