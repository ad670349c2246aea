package excel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"climdiag/domain/core"
	"climdiag/domain/dataset"
	"climdiag/ports"
)

func TestWriter_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")

	results := &ports.RunResults{
		Diagnostics: []core.DiagnosticArray{
			{
				Name:     "climatology",
				LongName: "monthly climatology of pr",
				Units:    "mm/day",
				Axes: []core.Axis{
					{Name: "dataset", Labels: []string{"MODEL-A", "OBS"}},
					{Name: "month", Coords: []float64{1, 2, 3}},
				},
				Values:  []float64{1, 2, 3, 4, 5, 6},
				Missing: core.DefaultMissing,
			},
			{
				Name:     "seasonal_mean",
				LongName: "JJAS mean of pr",
				Units:    "mm/day",
				Axes: []core.Axis{
					{Name: "dataset", Labels: []string{"MODEL-A", "OBS"}},
				},
				Values:  []float64{2, 5},
				Missing: core.DefaultMissing,
			},
		},
		Envelope: &core.EnsembleEnvelope{
			Center:  []float64{300},
			Lower:   []float64{500},
			Upper:   []float64{200},
			Missing: core.DefaultMissing,
		},
		Periods: dataset.PeriodStatus{Consistent: true, StartYear: 2000, EndYear: 2005},
		Datasets: []dataset.Descriptor{
			{Name: "MODEL-A", Class: dataset.ClassModel, StartYear: 2000, EndYear: 2005},
			{Name: "OBS", Class: dataset.ClassObservation, StartYear: 2000, EndYear: 2005},
		},
	}

	require.NoError(t, NewWriter(path).Export(results))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	period, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "2000-2005", period)

	// 2-axis array: row 5 is the header, row 6 the first dataset.
	label, err := f.GetCellValue("climatology", "A6")
	require.NoError(t, err)
	assert.Equal(t, "MODEL-A", label)
	v, err := f.GetCellValue("climatology", "B6")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	// 1-axis array renders label/value pairs.
	v, err = f.GetCellValue("seasonal_mean", "B6")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	center, err := f.GetCellValue("Envelope", "C2")
	require.NoError(t, err)
	assert.Equal(t, "300", center)
}
