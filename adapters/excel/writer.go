package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"climdiag/domain/core"
	"climdiag/internal/errors"
	"climdiag/ports"
)

// Writer exports run results to one workbook: a summary sheet with dataset
// descriptors and the period annotation, one sheet per diagnostic array, and
// an envelope sheet when the run produced one.
type Writer struct {
	path string
}

// NewWriter creates a writer targeting path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Export writes the workbook. Implements the Exporter port.
func (w *Writer) Export(results *ports.RunResults) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeSummary(f, results); err != nil {
		return err
	}
	for _, arr := range results.Diagnostics {
		if err := w.writeArray(f, arr); err != nil {
			return err
		}
	}
	for _, arr := range results.DailyCycles {
		if err := w.writeArray(f, arr); err != nil {
			return err
		}
	}
	if results.Envelope != nil {
		if err := w.writeEnvelope(f, results.Envelope); err != nil {
			return err
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return errors.ExportError("saving workbook "+w.path, err)
	}
	return nil
}

func (w *Writer) writeSummary(f *excelize.File, results *ports.RunResults) error {
	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return errors.ExportError("renaming summary sheet", err)
	}
	rows := [][]interface{}{
		{"period", results.Periods.Label()},
		{},
		{"dataset", "class", "start_year", "end_year", "ensemble"},
	}
	for _, d := range results.Datasets {
		rows = append(rows, []interface{}{d.Name, string(d.Class), d.StartYear, d.EndYear, d.EnsembleID})
	}
	return w.writeRows(f, "Summary", rows)
}

func (w *Writer) writeArray(f *excelize.File, arr core.DiagnosticArray) error {
	sheet := sheetName(arr.Name)
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.ExportError("creating sheet "+sheet, err)
	}

	rows := [][]interface{}{
		{"long_name", arr.LongName},
		{"units", arr.Units},
		{"missing_value", arr.Missing},
		{},
	}
	switch len(arr.Axes) {
	case 1:
		rows = append(rows, []interface{}{arr.Axes[0].Name, "value"})
		for i := 0; i < arr.Axes[0].Len(); i++ {
			rows = append(rows, []interface{}{axisTick(arr.Axes[0], i), arr.Values[i]})
		}
	case 2:
		header := []interface{}{arr.Axes[0].Name + "\\" + arr.Axes[1].Name}
		for j := 0; j < arr.Axes[1].Len(); j++ {
			header = append(header, axisTick(arr.Axes[1], j))
		}
		rows = append(rows, header)
		for i := 0; i < arr.Axes[0].Len(); i++ {
			row := []interface{}{axisTick(arr.Axes[0], i)}
			for j := 0; j < arr.Axes[1].Len(); j++ {
				row = append(row, arr.At(i, j))
			}
			rows = append(rows, row)
		}
	default:
		return errors.ExportError(fmt.Sprintf("array %s has %d axes, expected 1 or 2",
			arr.Name, len(arr.Axes)), nil)
	}
	return w.writeRows(f, sheet, rows)
}

func (w *Writer) writeEnvelope(f *excelize.File, env *core.EnsembleEnvelope) error {
	const sheet = "Envelope"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.ExportError("creating sheet "+sheet, err)
	}
	rows := [][]interface{}{{"timestep", "lower", "center", "upper"}}
	for t := range env.Center {
		rows = append(rows, []interface{}{t + 1, env.Lower[t], env.Center[t], env.Upper[t]})
	}
	return w.writeRows(f, sheet, rows)
}

func (w *Writer) writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return errors.ExportError("computing cell name", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.ExportError("writing cell "+cell, err)
			}
		}
	}
	return nil
}

func axisTick(ax core.Axis, i int) interface{} {
	if len(ax.Labels) > 0 {
		return ax.Labels[i]
	}
	return ax.Coords[i]
}

// sheetName truncates to the 31-character workbook limit.
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
