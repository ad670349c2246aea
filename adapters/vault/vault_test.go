package vault

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"climdiag/domain/core"
	"climdiag/internal/errors"
)

func testIdentity() Identity {
	return Identity{DiagnosticID: "sea_ice", Variable: "sic", FieldType: "T2Ms"}
}

func testArray(name string) core.DiagnosticArray {
	return core.DiagnosticArray{
		Name:     name,
		LongName: "monthly climatology of sic",
		Units:    "%",
		Axes: []core.Axis{
			{Name: "dataset", Labels: []string{"MODEL-A", "MODEL-B"}},
			{Name: "month", Coords: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
		},
		Values: []float64{
			0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0, 1.1, 1.2,
			2.1, 2.2, 2.3, 2.4, 2.5, 2.6, 2.7, 2.8, core.DefaultMissing, 3.0, 3.1, 3.2,
		},
		Missing: core.DefaultMissing,
	}
}

func TestVault_StoreRetrieve(t *testing.T) {
	v := NewVault(t.TempDir())
	v.Store("climatology", testArray("climatology"))

	entry, err := v.Retrieve("climatology")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if entry.Units != "%" {
		t.Errorf("expected units %%, got %s", entry.Units)
	}

	_, err = v.Retrieve("absent")
	if !errors.HasCode(err, errors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestVault_PersistLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	v := NewVault(dir)
	original := testArray("climatology")
	v.Store("climatology", original)
	v.Store("anomaly", testArray("anomaly"))

	path, err := v.Persist(testIdentity())
	if err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	if filepath.Base(path) != "sea_ice_sic_T2Ms.json" {
		t.Errorf("unexpected deterministic path %s", path)
	}

	loaded := NewVault(dir)
	entries, err := loaded.Load(testIdentity(), []string{"climatology", "anomaly"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	got := entries[0]
	if got.LongName != original.LongName || got.Units != original.Units {
		t.Errorf("metadata did not round-trip: %+v", got)
	}
	if got.Missing != original.Missing {
		t.Errorf("missing sentinel did not round-trip: %g", got.Missing)
	}
	if len(got.Axes) != 2 || got.Axes[0].Name != "dataset" || got.Axes[1].Name != "month" {
		t.Errorf("axes did not round-trip: %+v", got.Axes)
	}
	if got.Axes[0].Labels[1] != "MODEL-B" {
		t.Errorf("axis labels did not round-trip: %v", got.Axes[0].Labels)
	}
	for i, v := range got.Values {
		if math.Abs(v-original.Values[i]) > 1e-6 {
			t.Errorf("value %d: expected %g, got %g", i, original.Values[i], v)
		}
	}
}

func TestVault_LoadWithoutPriorPersist(t *testing.T) {
	v := NewVault(t.TempDir())
	_, err := v.Load(testIdentity(), []string{"climatology"})
	if !errors.HasCode(err, errors.CodeNotFound) {
		t.Errorf("absent cache file: expected NOT_FOUND, got %v", err)
	}
}

func TestVault_LoadMissingVariable(t *testing.T) {
	dir := t.TempDir()
	v := NewVault(dir)
	v.Store("climatology", testArray("climatology"))
	if _, err := v.Persist(testIdentity()); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	loaded := NewVault(dir)
	_, err := loaded.Load(testIdentity(), []string{"climatology", "spread"})
	if !errors.HasCode(err, errors.CodeMissingVariable) {
		t.Errorf("expected MISSING_VARIABLE, got %v", err)
	}
}

func TestVault_PersistIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	v := NewVault(dir)
	v.Store("climatology", testArray("climatology"))

	first, err := v.Persist(testIdentity())
	if err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	second, err := v.Persist(testIdentity())
	if err != nil {
		t.Fatalf("second Persist failed: %v", err)
	}
	if first != second {
		t.Errorf("same identity produced different paths: %s vs %s", first, second)
	}

	// Only the final file and no temporaries remain.
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(files) != 1 {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.Name()
		}
		t.Errorf("expected exactly one vault file, found %v", names)
	}
}

func TestVault_StoreOverwrites(t *testing.T) {
	v := NewVault(t.TempDir())
	v.Store("climatology", testArray("climatology"))

	updated := testArray("climatology")
	updated.Units = "K"
	v.Store("climatology", updated)

	entry, err := v.Retrieve("climatology")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if entry.Units != "K" {
		t.Errorf("expected overwrite to take, got units %s", entry.Units)
	}
	if len(v.Names()) != 1 {
		t.Errorf("overwrite must not duplicate names: %v", v.Names())
	}
}
