package crossing

import (
	"testing"

	"climdiag/domain/core"
	"climdiag/internal/errors"
)

func profileFixture(values [][]float64) *core.Profile {
	steps := make([]core.TimeStep, len(values))
	for t := range steps {
		steps[t] = core.TimeStep{Year: 2000, Month: 1}
	}
	return &core.Profile{
		Steps:   steps,
		Levels:  []float64{100, 200, 300, 500, 700, 850},
		Values:  values,
		Units:   "hPa",
		Missing: core.DefaultMissing,
	}
}

func TestLocate_SingleSatisfyingIndex(t *testing.T) {
	// Exactly one level satisfies the condition per timestep; the result is
	// that level's coordinate.
	p := profileFixture([][]float64{
		{0, 0, 5, 0, 0, 0},
		{0, 0, 0, 0, 5, 0},
	})

	coords := Locate(p, 5)
	if coords[0] != 300 {
		t.Errorf("timestep 0: expected 300, got %g", coords[0])
	}
	if coords[1] != 700 {
		t.Errorf("timestep 1: expected 700, got %g", coords[1])
	}
}

func TestLocate_MinimumCoordinateMagnitude(t *testing.T) {
	// Several levels satisfy the condition; the extreme (minimum magnitude)
	// coordinate wins.
	p := profileFixture([][]float64{
		{0, 6, 7, 8, 0, 0},
	})

	coords := Locate(p, 5)
	if coords[0] != 200 {
		t.Errorf("expected 200, got %g", coords[0])
	}
}

func TestLocate_NoSatisfyingIndexYieldsSentinel(t *testing.T) {
	p := profileFixture([][]float64{
		{1, 2, 3, 4, 3, 2},
	})

	coords := Locate(p, 5)
	if coords[0] != core.DefaultMissing {
		t.Errorf("expected sentinel, got %g", coords[0])
	}
	if coords[0] == 0 {
		t.Error("no-crossing timestep must never yield zero")
	}
}

func TestLocate_MissingValuesIgnored(t *testing.T) {
	// The satisfying value at the smallest coordinate is missing, so the
	// next valid satisfying level wins.
	p := profileFixture([][]float64{
		{core.DefaultMissing, 0, 6, 7, 0, 0},
	})

	coords := Locate(p, 5)
	if coords[0] != 300 {
		t.Errorf("expected 300, got %g", coords[0])
	}
}

func TestEnvelope_BracketsCenter(t *testing.T) {
	p := profileFixture([][]float64{
		{0, 4.5, 5.5, 6.5, 0, 0},
	})
	uncertainty := [][]float64{
		{1, 1, 1, 1, 1, 1},
	}

	env, err := Envelope(p, uncertainty, 5)
	if err != nil {
		t.Fatalf("Envelope failed: %v", err)
	}
	// Center: first value ≥ 5 is level 300. Upper (value+1): level 200
	// already satisfies. Lower (value−1): only level 500 does.
	if env.Center[0] != 300 {
		t.Errorf("center: expected 300, got %g", env.Center[0])
	}
	if env.Upper[0] != 200 {
		t.Errorf("upper: expected 200, got %g", env.Upper[0])
	}
	if env.Lower[0] != 500 {
		t.Errorf("lower: expected 500, got %g", env.Lower[0])
	}
}

func TestEnvelope_TimestepMismatch(t *testing.T) {
	p := profileFixture([][]float64{{0, 0, 0, 0, 0, 0}})
	if _, err := Envelope(p, [][]float64{}, 5); err == nil {
		t.Error("expected error for uncertainty/profile mismatch")
	}
}

func TestEnvelope_LevelCountMismatch(t *testing.T) {
	// Value and uncertainty profiles come from separate files; a level-grid
	// mismatch between them must surface as a structured error, not a panic.
	p := profileFixture([][]float64{{0, 0, 6, 0, 0, 0}})
	uncertainty := [][]float64{{1, 1}}

	_, err := Envelope(p, uncertainty, 5)
	if err == nil {
		t.Fatal("expected error for uncertainty level-count mismatch")
	}
	if errors.GetCode(err) != errors.CodeInternalError {
		t.Errorf("expected INTERNAL_ERROR, got %s", errors.GetCode(err))
	}
}
