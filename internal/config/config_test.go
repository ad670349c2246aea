package config

import (
	"testing"

	"climdiag/internal/errors"
)

func setRequired(t *testing.T) {
	t.Setenv("DIAG_ID", "monsoon_cycle")
	t.Setenv("DIAG_VARIABLE", "pr")
	t.Setenv("DIAG_REFERENCE", "ERA-Interim")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Season != "JJAS" {
		t.Errorf("expected default season JJAS, got %s", cfg.Season)
	}
	if cfg.Mode != ModeCompute {
		t.Errorf("expected default mode compute, got %s", cfg.Mode)
	}
	if cfg.LatMin != -90 || cfg.LatMax != 90 {
		t.Errorf("expected full latitude range, got [%g, %g]", cfg.LatMin, cfg.LatMax)
	}
	if cfg.MultiModelMean {
		t.Error("multi-model mean must default off")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DIAG_ID", "")
	t.Setenv("DIAG_VARIABLE", "pr")
	t.Setenv("DIAG_REFERENCE", "ERA-Interim")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error without DIAG_ID")
	}
	if errors.GetCode(err) != errors.CodeConfigError {
		t.Errorf("expected CONFIG_ERROR, got %s", errors.GetCode(err))
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DIAG_SEASON", "DJF")
	t.Setenv("DIAG_MODE", "retrieve")
	t.Setenv("DIAG_LAT_MIN", "-30")
	t.Setenv("DIAG_LAT_MAX", "30")
	t.Setenv("DIAG_MULTI_MODEL_MEAN", "true")
	t.Setenv("DIAG_THRESHOLD", "0.15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Season != "DJF" || cfg.Mode != ModeRetrieve || !cfg.MultiModelMean {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Threshold != 0.15 {
		t.Errorf("expected threshold 0.15, got %g", cfg.Threshold)
	}
}

func TestValidate_Rejections(t *testing.T) {
	base := func() *Config {
		return &Config{
			DiagnosticID:     "monsoon_cycle",
			Variable:         "pr",
			ReferenceDataset: "ERA-Interim",
			Season:           "JJAS",
			LatMin:           -90, LatMax: 90,
			LonMin: 0, LonMax: 360,
			Mode: ModeCompute,
		}
	}

	cfg := base()
	cfg.Mode = "replay"
	if err := cfg.Validate(); err == nil {
		t.Error("expected rejection of unknown mode")
	}

	cfg = base()
	cfg.LatMin, cfg.LatMax = 30, 30
	if err := cfg.Validate(); err == nil {
		t.Error("expected rejection of empty latitude range")
	}

	cfg = base()
	cfg.Season = "QQ"
	if err := cfg.Validate(); err == nil {
		t.Error("expected rejection of malformed season")
	}
}
