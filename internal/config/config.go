package config

import (
	"os"
	"strconv"

	"climdiag/domain/dataset"
	"climdiag/internal/errors"
)

// Mode selects between computing diagnostics fresh and reading them back from
// a previously persisted vault file. The two paths are mutually exclusive per
// invocation.
type Mode string

const (
	ModeCompute  Mode = "compute"
	ModeRetrieve Mode = "retrieve"
)

// Config enumerates every option the pipeline recognizes. The core packages
// receive this struct by value; none of them read the environment themselves.
type Config struct {
	DiagnosticID string
	Variable     string
	FieldType    string

	Season           string
	LatMin, LatMax   float64
	LonMin, LonMax   float64
	ReferenceDataset string
	MultiModelMean   bool
	Threshold        float64
	Mode             Mode

	// WorkDir holds persisted vault files; DataDir is where the file-backed
	// reader looks for extracted fields. ExportFile receives the workbook.
	WorkDir    string
	DataDir    string
	ExportFile string
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		DiagnosticID: os.Getenv("DIAG_ID"),
		Variable:     os.Getenv("DIAG_VARIABLE"),
		FieldType:    getEnvOrDefault("DIAG_FIELD_TYPE", "T2Ms"),

		Season:           getEnvOrDefault("DIAG_SEASON", "JJAS"),
		LatMin:           getEnvFloatOrDefault("DIAG_LAT_MIN", -90),
		LatMax:           getEnvFloatOrDefault("DIAG_LAT_MAX", 90),
		LonMin:           getEnvFloatOrDefault("DIAG_LON_MIN", 0),
		LonMax:           getEnvFloatOrDefault("DIAG_LON_MAX", 360),
		ReferenceDataset: os.Getenv("DIAG_REFERENCE"),
		MultiModelMean:   getEnvBoolOrDefault("DIAG_MULTI_MODEL_MEAN", false),
		Threshold:        getEnvFloatOrDefault("DIAG_THRESHOLD", 0),
		Mode:             Mode(getEnvOrDefault("DIAG_MODE", string(ModeCompute))),

		WorkDir:    getEnvOrDefault("DIAG_WORK_DIR", "work"),
		DataDir:    getEnvOrDefault("DIAG_DATA_DIR", "data"),
		ExportFile: getEnvOrDefault("DIAG_EXPORT_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// Validate checks every recognized option before any computation begins.
func (c *Config) Validate() error {
	if c.DiagnosticID == "" {
		return errors.ConfigError("DIAG_ID is required")
	}
	if c.Variable == "" {
		return errors.ConfigError("DIAG_VARIABLE is required")
	}
	if c.ReferenceDataset == "" {
		return errors.ConfigError("DIAG_REFERENCE is required")
	}
	if c.Mode != ModeCompute && c.Mode != ModeRetrieve {
		return errors.ConfigError("DIAG_MODE must be compute or retrieve")
	}
	if c.LatMin >= c.LatMax {
		return errors.ConfigError("latitude range is empty")
	}
	if c.LonMin >= c.LonMax {
		return errors.ConfigError("longitude range is empty")
	}
	if _, err := dataset.ParseSeason(c.Season); err != nil {
		return err
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
