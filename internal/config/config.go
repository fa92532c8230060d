// =============================================================================
// CFDI Extractor - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file. The file
// is optional: when the default config.yaml is absent every setting falls
// back to the conventions below, and command-line flags override whatever
// the file says.
//
// CONVENTIONS:
//   input_cfdi/                  - XML invoices to read
//   output_excel/                - where the workbook is written
//   output_excel/reporte_cfdi.xlsx
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned (non-recursively) for .xml files.
	// Default: "./input_cfdi"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the workbook and, optionally, the error log.
	// It is created when missing.
	// Default: "./output_excel"
	OutputDir string `yaml:"output_dir"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFile is the workbook file name inside OutputDir.
	// Placeholders:
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {uuid}      - A random UUID
	// Default: "reporte_cfdi.xlsx"
	OutputFile string `yaml:"output_file"`

	// WriteErrorLog writes a text log of skipped documents to OutputDir.
	// Default: false
	WriteErrorLog bool `yaml:"write_error_log"`

	// WriteSummaryLog writes a text summary of the run to OutputDir.
	// Default: false
	WriteSummaryLog bool `yaml:"write_summary_log"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "trace", "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "console" (human readable) or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// LogOutput is "stderr", "stdout" or a file path.
	// Default: "stderr"
	LogOutput string `yaml:"log_output"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the number of documents extracted at the same time.
	// Extraction shares no state, so any value is safe; 1 is sequential.
	// Default: 1
	MaxConcurrency int `yaml:"max_concurrency"`
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//   - mustExist: When false, a missing file yields the defaults instead of an error.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string, mustExist bool) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input_cfdi"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output_excel"
	}
	if config.OutputFile == "" {
		config.OutputFile = "reporte_cfdi.xlsx"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	if config.LogOutput == "" {
		config.LogOutput = "stderr"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 1
	}
}

// Validate checks the settings that can be checked without touching the
// filesystem. Directory checks happen when processing starts.
func (c *MainConfig) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}

	if c.MaxConcurrency < 1 {
		return fmt.Errorf("%w: max_concurrency must be at least 1, got %d", ErrInvalidConfig, c.MaxConcurrency)
	}

	if filepath.Base(c.OutputFile) != c.OutputFile {
		return fmt.Errorf("%w: output_file must be a file name, got %q", ErrInvalidConfig, c.OutputFile)
	}
	if !strings.EqualFold(filepath.Ext(c.OutputFile), ".xlsx") {
		return fmt.Errorf("%w: output_file must end in .xlsx, got %q", ErrInvalidConfig, c.OutputFile)
	}

	return nil
}
