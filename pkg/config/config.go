// Package config provides the unified configuration for the columnar engine.
// A single EngineConfig structure holds writer, scanner and logging settings
// with shared defaults and validation. The colstore CLI applies only the
// logging section; the storage and scan sections are validated but are not
// passed to a Writer or Scanner, which use their own defaults
// (format.DefaultMaxRowGroupRows and query.DefaultBatchSize).
package config

import (
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
)

// EngineConfig is the top-level configuration structure.
type EngineConfig struct {
	// Storage settings control how files are written
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Scan settings control how files are read back
	Scan ScanConfig `yaml:"scan" json:"scan"`

	// Logging settings for the zap logger
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// StorageConfig contains writer-side settings.
type StorageConfig struct {
	// MaxRowGroupRows caps the number of rows buffered into one row group
	MaxRowGroupRows int `yaml:"max_row_group_rows" json:"max_row_group_rows"`
}

// ScanConfig contains reader-side settings.
type ScanConfig struct {
	// BatchSize is the advisory number of rows per scanned batch
	BatchSize int `yaml:"batch_size" json:"batch_size"`
}

// LoggingConfig mirrors logger.Config in serializable form.
type LoggingConfig struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
	Encoding    string `yaml:"encoding" json:"encoding"`
}

// DefaultConfig returns an EngineConfig with production defaults.
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		Storage: StorageConfig{
			MaxRowGroupRows: 10000,
		},
		Scan: ScanConfig{
			BatchSize: 4096,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *EngineConfig) Validate() error {
	if c.Storage.MaxRowGroupRows <= 0 {
		return errors.Newf(errors.ErrorTypeConfig,
			"max_row_group_rows must be positive, got %d", c.Storage.MaxRowGroupRows)
	}
	if c.Scan.BatchSize <= 0 {
		return errors.Newf(errors.ErrorTypeConfig,
			"batch_size must be positive, got %d", c.Scan.BatchSize)
	}
	if c.Logging.Level == "" {
		return errors.New(errors.ErrorTypeConfig, "logging level must not be empty")
	}
	return nil
}
