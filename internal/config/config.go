// Package config loads and validates the scan configuration file.
//
// The file is created once per project and read on every invocation; a
// malformed configuration is fatal at startup, before any check runs, and the
// error names the offending field.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jhousteau/genesis-sub002/internal/models"
	"github.com/jhousteau/genesis-sub002/internal/scoring"
)

// DefaultFileName is the scan configuration file looked up in the working
// directory when --config is not given.
const DefaultFileName = "validation.yaml"

// Thresholds holds the failure tolerances. Comparisons downstream are
// strictly greater-than: zero means zero tolerance.
type Thresholds struct {
	CriticalFailures int `mapstructure:"critical_failures"`
	HighWarnings     int `mapstructure:"high_warnings"`
}

// ScanConfiguration is loaded once per invocation and read-only during a scan.
type ScanConfiguration struct {
	Project              string   `mapstructure:"project"`
	Environment          string   `mapstructure:"environment"`
	Buckets              []string `mapstructure:"buckets"`
	PrimaryFramework     string   `mapstructure:"primary_framework"`
	AdditionalFrameworks []string `mapstructure:"additional_frameworks"`
	// Categories limits the default check set; "all" or empty means every
	// category.
	Categories   []string      `mapstructure:"categories"`
	Thresholds   Thresholds    `mapstructure:"thresholds"`
	OutputFormat string        `mapstructure:"output_format"`
	ReportDir    string        `mapstructure:"report_dir"`
	Provider     string        `mapstructure:"provider"`
	Concurrency  int           `mapstructure:"concurrency"`
	CheckTimeout time.Duration `mapstructure:"check_timeout"`
}

// Framework returns the primary framework as a typed value.
func (c *ScanConfiguration) Framework() models.Framework {
	return models.Framework(c.PrimaryFramework)
}

// ScoringThresholds converts the configured tolerances for the scoring engine.
func (c *ScanConfiguration) ScoringThresholds() scoring.Thresholds {
	return scoring.Thresholds{
		CriticalFailures: c.Thresholds.CriticalFailures,
		HighWarnings:     c.Thresholds.HighWarnings,
	}
}

// EnabledCategories resolves the configured category names. Empty or "all"
// yields the full canonical set.
func (c *ScanConfiguration) EnabledCategories() []models.Category {
	if len(c.Categories) == 0 {
		return models.CategoryOrder
	}
	var out []models.Category
	for _, name := range c.Categories {
		if strings.EqualFold(name, "all") {
			return models.CategoryOrder
		}
		out = append(out, models.Category(strings.ToLower(name)))
	}
	return out
}

// Load reads the configuration file at path (or DefaultFileName in the
// working directory when path is empty), applies defaults, and validates.
func Load(path string) (*ScanConfiguration, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetDefault("environment", "dev")
	v.SetDefault("primary_framework", string(models.FrameworkSOC2))
	v.SetDefault("categories", []string{"all"})
	v.SetDefault("thresholds.critical_failures", 0)
	v.SetDefault("thresholds.high_warnings", 5)
	v.SetDefault("output_format", "json")
	v.SetDefault("report_dir", "reports")
	v.SetDefault("provider", "gcloud")
	v.SetDefault("concurrency", 6)
	v.SetDefault("check_timeout", "20s")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}

	var cfg ScanConfiguration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return &cfg, nil
}

// ValidFormats are the supported report output formats.
var ValidFormats = []string{"json", "text", "csv"}

// Validate checks cfg for semantic correctness and returns all errors found,
// each naming the offending field. An empty slice means the config is valid.
func Validate(cfg *ScanConfiguration) []error {
	var errs []error

	if cfg.Project == "" {
		errs = append(errs, fmt.Errorf("project: must not be empty"))
	}

	if !models.KnownFramework(models.Framework(cfg.PrimaryFramework)) {
		errs = append(errs, fmt.Errorf("primary_framework: unknown framework %q", cfg.PrimaryFramework))
	}
	for _, f := range cfg.AdditionalFrameworks {
		if !models.KnownFramework(models.Framework(f)) {
			errs = append(errs, fmt.Errorf("additional_frameworks: unknown framework %q", f))
		}
	}

	for _, name := range cfg.Categories {
		if strings.EqualFold(name, "all") {
			continue
		}
		if !models.ValidCategory(models.Category(strings.ToLower(name))) {
			errs = append(errs, fmt.Errorf("categories: unknown category %q", name))
		}
	}

	if cfg.Thresholds.CriticalFailures < 0 {
		errs = append(errs, fmt.Errorf("thresholds.critical_failures: must not be negative"))
	}
	if cfg.Thresholds.HighWarnings < 0 {
		errs = append(errs, fmt.Errorf("thresholds.high_warnings: must not be negative"))
	}

	if !validFormat(cfg.OutputFormat) {
		errs = append(errs, fmt.Errorf("output_format: unknown format %q; valid values: %s",
			cfg.OutputFormat, strings.Join(ValidFormats, ", ")))
	}

	switch cfg.Provider {
	case "gcloud", "aws", "static":
	default:
		errs = append(errs, fmt.Errorf("provider: unknown provider %q; valid values: gcloud, aws, static", cfg.Provider))
	}

	if cfg.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency: must be at least 1"))
	}
	if cfg.CheckTimeout <= 0 {
		errs = append(errs, fmt.Errorf("check_timeout: must be positive"))
	}

	return errs
}

func validFormat(format string) bool {
	for _, f := range ValidFormats {
		if format == f {
			return true
		}
	}
	return false
}
