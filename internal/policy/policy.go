// Package policy implements the optional operator policy file: per-check
// disables and severity overrides applied on top of the built-in framework
// severity table.
package policy

// Config is the parsed policy file.
type Config struct {
	Version int                    `yaml:"version"`
	Checks  map[string]CheckConfig `yaml:"checks"`
}

// CheckConfig overrides one check's behaviour.
type CheckConfig struct {
	// Enabled disables the check entirely when set to false. Nil means enabled.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Severity replaces the resolved severity when non-empty.
	Severity string `yaml:"severity,omitempty"`
}
