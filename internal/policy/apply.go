package policy

import (
	"strings"

	"github.com/jhousteau/genesis-sub002/internal/models"
)

// Apply filters and rewrites findings according to cfg. Safe to call with
// cfg == nil (no policy loaded): findings pass through unchanged.
//
// Disabled checks have their findings dropped; severity overrides replace the
// framework-resolved severity. Applied after synthesis, so the policy file
// always has the last word on severity.
func Apply(findings []models.Finding, cfg *Config) []models.Finding {
	if cfg == nil {
		return findings
	}

	result := make([]models.Finding, 0, len(findings))
	for _, f := range findings {
		ccfg, ok := cfg.Checks[f.CheckID]
		if !ok {
			result = append(result, f)
			continue
		}
		if ccfg.Enabled != nil && !*ccfg.Enabled {
			continue
		}
		if ccfg.Severity != "" {
			f.Severity = models.Severity(strings.ToUpper(ccfg.Severity))
		}
		result = append(result, f)
	}
	return result
}
