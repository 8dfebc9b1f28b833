package policy

import (
	"fmt"
	"strings"

	"github.com/jhousteau/genesis-sub002/internal/models"
)

// Validate checks cfg for semantic correctness and returns all validation
// errors found; an empty slice means the config is valid. All errors are
// collected before returning so the operator can fix everything in one pass.
//
// Checks performed:
//   - version must be 1
//   - check IDs must appear in availableCheckIDs
//   - severity overrides must be one of the four severity levels
func Validate(cfg *Config, availableCheckIDs []string) []error {
	if cfg == nil {
		return []error{fmt.Errorf("policy config is nil")}
	}

	knownIDs := make(map[string]struct{}, len(availableCheckIDs))
	for _, id := range availableCheckIDs {
		knownIDs[id] = struct{}{}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, fmt.Errorf("version: unsupported value %d; must be 1", cfg.Version))
	}

	for id, ccfg := range cfg.Checks {
		if _, ok := knownIDs[id]; !ok {
			errs = append(errs, fmt.Errorf("checks.%s: unknown check ID", id))
		}
		if ccfg.Severity != "" && !models.ValidSeverity(models.Severity(strings.ToUpper(ccfg.Severity))) {
			errs = append(errs, fmt.Errorf(
				"checks.%s.severity: invalid value %q; valid values: CRITICAL, HIGH, MEDIUM, LOW",
				id, ccfg.Severity))
		}
	}

	return errs
}
