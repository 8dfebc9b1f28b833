// Package checks holds the static check catalog and the registry that serves
// it. A check inspects one narrow aspect of the target environment through
// the facts.Provider interface and reports an outcome; it never mutates cloud
// state and never decides severity beyond its declared default.
package checks

import (
	"context"

	"github.com/jhousteau/genesis-sub002/internal/facts"
	"github.com/jhousteau/genesis-sub002/internal/models"
)

// Target identifies the environment a scan runs against.
type Target struct {
	// Project is the cloud project reference checks query facts for.
	Project string

	// Environment is the deployment environment label (dev, staging, prod).
	Environment string

	// Buckets lists the storage buckets in scope for ACL checks.
	Buckets []string
}

// CheckFunc evaluates one check against the target. A returned error is a
// provider-level failure; the executor translates it into a FAIL or SKIP
// outcome. Check functions must be stateless and safe to call concurrently.
type CheckFunc func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error)

// CheckDefinition is one entry of the immutable check catalog.
type CheckDefinition struct {
	// ID is the unique, stable identifier (e.g. "SEC_NO_OPEN_SSH").
	ID string

	// Category classifies the check for filtering and report grouping.
	Category models.Category

	// Description is the one-line summary used in findings.
	Description string

	// RuleRef names the constraint or rule the check enforces.
	RuleRef string

	// Remediation is the operator guidance attached to findings.
	Remediation string

	// Frameworks lists the compliance regimes this check applies to.
	Frameworks []models.Framework

	// DefaultSeverity applies unless the active framework overrides it.
	DefaultSeverity models.Severity

	// Run evaluates the check.
	Run CheckFunc
}

// AppliesTo reports whether the check is relevant under framework f.
func (d CheckDefinition) AppliesTo(f models.Framework) bool {
	for _, known := range d.Frameworks {
		if known == f {
			return true
		}
	}
	return false
}

// Outcome constructors. Message always names what was observed, not what the
// check wanted.

func pass(msg string) (models.CheckOutcome, error) {
	return models.CheckOutcome{Status: models.StatusPass, Message: msg}, nil
}

func fail(msg string, evidence map[string]string) (models.CheckOutcome, error) {
	return models.CheckOutcome{Status: models.StatusFail, Message: msg, Evidence: evidence}, nil
}

func warn(msg string, evidence map[string]string) (models.CheckOutcome, error) {
	return models.CheckOutcome{Status: models.StatusWarn, Message: msg, Evidence: evidence}, nil
}

func skip(msg string) (models.CheckOutcome, error) {
	return models.CheckOutcome{Status: models.StatusSkip, Message: msg}, nil
}
