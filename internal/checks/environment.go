package checks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhousteau/genesis-sub002/internal/facts"
	"github.com/jhousteau/genesis-sub002/internal/models"
)

// allFrameworks marks checks relevant under every supported regime.
var allFrameworks = models.KnownFrameworks

// environmentChecks validate that the target project is reachable and exposes
// the signals the rest of the catalog depends on.
func environmentChecks() []CheckDefinition {
	return []CheckDefinition{
		{
			ID:              "ENV_PROJECT_ACCESS",
			Category:        models.CategoryEnvironment,
			Description:     "Project IAM policy is readable and non-empty",
			RuleRef:         "project.iam.readable",
			Remediation:     "Verify the project reference and grant the scanner roles/viewer on the project.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityHigh,
			Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
				bindings, err := p.GetIAMPolicy(ctx, target.Project)
				if err != nil {
					return models.CheckOutcome{}, err
				}
				if len(bindings) == 0 {
					return fail(fmt.Sprintf("project %s returned an empty IAM policy", target.Project), nil)
				}
				return pass(fmt.Sprintf("project %s accessible, %d IAM bindings visible", target.Project, len(bindings)))
			},
		},
		{
			ID:              "ENV_ORG_POLICY_SURFACE",
			Category:        models.CategoryEnvironment,
			Description:     "Organization policy API responds for the project",
			RuleRef:         "project.orgpolicy.readable",
			Remediation:     "Enable the Org Policy API and grant the scanner orgpolicy.policy.get.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityMedium,
			Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
				// Probe a well-known constraint. An unset policy is a valid
				// answer; only provider-level failures matter here.
				_, err := p.GetOrgPolicy(ctx, "constraints/iam.allowedPolicyMemberDomains")
				if err != nil && !errors.Is(err, facts.ErrNotFound) {
					return models.CheckOutcome{}, err
				}
				return pass("org policy surface responded")
			},
		},
		{
			ID:              "ENV_AUDIT_LOGGING",
			Category:        models.CategoryEnvironment,
			Description:     "At least one audit-log sink is configured",
			RuleRef:         "project.logging.sink_present",
			Remediation:     "Create a log sink exporting audit logs to durable storage.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityHigh,
			Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
				sinks, err := p.GetAuditSinks(ctx, target.Project)
				if err != nil {
					return models.CheckOutcome{}, err
				}
				if len(sinks) == 0 {
					return fail("no audit-log sinks configured", nil)
				}
				return pass(fmt.Sprintf("%d audit-log sink(s) configured", len(sinks)))
			},
		},
	}
}
