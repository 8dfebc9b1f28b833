package checks

import (
	"context"
	"fmt"

	"github.com/jhousteau/genesis-sub002/internal/facts"
	"github.com/jhousteau/genesis-sub002/internal/models"
)

// integrationChecks probe each fact surface end to end so a scan can tell
// "control absent" apart from "signal unreachable" before the deeper
// categories run.
func integrationChecks() []CheckDefinition {
	return []CheckDefinition{
		{
			ID:              "INT_FIREWALL_QUERY",
			Category:        models.CategoryIntegration,
			Description:     "Firewall rule listing responds",
			RuleRef:         "integration.firewall",
			Remediation:     "Grant the scanner compute.firewalls.list on the project.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityMedium,
			Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
				rules, err := p.GetFirewallRules(ctx, target.Project)
				if err != nil {
					return models.CheckOutcome{}, err
				}
				return pass(fmt.Sprintf("firewall listing returned %d rule(s)", len(rules)))
			},
		},
		{
			ID:              "INT_STORAGE_QUERY",
			Category:        models.CategoryIntegration,
			Description:     "Bucket ACL queries respond for all in-scope buckets",
			RuleRef:         "integration.storage",
			Remediation:     "Grant the scanner storage.buckets.getIamPolicy on the in-scope buckets.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityMedium,
			Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
				if len(target.Buckets) == 0 {
					return skip("no buckets configured for this target")
				}
				for _, bucket := range target.Buckets {
					if _, err := p.GetStorageACL(ctx, bucket); err != nil {
						return models.CheckOutcome{}, fmt.Errorf("bucket %s: %w", bucket, err)
					}
				}
				return pass(fmt.Sprintf("ACL queries succeeded for %d bucket(s)", len(target.Buckets)))
			},
		},
		{
			ID:              "INT_LOGGING_QUERY",
			Category:        models.CategoryIntegration,
			Description:     "Audit sink listing responds",
			RuleRef:         "integration.logging",
			Remediation:     "Grant the scanner logging.sinks.list on the project.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityMedium,
			Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
				if _, err := p.GetAuditSinks(ctx, target.Project); err != nil {
					return models.CheckOutcome{}, err
				}
				return pass("audit sink listing responded")
			},
		},
	}
}
