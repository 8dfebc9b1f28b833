package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhousteau/genesis-sub002/internal/facts"
	"github.com/jhousteau/genesis-sub002/internal/models"
)

// complianceChecks validate controls that compliance frameworks audit
// directly: audit-trail completeness and data-access policy constraints.
// Severity here is the most framework-sensitive in the catalog; see the
// override table in the scoring package.
func complianceChecks() []CheckDefinition {
	return []CheckDefinition{
		{
			ID:              "COMP_AUDIT_TRAIL_COMPLETE",
			Category:        models.CategoryCompliance,
			Description:     "An unfiltered audit sink captures all activity",
			RuleRef:         "logging.unfiltered_sink",
			Remediation:     "Configure at least one sink without an exclusion filter so the audit trail is complete.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityHigh,
			Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
				sinks, err := p.GetAuditSinks(ctx, target.Project)
				if err != nil {
					return models.CheckOutcome{}, err
				}
				if len(sinks) == 0 {
					return fail("no audit sinks configured", nil)
				}
				for _, s := range sinks {
					if s.Filter == "" {
						return pass(fmt.Sprintf("sink %s exports all activity", s.Name))
					}
				}
				return warn(
					fmt.Sprintf("all %d sink(s) carry filters; audit trail may be incomplete", len(sinks)),
					nil,
				)
			},
		},
		{
			ID:              "COMP_AUDIT_SINK_DURABLE",
			Category:        models.CategoryCompliance,
			Description:     "Audit sinks export to a durable destination",
			RuleRef:         "logging.sink_destination",
			Remediation:     "Point audit sinks at durable storage (bucket or dataset), not an ephemeral destination.",
			Frameworks: []models.Framework{
				models.FrameworkSOC2, models.FrameworkHIPAA, models.FrameworkPCIDSS,
				models.FrameworkISO27001, models.FrameworkFedRAMP,
			},
			DefaultSeverity: models.SeverityMedium,
			Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
				sinks, err := p.GetAuditSinks(ctx, target.Project)
				if err != nil {
					return models.CheckOutcome{}, err
				}
				if len(sinks) == 0 {
					return fail("no audit sinks configured", nil)
				}
				var undirected []string
				for _, s := range sinks {
					if s.Destination == "" {
						undirected = append(undirected, s.Name)
					}
				}
				if len(undirected) > 0 {
					return fail(
						fmt.Sprintf("%d sink(s) have no export destination", len(undirected)),
						map[string]string{"sinks": strings.Join(undirected, ",")},
					)
				}
				return pass("all audit sinks export to a destination")
			},
		},
		orgPolicyEnforced(
			"COMP_UNIFORM_BUCKET_ACCESS",
			models.CategoryCompliance,
			"Uniform bucket-level access is enforced by org policy",
			"constraints/storage.uniformBucketLevelAccess",
			"Enforce constraints/storage.uniformBucketLevelAccess so object ACLs cannot bypass bucket policy.",
			models.SeverityHigh,
		),
		orgPolicyEnforced(
			"COMP_NO_EXTERNAL_VM_IP",
			models.CategoryCompliance,
			"External VM IPs are banned by org policy",
			"constraints/compute.vmExternalIpAccess",
			"Enforce constraints/compute.vmExternalIpAccess to keep workloads off the public internet.",
			models.SeverityMedium,
		),
	}
}
