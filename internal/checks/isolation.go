package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhousteau/genesis-sub002/internal/facts"
	"github.com/jhousteau/genesis-sub002/internal/models"
)

// isolationChecks validate that one project's identities and data cannot
// cross-contaminate another's: domain-restricted sharing, no foreign editors,
// no authenticated-wide bucket access.
func isolationChecks() []CheckDefinition {
	return []CheckDefinition{
		orgPolicyEnforced(
			"ISO_DOMAIN_RESTRICTED_SHARING",
			models.CategoryIsolation,
			"IAM member domains are restricted by org policy",
			"constraints/iam.allowedPolicyMemberDomains",
			"Enforce constraints/iam.allowedPolicyMemberDomains so only organization identities can be granted access.",
			models.SeverityHigh,
		),
		{
			ID:              "ISO_NO_FOREIGN_PRIVILEGED_SA",
			Category:        models.CategoryIsolation,
			Description:     "No service account from another project holds owner or editor",
			RuleRef:         "iam.no_foreign_privileged_sa",
			Remediation:     "Remove owner/editor grants held by service accounts that do not belong to this project.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityCritical,
			Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
				bindings, err := p.GetIAMPolicy(ctx, target.Project)
				if err != nil {
					return models.CheckOutcome{}, err
				}
				var offenders []string
				for _, b := range bindings {
					if !privilegedRole(b.Role) {
						continue
					}
					if strings.HasPrefix(b.Member, "serviceAccount:") && !strings.Contains(b.Member, target.Project) {
						offenders = append(offenders, fmt.Sprintf("%s→%s", b.Member, b.Role))
					}
				}
				if len(offenders) > 0 {
					return fail(
						fmt.Sprintf("%d foreign service account(s) hold privileged roles", len(offenders)),
						map[string]string{"grants": strings.Join(offenders, ",")},
					)
				}
				return pass("no foreign service account holds owner or editor")
			},
		},
		{
			ID:              "ISO_NO_AUTHENTICATED_BUCKET_ACCESS",
			Category:        models.CategoryIsolation,
			Description:     "No bucket grants access to all authenticated users",
			RuleRef:         "storage.no_all_authenticated",
			Remediation:     "Remove allAuthenticatedUsers from bucket ACLs; grant access to named identities instead.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityHigh,
			Run:             bucketACLFree("allAuthenticatedUsers"),
		},
	}
}

// privilegedRole reports whether role grants broad write access.
func privilegedRole(role string) bool {
	return strings.HasSuffix(role, "/owner") || strings.HasSuffix(role, "/editor") ||
		role == "owner" || role == "editor"
}

// bucketACLFree builds a CheckFunc that fails when any in-scope bucket ACL
// contains the given member. With no buckets configured the check is skipped.
func bucketACLFree(member string) CheckFunc {
	return func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
		if len(target.Buckets) == 0 {
			return skip("no buckets configured for this target")
		}
		var exposed []string
		for _, bucket := range target.Buckets {
			acls, err := p.GetStorageACL(ctx, bucket)
			if err != nil {
				return models.CheckOutcome{}, err
			}
			for _, acl := range acls {
				for _, m := range acl.Members {
					if m == member {
						exposed = append(exposed, fmt.Sprintf("%s(%s)", bucket, acl.Role))
					}
				}
			}
		}
		if len(exposed) > 0 {
			return fail(
				fmt.Sprintf("%d bucket grant(s) expose data to %s", len(exposed), member),
				map[string]string{"buckets": strings.Join(exposed, ",")},
			)
		}
		return pass(fmt.Sprintf("no bucket grants %s access", member))
	}
}
