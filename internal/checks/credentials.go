package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhousteau/genesis-sub002/internal/facts"
	"github.com/jhousteau/genesis-sub002/internal/models"
)

// credentialChecks validate that long-lived service account credentials are
// locked down by policy and that no human identity can mint service tokens.
func credentialChecks() []CheckDefinition {
	return []CheckDefinition{
		orgPolicyEnforced(
			"CRED_SA_KEY_CREATION_DISABLED",
			models.CategoryCredentials,
			"Service account key creation is disabled by org policy",
			"constraints/iam.disableServiceAccountKeyCreation",
			"Enforce constraints/iam.disableServiceAccountKeyCreation so user-managed keys cannot be created.",
			models.SeverityHigh,
		),
		orgPolicyEnforced(
			"CRED_SA_KEY_UPLOAD_DISABLED",
			models.CategoryCredentials,
			"Service account key upload is disabled by org policy",
			"constraints/iam.disableServiceAccountKeyUpload",
			"Enforce constraints/iam.disableServiceAccountKeyUpload to block externally generated key material.",
			models.SeverityMedium,
		),
		{
			ID:              "CRED_NO_USER_TOKEN_CREATOR",
			Category:        models.CategoryCredentials,
			Description:     "No human identity holds serviceAccountTokenCreator",
			RuleRef:         "iam.no_user_token_creator",
			Remediation:     "Remove roles/iam.serviceAccountTokenCreator from user: members; grant it to dedicated service accounts only.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityHigh,
			Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
				bindings, err := p.GetIAMPolicy(ctx, target.Project)
				if err != nil {
					return models.CheckOutcome{}, err
				}
				var offenders []string
				for _, b := range bindings {
					if strings.HasSuffix(b.Role, "serviceAccountTokenCreator") && strings.HasPrefix(b.Member, "user:") {
						offenders = append(offenders, b.Member)
					}
				}
				if len(offenders) > 0 {
					return fail(
						fmt.Sprintf("%d human identity(ies) can mint service account tokens", len(offenders)),
						map[string]string{"members": strings.Join(offenders, ",")},
					)
				}
				return pass("no human identity holds serviceAccountTokenCreator")
			},
		},
	}
}

// orgPolicyEnforced builds a check that passes only when the given boolean
// constraint is enforced. An unset policy is a failure (the control is
// absent), not a provider error.
func orgPolicyEnforced(id string, cat models.Category, desc, constraint, remediation string, sev models.Severity) CheckDefinition {
	return CheckDefinition{
		ID:              id,
		Category:        cat,
		Description:     desc,
		RuleRef:         constraint,
		Remediation:     remediation,
		Frameworks:      allFrameworks,
		DefaultSeverity: sev,
		Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
			policy, err := p.GetOrgPolicy(ctx, constraint)
			if errors.Is(err, facts.ErrNotFound) {
				return fail(fmt.Sprintf("%s has no policy set", constraint), nil)
			}
			if err != nil {
				return models.CheckOutcome{}, err
			}
			if !policy.Enforced {
				return fail(fmt.Sprintf("%s is present but not enforced", constraint), nil)
			}
			return pass(fmt.Sprintf("%s enforced", constraint))
		},
	}
}
