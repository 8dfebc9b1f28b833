package checks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhousteau/genesis-sub002/internal/facts"
	"github.com/jhousteau/genesis-sub002/internal/models"
)

// Source ranges that mean "the whole internet".
var openToWorld = map[string]struct{}{
	"0.0.0.0/0": {},
	"::/0":      {},
}

// securityChecks cover network and data exposure: open admin ports, public
// buckets, and anonymous IAM grants.
func securityChecks() []CheckDefinition {
	return []CheckDefinition{
		openPortCheck(
			"SEC_NO_OPEN_SSH",
			"No firewall rule exposes SSH to the internet",
			"firewall.no_open_ssh",
			"Restrict port 22 ingress to known CIDR ranges or use identity-aware tunneling.",
			"22",
		),
		openPortCheck(
			"SEC_NO_OPEN_RDP",
			"No firewall rule exposes RDP to the internet",
			"firewall.no_open_rdp",
			"Restrict port 3389 ingress to known CIDR ranges.",
			"3389",
		),
		{
			ID:              "SEC_NO_PUBLIC_BUCKET",
			Category:        models.CategorySecurity,
			Description:     "No bucket grants public access",
			RuleRef:         "storage.no_public_access",
			Remediation:     "Remove allUsers from bucket ACLs and enable public access prevention.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityHigh,
			Run:             bucketACLFree("allUsers"),
		},
		{
			ID:              "SEC_NO_ANONYMOUS_IAM_GRANT",
			Category:        models.CategorySecurity,
			Description:     "Project IAM policy grants nothing to anonymous principals",
			RuleRef:         "iam.no_anonymous_grant",
			Remediation:     "Remove allUsers and allAuthenticatedUsers members from the project IAM policy.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityCritical,
			Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
				bindings, err := p.GetIAMPolicy(ctx, target.Project)
				if err != nil {
					return models.CheckOutcome{}, err
				}
				var offenders []string
				for _, b := range bindings {
					if b.Member == "allUsers" || b.Member == "allAuthenticatedUsers" {
						offenders = append(offenders, fmt.Sprintf("%s→%s", b.Member, b.Role))
					}
				}
				if len(offenders) > 0 {
					return fail(
						fmt.Sprintf("%d anonymous IAM grant(s) on the project", len(offenders)),
						map[string]string{"grants": strings.Join(offenders, ",")},
					)
				}
				return pass("no anonymous principals in the project IAM policy")
			},
		},
	}
}

// openPortCheck builds a check that fails when any ingress rule allows the
// given port (or all ports) from an internet-wide source range.
func openPortCheck(id, desc, ruleRef, remediation, port string) CheckDefinition {
	return CheckDefinition{
		ID:              id,
		Category:        models.CategorySecurity,
		Description:     desc,
		RuleRef:         ruleRef,
		Remediation:     remediation,
		Frameworks:      allFrameworks,
		DefaultSeverity: models.SeverityCritical,
		Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
			rules, err := p.GetFirewallRules(ctx, target.Project)
			if err != nil {
				return models.CheckOutcome{}, err
			}
			var open []string
			for _, rule := range rules {
				if !strings.EqualFold(rule.Direction, "INGRESS") {
					continue
				}
				if !ruleAllowsPort(rule, port) || !ruleOpenToWorld(rule) {
					continue
				}
				open = append(open, rule.Name)
			}
			if len(open) > 0 {
				return fail(
					fmt.Sprintf("%d firewall rule(s) expose port %s to the internet", len(open), port),
					map[string]string{"rules": strings.Join(open, ",")},
				)
			}
			return pass(fmt.Sprintf("port %s is not exposed to the internet", port))
		},
	}
}

func ruleAllowsPort(rule facts.FirewallRule, port string) bool {
	want, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	for _, p := range rule.AllowedPorts {
		if p == port || p == "all" {
			return true
		}
		// Port ranges use "low-high" notation.
		lowStr, highStr, ok := strings.Cut(p, "-")
		if !ok {
			continue
		}
		low, errLow := strconv.Atoi(lowStr)
		high, errHigh := strconv.Atoi(highStr)
		if errLow == nil && errHigh == nil && low <= want && want <= high {
			return true
		}
	}
	return false
}

func ruleOpenToWorld(rule facts.FirewallRule) bool {
	for _, r := range rule.SourceRanges {
		if _, ok := openToWorld[r]; ok {
			return true
		}
	}
	return false
}
