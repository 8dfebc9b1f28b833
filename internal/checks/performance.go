package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/jhousteau/genesis-sub002/internal/facts"
	"github.com/jhousteau/genesis-sub002/internal/models"
)

// Performance probe thresholds. Breaches are advisory (WARN): a slow or
// sprawling environment degrades scan latency and policy evaluation but is
// not itself a compliance failure.
const (
	iamLatencyBudget = 5 * time.Second
	maxFirewallRules = 200
	maxIAMBindings   = 250
)

func performanceChecks() []CheckDefinition {
	return []CheckDefinition{
		{
			ID:              "PERF_IAM_QUERY_LATENCY",
			Category:        models.CategoryPerformance,
			Description:     "IAM policy query answers within the latency budget",
			RuleRef:         "performance.iam_latency",
			Remediation:     "Investigate API latency; large policies and quota pressure slow every scan.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityLow,
			Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
				start := time.Now()
				if _, err := p.GetIAMPolicy(ctx, target.Project); err != nil {
					return models.CheckOutcome{}, err
				}
				elapsed := time.Since(start)
				if elapsed > iamLatencyBudget {
					return warn(
						fmt.Sprintf("IAM policy query took %s (budget %s)", elapsed.Round(time.Millisecond), iamLatencyBudget),
						nil,
					)
				}
				return pass(fmt.Sprintf("IAM policy query answered in %s", elapsed.Round(time.Millisecond)))
			},
		},
		{
			ID:              "PERF_FIREWALL_RULE_SPRAWL",
			Category:        models.CategoryPerformance,
			Description:     "Firewall rule count is within the manageable range",
			RuleRef:         "performance.firewall_sprawl",
			Remediation:     "Consolidate overlapping firewall rules; sprawl slows evaluation and hides gaps.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityLow,
			Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
				rules, err := p.GetFirewallRules(ctx, target.Project)
				if err != nil {
					return models.CheckOutcome{}, err
				}
				if len(rules) > maxFirewallRules {
					return warn(
						fmt.Sprintf("%d firewall rules exceed the manageable range of %d", len(rules), maxFirewallRules),
						nil,
					)
				}
				return pass(fmt.Sprintf("%d firewall rule(s)", len(rules)))
			},
		},
		{
			ID:              "PERF_IAM_BINDING_SPRAWL",
			Category:        models.CategoryPerformance,
			Description:     "IAM binding count is within the manageable range",
			RuleRef:         "performance.iam_sprawl",
			Remediation:     "Replace per-user grants with group grants to shrink the policy.",
			Frameworks:      allFrameworks,
			DefaultSeverity: models.SeverityLow,
			Run: func(ctx context.Context, target Target, p facts.Provider) (models.CheckOutcome, error) {
				bindings, err := p.GetIAMPolicy(ctx, target.Project)
				if err != nil {
					return models.CheckOutcome{}, err
				}
				if len(bindings) > maxIAMBindings {
					return warn(
						fmt.Sprintf("%d IAM bindings exceed the manageable range of %d", len(bindings), maxIAMBindings),
						nil,
					)
				}
				return pass(fmt.Sprintf("%d IAM binding(s)", len(bindings)))
			},
		},
	}
}
