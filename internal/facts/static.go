package facts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// StaticProvider serves facts from an in-memory snapshot. It backs offline
// scans (--facts fixture file) and unit tests.
//
// Zero-value maps behave as "capability unavailable" rather than "empty": a
// nil OrgPolicies map means the platform has no org-policy surface at all,
// while a non-nil empty map means the surface exists but no constraint is set.
type StaticProvider struct {
	OrgPolicies map[string]bool         `json:"org_policies"`
	IAMBindings []IAMBinding            `json:"iam_bindings"`
	Firewall    []FirewallRule          `json:"firewall_rules"`
	BucketACLs  map[string][]StorageACL `json:"bucket_acls"`
	AuditSinks  []AuditSink             `json:"audit_sinks"`

	// Errs forces specific calls to fail; keyed by method name
	// ("org_policy", "iam_policy", "firewall_rules", "storage_acl",
	// "audit_sinks"). Used in tests to exercise the executor's error paths.
	Errs map[string]error `json:"-"`
}

// LoadStatic reads a JSON fact fixture from path.
func LoadStatic(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facts fixture %q: %w", path, err)
	}
	var p StaticProvider
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse facts fixture %q: %w", path, err)
	}
	return &p, nil
}

func (p *StaticProvider) GetOrgPolicy(ctx context.Context, constraint string) (*OrgPolicy, error) {
	if err := p.forced(ctx, "org_policy"); err != nil {
		return nil, err
	}
	if p.OrgPolicies == nil {
		return nil, ErrUnavailable
	}
	enforced, ok := p.OrgPolicies[constraint]
	if !ok {
		return nil, fmt.Errorf("constraint %s: %w", constraint, ErrNotFound)
	}
	return &OrgPolicy{Constraint: constraint, Enforced: enforced}, nil
}

func (p *StaticProvider) GetIAMPolicy(ctx context.Context, project string) ([]IAMBinding, error) {
	if err := p.forced(ctx, "iam_policy"); err != nil {
		return nil, err
	}
	return p.IAMBindings, nil
}

func (p *StaticProvider) GetFirewallRules(ctx context.Context, project string) ([]FirewallRule, error) {
	if err := p.forced(ctx, "firewall_rules"); err != nil {
		return nil, err
	}
	return p.Firewall, nil
}

func (p *StaticProvider) GetStorageACL(ctx context.Context, bucket string) ([]StorageACL, error) {
	if err := p.forced(ctx, "storage_acl"); err != nil {
		return nil, err
	}
	if p.BucketACLs == nil {
		return nil, ErrUnavailable
	}
	acl, ok := p.BucketACLs[bucket]
	if !ok {
		return nil, fmt.Errorf("bucket %s: %w", bucket, ErrNotFound)
	}
	return acl, nil
}

func (p *StaticProvider) GetAuditSinks(ctx context.Context, project string) ([]AuditSink, error) {
	if err := p.forced(ctx, "audit_sinks"); err != nil {
		return nil, err
	}
	return p.AuditSinks, nil
}

// forced honours context cancellation first, then any injected error.
func (p *StaticProvider) forced(ctx context.Context, method string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Errs == nil {
		return nil
	}
	return p.Errs[method]
}
