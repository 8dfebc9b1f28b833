package facts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStaticFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.json")
	fixture := `{
		"org_policies": {"constraints/iam.disableServiceAccountKeyCreation": true},
		"iam_bindings": [{"role": "roles/viewer", "member": "user:a@example.com"}],
		"firewall_rules": [{"name": "r1", "direction": "INGRESS", "source_ranges": ["10.0.0.0/8"], "allowed_ports": ["443"]}],
		"bucket_acls": {"b1": [{"role": "READER", "members": ["user:a@example.com"]}]},
		"audit_sinks": [{"name": "s1", "filter": "", "destination": "gs://audit"}]
	}`
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadStatic(path)
	if err != nil {
		t.Fatalf("LoadStatic: %v", err)
	}

	ctx := context.Background()

	policy, err := p.GetOrgPolicy(ctx, "constraints/iam.disableServiceAccountKeyCreation")
	if err != nil || !policy.Enforced {
		t.Errorf("GetOrgPolicy = %+v, %v", policy, err)
	}
	bindings, err := p.GetIAMPolicy(ctx, "any")
	if err != nil || len(bindings) != 1 {
		t.Errorf("GetIAMPolicy = %v, %v", bindings, err)
	}
	rules, err := p.GetFirewallRules(ctx, "any")
	if err != nil || len(rules) != 1 || rules[0].AllowedPorts[0] != "443" {
		t.Errorf("GetFirewallRules = %v, %v", rules, err)
	}
	acls, err := p.GetStorageACL(ctx, "b1")
	if err != nil || len(acls) != 1 {
		t.Errorf("GetStorageACL = %v, %v", acls, err)
	}
	sinks, err := p.GetAuditSinks(ctx, "any")
	if err != nil || len(sinks) != 1 {
		t.Errorf("GetAuditSinks = %v, %v", sinks, err)
	}
}

func TestLoadStaticBadFile(t *testing.T) {
	if _, err := LoadStatic(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("missing fixture should error")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{not json"), 0o644)
	if _, err := LoadStatic(path); err == nil {
		t.Error("malformed fixture should error")
	}
}

func TestStaticNilMapsMeanUnavailable(t *testing.T) {
	p := &StaticProvider{}
	ctx := context.Background()

	if _, err := p.GetOrgPolicy(ctx, "constraints/x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("nil org policies: got %v, want ErrUnavailable", err)
	}
	if _, err := p.GetStorageACL(ctx, "b"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("nil bucket ACLs: got %v, want ErrUnavailable", err)
	}
}

func TestStaticEmptyMapsMeanNotFound(t *testing.T) {
	p := &StaticProvider{
		OrgPolicies: map[string]bool{},
		BucketACLs:  map[string][]StorageACL{},
	}
	ctx := context.Background()

	if _, err := p.GetOrgPolicy(ctx, "constraints/x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unset constraint: got %v, want ErrNotFound", err)
	}
	if _, err := p.GetStorageACL(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown bucket: got %v, want ErrNotFound", err)
	}
}

func TestStaticForcedErrors(t *testing.T) {
	p := &StaticProvider{
		IAMBindings: []IAMBinding{{Role: "roles/viewer", Member: "user:a@example.com"}},
		Errs:        map[string]error{"iam_policy": ErrUnauthorized},
	}

	if _, err := p.GetIAMPolicy(context.Background(), "any"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("got %v, want injected ErrUnauthorized", err)
	}
}

func TestStaticHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &StaticProvider{IAMBindings: []IAMBinding{}}
	if _, err := p.GetIAMPolicy(ctx, "any"); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(ErrRateLimited) {
		t.Error("rate limit should be transient")
	}
	if !IsTransient(context.DeadlineExceeded) {
		t.Error("deadline exceeded should be transient")
	}
	if IsTransient(ErrUnauthorized) || IsTransient(ErrUnavailable) || IsTransient(nil) {
		t.Error("only rate limits and timeouts are transient")
	}
}
