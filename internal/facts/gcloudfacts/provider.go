// Package gcloudfacts implements facts.Provider on top of the gcloud CLI.
//
// Every query runs `gcloud ... --format=json` through an injectable Runner and
// parses the JSON output, so the rest of the engine never depends on gcloud's
// text output format. CLI failures are translated into the facts error
// taxonomy: permission errors become ErrUnauthorized, quota errors become
// ErrRateLimited, a missing gcloud binary becomes ErrUnavailable.
package gcloudfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhousteau/genesis-sub002/internal/facts"
)

// Provider shells out to gcloud for each fact query.
type Provider struct {
	runner Runner
}

// New returns a Provider backed by the host gcloud binary.
// Returns facts.ErrUnavailable when gcloud is not on PATH.
func New() (*Provider, error) {
	p := &Provider{runner: OSRunner{}}
	if _, err := p.runner.LookPath("gcloud"); err != nil {
		return nil, fmt.Errorf("gcloud binary not found: %w", facts.ErrUnavailable)
	}
	return p, nil
}

// NewWithRunner returns a Provider using r for process execution. Tests pass
// a fake runner with canned output.
func NewWithRunner(r Runner) *Provider {
	return &Provider{runner: r}
}

func (p *Provider) GetOrgPolicy(ctx context.Context, constraint string) (*facts.OrgPolicy, error) {
	out, err := p.gcloudJSON(ctx,
		"resource-manager", "org-policies", "describe", constraint,
		"--effective")
	if err != nil {
		return nil, err
	}
	var policy struct {
		BooleanPolicy struct {
			Enforced bool `json:"enforced"`
		} `json:"booleanPolicy"`
		ListPolicy map[string]any `json:"listPolicy"`
	}
	if err := json.Unmarshal(out, &policy); err != nil {
		return nil, fmt.Errorf("parse org policy %s: %w", constraint, err)
	}
	enforced := policy.BooleanPolicy.Enforced || len(policy.ListPolicy) > 0
	return &facts.OrgPolicy{Constraint: constraint, Enforced: enforced}, nil
}

func (p *Provider) GetIAMPolicy(ctx context.Context, project string) ([]facts.IAMBinding, error) {
	out, err := p.gcloudJSON(ctx, "projects", "get-iam-policy", project)
	if err != nil {
		return nil, err
	}
	var policy struct {
		Bindings []struct {
			Role    string   `json:"role"`
			Members []string `json:"members"`
		} `json:"bindings"`
	}
	if err := json.Unmarshal(out, &policy); err != nil {
		return nil, fmt.Errorf("parse IAM policy for %s: %w", project, err)
	}
	var bindings []facts.IAMBinding
	for _, b := range policy.Bindings {
		for _, m := range b.Members {
			bindings = append(bindings, facts.IAMBinding{Role: b.Role, Member: m})
		}
	}
	return bindings, nil
}

func (p *Provider) GetFirewallRules(ctx context.Context, project string) ([]facts.FirewallRule, error) {
	out, err := p.gcloudJSON(ctx,
		"compute", "firewall-rules", "list", "--project", project)
	if err != nil {
		return nil, err
	}
	var raw []struct {
		Name         string   `json:"name"`
		Direction    string   `json:"direction"`
		SourceRanges []string `json:"sourceRanges"`
		Allowed      []struct {
			IPProtocol string   `json:"IPProtocol"`
			Ports      []string `json:"ports"`
		} `json:"allowed"`
	}
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("parse firewall rules for %s: %w", project, err)
	}
	rules := make([]facts.FirewallRule, 0, len(raw))
	for _, r := range raw {
		rule := facts.FirewallRule{
			Name:         r.Name,
			Direction:    strings.ToUpper(r.Direction),
			SourceRanges: r.SourceRanges,
		}
		for _, a := range r.Allowed {
			if len(a.Ports) == 0 {
				// Protocol-wide allow with no port restriction.
				rule.AllowedPorts = append(rule.AllowedPorts, "all")
				continue
			}
			rule.AllowedPorts = append(rule.AllowedPorts, a.Ports...)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (p *Provider) GetStorageACL(ctx context.Context, bucket string) ([]facts.StorageACL, error) {
	out, err := p.gcloudJSON(ctx,
		"storage", "buckets", "get-iam-policy", "gs://"+bucket)
	if err != nil {
		return nil, err
	}
	var policy struct {
		Bindings []struct {
			Role    string   `json:"role"`
			Members []string `json:"members"`
		} `json:"bindings"`
	}
	if err := json.Unmarshal(out, &policy); err != nil {
		return nil, fmt.Errorf("parse bucket ACL for %s: %w", bucket, err)
	}
	acls := make([]facts.StorageACL, 0, len(policy.Bindings))
	for _, b := range policy.Bindings {
		acls = append(acls, facts.StorageACL{Role: b.Role, Members: b.Members})
	}
	return acls, nil
}

func (p *Provider) GetAuditSinks(ctx context.Context, project string) ([]facts.AuditSink, error) {
	out, err := p.gcloudJSON(ctx, "logging", "sinks", "list", "--project", project)
	if err != nil {
		return nil, err
	}
	var raw []struct {
		Name        string `json:"name"`
		Filter      string `json:"filter"`
		Destination string `json:"destination"`
	}
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("parse audit sinks for %s: %w", project, err)
	}
	sinks := make([]facts.AuditSink, 0, len(raw))
	for _, s := range raw {
		sinks = append(sinks, facts.AuditSink{Name: s.Name, Filter: s.Filter, Destination: s.Destination})
	}
	return sinks, nil
}

// gcloudJSON runs gcloud with --format=json and classifies failures into the
// facts error taxonomy based on the CLI's error output.
func (p *Provider) gcloudJSON(ctx context.Context, args ...string) ([]byte, error) {
	full := append(args, "--format=json")
	out, err := p.runner.Run(ctx, "gcloud", full...)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// classify maps gcloud CLI failures onto the facts sentinel errors.
func classify(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "PERMISSION_DENIED"), strings.Contains(msg, "403"):
		return fmt.Errorf("%w: %s", facts.ErrUnauthorized, msg)
	case strings.Contains(msg, "NOT_FOUND"), strings.Contains(msg, "404"):
		return fmt.Errorf("%w: %s", facts.ErrNotFound, msg)
	case strings.Contains(msg, "RESOURCE_EXHAUSTED"), strings.Contains(msg, "429"):
		return fmt.Errorf("%w: %s", facts.ErrRateLimited, msg)
	case strings.Contains(msg, "executable file not found"):
		return fmt.Errorf("%w: %s", facts.ErrUnavailable, msg)
	default:
		return err
	}
}
