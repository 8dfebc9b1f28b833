// Package facts defines the narrow, read-only interface through which checks
// observe cloud state, together with the typed fact structs and the error
// taxonomy the executor relies on.
//
// Implementations must never apply business logic or produce findings; they
// only fetch and translate raw provider state. They must also never mutate
// cloud state: the fact surface is strictly read-only.
package facts

import (
	"context"
	"errors"
)

// Sentinel errors returned by providers. The executor translates them:
// Unavailable → SKIP, Unauthorized → FAIL with an access-grant remediation
// hint, NotFound is check-specific (an absent org policy is a legitimate
// answer, not a provider failure).
var (
	ErrUnavailable  = errors.New("facts: capability unavailable")
	ErrUnauthorized = errors.New("facts: unauthorized")
	ErrNotFound     = errors.New("facts: not found")
	ErrRateLimited  = errors.New("facts: rate limited")
)

// IsTransient reports whether err is worth one retry before giving up:
// provider rate limits and request timeouts.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, context.DeadlineExceeded)
}

// OrgPolicy is the enforcement state of one organization policy constraint.
type OrgPolicy struct {
	Constraint string `json:"constraint"`
	Enforced   bool   `json:"enforced"`
}

// IAMBinding is one (role, member) pair from a project IAM policy.
type IAMBinding struct {
	Role   string `json:"role"`
	Member string `json:"member"`
}

// FirewallRule is a single ingress/egress rule.
type FirewallRule struct {
	Name         string   `json:"name"`
	Direction    string   `json:"direction"`
	SourceRanges []string `json:"source_ranges"`
	AllowedPorts []string `json:"allowed_ports"`
}

// StorageACL is one access-control entry on a storage bucket.
type StorageACL struct {
	Role    string   `json:"role"`
	Members []string `json:"members"`
}

// AuditSink is a configured audit-log export sink.
type AuditSink struct {
	Name        string `json:"name"`
	Filter      string `json:"filter"`
	Destination string `json:"destination,omitempty"`
}

// Provider supplies point-in-time cloud-state facts to checks.
//
// Every call is a blocking network read; callers bound it with a context
// deadline. Calls may fail with ErrUnavailable when the underlying platform
// does not support the signal, or ErrUnauthorized when read access is missing.
type Provider interface {
	// GetOrgPolicy returns the enforcement state of one constraint.
	// Returns ErrNotFound when the constraint has no policy set.
	GetOrgPolicy(ctx context.Context, constraint string) (*OrgPolicy, error)

	// GetIAMPolicy returns all role bindings on the project.
	GetIAMPolicy(ctx context.Context, project string) ([]IAMBinding, error)

	// GetFirewallRules returns the project's firewall rules.
	GetFirewallRules(ctx context.Context, project string) ([]FirewallRule, error)

	// GetStorageACL returns the access-control entries of one bucket.
	GetStorageACL(ctx context.Context, bucket string) ([]StorageACL, error)

	// GetAuditSinks returns the project's audit-log sinks.
	GetAuditSinks(ctx context.Context, project string) ([]AuditSink, error)
}
