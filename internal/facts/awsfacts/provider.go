// Package awsfacts implements facts.Provider on top of AWS SDK v2.
//
// The fact surface maps onto AWS as follows: IAM user/policy attachments
// become role bindings, EC2 security group ingress rules become firewall
// rules, S3 bucket ACL grants become storage ACL entries (with the global
// AllUsers/AuthenticatedUsers grantee groups normalised to the provider-
// neutral "allUsers"/"allAuthenticatedUsers" member names), and CloudTrail
// trails become audit sinks. AWS has no org-policy constraint equivalent, so
// GetOrgPolicy reports the capability as unavailable and the executor skips
// any check that needs it.
package awsfacts

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cloudtrailsvc "github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/jhousteau/genesis-sub002/internal/facts"
)

// ACL grantee group URIs that mean "everyone" / "any authenticated identity".
const (
	allUsersGroupURI     = "http://acs.amazonaws.com/groups/global/AllUsers"
	authUsersGroupURI    = "http://acs.amazonaws.com/groups/global/AuthenticatedUsers"
	memberAllUsers       = "allUsers"
	memberAllAuthedUsers = "allAuthenticatedUsers"
)

// Provider serves facts from an AWS account.
type Provider struct {
	factory clientFactory
	cfg     aws.Config
}

// New loads the default AWS credential chain for the named profile (empty
// means the default profile) and returns a Provider backed by real SDK clients.
func New(ctx context.Context, profile string) (*Provider, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if profile != "" {
		optFns = append(optFns, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Provider{factory: newDefaultClients, cfg: cfg}, nil
}

// NewWithFactory returns a Provider that uses f to create its service clients.
// Pass a fake factory in tests.
func NewWithFactory(f clientFactory) *Provider {
	return &Provider{factory: f}
}

// GetOrgPolicy always reports the capability as unavailable: AWS has no
// org-policy constraint surface.
func (p *Provider) GetOrgPolicy(ctx context.Context, constraint string) (*facts.OrgPolicy, error) {
	return nil, fmt.Errorf("org policy constraints not supported on AWS: %w", facts.ErrUnavailable)
}

func (p *Provider) GetIAMPolicy(ctx context.Context, project string) ([]facts.IAMBinding, error) {
	clients := p.factory(p.cfg)

	paginator := iamsvc.NewListUsersPaginator(clients.IAM, &iamsvc.ListUsersInput{})
	var bindings []facts.IAMBinding
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(fmt.Errorf("list IAM users: %w", err))
		}
		for _, u := range page.Users {
			userName := aws.ToString(u.UserName)
			attached, err := clients.IAM.ListAttachedUserPolicies(ctx, &iamsvc.ListAttachedUserPoliciesInput{
				UserName: u.UserName,
			})
			if err != nil {
				return nil, classify(fmt.Errorf("list policies for %s: %w", userName, err))
			}
			for _, pol := range attached.AttachedPolicies {
				bindings = append(bindings, facts.IAMBinding{
					Role:   aws.ToString(pol.PolicyName),
					Member: "user:" + userName,
				})
			}
		}
	}
	return bindings, nil
}

func (p *Provider) GetFirewallRules(ctx context.Context, project string) ([]facts.FirewallRule, error) {
	clients := p.factory(p.cfg)

	out, err := clients.EC2.DescribeSecurityGroups(ctx, &ec2svc.DescribeSecurityGroupsInput{})
	if err != nil {
		return nil, classify(fmt.Errorf("describe security groups: %w", err))
	}

	var rules []facts.FirewallRule
	for _, sg := range out.SecurityGroups {
		rule := facts.FirewallRule{
			Name:      aws.ToString(sg.GroupId),
			Direction: "INGRESS",
		}
		for _, perm := range sg.IpPermissions {
			rule.AllowedPorts = append(rule.AllowedPorts, portSpan(perm.FromPort, perm.ToPort))
			for _, r := range perm.IpRanges {
				rule.SourceRanges = append(rule.SourceRanges, aws.ToString(r.CidrIp))
			}
			for _, r := range perm.Ipv6Ranges {
				rule.SourceRanges = append(rule.SourceRanges, aws.ToString(r.CidrIpv6))
			}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// portSpan renders a permission's port pair in the syntax the firewall
// checks parse: "all" for all-traffic permissions (nil or -1 ports), a bare
// port when the pair collapses to one port, otherwise a "low-high" range.
func portSpan(from, to *int32) string {
	if from == nil || aws.ToInt32(from) == -1 {
		return "all"
	}
	f := int(aws.ToInt32(from))
	t := int(aws.ToInt32(to))
	if to == nil || t == f {
		return strconv.Itoa(f)
	}
	return fmt.Sprintf("%d-%d", f, t)
}

func (p *Provider) GetStorageACL(ctx context.Context, bucket string) ([]facts.StorageACL, error) {
	clients := p.factory(p.cfg)

	out, err := clients.S3.GetBucketAcl(ctx, &s3svc.GetBucketAclInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return nil, classify(fmt.Errorf("get ACL for bucket %s: %w", bucket, err))
	}

	var acls []facts.StorageACL
	for _, grant := range out.Grants {
		if grant.Grantee == nil {
			continue
		}
		member := aws.ToString(grant.Grantee.ID)
		switch aws.ToString(grant.Grantee.URI) {
		case allUsersGroupURI:
			member = memberAllUsers
		case authUsersGroupURI:
			member = memberAllAuthedUsers
		}
		if member == "" {
			continue
		}
		acls = append(acls, facts.StorageACL{
			Role:    string(grant.Permission),
			Members: []string{member},
		})
	}
	return acls, nil
}

func (p *Provider) GetAuditSinks(ctx context.Context, project string) ([]facts.AuditSink, error) {
	clients := p.factory(p.cfg)

	out, err := clients.CloudTrail.DescribeTrails(ctx, &cloudtrailsvc.DescribeTrailsInput{})
	if err != nil {
		return nil, classify(fmt.Errorf("describe trails: %w", err))
	}

	var sinks []facts.AuditSink
	for _, trail := range out.TrailList {
		sink := facts.AuditSink{
			Name:        aws.ToString(trail.Name),
			Destination: aws.ToString(trail.S3BucketName),
		}
		// A multi-region trail exports everything; single-region trails carry
		// a region-scoped filter so compliance checks can tell them apart.
		if !aws.ToBool(trail.IsMultiRegionTrail) {
			sink.Filter = "region=" + aws.ToString(trail.HomeRegion)
		}
		sinks = append(sinks, sink)
	}
	return sinks, nil
}

// classify maps AWS SDK failures onto the facts sentinel errors.
func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
			return fmt.Errorf("%w: %s", facts.ErrUnauthorized, err)
		case "Throttling", "ThrottlingException", "RequestLimitExceeded", "SlowDown":
			return fmt.Errorf("%w: %s", facts.ErrRateLimited, err)
		case "NoSuchBucket", "NoSuchEntity":
			return fmt.Errorf("%w: %s", facts.ErrNotFound, err)
		}
	}
	return err
}
