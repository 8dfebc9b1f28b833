package awsfacts

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudtrailsvc "github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cloudtrailtypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/jhousteau/genesis-sub002/internal/facts"
)

type fakeIAM struct {
	users    []iamtypes.User
	policies map[string][]iamtypes.AttachedPolicy
	err      error
}

func (f *fakeIAM) ListUsers(ctx context.Context, params *iamsvc.ListUsersInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListUsersOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &iamsvc.ListUsersOutput{Users: f.users, IsTruncated: false}, nil
}

func (f *fakeIAM) ListAttachedUserPolicies(ctx context.Context, params *iamsvc.ListAttachedUserPoliciesInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListAttachedUserPoliciesOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &iamsvc.ListAttachedUserPoliciesOutput{
		AttachedPolicies: f.policies[aws.ToString(params.UserName)],
	}, nil
}

type fakeEC2 struct {
	groups []ec2types.SecurityGroup
	err    error
}

func (f *fakeEC2) DescribeSecurityGroups(ctx context.Context, params *ec2svc.DescribeSecurityGroupsInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeSecurityGroupsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ec2svc.DescribeSecurityGroupsOutput{SecurityGroups: f.groups}, nil
}

type fakeS3 struct {
	grants []s3types.Grant
	err    error
}

func (f *fakeS3) GetBucketAcl(ctx context.Context, params *s3svc.GetBucketAclInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketAclOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3svc.GetBucketAclOutput{Grants: f.grants}, nil
}

type fakeCloudTrail struct {
	trails []cloudtrailtypes.Trail
	err    error
}

func (f *fakeCloudTrail) DescribeTrails(ctx context.Context, params *cloudtrailsvc.DescribeTrailsInput, optFns ...func(*cloudtrailsvc.Options)) (*cloudtrailsvc.DescribeTrailsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &cloudtrailsvc.DescribeTrailsOutput{TrailList: f.trails}, nil
}

func providerWith(clients *factClients) *Provider {
	return NewWithFactory(func(cfg aws.Config) *factClients { return clients })
}

func TestGetOrgPolicyUnsupported(t *testing.T) {
	p := providerWith(&factClients{})
	_, err := p.GetOrgPolicy(context.Background(), "constraints/iam.disableServiceAccountKeyCreation")
	if !errors.Is(err, facts.ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestGetIAMPolicyBindings(t *testing.T) {
	iam := &fakeIAM{
		users: []iamtypes.User{
			{UserName: aws.String("alice")},
			{UserName: aws.String("bob")},
		},
		policies: map[string][]iamtypes.AttachedPolicy{
			"alice": {{PolicyName: aws.String("AdministratorAccess")}},
			"bob": {
				{PolicyName: aws.String("ReadOnlyAccess")},
				{PolicyName: aws.String("IAMUserChangePassword")},
			},
		},
	}
	p := providerWith(&factClients{IAM: iam})

	bindings, err := p.GetIAMPolicy(context.Background(), "acct")
	if err != nil {
		t.Fatalf("GetIAMPolicy: %v", err)
	}
	if len(bindings) != 3 {
		t.Fatalf("got %d bindings, want 3", len(bindings))
	}
	if bindings[0].Member != "user:alice" || bindings[0].Role != "AdministratorAccess" {
		t.Errorf("first binding = %+v", bindings[0])
	}
}

func TestGetFirewallRulesFromSecurityGroups(t *testing.T) {
	ec2 := &fakeEC2{groups: []ec2types.SecurityGroup{
		{
			GroupId: aws.String("sg-open"),
			IpPermissions: []ec2types.IpPermission{
				{
					FromPort: aws.Int32(22),
					IpRanges: []ec2types.IpRange{{CidrIp: aws.String("0.0.0.0/0")}},
				},
			},
		},
		{
			GroupId: aws.String("sg-wide"),
			IpPermissions: []ec2types.IpPermission{
				{
					Ipv6Ranges: []ec2types.Ipv6Range{{CidrIpv6: aws.String("::/0")}},
				},
			},
		},
		{
			GroupId: aws.String("sg-range"),
			IpPermissions: []ec2types.IpPermission{
				{
					FromPort: aws.Int32(0),
					ToPort:   aws.Int32(1024),
					IpRanges: []ec2types.IpRange{{CidrIp: aws.String("0.0.0.0/0")}},
				},
			},
		},
		{
			GroupId: aws.String("sg-any"),
			IpPermissions: []ec2types.IpPermission{
				{
					FromPort: aws.Int32(-1),
					ToPort:   aws.Int32(-1),
					IpRanges: []ec2types.IpRange{{CidrIp: aws.String("10.0.0.0/8")}},
				},
			},
		},
	}}
	p := providerWith(&factClients{EC2: ec2})

	rules, err := p.GetFirewallRules(context.Background(), "acct")
	if err != nil {
		t.Fatalf("GetFirewallRules: %v", err)
	}
	if len(rules) != 4 {
		t.Fatalf("got %d rules, want 4", len(rules))
	}
	if rules[0].Direction != "INGRESS" || rules[0].AllowedPorts[0] != "22" || rules[0].SourceRanges[0] != "0.0.0.0/0" {
		t.Errorf("first rule = %+v", rules[0])
	}
	if rules[1].AllowedPorts[0] != "all" || rules[1].SourceRanges[0] != "::/0" {
		t.Errorf("portless permission should map to all ports: %+v", rules[1])
	}
	if rules[2].AllowedPorts[0] != "0-1024" {
		t.Errorf("ranged permission should keep both ends: %+v", rules[2])
	}
	if rules[3].AllowedPorts[0] != "all" {
		t.Errorf("all-traffic permission (-1 ports) should map to all ports: %+v", rules[3])
	}
}

func TestGetStorageACLNormalizesGranteeGroups(t *testing.T) {
	s3 := &fakeS3{grants: []s3types.Grant{
		{
			Grantee:    &s3types.Grantee{Type: s3types.TypeGroup, URI: aws.String(allUsersGroupURI)},
			Permission: s3types.PermissionRead,
		},
		{
			Grantee:    &s3types.Grantee{Type: s3types.TypeGroup, URI: aws.String(authUsersGroupURI)},
			Permission: s3types.PermissionRead,
		},
		{
			Grantee:    &s3types.Grantee{Type: s3types.TypeCanonicalUser, ID: aws.String("owner-id")},
			Permission: s3types.PermissionFullControl,
		},
		{
			// Grantee with neither ID nor a known group URI is dropped.
			Grantee:    &s3types.Grantee{Type: s3types.TypeAmazonCustomerByEmail},
			Permission: s3types.PermissionRead,
		},
	}}
	p := providerWith(&factClients{S3: s3})

	acls, err := p.GetStorageACL(context.Background(), "bkt")
	if err != nil {
		t.Fatalf("GetStorageACL: %v", err)
	}
	if len(acls) != 3 {
		t.Fatalf("got %d ACL entries, want 3", len(acls))
	}
	if acls[0].Members[0] != "allUsers" || acls[1].Members[0] != "allAuthenticatedUsers" {
		t.Errorf("group URIs not normalised: %+v", acls)
	}
	if acls[2].Members[0] != "owner-id" {
		t.Errorf("canonical user entry = %+v", acls[2])
	}
}

func TestGetAuditSinksFromTrails(t *testing.T) {
	ct := &fakeCloudTrail{trails: []cloudtrailtypes.Trail{
		{
			Name:               aws.String("org-trail"),
			S3BucketName:       aws.String("audit-bucket"),
			IsMultiRegionTrail: aws.Bool(true),
		},
		{
			Name:               aws.String("regional"),
			S3BucketName:       aws.String("regional-bucket"),
			IsMultiRegionTrail: aws.Bool(false),
			HomeRegion:         aws.String("us-east-1"),
		},
	}}
	p := providerWith(&factClients{CloudTrail: ct})

	sinks, err := p.GetAuditSinks(context.Background(), "acct")
	if err != nil {
		t.Fatalf("GetAuditSinks: %v", err)
	}
	if len(sinks) != 2 {
		t.Fatalf("got %d sinks, want 2", len(sinks))
	}
	if sinks[0].Filter != "" {
		t.Errorf("multi-region trail must be unfiltered, got %q", sinks[0].Filter)
	}
	if sinks[1].Filter != "region=us-east-1" {
		t.Errorf("single-region trail filter = %q", sinks[1].Filter)
	}
}

func TestAPIErrorClassification(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"AccessDenied", facts.ErrUnauthorized},
		{"UnauthorizedOperation", facts.ErrUnauthorized},
		{"Throttling", facts.ErrRateLimited},
		{"SlowDown", facts.ErrRateLimited},
		{"NoSuchBucket", facts.ErrNotFound},
		{"NoSuchEntity", facts.ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			apiErr := &smithy.GenericAPIError{Code: tc.code, Message: "denied"}
			p := providerWith(&factClients{EC2: &fakeEC2{err: apiErr}})
			_, err := p.GetFirewallRules(context.Background(), "acct")
			if !errors.Is(err, tc.want) {
				t.Errorf("code %s: got %v, want %v", tc.code, err, tc.want)
			}
		})
	}

	t.Run("unknown code passes through", func(t *testing.T) {
		apiErr := &smithy.GenericAPIError{Code: "InternalError", Message: "oops"}
		p := providerWith(&factClients{EC2: &fakeEC2{err: apiErr}})
		_, err := p.GetFirewallRules(context.Background(), "acct")
		if errors.Is(err, facts.ErrUnauthorized) || errors.Is(err, facts.ErrRateLimited) || errors.Is(err, facts.ErrNotFound) {
			t.Errorf("unknown code wrongly classified: %v", err)
		}
	})
}
