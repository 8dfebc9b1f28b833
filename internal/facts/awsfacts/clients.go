package awsfacts

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudtrailsvc "github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
)

// iamAPIClient is the narrow IAM interface used to reconstruct role bindings.
// It embeds ListUsersAPIClient so the SDK paginator can be used directly.
type iamAPIClient interface {
	iamsvc.ListUsersAPIClient
	ListAttachedUserPolicies(ctx context.Context, params *iamsvc.ListAttachedUserPoliciesInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListAttachedUserPoliciesOutput, error)
}

// ec2APIClient is the narrow EC2 interface for security group collection.
type ec2APIClient interface {
	DescribeSecurityGroups(ctx context.Context, params *ec2svc.DescribeSecurityGroupsInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeSecurityGroupsOutput, error)
}

// s3APIClient is the narrow S3 interface for bucket ACL inspection.
type s3APIClient interface {
	GetBucketAcl(ctx context.Context, params *s3svc.GetBucketAclInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketAclOutput, error)
}

// cloudTrailAPIClient is the narrow CloudTrail interface for audit-sink facts.
type cloudTrailAPIClient interface {
	DescribeTrails(ctx context.Context, params *cloudtrailsvc.DescribeTrailsInput, optFns ...func(*cloudtrailsvc.Options)) (*cloudtrailsvc.DescribeTrailsOutput, error)
}

// factClients bundles all AWS service clients used by the provider.
type factClients struct {
	IAM        iamAPIClient
	EC2        ec2APIClient
	S3         s3APIClient
	CloudTrail cloudTrailAPIClient
}

// clientFactory creates factClients from an AWS config.
// Injection point: tests replace this with a function returning fake clients.
type clientFactory func(cfg aws.Config) *factClients

// newDefaultClients creates production AWS SDK clients from the given config.
func newDefaultClients(cfg aws.Config) *factClients {
	return &factClients{
		IAM:        iamsvc.NewFromConfig(cfg),
		EC2:        ec2svc.NewFromConfig(cfg),
		S3:         s3svc.NewFromConfig(cfg),
		CloudTrail: cloudtrailsvc.NewFromConfig(cfg),
	}
}
