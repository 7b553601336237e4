package eks

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awseks "github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
)

// fakeEKSClient satisfies eksAPIClient with canned responses.
type fakeEKSClient struct {
	out *awseks.DescribeClusterOutput
	err error
}

func (f *fakeEKSClient) DescribeCluster(ctx context.Context, params *awseks.DescribeClusterInput, optFns ...func(*awseks.Options)) (*awseks.DescribeClusterOutput, error) {
	return f.out, f.err
}

// TestCollectWithClient_FullConfig verifies that endpoint access, logging, and
// the OIDC issuer are extracted from a DescribeCluster response.
func TestCollectWithClient_FullConfig(t *testing.T) {
	client := &fakeEKSClient{
		out: &awseks.DescribeClusterOutput{
			Cluster: &ekstypes.Cluster{
				ResourcesVpcConfig: &ekstypes.VpcConfigResponse{
					EndpointPublicAccess: true,
				},
				Logging: &ekstypes.Logging{
					ClusterLogging: []ekstypes.LogSetup{
						{
							Enabled: aws.Bool(true),
							Types:   []ekstypes.LogType{ekstypes.LogTypeAudit},
						},
					},
				},
				Identity: &ekstypes.Identity{
					Oidc: &ekstypes.OIDC{
						Issuer: aws.String("https://oidc.eks.us-east-1.amazonaws.com/id/ABC123"),
					},
				},
			},
		},
	}

	data, err := collectWithClient(context.Background(), client, "prod-cluster", "us-east-1")
	if err != nil {
		t.Fatalf("collectWithClient error: %v", err)
	}
	if data.ClusterName != "prod-cluster" {
		t.Errorf("ClusterName = %q; want prod-cluster", data.ClusterName)
	}
	if data.Region != "us-east-1" {
		t.Errorf("Region = %q; want us-east-1", data.Region)
	}
	if !data.EndpointPublicAccess {
		t.Error("EndpointPublicAccess = false; want true")
	}
	if !data.LoggingEnabled {
		t.Error("LoggingEnabled = false; want true")
	}
	if data.OIDCIssuer != "https://oidc.eks.us-east-1.amazonaws.com/id/ABC123" {
		t.Errorf("OIDCIssuer = %q; want issuer URL", data.OIDCIssuer)
	}
}

// TestCollectWithClient_LoggingDisabled verifies that a log setup with
// Enabled=false does not count as logging enabled.
func TestCollectWithClient_LoggingDisabled(t *testing.T) {
	client := &fakeEKSClient{
		out: &awseks.DescribeClusterOutput{
			Cluster: &ekstypes.Cluster{
				Logging: &ekstypes.Logging{
					ClusterLogging: []ekstypes.LogSetup{
						{
							Enabled: aws.Bool(false),
							Types:   []ekstypes.LogType{ekstypes.LogTypeApi},
						},
					},
				},
			},
		},
	}

	data, err := collectWithClient(context.Background(), client, "dev-cluster", "eu-west-1")
	if err != nil {
		t.Fatalf("collectWithClient error: %v", err)
	}
	if data.LoggingEnabled {
		t.Error("LoggingEnabled = true; want false when no log type is enabled")
	}
	if data.EndpointPublicAccess {
		t.Error("EndpointPublicAccess = true; want false when VPC config is absent")
	}
	if data.OIDCIssuer != "" {
		t.Errorf("OIDCIssuer = %q; want empty when identity is absent", data.OIDCIssuer)
	}
}

// TestCollectWithClient_Errors verifies API errors and empty responses are surfaced.
func TestCollectWithClient_Errors(t *testing.T) {
	apiErr := &fakeEKSClient{err: errors.New("AccessDeniedException")}
	if _, err := collectWithClient(context.Background(), apiErr, "c", "us-east-1"); err == nil {
		t.Error("expected error for failing DescribeCluster, got nil")
	}

	empty := &fakeEKSClient{out: &awseks.DescribeClusterOutput{}}
	if _, err := collectWithClient(context.Background(), empty, "c", "us-east-1"); err == nil {
		t.Error("expected error for empty DescribeCluster response, got nil")
	}
}
