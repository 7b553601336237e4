package rules

import (
	"testing"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
)

// eksSnap builds a snapshot carrying the given EKS control-plane data.
func eksSnap(eks *models.EKSData) *models.ClusterSnapshot {
	return &models.ClusterSnapshot{
		ContextName:     "test-ctx",
		ClusterProvider: "eks",
		EKSData:         eks,
	}
}

func hardenedEKS() *models.EKSData {
	return &models.EKSData{
		ClusterName:          "prod-cluster",
		Region:               "us-east-1",
		EndpointPublicAccess: false,
		LoggingEnabled:       true,
		OIDCIssuer:           "https://oidc.eks.us-east-1.amazonaws.com/id/ABC123",
	}
}

func TestEKSPublicEndpointRule_PublicAccess_Flagged(t *testing.T) {
	r := EKSPublicEndpointRule{}
	eks := hardenedEKS()
	eks.EndpointPublicAccess = true
	findings := r.Evaluate(snapCtx(eksSnap(eks)))
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.RuleID != "EKS_PUBLIC_ENDPOINT_ENABLED" {
		t.Errorf("RuleID = %q", f.RuleID)
	}
	if f.Severity != models.SeverityHigh {
		t.Errorf("Severity = %q; want HIGH", f.Severity)
	}
	if f.ResourceID != "prod-cluster" {
		t.Errorf("ResourceID = %q; want prod-cluster", f.ResourceID)
	}
	if f.Metadata["region"] != "us-east-1" {
		t.Errorf("Metadata[region] = %v", f.Metadata["region"])
	}
}

func TestEKSPublicEndpointRule_PrivateEndpoint_NotFlagged(t *testing.T) {
	r := EKSPublicEndpointRule{}
	if findings := r.Evaluate(snapCtx(eksSnap(hardenedEKS()))); len(findings) != 0 {
		t.Errorf("expected 0 findings, got %d", len(findings))
	}
}

func TestEKSPublicEndpointRule_NoEKSData(t *testing.T) {
	r := EKSPublicEndpointRule{}
	if findings := r.Evaluate(snapCtx(&models.ClusterSnapshot{ContextName: "test-ctx"})); len(findings) != 0 {
		t.Errorf("expected 0 findings without EKS data, got %d", len(findings))
	}
	if findings := r.Evaluate(RuleContext{}); len(findings) != 0 {
		t.Errorf("expected 0 findings for nil snapshot, got %d", len(findings))
	}
}

func TestEKSClusterLoggingDisabledRule_Disabled_Flagged(t *testing.T) {
	r := EKSClusterLoggingDisabledRule{}
	eks := hardenedEKS()
	eks.LoggingEnabled = false
	findings := r.Evaluate(snapCtx(eksSnap(eks)))
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].RuleID != "EKS_CLUSTER_LOGGING_DISABLED" {
		t.Errorf("RuleID = %q", findings[0].RuleID)
	}
	if findings[0].Severity != models.SeverityMedium {
		t.Errorf("Severity = %q; want MEDIUM", findings[0].Severity)
	}
}

func TestEKSClusterLoggingDisabledRule_Enabled_NotFlagged(t *testing.T) {
	r := EKSClusterLoggingDisabledRule{}
	if findings := r.Evaluate(snapCtx(eksSnap(hardenedEKS()))); len(findings) != 0 {
		t.Errorf("expected 0 findings, got %d", len(findings))
	}
}

func TestEKSOIDCProviderMissingRule_Missing_Flagged(t *testing.T) {
	r := EKSOIDCProviderMissingRule{}
	eks := hardenedEKS()
	eks.OIDCIssuer = ""
	findings := r.Evaluate(snapCtx(eksSnap(eks)))
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].RuleID != "EKS_OIDC_PROVIDER_MISSING" {
		t.Errorf("RuleID = %q", findings[0].RuleID)
	}
	if findings[0].Category != models.CategoryIdentityRisk {
		t.Errorf("Category = %q", findings[0].Category)
	}
}

func TestEKSOIDCProviderMissingRule_Configured_NotFlagged(t *testing.T) {
	r := EKSOIDCProviderMissingRule{}
	if findings := r.Evaluate(snapCtx(eksSnap(hardenedEKS()))); len(findings) != 0 {
		t.Errorf("expected 0 findings, got %d", len(findings))
	}
}
