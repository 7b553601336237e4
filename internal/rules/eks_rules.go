package rules

import (
	"fmt"
	"time"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/kb"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
)

// eksFinding builds the shared finding shape for EKS control-plane rules.
func eksFinding(ruleID, kbID string, eks *models.EKSData, severity models.Severity, category models.Category, evidence, explanation string) []models.Finding {
	return []models.Finding{
		{
			ID:           fmt.Sprintf("%s:%s", ruleID, eks.ClusterName),
			RuleID:       ruleID,
			KBID:         kbID,
			ResourceID:   eks.ClusterName,
			ResourceType: models.ResourceK8sCluster,
			Cluster:      eks.ClusterName,
			Severity:     severity,
			Category:     category,
			Evidence:     evidence,
			Explanation:  explanation,
			DetectedAt:   time.Now().UTC(),
			Metadata: map[string]any{
				"cluster_name": eks.ClusterName,
				"region":       eks.Region,
			},
		},
	}
}

// ── EKS_PUBLIC_ENDPOINT_ENABLED ──────────────────────────────────────────────

// EKSPublicEndpointRule fires when the EKS cluster API server endpoint is
// publicly accessible from the internet.
type EKSPublicEndpointRule struct{}

func (r EKSPublicEndpointRule) ID() string   { return "EKS_PUBLIC_ENDPOINT_ENABLED" }
func (r EKSPublicEndpointRule) KBID() string { return kb.KGV017EKSPublicEndpoint }
func (r EKSPublicEndpointRule) Name() string { return "EKS Control Plane Endpoint Publicly Accessible" }

func (r EKSPublicEndpointRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.EKSData == nil {
		return nil
	}
	eks := ctx.Snapshot.EKSData
	if !eks.EndpointPublicAccess {
		return nil
	}
	return eksFinding(
		r.ID(), r.KBID(), eks,
		models.SeverityHigh, models.CategoryNetworkExposure,
		"resourcesVpcConfig.endpointPublicAccess == true",
		fmt.Sprintf(
			"EKS cluster %q has the API server endpoint set to public access; the "+
				"Kubernetes control plane is reachable from any IP on the internet.",
			eks.ClusterName,
		),
	)
}

// ── EKS_CLUSTER_LOGGING_DISABLED ─────────────────────────────────────────────

// EKSClusterLoggingDisabledRule fires when no EKS control-plane log types are
// enabled. Without logging, audit and authentication events cannot be reviewed
// for anomalies or security incidents.
type EKSClusterLoggingDisabledRule struct{}

func (r EKSClusterLoggingDisabledRule) ID() string   { return "EKS_CLUSTER_LOGGING_DISABLED" }
func (r EKSClusterLoggingDisabledRule) KBID() string { return kb.KGV018EKSLoggingDisabled }
func (r EKSClusterLoggingDisabledRule) Name() string { return "EKS Control Plane Logging Not Enabled" }

func (r EKSClusterLoggingDisabledRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.EKSData == nil {
		return nil
	}
	eks := ctx.Snapshot.EKSData
	if eks.LoggingEnabled {
		return nil
	}
	return eksFinding(
		r.ID(), r.KBID(), eks,
		models.SeverityMedium, models.CategoryInformationDisclosure,
		"no control-plane log types enabled",
		fmt.Sprintf(
			"EKS cluster %q has no control-plane log types enabled; API server, "+
				"audit, and authenticator logs are all disabled.",
			eks.ClusterName,
		),
	)
}

// ── EKS_OIDC_PROVIDER_MISSING ────────────────────────────────────────────────

// EKSOIDCProviderMissingRule fires when the EKS cluster has no OIDC provider
// configured. Without one, IAM Roles for Service Accounts cannot be used and
// workloads fall back to the shared node instance role.
type EKSOIDCProviderMissingRule struct{}

func (r EKSOIDCProviderMissingRule) ID() string   { return "EKS_OIDC_PROVIDER_MISSING" }
func (r EKSOIDCProviderMissingRule) KBID() string { return kb.KGV019EKSOIDCMissing }
func (r EKSOIDCProviderMissingRule) Name() string { return "EKS OIDC Provider Not Configured" }

func (r EKSOIDCProviderMissingRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.EKSData == nil {
		return nil
	}
	eks := ctx.Snapshot.EKSData
	if eks.OIDCIssuer != "" {
		return nil
	}
	return eksFinding(
		r.ID(), r.KBID(), eks,
		models.SeverityMedium, models.CategoryIdentityRisk,
		"identity.oidc.issuer is empty",
		fmt.Sprintf(
			"EKS cluster %q has no OIDC provider; workloads cannot use IAM Roles "+
				"for Service Accounts and share the node instance role instead.",
			eks.ClusterName,
		),
	)
}
