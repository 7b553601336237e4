// Package eks provides the EKS control-plane rule pack. These rules are
// evaluated only when the scanned cluster is detected as EKS and control-plane
// data could be collected.
package eks

import "github.com/pankaj-dahiya-devops/kubeguard/internal/rules"

// New returns the EKS platform rules.
func New() []rules.Rule {
	return []rules.Rule{
		rules.EKSPublicEndpointRule{},         // EKS_PUBLIC_ENDPOINT_ENABLED
		rules.EKSClusterLoggingDisabledRule{}, // EKS_CLUSTER_LOGGING_DISABLED
		rules.EKSOIDCProviderMissingRule{},    // EKS_OIDC_PROVIDER_MISSING
	}
}
