// Package identity provides the ServiceAccount and RBAC hygiene rule pack.
package identity

import "github.com/pankaj-dahiya-devops/kubeguard/internal/rules"

// New returns the identity governance rules.
func New() []rules.Rule {
	return []rules.Rule{
		rules.ServiceAccountTokenAutomountRule{}, // K8S_SERVICEACCOUNT_TOKEN_AUTOMOUNT
		rules.PodDefaultServiceAccountRule{},     // K8S_POD_DEFAULT_SERVICEACCOUNT
	}
}
