// Package network provides the network exposure rule pack.
package network

import "github.com/pankaj-dahiya-devops/kubeguard/internal/rules"

// New returns the network exposure rules.
func New() []rules.Rule {
	return []rules.Rule{
		rules.ServicePublicLoadBalancerRule{}, // K8S_SERVICE_PUBLIC_LOADBALANCER
	}
}
