// Package cves provides the known-CVE version rule pack. Server-side rules
// need the API server version in the snapshot; client-side rules run only
// when a kubectl version was supplied.
package cves

import "github.com/pankaj-dahiya-devops/kubeguard/internal/rules"

// New returns the CVE version rules, server-side first.
func New() []rules.Rule {
	return []rules.Rule{
		rules.APIServerPrivilegeEscalationCVERule{}, // K8S_CVE_2018_1002105
		rules.APIServerJSONPatchDoSCVERule{},        // K8S_CVE_2019_1002100
		rules.KubectlCpCVERule{},                    // KUBECTL_CVE_2019_1002101
		rules.KubectlCpIncompleteFixCVERule{},       // KUBECTL_CVE_2019_11246
	}
}
