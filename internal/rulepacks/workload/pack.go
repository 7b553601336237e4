// Package workload provides the pod and namespace security rule pack.
// These rules apply to any Kubernetes cluster or declared manifest set.
package workload

import "github.com/pankaj-dahiya-devops/kubeguard/internal/rules"

// New returns the complete set of workload security rules ordered by
// severity: CRITICAL first, then HIGH, then MEDIUM.
func New() []rules.Rule {
	return []rules.Rule{
		// CRITICAL
		rules.PodVarLogMountRule{},           // K8S_POD_VARLOG_MOUNT
		rules.PodRuntimeSocketMountRule{},    // K8S_POD_RUNTIME_SOCKET_MOUNT
		rules.PodPrivilegedContainerRule{},   // K8S_POD_PRIVILEGED_CONTAINER

		// HIGH
		rules.PodSensitiveHostPathMountRule{}, // K8S_POD_SENSITIVE_HOSTPATH_MOUNT
		rules.PodHostNamespaceRule{},          // K8S_POD_HOST_NAMESPACE
		rules.PodRunAsRootRule{},              // K8S_POD_RUN_AS_ROOT
		rules.PodCapSysAdminRule{},            // K8S_POD_CAP_SYS_ADMIN

		// MEDIUM
		rules.PodNoSeccompRule{},       // K8S_POD_NO_SECCOMP
		rules.NamespacePSANotSetRule{}, // K8S_NAMESPACE_PSA_NOT_SET
	}
}
