package kb

import "github.com/pankaj-dahiya-devops/kubeguard/internal/models"

// KB entry IDs referenced by rules. Kept as constants so a typo in a rule's
// KBID surfaces as a compile error instead of an unenriched finding.
const (
	KGV001VarLogMount         = "KGV001"
	KGV002RuntimeSocketMount  = "KGV002"
	KGV003HostRootMount       = "KGV003"
	KGV004PrivilegedContainer = "KGV004"
	KGV005HostNamespaces      = "KGV005"
	KGV006RunAsRoot           = "KGV006"
	KGV007CapSysAdmin         = "KGV007"
	KGV008NoSeccomp           = "KGV008"
	KGV009SATokenAutomount    = "KGV009"
	KGV010DefaultSA           = "KGV010"
	KGV011NamespaceNoPSA      = "KGV011"
	KGV012PublicLoadBalancer  = "KGV012"
	KGV013APIServerPECVE      = "KGV013"
	KGV014APIServerDoSCVE     = "KGV014"
	KGV015KubectlCpCVE        = "KGV015"
	KGV016KubectlCpFixCVE     = "KGV016"
	KGV017EKSPublicEndpoint   = "KGV017"
	KGV018EKSLoggingDisabled  = "KGV018"
	KGV019EKSOIDCMissing      = "KGV019"
)

// Default returns the built-in knowledge-base catalog.
// Entries are registered in ID order.
func Default() *Catalog {
	c := NewCatalog()
	for _, e := range builtinEntries {
		c.Register(e)
	}
	return c
}

var builtinEntries = []Entry{
	{
		ID:         KGV001VarLogMount,
		Title:      "Pod With Mount To /var/log",
		Categories: []models.Category{models.CategoryPrivilegeEscalation},
		Description: "A pod mounts the host's /var/log directory (or a parent of it) " +
			"through a hostPath volume. The kubelet serves container log files to the " +
			"API server by following paths under /var/log on the host. A pod that can " +
			"write to that directory can plant a symlink in place of its own log file, " +
			"pointing anywhere on the host filesystem; a subsequent kubectl logs call " +
			"makes the kubelet follow the symlink and return the target file with the " +
			"kubelet's root privileges.",
		Remediation: "Remove the hostPath mount of /var/log from the pod spec. If host " +
			"log access is genuinely needed, mount the narrowest possible subdirectory " +
			"read-only and block hostPath volumes cluster-wide with Pod Security " +
			"Admission or an admission policy.",
		References: []string{
			"https://blog.aquasec.com/kubernetes-security-pod-escape-log-mounts",
			"https://kubernetes.io/docs/concepts/storage/volumes/#hostpath",
		},
	},
	{
		ID:         KGV002RuntimeSocketMount,
		Title:      "Pod With Container Runtime Socket Mount",
		Categories: []models.Category{models.CategoryPrivilegeEscalation, models.CategoryRemoteCodeExec},
		Description: "A pod mounts the container runtime socket (Docker or containerd) " +
			"from the host. Any process in the pod can instruct the runtime to start " +
			"arbitrary privileged containers on the node, which is equivalent to root " +
			"access on the host.",
		Remediation: "Remove the runtime socket mount. Workloads that need to build or " +
			"inspect images should use rootless, daemonless tooling or a dedicated " +
			"builder service instead of the node's runtime socket.",
		References: []string{
			"https://kubernetes.io/docs/concepts/storage/volumes/#hostpath",
		},
	},
	{
		ID:         KGV003HostRootMount,
		Title:      "Pod With Sensitive Host Filesystem Mount",
		Categories: []models.Category{models.CategoryPrivilegeEscalation, models.CategoryAccessRisk},
		Description: "A pod mounts the host's root filesystem or a sensitive system " +
			"directory (/etc, /root, /var/lib/kubelet) through a hostPath volume. The " +
			"pod can read node credentials and kubelet state, and a writable mount " +
			"allows persistent compromise of the node.",
		Remediation: "Remove the hostPath mount or scope it to the narrowest required " +
			"path, read-only. Enforce the restricted Pod Security level on the " +
			"namespace to block hostPath volumes.",
		References: []string{
			"https://kubernetes.io/docs/concepts/security/pod-security-standards/",
		},
	},
	{
		ID:         KGV004PrivilegedContainer,
		Title:      "Privileged Container",
		Categories: []models.Category{models.CategoryPrivilegeEscalation},
		Description: "A container runs with securityContext.privileged == true. " +
			"Privileged containers have every capability and full device access on " +
			"the host; any code execution inside the container is root on the node.",
		Remediation: "Remove the privileged flag. Grant individual capabilities when " +
			"specific kernel features are required, and block privileged pods with " +
			"the baseline Pod Security level.",
		References: []string{
			"https://kubernetes.io/docs/concepts/security/pod-security-standards/",
		},
	},
	{
		ID:         KGV005HostNamespaces,
		Title:      "Pod Sharing Host Namespaces",
		Categories: []models.Category{models.CategoryAccessRisk, models.CategoryInformationDisclosure},
		Description: "A pod runs with hostNetwork, hostPID, or hostIPC enabled. The pod " +
			"shares the corresponding host namespace: it can observe host traffic and " +
			"bind host ports, inspect and signal every host process, or access shared " +
			"memory of host processes.",
		Remediation: "Disable host namespace sharing in the pod spec. Workloads that " +
			"legitimately need it (CNI plugins, node agents) should be isolated in a " +
			"dedicated namespace with an explicit Pod Security exemption.",
		References: []string{
			"https://kubernetes.io/docs/concepts/security/pod-security-standards/",
		},
	},
	{
		ID:         KGV006RunAsRoot,
		Title:      "Container Running As Root",
		Categories: []models.Category{models.CategoryWorkloadMisconfig},
		Description: "A container runs as UID 0 without runAsNonRoot protection. Root " +
			"inside the container lowers the bar for every container escape: kernel " +
			"or runtime vulnerabilities become directly exploitable as host root.",
		Remediation: "Set runAsNonRoot: true and a non-zero runAsUser in the security " +
			"context, and build images whose entrypoint does not require root.",
		References: []string{
			"https://kubernetes.io/docs/tasks/configure-pod-container/security-context/",
		},
	},
	{
		ID:         KGV007CapSysAdmin,
		Title:      "Container With SYS_ADMIN Capability",
		Categories: []models.Category{models.CategoryPrivilegeEscalation},
		Description: "A container adds the SYS_ADMIN capability, which grants a broad " +
			"set of kernel administration operations (mounts, namespaces, device " +
			"control) and is considered equivalent to privileged mode for most " +
			"escape techniques.",
		Remediation: "Drop SYS_ADMIN from securityContext.capabilities.add and grant " +
			"the specific narrower capability the workload actually needs.",
		References: []string{
			"https://man7.org/linux/man-pages/man7/capabilities.7.html",
		},
	},
	{
		ID:         KGV008NoSeccomp,
		Title:      "Container Without Seccomp Profile",
		Categories: []models.Category{models.CategoryWorkloadMisconfig},
		Description: "A container runs without a seccomp profile (or with Unconfined), " +
			"leaving the full host syscall surface reachable and widening the blast " +
			"radius of any code execution inside the container.",
		Remediation: "Set seccompProfile.type: RuntimeDefault on the pod or container " +
			"security context.",
		References: []string{
			"https://kubernetes.io/docs/tutorials/security/seccomp/",
		},
	},
	{
		ID:         KGV009SATokenAutomount,
		Title:      "ServiceAccount Token Automounted",
		Categories: []models.Category{models.CategoryIdentityRisk, models.CategoryAccessRisk},
		Description: "A ServiceAccount leaves automountServiceAccountToken enabled (the " +
			"Kubernetes default), so every pod using it receives an API credential it " +
			"may not need. A compromised pod can replay the token against the API " +
			"server with whatever RBAC the account holds.",
		Remediation: "Set automountServiceAccountToken: false on ServiceAccounts whose " +
			"pods do not call the Kubernetes API, and opt individual pods back in.",
		References: []string{
			"https://kubernetes.io/docs/tasks/configure-pod-container/configure-service-account/",
		},
	},
	{
		ID:         KGV010DefaultSA,
		Title:      "Pod Using Default ServiceAccount",
		Categories: []models.Category{models.CategoryIdentityRisk},
		Description: "A pod runs as the namespace's default ServiceAccount. Permissions " +
			"granted to the default account accumulate across unrelated workloads, " +
			"making least-privilege review impossible.",
		Remediation: "Create a dedicated ServiceAccount per workload and set " +
			"spec.serviceAccountName explicitly.",
		References: []string{
			"https://kubernetes.io/docs/concepts/security/rbac-good-practices/",
		},
	},
	{
		ID:         KGV011NamespaceNoPSA,
		Title:      "Namespace Without Pod Security Admission",
		Categories: []models.Category{models.CategoryWorkloadMisconfig},
		Description: "A namespace carries no pod-security.kubernetes.io enforcement " +
			"label, so no Pod Security Standard is applied and privileged or " +
			"host-mounting pods are admitted without restriction.",
		Remediation: "Label the namespace with pod-security.kubernetes.io/enforce: " +
			"baseline (or restricted) and add warn/audit labels for the next " +
			"stricter level.",
		References: []string{
			"https://kubernetes.io/docs/concepts/security/pod-security-admission/",
		},
	},
	{
		ID:         KGV012PublicLoadBalancer,
		Title:      "Service Exposing Public Load Balancer",
		Categories: []models.Category{models.CategoryNetworkExposure},
		Description: "A Service of type LoadBalancer is provisioned without an internal " +
			"load-balancer annotation, exposing the backing pods to the internet.",
		Remediation: "Mark the load balancer internal via the cloud provider " +
			"annotation, or front the Service with an ingress controller and " +
			"restrict the Service to ClusterIP.",
		References: []string{
			"https://kubernetes.io/docs/concepts/services-networking/service/#loadbalancer",
		},
	},
	{
		ID:         KGV013APIServerPECVE,
		Title:      "Critical Privilege Escalation CVE (CVE-2018-1002105)",
		Categories: []models.Category{models.CategoryPrivilegeEscalation},
		Description: "The API server version is vulnerable to CVE-2018-1002105. A " +
			"specially crafted upgrade request leaves the backend connection open, " +
			"letting the caller send arbitrary requests over the API server's " +
			"privileged connection to kubelets and aggregated API servers.",
		Remediation: "Upgrade the control plane to a patched release (1.10.11, 1.11.5, " +
			"1.12.3 or later).",
		References: []string{
			"https://nvd.nist.gov/vuln/detail/CVE-2018-1002105",
			"https://github.com/kubernetes/kubernetes/issues/71411",
		},
	},
	{
		ID:         KGV014APIServerDoSCVE,
		Title:      "API Server JSON-Patch Denial of Service (CVE-2019-1002100)",
		Categories: []models.Category{models.CategoryDenialOfService},
		Description: "The API server version is vulnerable to CVE-2019-1002100. Users " +
			"allowed to make patch requests can submit a crafted json-patch that " +
			"consumes excessive resources on the API server, denying service to the " +
			"cluster.",
		Remediation: "Upgrade the control plane to a patched release (1.11.8, 1.12.6, " +
			"1.13.4 or later) and restrict patch permissions in RBAC.",
		References: []string{
			"https://nvd.nist.gov/vuln/detail/CVE-2019-1002100",
		},
	},
	{
		ID:         KGV015KubectlCpCVE,
		Title:      "Kubectl Vulnerable To CVE-2019-1002101",
		Categories: []models.Category{models.CategoryRemoteCodeExec},
		Description: "The kubectl binary in use is vulnerable to CVE-2019-1002101. A " +
			"malicious container can exploit kubectl cp to write files anywhere on " +
			"the operator's machine via a crafted tar archive.",
		Remediation: "Upgrade kubectl to 1.11.9, 1.12.7, 1.13.5, 1.14.0 or later.",
		References: []string{
			"https://nvd.nist.gov/vuln/detail/CVE-2019-1002101",
		},
	},
	{
		ID:         KGV016KubectlCpFixCVE,
		Title:      "Kubectl Vulnerable To CVE-2019-11246",
		Categories: []models.Category{models.CategoryRemoteCodeExec},
		Description: "The kubectl binary in use is vulnerable to CVE-2019-11246, the " +
			"incomplete fix of the kubectl cp path traversal: a crafted tar archive " +
			"from a malicious container can still escape the destination directory " +
			"on the operator's machine.",
		Remediation: "Upgrade kubectl to 1.12.9, 1.13.6, 1.14.2 or later.",
		References: []string{
			"https://nvd.nist.gov/vuln/detail/CVE-2019-11246",
		},
	},
	{
		ID:         KGV017EKSPublicEndpoint,
		Title:      "EKS Control Plane Endpoint Publicly Accessible",
		Categories: []models.Category{models.CategoryNetworkExposure},
		Description: "The EKS cluster's API server endpoint allows public access, " +
			"making the control plane reachable from any IP on the internet.",
		Remediation: "Disable public endpoint access in the cluster's VPC " +
			"configuration and restrict access to private CIDR ranges.",
		References: []string{
			"https://docs.aws.amazon.com/eks/latest/userguide/cluster-endpoint.html",
		},
	},
	{
		ID:         KGV018EKSLoggingDisabled,
		Title:      "EKS Control Plane Logging Not Enabled",
		Categories: []models.Category{models.CategoryInformationDisclosure},
		Description: "The EKS cluster has no control-plane log types enabled; audit " +
			"and authentication events cannot be reviewed after an incident.",
		Remediation: "Enable at least the audit log type in the cluster's logging " +
			"configuration.",
		References: []string{
			"https://docs.aws.amazon.com/eks/latest/userguide/control-plane-logs.html",
		},
	},
	{
		ID:         KGV019EKSOIDCMissing,
		Title:      "EKS OIDC Provider Not Configured",
		Categories: []models.Category{models.CategoryIdentityRisk},
		Description: "The EKS cluster has no OIDC provider, so IAM Roles for Service " +
			"Accounts cannot be used and workloads fall back to the shared node " +
			"instance role.",
		Remediation: "Create an IAM OIDC provider for the cluster and migrate " +
			"workloads to per-ServiceAccount IAM roles.",
		References: []string{
			"https://docs.aws.amazon.com/eks/latest/userguide/enable-iam-roles-for-service-accounts.html",
		},
	},
}
