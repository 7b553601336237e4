package models

// NodeData holds processed node data consumed by rules.
type NodeData struct {
	// Name is the Kubernetes node name.
	Name string

	// KubeletVersion is the kubelet version reported in node.status.nodeInfo.
	KubeletVersion string

	// ProviderID is node.Spec.ProviderID, used for cloud provider detection.
	// Format examples: "aws:///us-east-1a/i-xxx", "gce://project/zone/name".
	ProviderID string

	// Labels is a copy of the node's label map, used for provider detection
	// (e.g. "eks.amazonaws.com/nodegroup", "cloud.google.com/gke-nodepool").
	Labels map[string]string
}

// NamespaceData holds processed namespace data consumed by rules.
type NamespaceData struct {
	// Name is the Kubernetes namespace name.
	Name string

	// Labels is a copy of the namespace's label map, used for Pod Security
	// Admission enforcement checks.
	Labels map[string]string
}

// VolumeData holds pod-level volume data consumed by rules.
type VolumeData struct {
	// Name is the volume name within the pod spec.
	Name string

	// HostPath is the host filesystem path for hostPath volumes.
	// Empty for every other volume source.
	HostPath string

	// HostPathType is the declared hostPath type ("Directory", "Socket", ...).
	// Empty when not set or not a hostPath volume.
	HostPathType string
}

// MountData holds a single container volumeMount consumed by rules.
type MountData struct {
	// VolumeName references a VolumeData.Name in the owning pod.
	VolumeName string

	// MountPath is the path inside the container.
	MountPath string

	// ReadOnly is the declared read-only flag. A read-only mount does not
	// neutralize hostPath risks: the kubelet log-fetch escalation works
	// through symlinks the pod can already follow.
	ReadOnly bool
}

// ContainerData holds per-container security data consumed by rules.
type ContainerData struct {
	// Name is the container name within the pod spec.
	Name string

	// Privileged is true when securityContext.privileged == true.
	Privileged bool

	// RunAsNonRoot is the effective runAsNonRoot flag (container-level
	// overrides pod-level). Nil means not configured.
	RunAsNonRoot *bool

	// RunAsUser is the effective UID (container-level overrides pod-level).
	// Nil means not configured.
	RunAsUser *int64

	// AddedCapabilities lists the Linux capabilities added via
	// securityContext.capabilities.add.
	AddedCapabilities []string

	// SeccompProfileType is the effective seccomp profile type
	// (container-level overrides pod-level). Values: "RuntimeDefault",
	// "Localhost", "Unconfined", or "" when not set.
	SeccompProfileType string

	// Mounts holds the container's volumeMounts.
	Mounts []MountData
}

// PodData holds processed pod data consumed by rules.
type PodData struct {
	// Name is the pod name.
	Name string

	// Namespace is the Kubernetes namespace that owns this pod.
	Namespace string

	// ServiceAccountName is the service account the pod runs as
	// (spec.serviceAccountName).
	ServiceAccountName string

	// HostNetwork is true when spec.hostNetwork == true.
	HostNetwork bool

	// HostPID is true when spec.hostPID == true.
	HostPID bool

	// HostIPC is true when spec.hostIPC == true.
	HostIPC bool

	// Volumes holds the pod-level volume declarations.
	Volumes []VolumeData

	// Containers holds per-container security data.
	Containers []ContainerData
}

// ServiceData holds processed Service data consumed by rules.
type ServiceData struct {
	// Name is the Service name.
	Name string

	// Namespace is the Kubernetes namespace that owns this Service.
	Namespace string

	// Type is the Service type string (e.g. "ClusterIP", "NodePort", "LoadBalancer").
	Type string

	// Annotations is a copy of the Service's annotation map.
	Annotations map[string]string
}

// ServiceAccountData holds processed ServiceAccount data consumed by rules.
type ServiceAccountData struct {
	// Name is the ServiceAccount name.
	Name string

	// Namespace is the Kubernetes namespace that owns this ServiceAccount.
	Namespace string

	// AutomountServiceAccountToken reflects the automountServiceAccountToken
	// field. Nil means not set (Kubernetes defaults to true).
	AutomountServiceAccountToken *bool
}

// EKSData holds EKS control-plane configuration consumed by platform rules.
// Nil on non-EKS clusters and on manifest scans.
type EKSData struct {
	// ClusterName is the EKS cluster name derived from node labels.
	ClusterName string

	// Region is the AWS region hosting the cluster.
	Region string

	// EndpointPublicAccess is true when the API server endpoint is reachable
	// from the internet.
	EndpointPublicAccess bool

	// LoggingEnabled is true when at least one control-plane log type is on.
	LoggingEnabled bool

	// OIDCIssuer is the cluster OIDC issuer URL; empty when no provider is
	// configured.
	OIDCIssuer string
}

// ClusterSnapshot is the normalized resource graph evaluated by rules.
// It is built once per scan, from a live cluster or from declared manifests,
// and is passed via RuleContext.Snapshot.
type ClusterSnapshot struct {
	// ContextName is the kubeconfig context name for live scans, or the
	// manifest source path for declared scans.
	ContextName string

	// ClusterProvider is "eks", "gke", "aks", or "unknown".
	// Always "unknown" for manifest scans.
	ClusterProvider string

	// ServerVersion is the API server GitVersion (e.g. "v1.28.4").
	// Empty for manifest scans.
	ServerVersion string

	// KubectlVersion is the operator's kubectl client version, when supplied.
	// Empty disables client-side CVE rules.
	KubectlVersion string

	// NodeCount is the total number of nodes in the cluster.
	NodeCount int

	Nodes           []NodeData
	Namespaces      []NamespaceData
	Pods            []PodData
	Services        []ServiceData
	ServiceAccounts []ServiceAccountData

	// EKSData holds EKS control-plane configuration; nil disables EKS rules.
	EKSData *EKSData
}
