package kubernetes

// ClusterInfo identifies a Kubernetes cluster and the kubeconfig context used
// to connect to it.
type ClusterInfo struct {
	// ContextName is the kubeconfig context name used to connect.
	ContextName string

	// Server is the Kubernetes API server URL resolved from the kubeconfig.
	Server string
}

// NodeInfo holds basic node metadata used for provider detection and version
// checks.
type NodeInfo struct {
	Name string

	// KubeletVersion is node.status.nodeInfo.kubeletVersion (e.g. "v1.28.4").
	KubeletVersion string

	// ProviderID is node.Spec.ProviderID, used for cloud provider detection.
	// Format examples: "aws:///us-east-1a/i-xxx", "gce://project/zone/name".
	ProviderID string

	// Labels is a copy of the node's label map, used for provider detection
	// (e.g. "eks.amazonaws.com/nodegroup", "cloud.google.com/gke-nodepool").
	Labels map[string]string
}

// NamespaceInfo holds basic namespace metadata.
type NamespaceInfo struct {
	Name string

	// Labels is a copy of the namespace's label map, used for Pod Security
	// Admission enforcement checks.
	Labels map[string]string
}

// VolumeInfo holds a pod-level volume declaration.
type VolumeInfo struct {
	// Name is the volume name within the pod spec.
	Name string

	// HostPath is the host filesystem path for hostPath volumes; empty for
	// every other volume source.
	HostPath string

	// HostPathType is the declared hostPath type string, empty when unset.
	HostPathType string
}

// MountInfo holds a single container volumeMount.
type MountInfo struct {
	// VolumeName references a VolumeInfo.Name in the owning pod.
	VolumeName string

	// MountPath is the path inside the container.
	MountPath string

	// ReadOnly is the declared read-only flag.
	ReadOnly bool
}

// ContainerInfo holds per-container security data.
type ContainerInfo struct {
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

	// SeccompProfileType is the effective seccomp profile type (container-level
	// overrides pod-level). Values: "RuntimeDefault", "Localhost", "Unconfined",
	// or "" when not set.
	SeccompProfileType string

	// Mounts holds the container's volumeMounts.
	Mounts []MountInfo
}

// PodInfo holds basic pod metadata and its container list.
type PodInfo struct {
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
	Volumes []VolumeInfo

	// Containers holds per-container security data.
	Containers []ContainerInfo
}

// ServiceInfo holds basic Service metadata used for network exposure checks.
type ServiceInfo struct {
	// Name is the Service name.
	Name string

	// Namespace is the Kubernetes namespace that owns this Service.
	Namespace string

	// Type is the Service type string (e.g. "ClusterIP", "NodePort", "LoadBalancer").
	Type string

	// Annotations is a copy of the Service's annotation map.
	Annotations map[string]string
}

// ServiceAccountInfo holds basic ServiceAccount metadata.
type ServiceAccountInfo struct {
	// Name is the ServiceAccount name.
	Name string

	// Namespace is the Kubernetes namespace that owns this ServiceAccount.
	Namespace string

	// AutomountServiceAccountToken reflects the automountServiceAccountToken
	// field. Nil means not set (Kubernetes defaults to true).
	AutomountServiceAccountToken *bool
}

// ClusterData is the inventory collected from a single Kubernetes cluster.
// It is the provider-layer counterpart of models.ClusterSnapshot and the
// input to snapshot conversion.
type ClusterData struct {
	ClusterInfo ClusterInfo

	// ServerVersion is the API server GitVersion from the discovery endpoint.
	// Empty when version discovery failed.
	ServerVersion string

	Nodes           []NodeInfo
	Namespaces      []NamespaceInfo
	Pods            []PodInfo
	Services        []ServiceInfo
	ServiceAccounts []ServiceAccountInfo
}
