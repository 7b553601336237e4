package kubernetes

import k8sclient "k8s.io/client-go/kubernetes"

// KubeClientProvider builds clientsets for the kubeconfig contexts a scan
// targets. It abstracts kubeconfig loading so the scan engine and its tests
// can inject fake clientsets without touching the filesystem.
type KubeClientProvider interface {
	// ClientsetForContext returns a clientset and the resolved ClusterInfo for
	// the given kubeconfig context. An empty string selects the kubeconfig's
	// current context (the default scan target).
	ClientsetForContext(contextName string) (k8sclient.Interface, ClusterInfo, error)
}

// DefaultKubeClientProvider resolves kubeconfig from $KUBECONFIG or
// ~/.kube/config and builds a real clientset for live-cluster scans.
type DefaultKubeClientProvider struct{}

// NewDefaultKubeClientProvider returns a provider backed by the system kubeconfig.
func NewDefaultKubeClientProvider() *DefaultKubeClientProvider {
	return &DefaultKubeClientProvider{}
}

// ClientsetForContext implements KubeClientProvider.
func (p *DefaultKubeClientProvider) ClientsetForContext(contextName string) (k8sclient.Interface, ClusterInfo, error) {
	return LoadClientset(resolveKubeconfigPath(), contextName)
}
