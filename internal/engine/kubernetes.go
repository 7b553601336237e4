package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/kb"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/policy"
	kube "github.com/pankaj-dahiya-devops/kubeguard/internal/providers/kubernetes"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/rules"
)

// EKSDataCollector collects EKS-specific cluster configuration from the AWS EKS API.
// The interface is defined here (engine layer) so the engine remains independent
// of any AWS provider implementation; callers inject the concrete collector.
// Nil means EKS data collection is disabled and platform rules are skipped.
type EKSDataCollector interface {
	CollectEKSData(ctx context.Context, clusterName, region string) (*models.EKSData, error)
}

// KubernetesEngine orchestrates a live-cluster security scan.
// It supports provider-aware rule evaluation: the configured scan domains
// always run; the platform registry runs only when the cluster is detected
// as EKS.
type KubernetesEngine struct {
	provider     kube.KubeClientProvider
	domains      []ScanDomain
	eksRegistry  rules.RuleRegistry // evaluated only for EKS clusters; may be nil
	eksCollector EKSDataCollector   // optional; nil disables EKS data collection
	catalog      *kb.Catalog
	policy       *policy.PolicyConfig
}

// NewKubernetesEngine constructs a KubernetesEngine with the given scan
// domains. Platform rule evaluation and EKS data collection are disabled.
// Use NewKubernetesEngineWithEKS to enable provider-aware scanning.
func NewKubernetesEngine(
	provider kube.KubeClientProvider,
	domains []ScanDomain,
	catalog *kb.Catalog,
	policyCfg *policy.PolicyConfig,
) *KubernetesEngine {
	return &KubernetesEngine{
		provider: provider,
		domains:  domains,
		catalog:  catalog,
		policy:   policyCfg,
	}
}

// NewKubernetesEngineWithEKS constructs a KubernetesEngine with provider-aware
// scanning. When the cluster is detected as EKS:
//   - eksCollector fetches control-plane configuration (endpoint, logging, OIDC)
//   - eksRegistry rules are evaluated under the "platform" domain
//
// eksRegistry and eksCollector may be nil (each is independently optional).
func NewKubernetesEngineWithEKS(
	provider kube.KubeClientProvider,
	domains []ScanDomain,
	eksRegistry rules.RuleRegistry,
	eksCollector EKSDataCollector,
	catalog *kb.Catalog,
	policyCfg *policy.PolicyConfig,
) *KubernetesEngine {
	return &KubernetesEngine{
		provider:     provider,
		domains:      domains,
		eksRegistry:  eksRegistry,
		eksCollector: eksCollector,
		catalog:      catalog,
		policy:       policyCfg,
	}
}

// RunScan connects to the cluster, collects inventory, detects the cloud
// provider, optionally collects EKS control-plane data, evaluates the scan
// domains, enriches findings from the knowledge base, correlates risk chains,
// and returns a populated ScanReport.
func (e *KubernetesEngine) RunScan(ctx context.Context, opts ScanOptions) (*models.ScanReport, error) {
	clientset, info, err := e.provider.ClientsetForContext(opts.Target)
	if err != nil {
		return nil, fmt.Errorf("connect to cluster: %w", err)
	}

	clusterData, err := kube.CollectClusterData(ctx, clientset, info)
	if err != nil {
		return nil, fmt.Errorf("collect cluster data: %w", err)
	}

	snapshot := convertClusterData(clusterData)
	snapshot.KubectlVersion = opts.KubectlVersion
	snapshot.ClusterProvider = detectClusterProvider(snapshot.Nodes)

	// EKS control-plane collection is non-fatal: platform rules skip on nil.
	if snapshot.ClusterProvider == "eks" && e.eksCollector != nil {
		clusterName, region := extractEKSInfo(snapshot.Nodes)
		if clusterName != "" && region != "" {
			if eksData, eksErr := e.eksCollector.CollectEKSData(ctx, clusterName, region); eksErr == nil {
				snapshot.EKSData = eksData
			}
		}
	}

	domains := e.domains
	if snapshot.ClusterProvider == "eks" && e.eksRegistry != nil {
		domains = append(append([]ScanDomain(nil), domains...),
			ScanDomain{Name: "platform", Registry: e.eksRegistry})
	}

	rctx := rules.RuleContext{Snapshot: snapshot, Policy: e.policy}
	findings := evaluateDomains(rctx, domains, e.policy)
	enrichFindings(findings, e.catalog)
	chains := correlateRiskChains(findings)
	sortFindings(findings)

	summary := computeSummary(findings)
	summary.RiskChains = chains
	if len(chains) > 0 {
		summary.RiskScore = chains[0].Score
	}

	return &models.ScanReport{
		ReportID:    fmt.Sprintf("scan-%d", time.Now().UnixNano()),
		GeneratedAt: time.Now().UTC(),
		ScanType:    string(ScanTypeCluster),
		Cluster:     info.ContextName,
		Summary:     summary,
		Findings:    findings,
		Metadata: map[string]any{
			"cluster_provider": snapshot.ClusterProvider,
			"server_version":   snapshot.ServerVersion,
		},
	}, nil
}

// detectClusterProvider inspects node ProviderID prefixes and well-known labels
// to determine the cloud provider. Returns "eks", "gke", "aks", or "unknown".
func detectClusterProvider(nodes []models.NodeData) string {
	for _, n := range nodes {
		switch {
		case strings.HasPrefix(n.ProviderID, "aws://"):
			return "eks"
		case strings.HasPrefix(n.ProviderID, "gce://"):
			return "gke"
		case strings.HasPrefix(n.ProviderID, "azure://"):
			return "aks"
		}
		if _, ok := n.Labels["eks.amazonaws.com/nodegroup"]; ok {
			return "eks"
		}
		if _, ok := n.Labels["cloud.google.com/gke-nodepool"]; ok {
			return "gke"
		}
		if _, ok := n.Labels["kubernetes.azure.com/cluster"]; ok {
			return "aks"
		}
	}
	return "unknown"
}

// extractEKSInfo derives the EKS cluster name and AWS region from node labels.
// Preferred sources:
//   - cluster name: label "eks.amazonaws.com/cluster-name"
//   - region:       label "topology.kubernetes.io/region"
//
// Falls back to parsing the ProviderID AZ field for the region when the label
// is absent ("aws:///us-east-1a/i-xxx" → strip trailing AZ letter → "us-east-1").
func extractEKSInfo(nodes []models.NodeData) (clusterName, region string) {
	for _, n := range nodes {
		if cn, ok := n.Labels["eks.amazonaws.com/cluster-name"]; ok && cn != "" {
			clusterName = cn
		}
		if r, ok := n.Labels["topology.kubernetes.io/region"]; ok && r != "" {
			region = r
		}
		// Fallback: derive region from ProviderID AZ ("aws:///us-east-1a/i-xxx").
		if region == "" && strings.HasPrefix(n.ProviderID, "aws://") {
			parts := strings.Split(n.ProviderID, "/")
			// parts: ["aws:", "", "", "us-east-1a", "i-xxx"]
			if len(parts) >= 4 && len(parts[3]) > 1 {
				az := parts[3]
				region = az[:len(az)-1] // strip trailing AZ letter
			}
		}
		if clusterName != "" && region != "" {
			return
		}
	}
	return
}

// convertClusterData translates the provider-layer ClusterData into the
// snapshot evaluated by rules.
func convertClusterData(data *kube.ClusterData) *models.ClusterSnapshot {
	snap := &models.ClusterSnapshot{
		ContextName:   data.ClusterInfo.ContextName,
		ServerVersion: data.ServerVersion,
		NodeCount:     len(data.Nodes),
	}
	for _, n := range data.Nodes {
		labels := make(map[string]string, len(n.Labels))
		for key, val := range n.Labels {
			labels[key] = val
		}
		snap.Nodes = append(snap.Nodes, models.NodeData{
			Name:           n.Name,
			KubeletVersion: n.KubeletVersion,
			ProviderID:     n.ProviderID,
			Labels:         labels,
		})
	}
	for _, ns := range data.Namespaces {
		labels := make(map[string]string, len(ns.Labels))
		for key, val := range ns.Labels {
			labels[key] = val
		}
		snap.Namespaces = append(snap.Namespaces, models.NamespaceData{
			Name:   ns.Name,
			Labels: labels,
		})
	}
	for _, pod := range data.Pods {
		pd := models.PodData{
			Name:               pod.Name,
			Namespace:          pod.Namespace,
			ServiceAccountName: pod.ServiceAccountName,
			HostNetwork:        pod.HostNetwork,
			HostPID:            pod.HostPID,
			HostIPC:            pod.HostIPC,
		}
		for _, v := range pod.Volumes {
			pd.Volumes = append(pd.Volumes, models.VolumeData{
				Name:         v.Name,
				HostPath:     v.HostPath,
				HostPathType: v.HostPathType,
			})
		}
		for _, c := range pod.Containers {
			cd := models.ContainerData{
				Name:               c.Name,
				Privileged:         c.Privileged,
				RunAsNonRoot:       c.RunAsNonRoot,
				RunAsUser:          c.RunAsUser,
				SeccompProfileType: c.SeccompProfileType,
			}
			cd.AddedCapabilities = append(cd.AddedCapabilities, c.AddedCapabilities...)
			for _, m := range c.Mounts {
				cd.Mounts = append(cd.Mounts, models.MountData{
					VolumeName: m.VolumeName,
					MountPath:  m.MountPath,
					ReadOnly:   m.ReadOnly,
				})
			}
			pd.Containers = append(pd.Containers, cd)
		}
		snap.Pods = append(snap.Pods, pd)
	}
	for _, svc := range data.Services {
		annotations := make(map[string]string, len(svc.Annotations))
		for key, val := range svc.Annotations {
			annotations[key] = val
		}
		snap.Services = append(snap.Services, models.ServiceData{
			Name:        svc.Name,
			Namespace:   svc.Namespace,
			Type:        svc.Type,
			Annotations: annotations,
		})
	}
	for _, sa := range data.ServiceAccounts {
		snap.ServiceAccounts = append(snap.ServiceAccounts, models.ServiceAccountData{
			Name:                         sa.Name,
			Namespace:                    sa.Namespace,
			AutomountServiceAccountToken: sa.AutomountServiceAccountToken,
		})
	}
	return snap
}
