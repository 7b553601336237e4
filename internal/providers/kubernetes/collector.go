package kubernetes

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sclient "k8s.io/client-go/kubernetes"
)

// CollectClusterData collects the security-relevant resource inventory from
// the cluster using the provided clientset and attaches the resolved
// ClusterInfo to the result.
//
// All collections are attempted; an error from any aborts the collection.
// Server version discovery is the exception: a failure there leaves
// ServerVersion empty and the scan proceeds without server-side CVE checks.
// The clientset parameter is an interface so tests can inject a fake clientset.
func CollectClusterData(ctx context.Context, clientset k8sclient.Interface, info ClusterInfo) (*ClusterData, error) {
	nodes, err := collectNodes(ctx, clientset)
	if err != nil {
		return nil, fmt.Errorf("collect nodes: %w", err)
	}

	namespaces, err := collectNamespaces(ctx, clientset)
	if err != nil {
		return nil, fmt.Errorf("collect namespaces: %w", err)
	}

	pods, err := collectPods(ctx, clientset)
	if err != nil {
		return nil, fmt.Errorf("collect pods: %w", err)
	}

	services, err := collectServices(ctx, clientset)
	if err != nil {
		return nil, fmt.Errorf("collect services: %w", err)
	}

	serviceAccounts, err := collectServiceAccounts(ctx, clientset)
	if err != nil {
		return nil, fmt.Errorf("collect serviceaccounts: %w", err)
	}

	serverVersion := ""
	if vi, err := clientset.Discovery().ServerVersion(); err == nil && vi != nil {
		serverVersion = vi.GitVersion
	}

	return &ClusterData{
		ClusterInfo:     info,
		ServerVersion:   serverVersion,
		Nodes:           nodes,
		Namespaces:      namespaces,
		Pods:            pods,
		Services:        services,
		ServiceAccounts: serviceAccounts,
	}, nil
}

// collectNodes lists all nodes and converts them to NodeInfo.
func collectNodes(ctx context.Context, clientset k8sclient.Interface) ([]NodeInfo, error) {
	nodeList, err := clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	nodes := make([]NodeInfo, 0, len(nodeList.Items))
	for _, n := range nodeList.Items {
		labels := make(map[string]string, len(n.Labels))
		for k, v := range n.Labels {
			labels[k] = v
		}
		nodes = append(nodes, NodeInfo{
			Name:           n.Name,
			KubeletVersion: n.Status.NodeInfo.KubeletVersion,
			ProviderID:     n.Spec.ProviderID,
			Labels:         labels,
		})
	}
	return nodes, nil
}

// collectNamespaces lists all namespaces and converts them to NamespaceInfo.
// Labels are copied so Pod Security Admission checks never share the original map.
func collectNamespaces(ctx context.Context, clientset k8sclient.Interface) ([]NamespaceInfo, error) {
	nsList, err := clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	namespaces := make([]NamespaceInfo, 0, len(nsList.Items))
	for _, ns := range nsList.Items {
		labels := make(map[string]string, len(ns.Labels))
		for k, v := range ns.Labels {
			labels[k] = v
		}
		namespaces = append(namespaces, NamespaceInfo{
			Name:   ns.Name,
			Labels: labels,
		})
	}
	return namespaces, nil
}

// collectPods lists all pods across all namespaces and converts them to PodInfo.
// For each container it resolves the effective security context (container-level
// settings override pod-level ones) and records hostPath volumes with the
// container mounts that reference them.
func collectPods(ctx context.Context, clientset k8sclient.Interface) ([]PodInfo, error) {
	podList, err := clientset.CoreV1().Pods("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	pods := make([]PodInfo, 0, len(podList.Items))
	for _, p := range podList.Items {
		pod := PodInfo{
			Name:               p.Name,
			Namespace:          p.Namespace,
			ServiceAccountName: p.Spec.ServiceAccountName,
			HostNetwork:        p.Spec.HostNetwork,
			HostPID:            p.Spec.HostPID,
			HostIPC:            p.Spec.HostIPC,
		}
		for _, v := range p.Spec.Volumes {
			vol := VolumeInfo{Name: v.Name}
			if v.HostPath != nil {
				vol.HostPath = v.HostPath.Path
				if v.HostPath.Type != nil {
					vol.HostPathType = string(*v.HostPath.Type)
				}
			}
			pod.Volumes = append(pod.Volumes, vol)
		}
		for _, c := range p.Spec.Containers {
			pod.Containers = append(pod.Containers, convertContainer(c, p.Spec.SecurityContext))
		}
		pods = append(pods, pod)
	}
	return pods, nil
}

// convertContainer resolves a container's effective security settings against
// the pod-level security context and converts its volumeMounts.
func convertContainer(c corev1.Container, podSC *corev1.PodSecurityContext) ContainerInfo {
	info := ContainerInfo{Name: c.Name}

	// Pod-level defaults.
	if podSC != nil {
		info.RunAsNonRoot = podSC.RunAsNonRoot
		info.RunAsUser = podSC.RunAsUser
		if podSC.SeccompProfile != nil {
			info.SeccompProfileType = string(podSC.SeccompProfile.Type)
		}
	}

	// Container-level overrides.
	if sc := c.SecurityContext; sc != nil {
		info.Privileged = sc.Privileged != nil && *sc.Privileged
		if sc.RunAsNonRoot != nil {
			info.RunAsNonRoot = sc.RunAsNonRoot
		}
		if sc.RunAsUser != nil {
			info.RunAsUser = sc.RunAsUser
		}
		if sc.SeccompProfile != nil {
			info.SeccompProfileType = string(sc.SeccompProfile.Type)
		}
		if sc.Capabilities != nil {
			for _, capability := range sc.Capabilities.Add {
				info.AddedCapabilities = append(info.AddedCapabilities, string(capability))
			}
		}
	}

	for _, m := range c.VolumeMounts {
		info.Mounts = append(info.Mounts, MountInfo{
			VolumeName: m.Name,
			MountPath:  m.MountPath,
			ReadOnly:   m.ReadOnly,
		})
	}
	return info
}

// collectServices lists all Services across all namespaces and converts them to ServiceInfo.
// Annotations are copied to avoid sharing the original map.
func collectServices(ctx context.Context, clientset k8sclient.Interface) ([]ServiceInfo, error) {
	svcList, err := clientset.CoreV1().Services("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	services := make([]ServiceInfo, 0, len(svcList.Items))
	for _, s := range svcList.Items {
		annotations := make(map[string]string, len(s.Annotations))
		for k, v := range s.Annotations {
			annotations[k] = v
		}
		services = append(services, ServiceInfo{
			Name:        s.Name,
			Namespace:   s.Namespace,
			Type:        string(s.Spec.Type),
			Annotations: annotations,
		})
	}
	return services, nil
}

// collectServiceAccounts lists all ServiceAccounts across all namespaces and
// converts them to ServiceAccountInfo.
func collectServiceAccounts(ctx context.Context, clientset k8sclient.Interface) ([]ServiceAccountInfo, error) {
	saList, err := clientset.CoreV1().ServiceAccounts("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	serviceAccounts := make([]ServiceAccountInfo, 0, len(saList.Items))
	for _, sa := range saList.Items {
		serviceAccounts = append(serviceAccounts, ServiceAccountInfo{
			Name:                         sa.Name,
			Namespace:                    sa.Namespace,
			AutomountServiceAccountToken: sa.AutomountServiceAccountToken,
		})
	}
	return serviceAccounts, nil
}
