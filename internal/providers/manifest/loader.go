// Package manifest loads declared Kubernetes resources from YAML manifests
// and normalizes them into the snapshot model evaluated by rules. It covers
// the resource kinds the rule packs inspect: bare Pods, the pod templates of
// Deployments, DaemonSets, and StatefulSets, plus Services, Namespaces, and
// ServiceAccounts. Unknown kinds are skipped.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	sigyaml "sigs.k8s.io/yaml"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
)

// typeMeta is the minimal header decoded from each YAML document to route it
// to the right resource decoder.
type typeMeta struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
}

// Load reads Kubernetes manifests from path (a YAML file or a directory
// scanned for .yaml/.yml files) and returns a snapshot of the declared
// resources. The snapshot has no server or kubectl version and the provider
// is always "unknown", so version-gated CVE rules and platform rules stay
// inactive for manifest scans.
func Load(path string) (*models.ClusterSnapshot, error) {
	files, err := manifestFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no YAML manifests found under %q", path)
	}

	snapshot := &models.ClusterSnapshot{
		ContextName:     path,
		ClusterProvider: "unknown",
	}
	for _, file := range files {
		if err := loadFile(file, snapshot); err != nil {
			return nil, err
		}
	}
	return snapshot, nil
}

// manifestFiles resolves path to the list of YAML files to load. A file path
// yields itself; a directory is walked recursively for .yaml/.yml files,
// returned in lexical order so scans are deterministic.
func manifestFiles(path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat manifest path %q: %w", path, err)
	}
	if !fi.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".yaml", ".yml":
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk manifest dir %q: %w", path, err)
	}
	sort.Strings(files)
	return files, nil
}

// loadFile parses every YAML document in the file and appends the recognized
// resources to the snapshot.
func loadFile(path string, snapshot *models.ClusterSnapshot) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest %q: %w", path, err)
	}
	for i, doc := range splitDocuments(string(data)) {
		if err := loadDocument([]byte(doc), snapshot); err != nil {
			return fmt.Errorf("manifest %q document %d: %w", path, i+1, err)
		}
	}
	return nil
}

// splitDocuments splits a multi-document YAML stream on "---" separators and
// drops empty documents.
func splitDocuments(data string) []string {
	var docs []string
	for _, doc := range strings.Split(data, "\n---") {
		doc = strings.TrimPrefix(doc, "---")
		if strings.TrimSpace(doc) == "" {
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// loadDocument decodes a single YAML document and appends it to the snapshot
// when its kind is one the rule packs inspect.
func loadDocument(doc []byte, snapshot *models.ClusterSnapshot) error {
	var meta typeMeta
	if err := sigyaml.Unmarshal(doc, &meta); err != nil {
		return fmt.Errorf("decode document header: %w", err)
	}

	switch meta.Kind {
	case "Pod":
		var pod corev1.Pod
		if err := sigyaml.Unmarshal(doc, &pod); err != nil {
			return fmt.Errorf("decode Pod: %w", err)
		}
		snapshot.Pods = append(snapshot.Pods,
			convertPodSpec(pod.Name, namespaceOrDefault(pod.Namespace), pod.Spec))

	case "Deployment":
		var dep appsv1.Deployment
		if err := sigyaml.Unmarshal(doc, &dep); err != nil {
			return fmt.Errorf("decode Deployment: %w", err)
		}
		snapshot.Pods = append(snapshot.Pods,
			convertPodSpec(dep.Name, namespaceOrDefault(dep.Namespace), dep.Spec.Template.Spec))

	case "DaemonSet":
		var ds appsv1.DaemonSet
		if err := sigyaml.Unmarshal(doc, &ds); err != nil {
			return fmt.Errorf("decode DaemonSet: %w", err)
		}
		snapshot.Pods = append(snapshot.Pods,
			convertPodSpec(ds.Name, namespaceOrDefault(ds.Namespace), ds.Spec.Template.Spec))

	case "StatefulSet":
		var ss appsv1.StatefulSet
		if err := sigyaml.Unmarshal(doc, &ss); err != nil {
			return fmt.Errorf("decode StatefulSet: %w", err)
		}
		snapshot.Pods = append(snapshot.Pods,
			convertPodSpec(ss.Name, namespaceOrDefault(ss.Namespace), ss.Spec.Template.Spec))

	case "Service":
		var svc corev1.Service
		if err := sigyaml.Unmarshal(doc, &svc); err != nil {
			return fmt.Errorf("decode Service: %w", err)
		}
		annotations := make(map[string]string, len(svc.Annotations))
		for k, v := range svc.Annotations {
			annotations[k] = v
		}
		snapshot.Services = append(snapshot.Services, models.ServiceData{
			Name:        svc.Name,
			Namespace:   namespaceOrDefault(svc.Namespace),
			Type:        string(svc.Spec.Type),
			Annotations: annotations,
		})

	case "Namespace":
		var ns corev1.Namespace
		if err := sigyaml.Unmarshal(doc, &ns); err != nil {
			return fmt.Errorf("decode Namespace: %w", err)
		}
		labels := make(map[string]string, len(ns.Labels))
		for k, v := range ns.Labels {
			labels[k] = v
		}
		snapshot.Namespaces = append(snapshot.Namespaces, models.NamespaceData{
			Name:   ns.Name,
			Labels: labels,
		})

	case "ServiceAccount":
		var sa corev1.ServiceAccount
		if err := sigyaml.Unmarshal(doc, &sa); err != nil {
			return fmt.Errorf("decode ServiceAccount: %w", err)
		}
		snapshot.ServiceAccounts = append(snapshot.ServiceAccounts, models.ServiceAccountData{
			Name:                         sa.Name,
			Namespace:                    namespaceOrDefault(sa.Namespace),
			AutomountServiceAccountToken: sa.AutomountServiceAccountToken,
		})
	}
	return nil
}

// namespaceOrDefault maps an empty declared namespace to "default", matching
// where the API server would place the resource on apply.
func namespaceOrDefault(ns string) string {
	if ns == "" {
		return "default"
	}
	return ns
}

// convertPodSpec normalizes a pod spec into the snapshot pod model, resolving
// effective container security settings against the pod-level context.
func convertPodSpec(name, namespace string, spec corev1.PodSpec) models.PodData {
	pod := models.PodData{
		Name:               name,
		Namespace:          namespace,
		ServiceAccountName: spec.ServiceAccountName,
		HostNetwork:        spec.HostNetwork,
		HostPID:            spec.HostPID,
		HostIPC:            spec.HostIPC,
	}
	for _, v := range spec.Volumes {
		vol := models.VolumeData{Name: v.Name}
		if v.HostPath != nil {
			vol.HostPath = v.HostPath.Path
			if v.HostPath.Type != nil {
				vol.HostPathType = string(*v.HostPath.Type)
			}
		}
		pod.Volumes = append(pod.Volumes, vol)
	}
	for _, c := range spec.Containers {
		pod.Containers = append(pod.Containers, convertContainer(c, spec.SecurityContext))
	}
	return pod
}

// convertContainer resolves a container's effective security settings against
// the pod-level security context and converts its volumeMounts.
func convertContainer(c corev1.Container, podSC *corev1.PodSecurityContext) models.ContainerData {
	data := models.ContainerData{Name: c.Name}

	if podSC != nil {
		data.RunAsNonRoot = podSC.RunAsNonRoot
		data.RunAsUser = podSC.RunAsUser
		if podSC.SeccompProfile != nil {
			data.SeccompProfileType = string(podSC.SeccompProfile.Type)
		}
	}

	if sc := c.SecurityContext; sc != nil {
		data.Privileged = sc.Privileged != nil && *sc.Privileged
		if sc.RunAsNonRoot != nil {
			data.RunAsNonRoot = sc.RunAsNonRoot
		}
		if sc.RunAsUser != nil {
			data.RunAsUser = sc.RunAsUser
		}
		if sc.SeccompProfile != nil {
			data.SeccompProfileType = string(sc.SeccompProfile.Type)
		}
		if sc.Capabilities != nil {
			for _, capability := range sc.Capabilities.Add {
				data.AddedCapabilities = append(data.AddedCapabilities, string(capability))
			}
		}
	}

	for _, m := range c.VolumeMounts {
		data.Mounts = append(data.Mounts, models.MountData{
			VolumeName: m.Name,
			MountPath:  m.MountPath,
			ReadOnly:   m.ReadOnly,
		})
	}
	return data
}
