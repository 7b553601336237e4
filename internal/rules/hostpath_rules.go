package rules

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/kb"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
)

// pathWithin reports whether p equals base or lies underneath it.
// Both paths are cleaned first, so "/var/log/" and "/var//log" match.
func pathWithin(base, p string) bool {
	base = path.Clean(base)
	p = path.Clean(p)
	return p == base || strings.HasPrefix(p, base+"/")
}

// mountsOfVolume returns the container mount paths referencing the named
// pod volume, formatted for evidence strings. Empty when nothing mounts it.
func mountsOfVolume(pod models.PodData, volumeName string) []string {
	var mounts []string
	for _, c := range pod.Containers {
		for _, m := range c.Mounts {
			if m.VolumeName == volumeName {
				mounts = append(mounts, fmt.Sprintf("%s:%s", c.Name, m.MountPath))
			}
		}
	}
	return mounts
}

// hostPathFinding builds the shared finding shape for hostPath volume rules.
func hostPathFinding(ctx RuleContext, ruleID, kbID string, pod models.PodData, vol models.VolumeData, severity models.Severity, category models.Category, explanation string) models.Finding {
	evidence := fmt.Sprintf("volume %q hostPath: %s", vol.Name, vol.HostPath)
	if mounts := mountsOfVolume(pod, vol.Name); len(mounts) > 0 {
		evidence += fmt.Sprintf(", mounted at %s", strings.Join(mounts, ", "))
	}
	return models.Finding{
		ID:           fmt.Sprintf("%s:%s:%s/%s/%s", ruleID, ctx.Snapshot.ContextName, pod.Namespace, pod.Name, vol.Name),
		RuleID:       ruleID,
		KBID:         kbID,
		ResourceID:   pod.Name,
		ResourceType: models.ResourceK8sPod,
		Cluster:      ctx.Snapshot.ContextName,
		Namespace:    pod.Namespace,
		Severity:     severity,
		Category:     category,
		Evidence:     evidence,
		Explanation:  explanation,
		DetectedAt:   time.Now().UTC(),
		Metadata: map[string]any{
			"namespace":   pod.Namespace,
			"volume_name": vol.Name,
			"host_path":   vol.HostPath,
		},
	}
}

// ── K8S_POD_VARLOG_MOUNT ─────────────────────────────────────────────────────

// PodVarLogMountRule fires for each pod that mounts the host's /var/log
// (a parent of it, or a path beneath it) via a hostPath volume. The kubelet
// follows paths under /var/log when serving container logs, so a pod that can
// write there can plant a symlink and read arbitrary host files with kubelet
// privileges through kubectl logs.
type PodVarLogMountRule struct{}

func (r PodVarLogMountRule) ID() string   { return "K8S_POD_VARLOG_MOUNT" }
func (r PodVarLogMountRule) KBID() string { return kb.KGV001VarLogMount }
func (r PodVarLogMountRule) Name() string { return "Pod With Mount To /var/log" }

func (r PodVarLogMountRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil {
		return nil
	}
	var findings []models.Finding
	for _, pod := range ctx.Snapshot.Pods {
		for _, vol := range pod.Volumes {
			if vol.HostPath == "" {
				continue
			}
			// A parent of /var/log exposes it too; so does any path under it.
			if !pathWithin(vol.HostPath, "/var/log") && !pathWithin("/var/log", vol.HostPath) {
				continue
			}
			findings = append(findings, hostPathFinding(
				ctx, r.ID(), r.KBID(), pod, vol,
				models.SeverityCritical, models.CategoryPrivilegeEscalation,
				fmt.Sprintf(
					"Pod %q (namespace %q) mounts host path %q, which exposes the "+
						"kubelet's log directory; a symlink planted there is followed by "+
						"the kubelet on log retrieval, disclosing arbitrary host files.",
					pod.Name, pod.Namespace, vol.HostPath,
				),
			))
		}
	}
	return findings
}

// ── K8S_POD_RUNTIME_SOCKET_MOUNT ─────────────────────────────────────────────

// runtimeSocketPaths are the well-known container runtime control sockets.
// Mounting any of them hands the pod full control of the node's runtime.
var runtimeSocketPaths = []string{
	"/var/run/docker.sock",
	"/run/docker.sock",
	"/run/containerd/containerd.sock",
	"/var/run/containerd/containerd.sock",
	"/var/run/crio/crio.sock",
	"/run/crio/crio.sock",
}

// PodRuntimeSocketMountRule fires for each pod that mounts a container
// runtime socket from the host.
type PodRuntimeSocketMountRule struct{}

func (r PodRuntimeSocketMountRule) ID() string   { return "K8S_POD_RUNTIME_SOCKET_MOUNT" }
func (r PodRuntimeSocketMountRule) KBID() string { return kb.KGV002RuntimeSocketMount }
func (r PodRuntimeSocketMountRule) Name() string { return "Pod With Container Runtime Socket Mount" }

func (r PodRuntimeSocketMountRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil {
		return nil
	}
	var findings []models.Finding
	for _, pod := range ctx.Snapshot.Pods {
		for _, vol := range pod.Volumes {
			if vol.HostPath == "" {
				continue
			}
			if !isRuntimeSocketPath(vol.HostPath) {
				continue
			}
			findings = append(findings, hostPathFinding(
				ctx, r.ID(), r.KBID(), pod, vol,
				models.SeverityCritical, models.CategoryPrivilegeEscalation,
				fmt.Sprintf(
					"Pod %q (namespace %q) mounts the container runtime socket %q; any "+
						"process in the pod can start privileged containers on the node.",
					pod.Name, pod.Namespace, vol.HostPath,
				),
			))
		}
	}
	return findings
}

// isRuntimeSocketPath reports whether p is a runtime socket or a directory
// containing one (e.g. a /var/run mount reaches docker.sock).
func isRuntimeSocketPath(p string) bool {
	for _, sock := range runtimeSocketPaths {
		if pathWithin(p, sock) {
			return true
		}
	}
	return false
}

// ── K8S_POD_SENSITIVE_HOSTPATH_MOUNT ─────────────────────────────────────────

// sensitiveHostPaths are host directories whose exposure lets a pod read node
// credentials or persist onto the host. "/" is covered implicitly: any of
// these checks match when the whole root filesystem is mounted.
var sensitiveHostPaths = []string{
	"/etc",
	"/root",
	"/var/lib/kubelet",
	"/proc",
	"/sys",
}

// PodSensitiveHostPathMountRule fires for each pod hostPath volume exposing
// the host root filesystem or a sensitive system directory.
type PodSensitiveHostPathMountRule struct{}

func (r PodSensitiveHostPathMountRule) ID() string   { return "K8S_POD_SENSITIVE_HOSTPATH_MOUNT" }
func (r PodSensitiveHostPathMountRule) KBID() string { return kb.KGV003HostRootMount }
func (r PodSensitiveHostPathMountRule) Name() string {
	return "Pod With Sensitive Host Filesystem Mount"
}

func (r PodSensitiveHostPathMountRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil {
		return nil
	}
	var findings []models.Finding
	for _, pod := range ctx.Snapshot.Pods {
		for _, vol := range pod.Volumes {
			if vol.HostPath == "" {
				continue
			}
			if !isSensitiveHostPath(vol.HostPath) {
				continue
			}
			findings = append(findings, hostPathFinding(
				ctx, r.ID(), r.KBID(), pod, vol,
				models.SeverityHigh, models.CategoryPrivilegeEscalation,
				fmt.Sprintf(
					"Pod %q (namespace %q) mounts sensitive host path %q, exposing node "+
						"credentials or kubelet state to the workload.",
					pod.Name, pod.Namespace, vol.HostPath,
				),
			))
		}
	}
	return findings
}

// isSensitiveHostPath reports whether p is a sensitive directory, lies inside
// one, or is a parent that exposes one (including "/").
func isSensitiveHostPath(p string) bool {
	for _, sensitive := range sensitiveHostPaths {
		if pathWithin(sensitive, p) || pathWithin(p, sensitive) {
			return true
		}
	}
	return false
}
