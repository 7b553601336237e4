package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/kb"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/policy"
)

// podFinding builds the shared finding shape for pod-scoped security rules.
func podFinding(ctx RuleContext, ruleID, kbID, suffix string, pod models.PodData, severity models.Severity, category models.Category, evidence, explanation string) models.Finding {
	id := fmt.Sprintf("%s:%s:%s/%s", ruleID, ctx.Snapshot.ContextName, pod.Namespace, pod.Name)
	if suffix != "" {
		id += "/" + suffix
	}
	return models.Finding{
		ID:           id,
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
			"namespace": pod.Namespace,
		},
	}
}

// ── K8S_POD_PRIVILEGED_CONTAINER ─────────────────────────────────────────────

// PodPrivilegedContainerRule fires for each container running with
// securityContext.privileged == true. Privileged containers have full host
// access and significantly expand the attack surface.
type PodPrivilegedContainerRule struct{}

func (r PodPrivilegedContainerRule) ID() string   { return "K8S_POD_PRIVILEGED_CONTAINER" }
func (r PodPrivilegedContainerRule) KBID() string { return kb.KGV004PrivilegedContainer }
func (r PodPrivilegedContainerRule) Name() string { return "Privileged Container Detected" }

func (r PodPrivilegedContainerRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil {
		return nil
	}
	var findings []models.Finding
	for _, pod := range ctx.Snapshot.Pods {
		for _, c := range pod.Containers {
			if !c.Privileged {
				continue
			}
			f := podFinding(
				ctx, r.ID(), r.KBID(), c.Name, pod,
				models.SeverityCritical, models.CategoryPrivilegeEscalation,
				fmt.Sprintf("container %q: securityContext.privileged == true", c.Name),
				fmt.Sprintf(
					"Container %q in pod %q (namespace %q) is running with a privileged "+
						"security context; code execution in the container is root on the node.",
					c.Name, pod.Name, pod.Namespace,
				),
			)
			f.Metadata["container_name"] = c.Name
			findings = append(findings, f)
		}
	}
	return findings
}

// ── K8S_POD_HOST_NAMESPACE ───────────────────────────────────────────────────

// PodHostNamespaceRule fires for each pod sharing any host namespace
// (network, PID, or IPC).
type PodHostNamespaceRule struct{}

func (r PodHostNamespaceRule) ID() string   { return "K8S_POD_HOST_NAMESPACE" }
func (r PodHostNamespaceRule) KBID() string { return kb.KGV005HostNamespaces }
func (r PodHostNamespaceRule) Name() string { return "Pod Sharing Host Namespaces" }

func (r PodHostNamespaceRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil {
		return nil
	}
	var findings []models.Finding
	for _, pod := range ctx.Snapshot.Pods {
		var shared []string
		if pod.HostNetwork {
			shared = append(shared, "hostNetwork")
		}
		if pod.HostPID {
			shared = append(shared, "hostPID")
		}
		if pod.HostIPC {
			shared = append(shared, "hostIPC")
		}
		if len(shared) == 0 {
			continue
		}
		f := podFinding(
			ctx, r.ID(), r.KBID(), "", pod,
			models.SeverityHigh, models.CategoryAccessRisk,
			strings.Join(shared, ", ")+" == true",
			fmt.Sprintf(
				"Pod %q (namespace %q) shares host namespaces (%s), exposing host "+
					"traffic, processes, or shared memory to the workload.",
				pod.Name, pod.Namespace, strings.Join(shared, ", "),
			),
		)
		f.Metadata["host_namespaces"] = shared
		findings = append(findings, f)
	}
	return findings
}

// ── K8S_POD_RUN_AS_ROOT ──────────────────────────────────────────────────────

// PodRunAsRootRule fires for each container that may run as UID 0: either
// runAsUser is explicitly 0, or neither runAsNonRoot nor an acceptable
// runAsUser is configured. The policy parameter "min_run_as_uid" raises the
// lowest acceptable UID (default 1), letting operators flag containers that
// run in the system UID range.
type PodRunAsRootRule struct{}

func (r PodRunAsRootRule) ID() string   { return "K8S_POD_RUN_AS_ROOT" }
func (r PodRunAsRootRule) KBID() string { return kb.KGV006RunAsRoot }
func (r PodRunAsRootRule) Name() string { return "Container May Run As Root" }

func (r PodRunAsRootRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil {
		return nil
	}
	minUID := int64(policy.GetThreshold(r.ID(), "min_run_as_uid", 1, ctx.Policy))
	var findings []models.Finding
	for _, pod := range ctx.Snapshot.Pods {
		for _, c := range pod.Containers {
			var evidence string
			belowFloor := false
			switch {
			case c.RunAsUser != nil && *c.RunAsUser == 0:
				evidence = "runAsUser == 0"
			case c.RunAsUser != nil && *c.RunAsUser < minUID:
				evidence = fmt.Sprintf("runAsUser %d below minimum UID %d", *c.RunAsUser, minUID)
				belowFloor = true
			case c.RunAsUser == nil && (c.RunAsNonRoot == nil || !*c.RunAsNonRoot):
				evidence = "runAsNonRoot and runAsUser not set"
			default:
				continue
			}
			explanation := fmt.Sprintf(
				"Container %q in pod %q (namespace %q) can run as root; any escape "+
					"vulnerability becomes directly exploitable as host root.",
				c.Name, pod.Name, pod.Namespace,
			)
			if belowFloor {
				explanation = fmt.Sprintf(
					"Container %q in pod %q (namespace %q) runs as UID %d, below the "+
						"policy minimum of %d.",
					c.Name, pod.Name, pod.Namespace, *c.RunAsUser, minUID,
				)
			}
			f := podFinding(
				ctx, r.ID(), r.KBID(), c.Name, pod,
				models.SeverityHigh, models.CategoryWorkloadMisconfig,
				fmt.Sprintf("container %q: %s", c.Name, evidence),
				explanation,
			)
			f.Metadata["container_name"] = c.Name
			findings = append(findings, f)
		}
	}
	return findings
}

// ── K8S_POD_CAP_SYS_ADMIN ────────────────────────────────────────────────────

// PodCapSysAdminRule fires for each container adding the SYS_ADMIN capability,
// which is equivalent to privileged mode for most escape techniques.
type PodCapSysAdminRule struct{}

func (r PodCapSysAdminRule) ID() string   { return "K8S_POD_CAP_SYS_ADMIN" }
func (r PodCapSysAdminRule) KBID() string { return kb.KGV007CapSysAdmin }
func (r PodCapSysAdminRule) Name() string { return "Container With SYS_ADMIN Capability" }

func (r PodCapSysAdminRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil {
		return nil
	}
	var findings []models.Finding
	for _, pod := range ctx.Snapshot.Pods {
		for _, c := range pod.Containers {
			if !hasCapability(c.AddedCapabilities, "SYS_ADMIN") {
				continue
			}
			f := podFinding(
				ctx, r.ID(), r.KBID(), c.Name, pod,
				models.SeverityHigh, models.CategoryPrivilegeEscalation,
				fmt.Sprintf("container %q adds capability SYS_ADMIN", c.Name),
				fmt.Sprintf(
					"Container %q in pod %q (namespace %q) adds CAP_SYS_ADMIN, granting "+
						"broad kernel administration operations.",
					c.Name, pod.Name, pod.Namespace,
				),
			)
			f.Metadata["container_name"] = c.Name
			findings = append(findings, f)
		}
	}
	return findings
}

// hasCapability reports whether caps contains name, accepting the optional
// "CAP_" prefix used in some manifests.
func hasCapability(caps []string, name string) bool {
	for _, c := range caps {
		if strings.EqualFold(c, name) || strings.EqualFold(c, "CAP_"+name) {
			return true
		}
	}
	return false
}

// ── K8S_POD_NO_SECCOMP ───────────────────────────────────────────────────────

// PodNoSeccompRule fires for each container running without a seccomp profile
// or with an Unconfined one.
type PodNoSeccompRule struct{}

func (r PodNoSeccompRule) ID() string   { return "K8S_POD_NO_SECCOMP" }
func (r PodNoSeccompRule) KBID() string { return kb.KGV008NoSeccomp }
func (r PodNoSeccompRule) Name() string { return "Container Without Seccomp Profile" }

func (r PodNoSeccompRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil {
		return nil
	}
	var findings []models.Finding
	for _, pod := range ctx.Snapshot.Pods {
		for _, c := range pod.Containers {
			if c.SeccompProfileType != "" && c.SeccompProfileType != "Unconfined" {
				continue
			}
			evidence := "no seccomp profile set"
			if c.SeccompProfileType == "Unconfined" {
				evidence = "seccompProfile.type == Unconfined"
			}
			f := podFinding(
				ctx, r.ID(), r.KBID(), c.Name, pod,
				models.SeverityMedium, models.CategoryWorkloadMisconfig,
				fmt.Sprintf("container %q: %s", c.Name, evidence),
				fmt.Sprintf(
					"Container %q in pod %q (namespace %q) runs with the full host "+
						"syscall surface reachable.",
					c.Name, pod.Name, pod.Namespace,
				),
			)
			f.Metadata["container_name"] = c.Name
			findings = append(findings, f)
		}
	}
	return findings
}
