package rules

import (
	"fmt"
	"time"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/kb"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
)

// systemNamespaces are excluded from namespace governance rules; their
// workloads are managed by the control plane, not by cluster operators.
var systemNamespaces = map[string]struct{}{
	"kube-system":     {},
	"kube-public":     {},
	"kube-node-lease": {},
}

// isSystemNamespace reports whether ns is a control-plane managed namespace.
func isSystemNamespace(ns string) bool {
	_, ok := systemNamespaces[ns]
	return ok
}

// ── K8S_SERVICEACCOUNT_TOKEN_AUTOMOUNT ───────────────────────────────────────

// ServiceAccountTokenAutomountRule fires for each ServiceAccount that leaves
// token automounting enabled (the Kubernetes default). System namespaces are
// skipped.
type ServiceAccountTokenAutomountRule struct{}

func (r ServiceAccountTokenAutomountRule) ID() string   { return "K8S_SERVICEACCOUNT_TOKEN_AUTOMOUNT" }
func (r ServiceAccountTokenAutomountRule) KBID() string { return kb.KGV009SATokenAutomount }
func (r ServiceAccountTokenAutomountRule) Name() string { return "ServiceAccount Token Automounted" }

func (r ServiceAccountTokenAutomountRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil {
		return nil
	}
	var findings []models.Finding
	for _, sa := range ctx.Snapshot.ServiceAccounts {
		if isSystemNamespace(sa.Namespace) {
			continue
		}
		if sa.AutomountServiceAccountToken != nil && !*sa.AutomountServiceAccountToken {
			continue
		}
		findings = append(findings, models.Finding{
			ID:           fmt.Sprintf("%s:%s:%s/%s", r.ID(), ctx.Snapshot.ContextName, sa.Namespace, sa.Name),
			RuleID:       r.ID(),
			KBID:         r.KBID(),
			ResourceID:   sa.Name,
			ResourceType: models.ResourceK8sServiceAccount,
			Cluster:      ctx.Snapshot.ContextName,
			Namespace:    sa.Namespace,
			Severity:     models.SeverityMedium,
			Category:     models.CategoryIdentityRisk,
			Evidence:     "automountServiceAccountToken not set to false",
			Explanation: fmt.Sprintf(
				"ServiceAccount %q (namespace %q) automounts its API token into every "+
					"pod that uses it; a compromised pod can replay the token against "+
					"the API server.",
				sa.Name, sa.Namespace,
			),
			DetectedAt: time.Now().UTC(),
			Metadata: map[string]any{
				"namespace": sa.Namespace,
			},
		})
	}
	return findings
}

// ── K8S_POD_DEFAULT_SERVICEACCOUNT ───────────────────────────────────────────

// PodDefaultServiceAccountRule fires for each pod running as the namespace's
// default ServiceAccount (explicitly or by omission). System namespaces are
// skipped.
type PodDefaultServiceAccountRule struct{}

func (r PodDefaultServiceAccountRule) ID() string   { return "K8S_POD_DEFAULT_SERVICEACCOUNT" }
func (r PodDefaultServiceAccountRule) KBID() string { return kb.KGV010DefaultSA }
func (r PodDefaultServiceAccountRule) Name() string { return "Pod Using Default ServiceAccount" }

func (r PodDefaultServiceAccountRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil {
		return nil
	}
	var findings []models.Finding
	for _, pod := range ctx.Snapshot.Pods {
		if isSystemNamespace(pod.Namespace) {
			continue
		}
		if pod.ServiceAccountName != "" && pod.ServiceAccountName != "default" {
			continue
		}
		f := podFinding(
			ctx, r.ID(), r.KBID(), "", pod,
			models.SeverityMedium, models.CategoryIdentityRisk,
			"spec.serviceAccountName is default or unset",
			fmt.Sprintf(
				"Pod %q (namespace %q) runs as the default ServiceAccount; permissions "+
					"granted to it accumulate across unrelated workloads.",
				pod.Name, pod.Namespace,
			),
		)
		findings = append(findings, f)
	}
	return findings
}

// ── K8S_NAMESPACE_PSA_NOT_SET ────────────────────────────────────────────────

// psaEnforceLabel is the Pod Security Admission enforcement label.
const psaEnforceLabel = "pod-security.kubernetes.io/enforce"

// NamespacePSANotSetRule fires for each non-system namespace without a Pod
// Security Admission enforcement label, meaning privileged and host-mounting
// pods are admitted without restriction.
type NamespacePSANotSetRule struct{}

func (r NamespacePSANotSetRule) ID() string   { return "K8S_NAMESPACE_PSA_NOT_SET" }
func (r NamespacePSANotSetRule) KBID() string { return kb.KGV011NamespaceNoPSA }
func (r NamespacePSANotSetRule) Name() string { return "Namespace Without Pod Security Admission" }

func (r NamespacePSANotSetRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil {
		return nil
	}
	var findings []models.Finding
	for _, ns := range ctx.Snapshot.Namespaces {
		if isSystemNamespace(ns.Name) {
			continue
		}
		if _, ok := ns.Labels[psaEnforceLabel]; ok {
			continue
		}
		findings = append(findings, models.Finding{
			ID:           fmt.Sprintf("%s:%s:%s", r.ID(), ctx.Snapshot.ContextName, ns.Name),
			RuleID:       r.ID(),
			KBID:         r.KBID(),
			ResourceID:   ns.Name,
			ResourceType: models.ResourceK8sNamespace,
			Cluster:      ctx.Snapshot.ContextName,
			Namespace:    ns.Name,
			Severity:     models.SeverityMedium,
			Category:     models.CategoryWorkloadMisconfig,
			Evidence:     fmt.Sprintf("label %q missing", psaEnforceLabel),
			Explanation: fmt.Sprintf(
				"Namespace %q enforces no Pod Security Standard; privileged and "+
					"host-mounting pods are admitted without restriction.",
				ns.Name,
			),
			DetectedAt: time.Now().UTC(),
		})
	}
	return findings
}
