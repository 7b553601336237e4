package rules

import (
	"fmt"
	"time"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/kb"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
)

// Fix-version lists per CVE, ordered oldest first.
// A cluster or client older than the fix for its own base release is vulnerable.
var (
	fixVersionsCVE20181002105 = []string{"1.10.11", "1.11.5", "1.12.3"}
	fixVersionsCVE20191002100 = []string{"1.11.8", "1.12.6", "1.13.4"}
	fixVersionsCVE20191002101 = []string{"1.11.9", "1.12.7", "1.13.5", "1.14.0"}
	fixVersionsCVE201911246   = []string{"1.12.9", "1.13.6", "1.14.2"}
)

// ── K8S_CVE_2018_1002105 ─────────────────────────────────────────────────────

// APIServerPrivilegeEscalationCVERule fires when the API server version is
// vulnerable to CVE-2018-1002105, the critical proxy-request privilege
// escalation.
type APIServerPrivilegeEscalationCVERule struct{}

func (r APIServerPrivilegeEscalationCVERule) ID() string   { return "K8S_CVE_2018_1002105" }
func (r APIServerPrivilegeEscalationCVERule) KBID() string { return kb.KGV013APIServerPECVE }
func (r APIServerPrivilegeEscalationCVERule) Name() string {
	return "API Server Vulnerable To CVE-2018-1002105"
}

func (r APIServerPrivilegeEscalationCVERule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.ServerVersion == "" {
		return nil
	}
	if !isVulnerable(fixVersionsCVE20181002105, ctx.Snapshot.ServerVersion) {
		return nil
	}
	return []models.Finding{
		{
			ID:           fmt.Sprintf("%s:%s", r.ID(), ctx.Snapshot.ContextName),
			RuleID:       r.ID(),
			KBID:         r.KBID(),
			ResourceID:   ctx.Snapshot.ContextName,
			ResourceType: models.ResourceK8sCluster,
			Cluster:      ctx.Snapshot.ContextName,
			Severity:     models.SeverityCritical,
			Category:     models.CategoryPrivilegeEscalation,
			Evidence:     fmt.Sprintf("API server version: %s", ctx.Snapshot.ServerVersion),
			Explanation: fmt.Sprintf(
				"API server version %s predates the fix for CVE-2018-1002105; crafted "+
					"upgrade requests can escalate to the API server's privileged backend connections.",
				ctx.Snapshot.ServerVersion,
			),
			DetectedAt: time.Now().UTC(),
			Metadata: map[string]any{
				"cve":          "CVE-2018-1002105",
				"fix_versions": fixVersionsCVE20181002105,
			},
		},
	}
}

// ── K8S_CVE_2019_1002100 ─────────────────────────────────────────────────────

// APIServerJSONPatchDoSCVERule fires when the API server version is vulnerable
// to CVE-2019-1002100. Depending on RBAC settings, a crafted json-patch can
// cause a denial of service.
type APIServerJSONPatchDoSCVERule struct{}

func (r APIServerJSONPatchDoSCVERule) ID() string   { return "K8S_CVE_2019_1002100" }
func (r APIServerJSONPatchDoSCVERule) KBID() string { return kb.KGV014APIServerDoSCVE }
func (r APIServerJSONPatchDoSCVERule) Name() string {
	return "API Server Vulnerable To CVE-2019-1002100"
}

func (r APIServerJSONPatchDoSCVERule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.ServerVersion == "" {
		return nil
	}
	if !isVulnerable(fixVersionsCVE20191002100, ctx.Snapshot.ServerVersion) {
		return nil
	}
	return []models.Finding{
		{
			ID:           fmt.Sprintf("%s:%s", r.ID(), ctx.Snapshot.ContextName),
			RuleID:       r.ID(),
			KBID:         r.KBID(),
			ResourceID:   ctx.Snapshot.ContextName,
			ResourceType: models.ResourceK8sCluster,
			Cluster:      ctx.Snapshot.ContextName,
			Severity:     models.SeverityHigh,
			Category:     models.CategoryDenialOfService,
			Evidence:     fmt.Sprintf("API server version: %s", ctx.Snapshot.ServerVersion),
			Explanation: fmt.Sprintf(
				"API server version %s predates the fix for CVE-2019-1002100; users with "+
					"patch permissions can exhaust API server resources with a crafted json-patch.",
				ctx.Snapshot.ServerVersion,
			),
			DetectedAt: time.Now().UTC(),
			Metadata: map[string]any{
				"cve":          "CVE-2019-1002100",
				"fix_versions": fixVersionsCVE20191002100,
			},
		},
	}
}

// ── KUBECTL_CVE_2019_1002101 / KUBECTL_CVE_2019_11246 ────────────────────────

// kubectlCVEFinding builds the shared finding shape for kubectl client CVEs.
func kubectlCVEFinding(ctx RuleContext, ruleID, kbID, cve string, fixVersions []string, severity models.Severity) []models.Finding {
	return []models.Finding{
		{
			ID:           fmt.Sprintf("%s:%s", ruleID, ctx.Snapshot.ContextName),
			RuleID:       ruleID,
			KBID:         kbID,
			ResourceID:   "kubectl",
			ResourceType: models.ResourceKubectlClient,
			Cluster:      ctx.Snapshot.ContextName,
			Severity:     severity,
			Category:     models.CategoryRemoteCodeExec,
			Evidence:     fmt.Sprintf("kubectl version: %s", ctx.Snapshot.KubectlVersion),
			Explanation: fmt.Sprintf(
				"kubectl version %s predates the fix for %s; copying files from a "+
					"malicious container with kubectl cp can write outside the destination "+
					"directory on the operator's machine.",
				ctx.Snapshot.KubectlVersion, cve,
			),
			DetectedAt: time.Now().UTC(),
			Metadata: map[string]any{
				"cve":          cve,
				"fix_versions": fixVersions,
			},
		},
	}
}

// KubectlCpCVERule fires when the operator's kubectl client is vulnerable to
// CVE-2019-1002101 (kubectl cp tar path traversal). Evaluated only when the
// caller supplied a client version.
type KubectlCpCVERule struct{}

func (r KubectlCpCVERule) ID() string   { return "KUBECTL_CVE_2019_1002101" }
func (r KubectlCpCVERule) KBID() string { return kb.KGV015KubectlCpCVE }
func (r KubectlCpCVERule) Name() string { return "Kubectl Vulnerable To CVE-2019-1002101" }

func (r KubectlCpCVERule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.KubectlVersion == "" {
		return nil
	}
	if !isVulnerable(fixVersionsCVE20191002101, ctx.Snapshot.KubectlVersion) {
		return nil
	}
	return kubectlCVEFinding(ctx, r.ID(), r.KBID(), "CVE-2019-1002101", fixVersionsCVE20191002101, models.SeverityHigh)
}

// KubectlCpIncompleteFixCVERule fires when the operator's kubectl client is
// vulnerable to CVE-2019-11246, the incomplete fix of the kubectl cp traversal.
type KubectlCpIncompleteFixCVERule struct{}

func (r KubectlCpIncompleteFixCVERule) ID() string   { return "KUBECTL_CVE_2019_11246" }
func (r KubectlCpIncompleteFixCVERule) KBID() string { return kb.KGV016KubectlCpFixCVE }
func (r KubectlCpIncompleteFixCVERule) Name() string { return "Kubectl Vulnerable To CVE-2019-11246" }

func (r KubectlCpIncompleteFixCVERule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil || ctx.Snapshot.KubectlVersion == "" {
		return nil
	}
	if !isVulnerable(fixVersionsCVE201911246, ctx.Snapshot.KubectlVersion) {
		return nil
	}
	return kubectlCVEFinding(ctx, r.ID(), r.KBID(), "CVE-2019-11246", fixVersionsCVE201911246, models.SeverityHigh)
}
