package engine

import (
	"sort"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
)

// ruleIDsForFinding returns all rule IDs associated with a finding.
// When multiple rules were merged by mergeFindings, the merged rule IDs are
// stored in Metadata["rules"]; these are included alongside the primary RuleID.
func ruleIDsForFinding(f *models.Finding) []string {
	ids := []string{f.RuleID}
	if f.Metadata != nil {
		if rr, ok := f.Metadata["rules"]; ok {
			if merged, ok := rr.([]string); ok {
				ids = append(ids, merged...)
			}
		}
	}
	return ids
}

// idsContain reports whether any element of ids equals target.
func idsContain(ids []string, target string) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

// nsIndexHas reports whether the namespace rule index entry for ns contains
// any of the given rule IDs.
func nsIndexHas(index map[string]map[string]struct{}, ns string, ruleIDs ...string) bool {
	set, ok := index[ns]
	if !ok {
		return false
	}
	for _, id := range ruleIDs {
		if _, found := set[id]; found {
			return true
		}
	}
	return false
}

// buildNamespaceRuleIndex constructs a map of namespace → set of rule IDs that
// have findings in that namespace. Used by the correlation pass to detect
// compound risk patterns across multiple findings in the same namespace.
//
// Only namespace-scoped findings contribute; cluster-scoped findings
// (empty Namespace) are skipped.
func buildNamespaceRuleIndex(findings []models.Finding) map[string]map[string]struct{} {
	index := make(map[string]map[string]struct{})
	for i := range findings {
		f := &findings[i]
		if f.Namespace == "" {
			continue
		}
		if index[f.Namespace] == nil {
			index[f.Namespace] = make(map[string]struct{})
		}
		for _, id := range ruleIDsForFinding(f) {
			index[f.Namespace][id] = struct{}{}
		}
	}
	return index
}

// riskChainSpec declares one compound risk pattern checked by the correlation
// pass. A chain fires when a finding matching rulesA and a finding matching
// rulesB co-exist: in the same namespace for namespace-scoped chains, or
// anywhere in the scan for global ones. severityB, when set, replaces rulesB
// with "any finding of this severity".
type riskChainSpec struct {
	score     int
	reason    string
	global    bool
	rulesA    []string
	rulesB    []string
	severityB models.Severity
}

// riskChains lists the detected compound risk patterns, highest score first.
//
// The /var/log chain is the flagship: a workload that mounts the node's
// /var/log can follow kubelet log-fetch symlinks to read arbitrary node
// files; pairing it with an internet-facing Service turns a local
// misconfiguration into a remotely reachable disclosure path.
var riskChains = []riskChainSpec{
	{
		score:     95,
		reason:    "Publicly reachable control plane alongside critical workload findings",
		global:    true,
		rulesA:    []string{"EKS_PUBLIC_ENDPOINT_ENABLED"},
		severityB: models.SeverityCritical,
	},
	{
		score:  90,
		reason: "Internet-facing service in a namespace with a /var/log host mount",
		rulesA: []string{"K8S_POD_VARLOG_MOUNT"},
		rulesB: []string{"K8S_SERVICE_PUBLIC_LOADBALANCER"},
	},
	{
		score:  80,
		reason: "Public service exposes privileged workload",
		rulesA: []string{"K8S_POD_PRIVILEGED_CONTAINER", "K8S_POD_CAP_SYS_ADMIN"},
		rulesB: []string{"K8S_SERVICE_PUBLIC_LOADBALANCER"},
	},
	{
		score:  60,
		reason: "Default service account with auto-mounted token",
		rulesA: []string{"K8S_POD_DEFAULT_SERVICEACCOUNT"},
		rulesB: []string{"K8S_SERVICEACCOUNT_TOKEN_AUTOMOUNT"},
	},
}

// correlateRiskChains detects compound risk patterns across the merged finding
// set. Participating findings are annotated with Metadata["risk_chain_score"]
// (int) and Metadata["risk_chain_reason"] (string); when multiple chains touch
// the same finding the highest score is kept. Severity and sort order are not
// affected.
//
// The returned chains are ordered by descending score and list the IDs of
// every participating finding.
//
// Must be called after mergeFindings and policy filtering so the correlation
// operates on the final finding set.
func correlateRiskChains(findings []models.Finding) []models.RiskChain {
	if len(findings) == 0 {
		return nil
	}

	nsIndex := buildNamespaceRuleIndex(findings)

	// Global presence lookups for cluster-scoped chains.
	globalRules := make(map[string]struct{})
	globalSeverities := make(map[models.Severity]struct{})
	for i := range findings {
		for _, id := range ruleIDsForFinding(&findings[i]) {
			globalRules[id] = struct{}{}
		}
		globalSeverities[findings[i].Severity] = struct{}{}
	}

	var chains []models.RiskChain
	for _, spec := range riskChains {
		ids := matchChain(findings, nsIndex, globalRules, globalSeverities, spec)
		if len(ids) == 0 {
			continue
		}
		chains = append(chains, models.RiskChain{
			Score:      spec.score,
			Reason:     spec.reason,
			FindingIDs: ids,
		})
		annotateChain(findings, ids, spec)
	}

	sort.SliceStable(chains, func(i, j int) bool { return chains[i].Score > chains[j].Score })
	return chains
}

// matchChain returns the IDs of findings participating in the given chain, or
// nil when the chain's two sides never co-exist in scope.
func matchChain(
	findings []models.Finding,
	nsIndex map[string]map[string]struct{},
	globalRules map[string]struct{},
	globalSeverities map[models.Severity]struct{},
	spec riskChainSpec,
) []string {
	sideB := func(ns string) bool {
		if spec.severityB != "" {
			if spec.global {
				_, ok := globalSeverities[spec.severityB]
				return ok
			}
			for i := range findings {
				if findings[i].Namespace == ns && findings[i].Severity == spec.severityB {
					return true
				}
			}
			return false
		}
		if spec.global {
			for _, id := range spec.rulesB {
				if _, ok := globalRules[id]; ok {
					return true
				}
			}
			return false
		}
		return nsIndexHas(nsIndex, ns, spec.rulesB...)
	}
	sideA := func(ns string) bool {
		if spec.global {
			for _, id := range spec.rulesA {
				if _, ok := globalRules[id]; ok {
					return true
				}
			}
			return false
		}
		return nsIndexHas(nsIndex, ns, spec.rulesA...)
	}

	var ids []string
	for i := range findings {
		f := &findings[i]
		fids := ruleIDsForFinding(f)

		matchesA := false
		for _, id := range spec.rulesA {
			if idsContain(fids, id) {
				matchesA = true
				break
			}
		}
		matchesB := false
		if spec.severityB != "" {
			matchesB = f.Severity == spec.severityB
		} else {
			for _, id := range spec.rulesB {
				if idsContain(fids, id) {
					matchesB = true
					break
				}
			}
		}
		if !matchesA && !matchesB {
			continue
		}

		// Namespace-scoped chains need both sides in this finding's namespace;
		// global chains need both sides anywhere in the scan.
		scope := f.Namespace
		if !spec.global && scope == "" {
			continue
		}
		if (matchesA && sideB(scope)) || (matchesB && sideA(scope)) {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// annotateChain stamps chain metadata on the participating findings, keeping
// the highest score when several chains overlap.
func annotateChain(findings []models.Finding, ids []string, spec riskChainSpec) {
	member := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		member[id] = struct{}{}
	}
	for i := range findings {
		f := &findings[i]
		if _, ok := member[f.ID]; !ok {
			continue
		}
		if f.Metadata == nil {
			f.Metadata = make(map[string]any)
		}
		if existing, ok := f.Metadata["risk_chain_score"].(int); ok && existing >= spec.score {
			continue
		}
		f.Metadata["risk_chain_score"] = spec.score
		f.Metadata["risk_chain_reason"] = spec.reason
	}
}
