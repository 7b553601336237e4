package engine

import (
	"sort"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/kb"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/policy"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/rules"
)

// evaluateDomains runs every domain's registry against the rule context,
// stamps each batch with its domain name, merges duplicates per resource
// within the domain, and applies the domain's policy overrides.
func evaluateDomains(rctx rules.RuleContext, domains []ScanDomain, policyCfg *policy.PolicyConfig) []models.Finding {
	var all []models.Finding
	for _, d := range domains {
		raw := d.Registry.EvaluateAll(rctx)
		stampDomain(raw, d.Name)
		merged := mergeFindings(raw)
		all = append(all, policy.ApplyPolicy(merged, d.Name, policyCfg)...)
	}
	return all
}

// stampDomain sets the Domain field on every finding in the slice.
func stampDomain(findings []models.Finding, domain string) {
	for i := range findings {
		findings[i].Domain = domain
	}
}

// findingGroupKey is the composite key used to group findings by resource.
// Namespace is part of the key because pod names repeat across namespaces.
type findingGroupKey struct {
	resourceID string
	namespace  string
	cluster    string
}

// mergeFindings collapses findings that refer to the same resource
// (same ResourceID + Namespace + Cluster) into a single Finding:
//   - Severity: highest (lowest severityRank) across the group
//   - Metadata["rules"]: []string of every RuleID that fired on this resource
//
// All other fields (ID, RuleID, KBID, ResourceType, Evidence, Explanation,
// DetectedAt) are taken from the first finding in the group. Additional
// Metadata keys from later findings are merged in without overwriting keys
// already set by earlier findings.
// Insertion order of groups is preserved so sortFindings controls final order.
func mergeFindings(raw []models.Finding) []models.Finding {
	type entry struct {
		f       models.Finding
		ruleIDs []string
	}

	index := make(map[findingGroupKey]int) // key → position in entries
	var order []findingGroupKey
	entries := make([]entry, 0, len(raw))

	for _, f := range raw {
		key := findingGroupKey{resourceID: f.ResourceID, namespace: f.Namespace, cluster: f.Cluster}
		pos, exists := index[key]
		if !exists {
			// First finding for this resource. Clone metadata map and use as base.
			meta := make(map[string]any, len(f.Metadata)+1)
			for k, v := range f.Metadata {
				meta[k] = v
			}
			f.Metadata = meta
			entries = append(entries, entry{f: f, ruleIDs: []string{f.RuleID}})
			index[key] = len(entries) - 1
			order = append(order, key)
			continue
		}

		e := &entries[pos]
		e.ruleIDs = append(e.ruleIDs, f.RuleID)

		// Upgrade severity if this finding is more severe.
		if severityRank[f.Severity] < severityRank[e.f.Severity] {
			e.f.Severity = f.Severity
		}

		// Merge any new metadata keys from this finding; do not overwrite existing.
		for k, v := range f.Metadata {
			if _, alreadySet := e.f.Metadata[k]; !alreadySet {
				e.f.Metadata[k] = v
			}
		}
	}

	// Stamp Metadata["rules"] and collect results in group-insertion order.
	result := make([]models.Finding, 0, len(entries))
	for _, key := range order {
		e := &entries[index[key]]
		e.f.Metadata["rules"] = e.ruleIDs
		result = append(result, e.f)
	}
	return result
}

// enrichFindings fills Remediation and References from the knowledge-base
// entry referenced by each finding's KBID. Fields already set by a rule are
// left untouched; findings with an unknown KBID pass through unchanged.
func enrichFindings(findings []models.Finding, catalog *kb.Catalog) {
	if catalog == nil {
		return
	}
	for i := range findings {
		f := &findings[i]
		entry, ok := catalog.Get(f.KBID)
		if !ok {
			continue
		}
		if f.Remediation == "" {
			f.Remediation = entry.Remediation
		}
		if len(f.References) == 0 && len(entry.References) > 0 {
			f.References = append([]string(nil), entry.References...)
		}
	}
}

// severityRank maps Severity values to sort keys (lower = higher priority).
var severityRank = map[models.Severity]int{
	models.SeverityCritical: 0,
	models.SeverityHigh:     1,
	models.SeverityMedium:   2,
	models.SeverityLow:      3,
	models.SeverityInfo:     4,
}

// sortFindings sorts findings in-place: severity descending (CRITICAL first),
// ties broken by Namespace then ResourceID ascending so output is deterministic.
func sortFindings(findings []models.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		ri := severityRank[findings[i].Severity]
		rj := severityRank[findings[j].Severity]
		if ri != rj {
			return ri < rj
		}
		if findings[i].Namespace != findings[j].Namespace {
			return findings[i].Namespace < findings[j].Namespace
		}
		return findings[i].ResourceID < findings[j].ResourceID
	})
}

// computeSummary aggregates finding counts across all severity levels.
// Risk chain fields are attached separately by the caller.
func computeSummary(findings []models.Finding) models.ScanSummary {
	var s models.ScanSummary
	s.TotalFindings = len(findings)
	for _, f := range findings {
		switch f.Severity {
		case models.SeverityCritical:
			s.CriticalFindings++
		case models.SeverityHigh:
			s.HighFindings++
		case models.SeverityMedium:
			s.MediumFindings++
		case models.SeverityLow:
			s.LowFindings++
		case models.SeverityInfo:
			s.InfoFindings++
		}
	}
	return s
}
