package engine

import (
	"testing"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/kb"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/rules"
)

// mkFinding builds a minimal finding for aggregation tests.
func mkFinding(ruleID, resourceID, namespace string, sev models.Severity) models.Finding {
	return models.Finding{
		ID:         ruleID + ":" + namespace + "/" + resourceID,
		RuleID:     ruleID,
		ResourceID: resourceID,
		Namespace:  namespace,
		Cluster:    "test-ctx",
		Severity:   sev,
	}
}

// TestMergeFindings_SameResource verifies that findings for the same resource
// collapse into one with the highest severity and all rule IDs recorded.
func TestMergeFindings_SameResource(t *testing.T) {
	raw := []models.Finding{
		mkFinding("K8S_POD_VARLOG_MOUNT", "log-reader", "ops", models.SeverityHigh),
		mkFinding("K8S_POD_PRIVILEGED_CONTAINER", "log-reader", "ops", models.SeverityCritical),
	}

	merged := mergeFindings(raw)
	if len(merged) != 1 {
		t.Fatalf("merged count = %d; want 1", len(merged))
	}

	f := merged[0]
	if f.Severity != models.SeverityCritical {
		t.Errorf("Severity = %q; want CRITICAL after upgrade", f.Severity)
	}
	ids, ok := f.Metadata["rules"].([]string)
	if !ok {
		t.Fatalf("Metadata[rules] = %v; want []string", f.Metadata["rules"])
	}
	if len(ids) != 2 || ids[0] != "K8S_POD_VARLOG_MOUNT" || ids[1] != "K8S_POD_PRIVILEGED_CONTAINER" {
		t.Errorf("rules = %v; want both rule IDs in firing order", ids)
	}
}

// TestEvaluateDomains_NoCrossDomainMerge verifies that a resource flagged by
// two domains yields one finding per domain: merging is scoped to a domain so
// Domain attribution survives for policy filtering and enforcement.
func TestEvaluateDomains_NoCrossDomainMerge(t *testing.T) {
	snap := &models.ClusterSnapshot{
		ContextName: "test-ctx",
		Pods: []models.PodData{
			{
				Name:               "log-reader",
				Namespace:          "dev",
				ServiceAccountName: "default",
				Volumes:            []models.VolumeData{{Name: "logs", HostPath: "/var/log"}},
			},
		},
	}
	domains := []ScanDomain{
		{Name: "workload", Registry: registryOf([]rules.Rule{rules.PodVarLogMountRule{}})},
		{Name: "identity", Registry: registryOf([]rules.Rule{rules.PodDefaultServiceAccountRule{}})},
	}

	findings := evaluateDomains(rules.RuleContext{Snapshot: snap}, domains, nil)
	if len(findings) != 2 {
		t.Fatalf("findings count = %d; want 2 (one per domain)", len(findings))
	}
	byDomain := map[string]models.Finding{}
	for _, f := range findings {
		byDomain[f.Domain] = f
	}
	if _, ok := byDomain["workload"]; !ok {
		t.Error("missing workload finding")
	}
	if _, ok := byDomain["identity"]; !ok {
		t.Error("missing identity finding")
	}
	if byDomain["workload"].ResourceID != byDomain["identity"].ResourceID {
		t.Errorf("findings refer to different resources: %q vs %q",
			byDomain["workload"].ResourceID, byDomain["identity"].ResourceID)
	}
}

// TestMergeFindings_SameNameDifferentNamespace verifies that pods with the
// same name in different namespaces are never merged.
func TestMergeFindings_SameNameDifferentNamespace(t *testing.T) {
	raw := []models.Finding{
		mkFinding("K8S_POD_VARLOG_MOUNT", "agent", "ops", models.SeverityHigh),
		mkFinding("K8S_POD_VARLOG_MOUNT", "agent", "dev", models.SeverityHigh),
	}

	merged := mergeFindings(raw)
	if len(merged) != 2 {
		t.Fatalf("merged count = %d; want 2 (distinct namespaces)", len(merged))
	}
}

// TestMergeFindings_MetadataNotOverwritten verifies that metadata keys set by
// the first finding win over later duplicates.
func TestMergeFindings_MetadataNotOverwritten(t *testing.T) {
	first := mkFinding("RULE_A", "pod-1", "default", models.SeverityMedium)
	first.Metadata = map[string]any{"volume": "logs"}
	second := mkFinding("RULE_B", "pod-1", "default", models.SeverityMedium)
	second.Metadata = map[string]any{"volume": "other", "mount_path": "/host/log"}

	merged := mergeFindings([]models.Finding{first, second})
	if len(merged) != 1 {
		t.Fatalf("merged count = %d; want 1", len(merged))
	}
	if merged[0].Metadata["volume"] != "logs" {
		t.Errorf("volume = %v; want logs (first writer wins)", merged[0].Metadata["volume"])
	}
	if merged[0].Metadata["mount_path"] != "/host/log" {
		t.Errorf("mount_path = %v; want /host/log merged in", merged[0].Metadata["mount_path"])
	}
}

// TestSortFindings_SeverityThenName verifies severity-descending order with
// namespace/resource tie-breaks.
func TestSortFindings_SeverityThenName(t *testing.T) {
	findings := []models.Finding{
		mkFinding("R1", "pod-b", "ops", models.SeverityMedium),
		mkFinding("R2", "pod-a", "ops", models.SeverityCritical),
		mkFinding("R3", "pod-a", "dev", models.SeverityMedium),
	}

	sortFindings(findings)

	if findings[0].Severity != models.SeverityCritical {
		t.Errorf("findings[0].Severity = %q; want CRITICAL", findings[0].Severity)
	}
	if findings[1].Namespace != "dev" {
		t.Errorf("findings[1].Namespace = %q; want dev before ops at equal severity", findings[1].Namespace)
	}
	if findings[2].ResourceID != "pod-b" {
		t.Errorf("findings[2].ResourceID = %q; want pod-b", findings[2].ResourceID)
	}
}

// TestComputeSummary_Counts verifies per-severity counting.
func TestComputeSummary_Counts(t *testing.T) {
	findings := []models.Finding{
		mkFinding("R1", "a", "ns", models.SeverityCritical),
		mkFinding("R2", "b", "ns", models.SeverityHigh),
		mkFinding("R3", "c", "ns", models.SeverityHigh),
		mkFinding("R4", "d", "ns", models.SeverityMedium),
		mkFinding("R5", "e", "ns", models.SeverityInfo),
	}

	s := computeSummary(findings)
	if s.TotalFindings != 5 {
		t.Errorf("TotalFindings = %d; want 5", s.TotalFindings)
	}
	if s.CriticalFindings != 1 || s.HighFindings != 2 || s.MediumFindings != 1 || s.InfoFindings != 1 {
		t.Errorf("counts = %+v; want 1/2/1/0/1", s)
	}
	if s.LowFindings != 0 {
		t.Errorf("LowFindings = %d; want 0", s.LowFindings)
	}
}

// TestEnrichFindings_FillsFromCatalog verifies that remediation and references
// come from the knowledge-base entry and that rule-set values are preserved.
func TestEnrichFindings_FillsFromCatalog(t *testing.T) {
	catalog := kb.NewCatalog()
	catalog.Register(kb.Entry{
		ID:          "KGV900",
		Title:       "Test Entry",
		Description: "desc",
		Remediation: "do the fix",
		References:  []string{"https://example.com/advisory"},
	})

	findings := []models.Finding{
		{ID: "f1", KBID: "KGV900"},
		{ID: "f2", KBID: "KGV900", Remediation: "rule-specific fix"},
		{ID: "f3", KBID: "KGV999"},
	}

	enrichFindings(findings, catalog)

	if findings[0].Remediation != "do the fix" {
		t.Errorf("f1 Remediation = %q; want catalog value", findings[0].Remediation)
	}
	if len(findings[0].References) != 1 || findings[0].References[0] != "https://example.com/advisory" {
		t.Errorf("f1 References = %v; want catalog reference", findings[0].References)
	}
	if findings[1].Remediation != "rule-specific fix" {
		t.Errorf("f2 Remediation = %q; rule-set value must be preserved", findings[1].Remediation)
	}
	if findings[2].Remediation != "" {
		t.Errorf("f3 Remediation = %q; unknown KBID must pass through", findings[2].Remediation)
	}
}
