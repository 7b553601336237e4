package models

import "time"

// Severity represents the impact level of a finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Category classifies the vulnerability class a finding belongs to.
// The taxonomy mirrors the knowledge-base category tags.
type Category string

const (
	CategoryPrivilegeEscalation   Category = "Privilege Escalation"
	CategoryRemoteCodeExec        Category = "Remote Code Execution"
	CategoryDenialOfService       Category = "Denial of Service"
	CategoryAccessRisk            Category = "Access Risk"
	CategoryInformationDisclosure Category = "Information Disclosure"
	CategoryWorkloadMisconfig     Category = "Workload Misconfiguration"
	CategoryNetworkExposure       Category = "Network Exposure"
	CategoryIdentityRisk          Category = "Identity Risk"
)

// ResourceType identifies the kind of Kubernetes resource a finding refers to.
type ResourceType string

const (
	ResourceK8sCluster        ResourceType = "K8S_CLUSTER"
	ResourceK8sNode           ResourceType = "K8S_NODE"
	ResourceK8sNamespace      ResourceType = "K8S_NAMESPACE"
	ResourceK8sPod            ResourceType = "K8S_POD"
	ResourceK8sService        ResourceType = "K8S_SERVICE"
	ResourceK8sServiceAccount ResourceType = "K8S_SERVICEACCOUNT"
	ResourceKubectlClient     ResourceType = "KUBECTL_CLIENT"
)

// Finding is a single detected misconfiguration or vulnerability match.
// It is the atomic output unit of the rule engine.
type Finding struct {
	ID           string       `json:"id"`
	RuleID       string       `json:"rule_id"`
	KBID         string       `json:"kb_id"`
	ResourceID   string       `json:"resource_id"`
	ResourceType ResourceType `json:"resource_type"`

	// Cluster is the kubeconfig context name for live scans, or the manifest
	// source path for declared scans.
	Cluster   string `json:"cluster"`
	Namespace string `json:"namespace,omitempty"`
	Domain    string `json:"domain"`

	Severity Severity `json:"severity"`
	Category Category `json:"category"`

	// Evidence is the concrete observation that triggered the match
	// (e.g. the offending hostPath and mount path).
	Evidence    string `json:"evidence,omitempty"`
	Explanation string `json:"explanation"`

	// Remediation and References are filled from the knowledge-base entry
	// during aggregation; rules only stamp the KBID.
	Remediation string   `json:"remediation,omitempty"`
	References  []string `json:"references,omitempty"`

	DetectedAt time.Time      `json:"detected_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// RiskChain groups findings that participate in the same compound risk
// correlation chain. Populated in ScanSummary by the correlation pass.
type RiskChain struct {
	// Score is the numeric risk weight for this chain (higher = more critical).
	Score int `json:"score"`
	// Reason is the human-readable explanation of why this chain is risky.
	Reason string `json:"reason"`
	// FindingIDs lists the Finding.ID values that participate in this chain.
	FindingIDs []string `json:"finding_ids"`
}

// ScanSummary aggregates counts across all findings of a scan.
type ScanSummary struct {
	TotalFindings    int `json:"total_findings"`
	CriticalFindings int `json:"critical_findings"`
	HighFindings     int `json:"high_findings"`
	MediumFindings   int `json:"medium_findings"`
	LowFindings      int `json:"low_findings"`
	InfoFindings     int `json:"info_findings"`
	// RiskScore is the highest score across all detected risk chains.
	// 0 means no compound risk was detected.
	RiskScore int `json:"risk_score"`
	// RiskChains groups findings by compound risk chain, ordered by
	// descending score. Omitted when no chain was detected.
	RiskChains []RiskChain `json:"risk_chains,omitempty"`
}

// ScanReport is the top-level output of any scan run.
type ScanReport struct {
	ReportID    string      `json:"report_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	ScanType    string      `json:"scan_type"`
	Cluster     string      `json:"cluster"`
	Summary     ScanSummary `json:"summary"`
	Findings    []Finding   `json:"findings"`
	// Metadata carries optional, scan-type-specific key/value pairs.
	// For cluster scans this includes "cluster_provider".
	Metadata map[string]any `json:"metadata,omitempty"`
}
