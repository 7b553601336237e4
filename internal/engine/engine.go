package engine

import (
	"context"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/rules"
)

// ScanType identifies the source of resources a scan evaluates.
type ScanType string

const (
	ScanTypeCluster   ScanType = "cluster"
	ScanTypeManifests ScanType = "manifests"
)

// ReportFormat controls the CLI output format.
type ReportFormat string

const ReportFormatJSON ReportFormat = "json"

// ScanOptions configures a single scan run.
// It is the sole input to Engine.RunScan.
type ScanOptions struct {
	// Target is the kubeconfig context for cluster scans (empty = current
	// context), or the manifest file/directory path for manifest scans.
	Target string

	// KubectlVersion is the operator's kubectl client version. When non-empty
	// it enables the client-side CVE rules.
	KubectlVersion string

	// ReportFormat controls how the CLI renders the returned report.
	ReportFormat ReportFormat
}

// Engine is the central orchestration interface.
// It coordinates resource collection, rule evaluation, knowledge-base
// enrichment, and risk correlation, returning a fully populated ScanReport.
//
// Engine must not call the Kubernetes or AWS APIs directly; it delegates to
// the appropriate provider interfaces.
type Engine interface {
	RunScan(ctx context.Context, opts ScanOptions) (*models.ScanReport, error)
}

// ScanDomain pairs a policy domain name with the rule registry evaluated for it.
// Findings produced by the registry are stamped with the domain name, and
// policy domain/rule overrides are applied per domain.
type ScanDomain struct {
	Name     string
	Registry rules.RuleRegistry
}
