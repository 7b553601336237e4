package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/kb"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/policy"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/providers/manifest"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/rules"
)

// ManifestEngine orchestrates a scan over declared resources loaded from YAML
// manifests. The same rule packs run as for live clusters; rules that need
// live-only data (server version, EKS control plane) see empty fields and
// skip themselves.
type ManifestEngine struct {
	domains []ScanDomain
	catalog *kb.Catalog
	policy  *policy.PolicyConfig
}

// NewManifestEngine constructs a ManifestEngine with the given scan domains.
func NewManifestEngine(
	domains []ScanDomain,
	catalog *kb.Catalog,
	policyCfg *policy.PolicyConfig,
) *ManifestEngine {
	return &ManifestEngine{
		domains: domains,
		catalog: catalog,
		policy:  policyCfg,
	}
}

// RunScan loads manifests from opts.Target (a YAML file or directory),
// evaluates the scan domains against the declared resources, enriches
// findings from the knowledge base, correlates risk chains, and returns a
// populated ScanReport.
func (e *ManifestEngine) RunScan(ctx context.Context, opts ScanOptions) (*models.ScanReport, error) {
	snapshot, err := manifest.Load(opts.Target)
	if err != nil {
		return nil, fmt.Errorf("load manifests: %w", err)
	}
	snapshot.KubectlVersion = opts.KubectlVersion

	rctx := rules.RuleContext{Snapshot: snapshot, Policy: e.policy}
	findings := evaluateDomains(rctx, e.domains, e.policy)
	enrichFindings(findings, e.catalog)
	chains := correlateRiskChains(findings)
	sortFindings(findings)

	summary := computeSummary(findings)
	summary.RiskChains = chains
	if len(chains) > 0 {
		summary.RiskScore = chains[0].Score
	}

	return &models.ScanReport{
		ReportID:    fmt.Sprintf("scan-%d", time.Now().UnixNano()),
		GeneratedAt: time.Now().UTC(),
		ScanType:    string(ScanTypeManifests),
		Cluster:     snapshot.ContextName,
		Summary:     summary,
		Findings:    findings,
	}, nil
}
