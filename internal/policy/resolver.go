package policy

import (
	"strings"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
)

// severityRank orders severities for threshold comparisons.
// Higher rank = more severe.
var severityRank = map[models.Severity]int{
	models.SeverityInfo:     1,
	models.SeverityLow:      2,
	models.SeverityMedium:   3,
	models.SeverityHigh:     4,
	models.SeverityCritical: 5,
}

// ApplyPolicy filters and rewrites findings according to cfg:
//   - a disabled domain drops every finding stamped with that domain
//   - a disabled rule drops its findings
//   - a rule severity override rewrites Finding.Severity
//   - a domain min_severity drops findings below the threshold
//     (applied after severity overrides)
//
// cfg == nil returns findings unchanged.
func ApplyPolicy(findings []models.Finding, domain string, cfg *PolicyConfig) []models.Finding {
	if cfg == nil {
		return findings
	}

	// Domain-level disable
	if d, ok := cfg.Domains[domain]; ok {
		if !d.Enabled {
			return []models.Finding{}
		}
	}

	minRank := 0
	if d, ok := cfg.Domains[domain]; ok && d.MinSeverity != "" {
		if r, ok := severityRank[models.Severity(strings.ToUpper(d.MinSeverity))]; ok {
			minRank = r
		}
	}

	var result []models.Finding

	for _, f := range findings {
		ruleCfg, hasRule := cfg.Rules[f.RuleID]

		// Rule-level disable
		if hasRule && ruleCfg.Enabled != nil && !*ruleCfg.Enabled {
			continue
		}

		// Severity override
		if hasRule && ruleCfg.Severity != "" {
			f.Severity = models.Severity(strings.ToUpper(ruleCfg.Severity))
		}

		// Domain min-severity floor
		if minRank > 0 {
			if r, ok := severityRank[f.Severity]; !ok || r < minRank {
				continue
			}
		}

		result = append(result, f)
	}

	return result
}
