package policy

// PolicyConfig is the root of the scanner policy file. It lets operators
// disable whole domains or single rules, override severities, tune numeric
// rule parameters, and configure CI enforcement thresholds.
type PolicyConfig struct {
	Version     int                          `yaml:"version"`
	Domains     map[string]DomainConfig      `yaml:"domains"`
	Rules       map[string]RuleConfig        `yaml:"rules"`
	Enforcement map[string]EnforcementConfig `yaml:"enforcement"`
}

// DomainConfig controls an entire scan domain (workload, network, identity,
// cves, platform).
type DomainConfig struct {
	Enabled bool `yaml:"enabled"`

	// MinSeverity drops all findings in this domain below the given severity.
	// Empty means keep everything.
	MinSeverity string `yaml:"min_severity,omitempty"`
}

// RuleConfig overrides a single rule.
type RuleConfig struct {
	Enabled  *bool  `yaml:"enabled,omitempty"`
	Severity string `yaml:"severity,omitempty"`

	// Params holds per-rule numeric tunables, read by rules through
	// GetThreshold (e.g. min_run_as_uid for K8S_POD_RUN_AS_ROOT).
	Params map[string]float64 `yaml:"params,omitempty"`
}

// EnforcementConfig configures the CI failure threshold for a domain.
type EnforcementConfig struct {
	// FailOnSeverity makes the scan exit non-zero when any finding in the
	// domain has this severity or higher. Empty disables enforcement.
	FailOnSeverity string `yaml:"fail_on_severity,omitempty"`
}
