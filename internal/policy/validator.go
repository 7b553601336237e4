package policy

import (
	"fmt"
	"strings"
)

// validDomains is the set of recognised scan domain names.
var validDomains = map[string]struct{}{
	"workload": {},
	"network":  {},
	"identity": {},
	"cves":     {},
	"platform": {},
}

// validSeverities is the set of allowed severity strings (upper-case canonical form).
var validSeverities = map[string]struct{}{
	"CRITICAL": {},
	"HIGH":     {},
	"MEDIUM":   {},
	"LOW":      {},
	"INFO":     {},
}

// Validate checks cfg for semantic correctness and returns all validation errors
// found. An empty slice means the config is valid.
//
// Checks performed:
//   - version must be 1
//   - domain names must be one of: workload, network, identity, cves, platform
//   - domain min_severity must be a valid severity value if set
//   - rule IDs must appear in availableRuleIDs
//   - rule severity overrides must be valid severity values if set
//   - enforcement domain names must be valid domains
//   - enforcement fail_on_severity must be a valid severity value if set
//
// All errors are collected before returning; Validate never stops at the first error.
func Validate(cfg *PolicyConfig, availableRuleIDs []string) []error {
	if cfg == nil {
		return []error{fmt.Errorf("policy config is nil")}
	}

	// Build a lookup set for fast rule ID membership tests.
	knownIDs := make(map[string]struct{}, len(availableRuleIDs))
	for _, id := range availableRuleIDs {
		knownIDs[id] = struct{}{}
	}

	var errs []error

	// Version check.
	if cfg.Version != 1 {
		errs = append(errs, fmt.Errorf("version: unsupported value %d; must be 1", cfg.Version))
	}

	// Domain checks.
	for name, dcfg := range cfg.Domains {
		if _, ok := validDomains[name]; !ok {
			errs = append(errs, fmt.Errorf("domains.%s: unknown domain; valid values: %s", name, validDomainList()))
		}
		if dcfg.MinSeverity != "" {
			if _, ok := validSeverities[strings.ToUpper(dcfg.MinSeverity)]; !ok {
				errs = append(errs, fmt.Errorf("domains.%s.min_severity: invalid severity %q", name, dcfg.MinSeverity))
			}
		}
	}

	// Rule checks.
	for id, rcfg := range cfg.Rules {
		if _, ok := knownIDs[id]; !ok {
			errs = append(errs, fmt.Errorf("rules.%s: unknown rule ID", id))
		}
		if rcfg.Severity != "" {
			if _, ok := validSeverities[strings.ToUpper(rcfg.Severity)]; !ok {
				errs = append(errs, fmt.Errorf("rules.%s.severity: invalid severity %q", id, rcfg.Severity))
			}
		}
	}

	// Enforcement checks.
	for name, ecfg := range cfg.Enforcement {
		if _, ok := validDomains[name]; !ok {
			errs = append(errs, fmt.Errorf("enforcement.%s: unknown domain; valid values: %s", name, validDomainList()))
		}
		if ecfg.FailOnSeverity != "" {
			if _, ok := validSeverities[strings.ToUpper(ecfg.FailOnSeverity)]; !ok {
				errs = append(errs, fmt.Errorf("enforcement.%s.fail_on_severity: invalid severity %q", name, ecfg.FailOnSeverity))
			}
		}
	}

	return errs
}

// validDomainList returns the sorted comma-separated list used in error messages.
func validDomainList() string {
	return "workload, network, identity, cves, platform"
}
