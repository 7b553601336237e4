package rules

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
)

// DefaultRuleRegistry is an ordered, in-memory set of misconfiguration and
// vulnerability matchers. Each scan domain holds one registry, filled from
// its rule pack; matchers run against the snapshot in registration order, so
// packs control result ordering (CRITICAL rules first by convention).
// Register panics on duplicate rule IDs to catch pack wiring mistakes at startup.
type DefaultRuleRegistry struct {
	rules []Rule
	index map[string]struct{}
}

// NewDefaultRuleRegistry returns an empty registry ready for rule registration.
func NewDefaultRuleRegistry() *DefaultRuleRegistry {
	return &DefaultRuleRegistry{
		index: make(map[string]struct{}),
	}
}

// Register adds rule to the registry. Panics if the same ID is registered twice.
func (r *DefaultRuleRegistry) Register(rule Rule) {
	if _, exists := r.index[rule.ID()]; exists {
		panic(fmt.Sprintf("duplicate rule ID: %q", rule.ID()))
	}
	r.rules = append(r.rules, rule)
	r.index[rule.ID()] = struct{}{}
}

// All returns all registered rules in registration order.
func (r *DefaultRuleRegistry) All() []Rule {
	return r.rules
}

// EvaluateAll runs every registered matcher against the scan context and
// returns the concatenated findings, unmerged; the aggregation layer dedupes
// and ranks them.
func (r *DefaultRuleRegistry) EvaluateAll(ctx RuleContext) []models.Finding {
	var findings []models.Finding
	for _, rule := range r.rules {
		findings = append(findings, rule.Evaluate(ctx)...)
	}
	return findings
}
