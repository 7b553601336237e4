package rules

import (
	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/policy"
)

// RuleContext carries all collected data for a single scan.
// It is the sole input to Rule.Evaluate and must contain everything a rule
// needs; rules must never make network calls or read external state.
type RuleContext struct {
	// Snapshot is the normalized resource graph built from a live cluster or
	// from declared manifests. Rules must treat nil as "nothing to evaluate".
	Snapshot *models.ClusterSnapshot

	// Policy holds the active PolicyConfig for threshold overrides. May be nil
	// when no policy file is loaded; rules must treat nil as "use defaults".
	Policy *policy.PolicyConfig
}

// Rule is a single deterministic misconfiguration or vulnerability matcher.
// Rules must be stateless and safe to call concurrently.
// They must never call the Kubernetes API, AWS SDK, or any external service.
type Rule interface {
	// ID returns the unique, stable identifier for this rule (e.g. "K8S_POD_VARLOG_MOUNT").
	ID() string

	// Name returns a short human-readable rule name.
	Name() string

	// KBID returns the knowledge-base entry this rule detects instances of.
	// The aggregation layer joins the entry's remediation and references
	// onto every finding the rule produces.
	KBID() string

	// Evaluate inspects the provided context and returns zero or more findings.
	// An empty slice means no issue was detected.
	Evaluate(ctx RuleContext) []models.Finding
}

// RuleRegistry manages the set of active rules and drives evaluation.
type RuleRegistry interface {
	// Register adds a rule to the registry. Panics on duplicate ID.
	Register(rule Rule)

	// All returns all registered rules in registration order.
	All() []Rule

	// EvaluateAll runs every registered rule against ctx and merges results.
	EvaluateAll(ctx RuleContext) []models.Finding
}
