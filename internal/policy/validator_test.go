package policy

import (
	"strings"
	"testing"
)

var knownRuleIDs = []string{
	"K8S_POD_VARLOG_MOUNT",
	"K8S_POD_PRIVILEGED_CONTAINER",
	"K8S_SERVICE_PUBLIC_LOADBALANCER",
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &PolicyConfig{
		Version: 1,
		Domains: map[string]DomainConfig{
			"workload": {Enabled: true, MinSeverity: "MEDIUM"},
		},
		Rules: map[string]RuleConfig{
			"K8S_POD_VARLOG_MOUNT": {Severity: "HIGH"},
		},
		Enforcement: map[string]EnforcementConfig{
			"workload": {FailOnSeverity: "CRITICAL"},
		},
	}
	if errs := Validate(cfg, knownRuleIDs); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidate_NilConfig(t *testing.T) {
	errs := Validate(nil, knownRuleIDs)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error for nil config, got %d", len(errs))
	}
}

func TestValidate_BadVersion(t *testing.T) {
	cfg := &PolicyConfig{Version: 2}
	errs := Validate(cfg, knownRuleIDs)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "version") {
		t.Errorf("error = %v; want version error", errs[0])
	}
}

func TestValidate_UnknownDomain(t *testing.T) {
	cfg := &PolicyConfig{
		Version: 1,
		Domains: map[string]DomainConfig{"storage": {Enabled: true}},
	}
	errs := Validate(cfg, knownRuleIDs)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "domains.storage") {
		t.Errorf("error = %v; want unknown domain error", errs[0])
	}
}

func TestValidate_UnknownRuleID(t *testing.T) {
	cfg := &PolicyConfig{
		Version: 1,
		Rules:   map[string]RuleConfig{"NO_SUCH_RULE": {}},
	}
	errs := Validate(cfg, knownRuleIDs)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "rules.NO_SUCH_RULE") {
		t.Errorf("error = %v; want unknown rule error", errs[0])
	}
}

func TestValidate_InvalidSeverities(t *testing.T) {
	cfg := &PolicyConfig{
		Version: 1,
		Domains: map[string]DomainConfig{
			"workload": {Enabled: true, MinSeverity: "URGENT"},
		},
		Rules: map[string]RuleConfig{
			"K8S_POD_VARLOG_MOUNT": {Severity: "SEVERE"},
		},
		Enforcement: map[string]EnforcementConfig{
			"workload": {FailOnSeverity: "FATAL"},
		},
	}
	errs := Validate(cfg, knownRuleIDs)
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors (all collected), got %d: %v", len(errs), errs)
	}
}

func TestValidate_CaseInsensitiveSeverities(t *testing.T) {
	cfg := &PolicyConfig{
		Version: 1,
		Domains: map[string]DomainConfig{
			"workload": {Enabled: true, MinSeverity: "medium"},
		},
		Rules: map[string]RuleConfig{
			"K8S_POD_VARLOG_MOUNT": {Severity: "high"},
		},
	}
	if errs := Validate(cfg, knownRuleIDs); len(errs) != 0 {
		t.Errorf("expected lower-case severities to validate, got %v", errs)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &PolicyConfig{
		Version:     3,
		Domains:     map[string]DomainConfig{"storage": {}},
		Rules:       map[string]RuleConfig{"NO_SUCH_RULE": {}},
		Enforcement: map[string]EnforcementConfig{"compute": {FailOnSeverity: "HIGH"}},
	}
	errs := Validate(cfg, knownRuleIDs)
	if len(errs) != 4 {
		t.Errorf("expected 4 errors, got %d: %v", len(errs), errs)
	}
}
