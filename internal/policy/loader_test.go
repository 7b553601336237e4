package policy

import (
	"os"
	"path/filepath"
	"testing"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kg.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	return path
}

func TestLoadPolicy_FullConfig(t *testing.T) {
	path := writePolicy(t, `version: 1
domains:
  workload:
    enabled: true
    min_severity: MEDIUM
  platform:
    enabled: false
rules:
  K8S_POD_NO_SECCOMP:
    enabled: false
  K8S_POD_VARLOG_MOUNT:
    severity: HIGH
enforcement:
  workload:
    fail_on_severity: CRITICAL
`)
	cfg, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d", cfg.Version)
	}
	if d := cfg.Domains["workload"]; !d.Enabled || d.MinSeverity != "MEDIUM" {
		t.Errorf("workload domain = %+v", d)
	}
	if d := cfg.Domains["platform"]; d.Enabled {
		t.Error("platform domain should be disabled")
	}
	rc := cfg.Rules["K8S_POD_NO_SECCOMP"]
	if rc.Enabled == nil || *rc.Enabled {
		t.Errorf("K8S_POD_NO_SECCOMP enabled = %v; want false", rc.Enabled)
	}
	if cfg.Rules["K8S_POD_VARLOG_MOUNT"].Severity != "HIGH" {
		t.Errorf("severity override = %q", cfg.Rules["K8S_POD_VARLOG_MOUNT"].Severity)
	}
	if cfg.Enforcement["workload"].FailOnSeverity != "CRITICAL" {
		t.Errorf("enforcement = %+v", cfg.Enforcement["workload"])
	}
}

func TestLoadPolicy_MinimalConfigInitialisesMaps(t *testing.T) {
	path := writePolicy(t, "version: 1\n")
	cfg, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if cfg.Domains == nil || cfg.Rules == nil || cfg.Enforcement == nil {
		t.Error("maps must be initialised on load")
	}
}

func TestLoadPolicy_UnsupportedVersion(t *testing.T) {
	path := writePolicy(t, "version: 2\n")
	if _, err := LoadPolicy(path); err == nil {
		t.Error("expected error for version 2")
	}
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadPolicy_MalformedYAML(t *testing.T) {
	path := writePolicy(t, "version: 1\ndomains: [not a map\n")
	if _, err := LoadPolicy(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestGetThreshold(t *testing.T) {
	cfg := &PolicyConfig{
		Version: 1,
		Rules: map[string]RuleConfig{
			"SOME_RULE": {Params: map[string]float64{"max_age_days": 30}},
		},
	}

	if v := GetThreshold("SOME_RULE", "max_age_days", 90, cfg); v != 30 {
		t.Errorf("configured threshold = %v; want 30", v)
	}
	if v := GetThreshold("SOME_RULE", "other_key", 90, cfg); v != 90 {
		t.Errorf("missing key = %v; want default 90", v)
	}
	if v := GetThreshold("OTHER_RULE", "max_age_days", 90, cfg); v != 90 {
		t.Errorf("missing rule = %v; want default 90", v)
	}
	if v := GetThreshold("SOME_RULE", "max_age_days", 90, nil); v != 90 {
		t.Errorf("nil config = %v; want default 90", v)
	}
}
