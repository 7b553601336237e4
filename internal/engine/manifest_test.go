package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/kb"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
)

const chainManifestYAML = `apiVersion: v1
kind: Pod
metadata:
  name: log-reader
  namespace: ops
spec:
  volumes:
    - name: logs
      hostPath:
        path: /var/log
  containers:
    - name: app
      image: busybox
      volumeMounts:
        - name: logs
          mountPath: /host/log
---
apiVersion: v1
kind: Service
metadata:
  name: web-lb
  namespace: ops
spec:
  type: LoadBalancer
`

// TestManifestEngine_VarLogChain verifies the declared-resource pipeline end
// to end: manifest loading, rule evaluation, enrichment, and correlation.
func TestManifestEngine_VarLogChain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stack.yaml")
	if err := os.WriteFile(path, []byte(chainManifestYAML), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	eng := NewManifestEngine(scanDomains(), kb.Default(), nil)
	report, err := eng.RunScan(context.Background(), ScanOptions{Target: path})
	if err != nil {
		t.Fatalf("RunScan error: %v", err)
	}

	if report.ScanType != "manifests" {
		t.Errorf("ScanType = %q; want manifests", report.ScanType)
	}
	if report.Cluster != path {
		t.Errorf("Cluster = %q; want manifest path", report.Cluster)
	}

	byRule := map[string]models.Finding{}
	for _, f := range report.Findings {
		byRule[f.RuleID] = f
	}
	varlog, ok := byRule["K8S_POD_VARLOG_MOUNT"]
	if !ok {
		t.Fatalf("no K8S_POD_VARLOG_MOUNT finding in %d findings", len(report.Findings))
	}
	if varlog.Remediation == "" {
		t.Error("Remediation empty; want knowledge-base enrichment")
	}
	if _, ok := byRule["K8S_SERVICE_PUBLIC_LOADBALANCER"]; !ok {
		t.Error("no K8S_SERVICE_PUBLIC_LOADBALANCER finding")
	}

	if report.Summary.RiskScore != 90 {
		t.Errorf("RiskScore = %d; want 90 for /var/log + public LB in one namespace",
			report.Summary.RiskScore)
	}
}

// TestManifestEngine_NoServerVersionRules verifies that server-side CVE rules
// stay inactive for manifest scans.
func TestManifestEngine_NoServerVersionRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pod.yaml")
	manifest := `apiVersion: v1
kind: Pod
metadata:
  name: quiet-pod
spec:
  containers:
    - name: app
      securityContext:
        runAsNonRoot: true
        seccompProfile:
          type: RuntimeDefault
`
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	eng := NewManifestEngine(scanDomains(), kb.Default(), nil)
	report, err := eng.RunScan(context.Background(), ScanOptions{Target: path})
	if err != nil {
		t.Fatalf("RunScan error: %v", err)
	}
	for _, f := range report.Findings {
		if f.Domain == "cves" {
			t.Errorf("unexpected cves finding %q without any version input", f.RuleID)
		}
	}
}

// TestManifestEngine_MissingPath verifies that a missing manifest path is an error.
func TestManifestEngine_MissingPath(t *testing.T) {
	eng := NewManifestEngine(scanDomains(), kb.Default(), nil)
	if _, err := eng.RunScan(context.Background(), ScanOptions{Target: "/does/not/exist"}); err == nil {
		t.Fatal("expected error for missing manifest path, got nil")
	}
}
