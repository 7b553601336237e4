package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/engine"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/kb"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/policy"
	awseks "github.com/pankaj-dahiya-devops/kubeguard/internal/providers/aws/eks"
	kube "github.com/pankaj-dahiya-devops/kubeguard/internal/providers/kubernetes"
	cvespack "github.com/pankaj-dahiya-devops/kubeguard/internal/rulepacks/cves"
	ekspack "github.com/pankaj-dahiya-devops/kubeguard/internal/rulepacks/eks"
	identitypack "github.com/pankaj-dahiya-devops/kubeguard/internal/rulepacks/identity"
	networkpack "github.com/pankaj-dahiya-devops/kubeguard/internal/rulepacks/network"
	workloadpack "github.com/pankaj-dahiya-devops/kubeguard/internal/rulepacks/workload"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/rules"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/version"
)

// scanDomainNames lists every policy domain a scan can produce, in report order.
var scanDomainNames = []string{"workload", "network", "identity", "cves", "platform"}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kg",
		Short: "KubeGuard — Kubernetes security posture scanner",
	}
	root.AddCommand(newScanCmd())
	root.AddCommand(newKBCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan Kubernetes resources for security findings",
	}
	cmd.AddCommand(newScanClusterCmd())
	cmd.AddCommand(newScanManifestsCmd())
	return cmd
}

func newScanClusterCmd() *cobra.Command {
	var (
		contextName    string
		kubectlVersion string
		policyPath     string
		output         string
	)

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Scan a live cluster via the current kubeconfig",
		RunE: func(cmd *cobra.Command, args []string) error {
			policyCfg, err := loadPolicyFlag(policyPath)
			if err != nil {
				return err
			}

			eng := engine.NewKubernetesEngineWithEKS(
				kube.NewDefaultKubeClientProvider(),
				buildScanDomains(),
				registryOf(ekspack.New()),
				awseks.NewDefaultEKSCollector(),
				kb.Default(),
				policyCfg,
			)

			report, err := eng.RunScan(cmd.Context(), engine.ScanOptions{
				Target:         contextName,
				KubectlVersion: kubectlVersion,
				ReportFormat:   engine.ReportFormatJSON,
			})
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			return emitReport(cmd, report, output, policyCfg)
		},
	}

	cmd.Flags().StringVar(&contextName, "context", "", "Kubeconfig context to scan (default: current context)")
	cmd.Flags().StringVar(&kubectlVersion, "kubectl-version", "", "Operator's kubectl client version; enables client-side CVE checks")
	cmd.Flags().StringVar(&policyPath, "policy", "", "Policy file path (default: ./kg.yaml when present)")
	cmd.Flags().StringVar(&output, "output", "", "Write the JSON report to this file path (in addition to stdout)")

	return cmd
}

func newScanManifestsCmd() *cobra.Command {
	var (
		kubectlVersion string
		policyPath     string
		output         string
	)

	cmd := &cobra.Command{
		Use:   "manifests <path>",
		Short: "Scan declared resources from a YAML file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policyCfg, err := loadPolicyFlag(policyPath)
			if err != nil {
				return err
			}

			eng := engine.NewManifestEngine(buildScanDomains(), kb.Default(), policyCfg)
			report, err := eng.RunScan(cmd.Context(), engine.ScanOptions{
				Target:         args[0],
				KubectlVersion: kubectlVersion,
				ReportFormat:   engine.ReportFormatJSON,
			})
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			return emitReport(cmd, report, output, policyCfg)
		},
	}

	cmd.Flags().StringVar(&kubectlVersion, "kubectl-version", "", "Operator's kubectl client version; enables client-side CVE checks")
	cmd.Flags().StringVar(&policyPath, "policy", "", "Policy file path (default: ./kg.yaml when present)")
	cmd.Flags().StringVar(&output, "output", "", "Write the JSON report to this file path (in addition to stdout)")

	return cmd
}

func newKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Knowledge-base commands",
	}
	cmd.AddCommand(newKBListCmd())
	return cmd
}

func newKBListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in knowledge-base entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(kb.Default().All())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the kg version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}

// buildScanDomains wires the core rule packs to their policy domains.
// The platform pack is wired separately because it only runs on EKS clusters.
func buildScanDomains() []engine.ScanDomain {
	return []engine.ScanDomain{
		{Name: "workload", Registry: registryOf(workloadpack.New())},
		{Name: "network", Registry: registryOf(networkpack.New())},
		{Name: "identity", Registry: registryOf(identitypack.New())},
		{Name: "cves", Registry: registryOf(cvespack.New())},
	}
}

// registryOf builds a registry holding the given rules.
func registryOf(rs []rules.Rule) rules.RuleRegistry {
	reg := rules.NewDefaultRuleRegistry()
	for _, r := range rs {
		reg.Register(r)
	}
	return reg
}

// allRuleIDs returns the union of rule IDs from every rule pack, used for
// policy validation.
func allRuleIDs() []string {
	var ids []string
	for _, pack := range [][]rules.Rule{
		workloadpack.New(),
		networkpack.New(),
		identitypack.New(),
		cvespack.New(),
		ekspack.New(),
	} {
		for _, r := range pack {
			ids = append(ids, r.ID())
		}
	}
	return ids
}

// loadPolicyFlag loads and validates the policy file. An explicit --policy
// path must exist; without the flag, ./kg.yaml is loaded when present and a
// nil config is returned otherwise.
func loadPolicyFlag(path string) (*policy.PolicyConfig, error) {
	explicit := path != ""
	if !explicit {
		path = "./kg.yaml"
		if _, err := os.Stat(path); err != nil {
			return nil, nil
		}
	}

	cfg, err := policy.LoadPolicy(path)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	if errs := policy.Validate(cfg, allRuleIDs()); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "policy: %v\n", e)
		}
		return nil, fmt.Errorf("policy %q failed validation with %d error(s)", path, len(errs))
	}
	return cfg, nil
}

// emitReport writes the report to the optional output file, prints it as
// indented JSON, and applies the policy's CI enforcement thresholds.
// Enforcement failure exits with code 1 after the report has been emitted.
func emitReport(cmd *cobra.Command, report *models.ScanReport, output string, policyCfg *policy.PolicyConfig) error {
	if output != "" {
		if err := writeReportToFile(output, report); err != nil {
			return err
		}
	}
	if err := printJSON(cmd, report); err != nil {
		return err
	}
	if enforcementFailed(report, policyCfg) {
		os.Exit(1)
	}
	return nil
}

// enforcementFailed reports whether any scan domain trips its configured
// fail_on_severity threshold.
func enforcementFailed(report *models.ScanReport, policyCfg *policy.PolicyConfig) bool {
	if policyCfg == nil {
		return false
	}
	byDomain := make(map[string][]models.Finding)
	for _, f := range report.Findings {
		byDomain[f.Domain] = append(byDomain[f.Domain], f)
	}
	for _, domain := range scanDomainNames {
		if policy.ShouldFail(domain, byDomain[domain], policyCfg) {
			return true
		}
	}
	return false
}

// printJSON writes the report as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, report *models.ScanReport) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// writeReportToFile serialises report as indented JSON and writes it to path,
// creating or overwriting the file. It does not affect stdout output.
func writeReportToFile(path string, report *models.ScanReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report file %q: %w", path, err)
	}
	return nil
}
