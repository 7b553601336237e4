package rules

import (
	"testing"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
)

func TestRegistry_RegistrationOrderPreserved(t *testing.T) {
	reg := NewDefaultRuleRegistry()
	reg.Register(PodVarLogMountRule{})
	reg.Register(PodPrivilegedContainerRule{})
	reg.Register(ServicePublicLoadBalancerRule{})

	all := reg.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(all))
	}
	wantOrder := []string{
		"K8S_POD_VARLOG_MOUNT",
		"K8S_POD_PRIVILEGED_CONTAINER",
		"K8S_SERVICE_PUBLIC_LOADBALANCER",
	}
	for i, id := range wantOrder {
		if all[i].ID() != id {
			t.Errorf("rule[%d].ID() = %q; want %q", i, all[i].ID(), id)
		}
	}
}

func TestRegistry_DuplicateIDPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate rule ID")
		}
	}()
	reg := NewDefaultRuleRegistry()
	reg.Register(PodVarLogMountRule{})
	reg.Register(PodVarLogMountRule{})
}

func TestRegistry_EvaluateAllMergesFindings(t *testing.T) {
	reg := NewDefaultRuleRegistry()
	reg.Register(PodVarLogMountRule{})
	reg.Register(PodPrivilegedContainerRule{})

	snap := &models.ClusterSnapshot{
		ContextName: "test-ctx",
		Pods: []models.PodData{
			{
				Name:      "bad-pod",
				Namespace: "dev",
				Volumes:   []models.VolumeData{{Name: "logs", HostPath: "/var/log"}},
				Containers: []models.ContainerData{
					{Name: "app", Privileged: true},
				},
			},
		},
	}

	findings := reg.EvaluateAll(snapCtx(snap))
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	// Registration order dictates result order.
	if findings[0].RuleID != "K8S_POD_VARLOG_MOUNT" {
		t.Errorf("findings[0].RuleID = %q", findings[0].RuleID)
	}
	if findings[1].RuleID != "K8S_POD_PRIVILEGED_CONTAINER" {
		t.Errorf("findings[1].RuleID = %q", findings[1].RuleID)
	}
}

func TestRegistry_EvaluateAllEmptySnapshot(t *testing.T) {
	reg := NewDefaultRuleRegistry()
	reg.Register(PodVarLogMountRule{})
	if findings := reg.EvaluateAll(snapCtx(&models.ClusterSnapshot{ContextName: "c"})); len(findings) != 0 {
		t.Errorf("expected 0 findings on empty snapshot, got %d", len(findings))
	}
}
