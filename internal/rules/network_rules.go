package rules

import (
	"fmt"
	"time"

	"github.com/pankaj-dahiya-devops/kubeguard/internal/kb"
	"github.com/pankaj-dahiya-devops/kubeguard/internal/models"
)

// internalLBAnnotations mark a LoadBalancer Service as internal per cloud
// provider. Presence of any of them (with any value except "false") means the
// load balancer is not internet-facing.
var internalLBAnnotations = []string{
	"service.beta.kubernetes.io/aws-load-balancer-internal",
	"networking.gke.io/load-balancer-type",
	"service.beta.kubernetes.io/azure-load-balancer-internal",
}

// ── K8S_SERVICE_PUBLIC_LOADBALANCER ──────────────────────────────────────────

// ServicePublicLoadBalancerRule fires for each Service of type LoadBalancer
// that carries no internal load-balancer annotation, exposing the backing
// pods to the internet.
type ServicePublicLoadBalancerRule struct{}

func (r ServicePublicLoadBalancerRule) ID() string   { return "K8S_SERVICE_PUBLIC_LOADBALANCER" }
func (r ServicePublicLoadBalancerRule) KBID() string { return kb.KGV012PublicLoadBalancer }
func (r ServicePublicLoadBalancerRule) Name() string { return "Service Exposes Public Load Balancer" }

func (r ServicePublicLoadBalancerRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Snapshot == nil {
		return nil
	}
	var findings []models.Finding
	for _, svc := range ctx.Snapshot.Services {
		if svc.Type != "LoadBalancer" {
			continue
		}
		if hasInternalLBAnnotation(svc.Annotations) {
			continue
		}
		findings = append(findings, models.Finding{
			ID:           fmt.Sprintf("%s:%s:%s/%s", r.ID(), ctx.Snapshot.ContextName, svc.Namespace, svc.Name),
			RuleID:       r.ID(),
			KBID:         r.KBID(),
			ResourceID:   svc.Name,
			ResourceType: models.ResourceK8sService,
			Cluster:      ctx.Snapshot.ContextName,
			Namespace:    svc.Namespace,
			Severity:     models.SeverityHigh,
			Category:     models.CategoryNetworkExposure,
			Evidence:     "type == LoadBalancer without internal annotation",
			Explanation: fmt.Sprintf(
				"Service %q (namespace %q) provisions an internet-facing load balancer; "+
					"the backing pods are reachable from any IP.",
				svc.Name, svc.Namespace,
			),
			DetectedAt: time.Now().UTC(),
			Metadata: map[string]any{
				"namespace": svc.Namespace,
			},
		})
	}
	return findings
}

// hasInternalLBAnnotation reports whether annotations mark the load balancer
// as internal for any supported cloud provider.
func hasInternalLBAnnotation(annotations map[string]string) bool {
	for _, key := range internalLBAnnotations {
		if v, ok := annotations[key]; ok && v != "false" {
			return true
		}
	}
	return false
}
