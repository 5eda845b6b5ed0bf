package freq

import (
	"context"
	"fmt"
	"time"

	"github.com/searchfoundry/tokenmatch/pkg/health"
)

// healthProbeTerm is looked up to exercise the provider's full read path.
// The term is not expected to exist; only transport failures are unhealthy.
const healthProbeTerm = "__health_probe__"

// HealthCheck returns a health.Check that probes the provider with a
// document-frequency lookup.
func HealthCheck(p Provider) health.Check {
	return func(ctx context.Context) health.ComponentHealth {
		start := time.Now()
		_, err := p.Lookup(ctx, healthProbeTerm)
		latency := time.Since(start)
		if err != nil {
			return health.ComponentHealth{
				Status:  health.StatusDown,
				Message: fmt.Sprintf("doc-freq lookup failed: %v", err),
				Latency: latency.String(),
			}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Latency: latency.String(),
		}
	}
}

// RegisterHealthChecks registers a probe for every provider under its own
// name.
func RegisterHealthChecks(checker *health.Checker, providers ...Provider) {
	for _, p := range providers {
		checker.Register("freq-"+p.Name(), HealthCheck(p))
	}
}
