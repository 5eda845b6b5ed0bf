package freq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchfoundry/tokenmatch/pkg/health"
)

func TestHealthCheckReportsStatus(t *testing.T) {
	up := HealthCheck(&stubProvider{})
	res := up(context.Background())
	assert.Equal(t, health.StatusUp, res.Status)
	assert.NotEmpty(t, res.Latency)

	down := HealthCheck(&stubProvider{err: errors.New("connection refused")})
	res = down(context.Background())
	assert.Equal(t, health.StatusDown, res.Status)
	assert.Contains(t, res.Message, "connection refused")
}

func TestRegisterHealthChecks(t *testing.T) {
	checker := health.NewChecker()
	RegisterHealthChecks(checker, NewMemoryStore(), &stubProvider{})

	report := checker.Run(context.Background())
	require.Equal(t, health.StatusUp, report.Status)
	assert.Contains(t, report.Components, "freq-memory")
	assert.Contains(t, report.Components, "freq-stub")
}