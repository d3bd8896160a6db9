package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthStatus_Constructors(t *testing.T) {
	tests := []struct {
		name      string
		status    HealthStatus
		state     HealthState
		healthy   bool
		unhealthy bool
	}{
		{"healthy", Healthy("ok"), HealthStateHealthy, true, false},
		{"degraded", Degraded("slow"), HealthStateDegraded, false, false},
		{"unhealthy", Unhealthy("down"), HealthStateUnhealthy, false, true},
		{"unhealthyf", Unhealthyf("dial %s", "localhost:7687"), HealthStateUnhealthy, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.state, tt.status.State)
			assert.Equal(t, tt.healthy, tt.status.IsHealthy())
			assert.Equal(t, tt.unhealthy, tt.status.IsUnhealthy())
			assert.False(t, tt.status.CheckedAt.IsZero())
		})
	}

	assert.Equal(t, "dial localhost:7687", Unhealthyf("dial %s", "localhost:7687").Message)
}

func TestHealthStatus_With(t *testing.T) {
	base := Healthy("connected")
	h := base.WithVersion("5.24.0").WithLatency(12 * time.Millisecond)

	assert.Equal(t, "5.24.0", h.Version)
	assert.Equal(t, 12*time.Millisecond, h.Latency)
	assert.Empty(t, base.Version, "original must not be mutated")
	assert.Equal(t, "healthy", h.State.String())
}

func TestHealthStatus_Describe(t *testing.T) {
	assert.Equal(t, "neo4j is healthy: connected (version 5.24.0)",
		Healthy("connected").WithVersion("5.24.0").Describe("neo4j"))
	assert.Equal(t, "nebula is unhealthy", Unhealthy("").Describe("nebula"))
}
