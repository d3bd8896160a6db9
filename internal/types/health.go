package types

import (
	"fmt"
	"strings"
	"time"
)

// HealthState is the reachability of a backend as seen by one probe.
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateDegraded  HealthState = "degraded"
	HealthStateUnhealthy HealthState = "unhealthy"
)

func (s HealthState) String() string { return string(s) }

// HealthStatus is the outcome of one backend probe. Values are immutable; the With
// methods return modified copies.
type HealthStatus struct {
	State     HealthState   `json:"state" yaml:"state"`
	Message   string        `json:"message,omitempty" yaml:"message,omitempty"`
	Version   string        `json:"version,omitempty" yaml:"version,omitempty"`
	Latency   time.Duration `json:"latency" yaml:"latency"`
	CheckedAt time.Time     `json:"checked_at" yaml:"checked_at"`
}

func probe(state HealthState, message string) HealthStatus {
	return HealthStatus{State: state, Message: message, CheckedAt: time.Now()}
}

func Healthy(message string) HealthStatus   { return probe(HealthStateHealthy, message) }
func Degraded(message string) HealthStatus  { return probe(HealthStateDegraded, message) }
func Unhealthy(message string) HealthStatus { return probe(HealthStateUnhealthy, message) }

func Unhealthyf(format string, args ...any) HealthStatus {
	return probe(HealthStateUnhealthy, fmt.Sprintf(format, args...))
}

// WithVersion records the server version the backend reported.
func (h HealthStatus) WithVersion(version string) HealthStatus {
	h.Version = version
	return h
}

// WithLatency records the probe round trip.
func (h HealthStatus) WithLatency(d time.Duration) HealthStatus {
	h.Latency = d
	return h
}

func (h HealthStatus) IsHealthy() bool   { return h.State == HealthStateHealthy }
func (h HealthStatus) IsUnhealthy() bool { return h.State == HealthStateUnhealthy }

// Describe renders the status for subject, e.g. "neo4j is healthy: connected (version 5.24.0)".
func (h HealthStatus) Describe(subject string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is %s", subject, h.State)
	if h.Message != "" {
		b.WriteString(": " + h.Message)
	}
	if h.Version != "" {
		b.WriteString(" (version " + h.Version + ")")
	}
	return b.String()
}
