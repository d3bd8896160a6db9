package config

import (
	"github.com/obonovai/graphonauts/internal/bench"
	"github.com/obonovai/graphonauts/internal/graph"
	"github.com/obonovai/graphonauts/internal/loader"
	"github.com/obonovai/graphonauts/internal/observability"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	settings := graph.DefaultSettings()

	return &Config{
		Backend:   string(graph.BackendNeo4j),
		DataDir:   "./data",
		BatchSize: loader.DefaultBatchSize,
		ArangoDB:  settings.ArangoDB,
		Neo4j:     settings.Neo4j,
		Memgraph:  settings.Memgraph,
		Nebula:    settings.Nebula,
		Bench: BenchConfig{
			Repetitions: 1,
			Options:     bench.DefaultOptions(),
		},
		Logging: observability.LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: observability.TracingConfig{
			Enabled:     false,
			Endpoint:    "",
			ServiceName: "graphonauts",
			SampleRate:  1.0,
		},
		Metrics: observability.MetricsConfig{
			Enabled: false,
			Address: ":9090",
		},
	}
}
