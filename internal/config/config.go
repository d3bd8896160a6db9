// Package config loads and validates graphonauts configuration.
package config

import (
	"github.com/obonovai/graphonauts/internal/bench"
	"github.com/obonovai/graphonauts/internal/graph"
	"github.com/obonovai/graphonauts/internal/observability"
)

// Config is the root configuration structure for graphonauts.
type Config struct {
	// Backend selects the adapter the commands run against.
	Backend string `mapstructure:"backend" yaml:"backend" validate:"required,oneof=arangodb neo4j memgraph nebula"`

	// DataDir holds the <table>.tbl files produced by dbgen.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`

	BatchSize int `mapstructure:"batch_size" yaml:"batch_size" validate:"min=1,max=100000"`

	// Tables restricts loading to a subset of tables. Empty loads all of them.
	Tables []string `mapstructure:"tables" yaml:"tables,omitempty"`

	ArangoDB graph.ArangoConfig `mapstructure:"arangodb" yaml:"arangodb"`
	Neo4j    graph.CypherConfig `mapstructure:"neo4j" yaml:"neo4j"`
	Memgraph graph.CypherConfig `mapstructure:"memgraph" yaml:"memgraph"`
	Nebula   graph.NebulaConfig `mapstructure:"nebula" yaml:"nebula"`

	Bench BenchConfig `mapstructure:"bench" yaml:"bench"`

	Logging observability.LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Tracing observability.TracingConfig `mapstructure:"tracing" yaml:"tracing"`
	Metrics observability.MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// BenchConfig configures query catalogue runs.
type BenchConfig struct {
	Repetitions int           `mapstructure:"repetitions" yaml:"repetitions" validate:"min=1,max=1000"`
	Options     bench.Options `mapstructure:"options" yaml:"options"`
}

// SelectedBackend returns Backend as a graph.Backend.
func (c *Config) SelectedBackend() (graph.Backend, error) {
	return graph.ParseBackend(c.Backend)
}

// Settings returns the per-backend adapter configuration.
func (c *Config) Settings() graph.Settings {
	return graph.Settings{
		ArangoDB: c.ArangoDB,
		Neo4j:    c.Neo4j,
		Memgraph: c.Memgraph,
		Nebula:   c.Nebula,
	}
}

// BenchOptions returns the catalogue options, taking the ArangoDB graph name from the
// arangodb section unless set explicitly.
func (c *Config) BenchOptions() bench.Options {
	opts := c.Bench.Options
	if opts.Graph == "" {
		opts.Graph = c.ArangoDB.Graph
	}
	return opts
}

// redacted replaces a non-empty secret.
const redacted = "[REDACTED]"

// Redacted returns a copy of c with every backend password masked.
func (c *Config) Redacted() *Config {
	out := *c
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return redacted
	}
	out.ArangoDB.Password = mask(c.ArangoDB.Password)
	out.Neo4j.Password = mask(c.Neo4j.Password)
	out.Memgraph.Password = mask(c.Memgraph.Password)
	out.Nebula.Password = mask(c.Nebula.Password)
	return &out
}
