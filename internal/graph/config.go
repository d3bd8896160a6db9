package graph

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/obonovai/graphonauts/internal/types"
)

// ArangoConfig configures an ArangoAdapter.
type ArangoConfig struct {
	Endpoints      []string      `mapstructure:"endpoints" yaml:"endpoints" validate:"required,min=1,dive,url"`
	Username       string        `mapstructure:"username" yaml:"username" validate:"required"`
	Password       string        `mapstructure:"password" yaml:"password"`
	Database       string        `mapstructure:"database" yaml:"database" validate:"required"`
	Graph          string        `mapstructure:"graph" yaml:"graph" validate:"required"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout" validate:"gt=0"`
	ConnectRetries int           `mapstructure:"connect_retries" yaml:"connect_retries" validate:"gte=1"`
	Propagation    Propagation   `mapstructure:"propagation" yaml:"propagation"`
}

// DefaultArangoConfig returns the ArangoDB defaults.
func DefaultArangoConfig() ArangoConfig {
	return ArangoConfig{
		Endpoints:      []string{"http://localhost:8529"},
		Username:       "root",
		Password:       "password",
		Database:       "tpch",
		Graph:          "tpchgraph",
		ConnectTimeout: 30 * time.Second,
		ConnectRetries: 3,
	}
}

// Validate checks the fields the adapter cannot work without.
func (c ArangoConfig) Validate() error {
	if len(c.Endpoints) == 0 {
		return types.NewError(ErrCodeGraphInvalidConfig, "arangodb: at least one endpoint is required")
	}
	if c.Database == "" || c.Graph == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "arangodb: database and graph names are required")
	}
	if err := validateConnect("arangodb", c.ConnectTimeout, c.ConnectRetries); err != nil {
		return err
	}
	return c.Propagation.Validate("arangodb")
}

// CypherConfig configures a CypherAdapter for Neo4j or Memgraph.
type CypherConfig struct {
	// URI is the Bolt URI, e.g. "bolt://localhost:7687" or "neo4j+s://host".
	URI      string `mapstructure:"uri" yaml:"uri" validate:"required"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the Neo4j database to create and use. Empty selects the server
	// default database. Memgraph ignores it.
	Database string `mapstructure:"database" yaml:"database"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout" validate:"gt=0"`
	ConnectRetries int           `mapstructure:"connect_retries" yaml:"connect_retries" validate:"gte=1"`

	// ClearBatchSize is the number of nodes deleted per transaction by Clear on Neo4j.
	ClearBatchSize int         `mapstructure:"clear_batch_size" yaml:"clear_batch_size" validate:"gte=0"`
	Propagation    Propagation `mapstructure:"propagation" yaml:"propagation"`
}

// DefaultNeo4jConfig returns the Neo4j defaults.
func DefaultNeo4jConfig() CypherConfig {
	return CypherConfig{
		URI:            "bolt://localhost:7687",
		Username:       "neo4j",
		Password:       "password",
		ConnectTimeout: 30 * time.Second,
		ConnectRetries: 3,
		ClearBatchSize: 10000,
		Propagation: Propagation{
			PollInterval: 500 * time.Millisecond,
			Timeout:      60 * time.Second,
		},
	}
}

// DefaultMemgraphConfig returns the Memgraph defaults. Memgraph applies DDL
// synchronously and runs without authentication by default.
func DefaultMemgraphConfig() CypherConfig {
	return CypherConfig{
		URI:            "bolt://localhost:7688",
		ConnectTimeout: 30 * time.Second,
		ConnectRetries: 3,
	}
}

// Validate checks the fields the adapter cannot work without.
func (c CypherConfig) Validate() error {
	if c.URI == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "cypher: URI cannot be empty")
	}
	if c.Password != "" && c.Username == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "cypher: password given without username")
	}
	if err := validateConnect("cypher", c.ConnectTimeout, c.ConnectRetries); err != nil {
		return err
	}
	return c.Propagation.Validate("cypher")
}

// NebulaConfig configures a NebulaAdapter.
type NebulaConfig struct {
	// Hosts lists graphd addresses as host:port.
	Hosts      []string `mapstructure:"hosts" yaml:"hosts" validate:"required,min=1,dive,hostname_port"`
	Username   string   `mapstructure:"username" yaml:"username" validate:"required"`
	Password   string   `mapstructure:"password" yaml:"password"`
	Space      string   `mapstructure:"space" yaml:"space" validate:"required"`
	Partitions int      `mapstructure:"partitions" yaml:"partitions" validate:"gte=1"`
	Replicas   int      `mapstructure:"replicas" yaml:"replicas" validate:"gte=1"`

	// VIDLength is the FIXED_STRING length of vertex IDs ("kind/key").
	VIDLength int `mapstructure:"vid_length" yaml:"vid_length" validate:"gte=16"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout" validate:"gt=0"`
	ConnectRetries int           `mapstructure:"connect_retries" yaml:"connect_retries" validate:"gte=1"`
	Propagation    Propagation   `mapstructure:"propagation" yaml:"propagation"`
}

// DefaultNebulaConfig returns the NebulaGraph defaults. The settle window covers two
// storaged heartbeats (10s each by default).
func DefaultNebulaConfig() NebulaConfig {
	return NebulaConfig{
		Hosts:          []string{"127.0.0.1:9669"},
		Username:       "root",
		Password:       "nebula",
		Space:          "tpch",
		Partitions:     15,
		Replicas:       1,
		VIDLength:      64,
		ConnectTimeout: 30 * time.Second,
		ConnectRetries: 3,
		Propagation: Propagation{
			PollInterval: time.Second,
			Timeout:      60 * time.Second,
			Settle:       20 * time.Second,
			FixedDelay:   30 * time.Second,
		},
	}
}

// Validate checks the fields the adapter cannot work without.
func (c NebulaConfig) Validate() error {
	if len(c.Hosts) == 0 {
		return types.NewError(ErrCodeGraphInvalidConfig, "nebula: at least one host is required")
	}
	for _, h := range c.Hosts {
		if _, _, err := splitHostPort(h); err != nil {
			return types.WrapError(ErrCodeGraphInvalidConfig, fmt.Sprintf("nebula: invalid host %q", h), err)
		}
	}
	if c.Space == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "nebula: space cannot be empty")
	}
	if c.Partitions < 1 || c.Replicas < 1 {
		return types.NewError(ErrCodeGraphInvalidConfig, "nebula: partitions and replicas must be positive")
	}
	if err := validateConnect("nebula", c.ConnectTimeout, c.ConnectRetries); err != nil {
		return err
	}
	return c.Propagation.Validate("nebula")
}

func validateConnect(backend string, timeout time.Duration, retries int) error {
	if timeout <= 0 {
		return types.NewError(ErrCodeGraphInvalidConfig, backend+": connect timeout must be positive")
	}
	if retries < 1 {
		return types.NewError(ErrCodeGraphInvalidConfig, backend+": connect retries must be at least 1")
	}
	return nil
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}
