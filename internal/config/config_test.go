package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obonovai/graphonauts/internal/graph"
	"github.com/obonovai/graphonauts/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graphonauts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func load(t *testing.T, path string) (*Config, error) {
	t.Helper()
	return NewConfigLoader(NewValidator()).Load(path)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "neo4j", cfg.Backend)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Empty(t, cfg.Tables)

	assert.Equal(t, []string{"http://localhost:8529"}, cfg.ArangoDB.Endpoints)
	assert.Equal(t, "root", cfg.ArangoDB.Username)
	assert.Equal(t, "tpch", cfg.ArangoDB.Database)
	assert.Equal(t, "tpchgraph", cfg.ArangoDB.Graph)

	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, "neo4j", cfg.Neo4j.Username)
	assert.Empty(t, cfg.Neo4j.Database)

	assert.Equal(t, "bolt://localhost:7688", cfg.Memgraph.URI)
	assert.Empty(t, cfg.Memgraph.Username)

	assert.Equal(t, []string{"127.0.0.1:9669"}, cfg.Nebula.Hosts)
	assert.Equal(t, "tpch", cfg.Nebula.Space)
	assert.Equal(t, 15, cfg.Nebula.Partitions)
	assert.Equal(t, 1, cfg.Nebula.Replicas)
	assert.Equal(t, time.Second, cfg.Nebula.Propagation.PollInterval)
	assert.Equal(t, 60*time.Second, cfg.Nebula.Propagation.Timeout)
	assert.Equal(t, 20*time.Second, cfg.Nebula.Propagation.Settle)
	assert.Equal(t, 30*time.Second, cfg.Nebula.Propagation.FixedDelay)

	for _, timeout := range []time.Duration{
		cfg.ArangoDB.ConnectTimeout, cfg.Neo4j.ConnectTimeout,
		cfg.Memgraph.ConnectTimeout, cfg.Nebula.ConnectTimeout,
	} {
		assert.Equal(t, 30*time.Second, timeout)
	}

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9090", cfg.Metrics.Address)
	assert.Equal(t, 1, cfg.Bench.Repetitions)

	require.NoError(t, NewValidator().Validate(cfg))
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
backend: nebula
data_dir: /var/lib/tpch/sf1
batch_size: 500
tables: [region, nation]

nebula:
  hosts: ["graphd-0:9669", "graphd-1:9669"]
  space: tpch_sf1
  partitions: 30
  propagation:
    settle: 5s

logging:
  level: debug
  format: text
`)

	cfg, err := load(t, path)
	require.NoError(t, err)

	assert.Equal(t, "nebula", cfg.Backend)
	assert.Equal(t, "/var/lib/tpch/sf1", cfg.DataDir)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, []string{"region", "nation"}, cfg.Tables)
	assert.Equal(t, []string{"graphd-0:9669", "graphd-1:9669"}, cfg.Nebula.Hosts)
	assert.Equal(t, "tpch_sf1", cfg.Nebula.Space)
	assert.Equal(t, 30, cfg.Nebula.Partitions)
	assert.Equal(t, 5*time.Second, cfg.Nebula.Propagation.Settle)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Keys absent from the file keep their defaults
	assert.Equal(t, "root", cfg.Nebula.Username)
	assert.Equal(t, 60*time.Second, cfg.Nebula.Propagation.Timeout)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)

	backend, err := cfg.SelectedBackend()
	require.NoError(t, err)
	assert.Equal(t, graph.BackendNebula, backend)
	assert.Equal(t, cfg.Nebula, cfg.Settings().Nebula)
}

func TestLoadWithEnvironmentVariableInterpolation(t *testing.T) {
	t.Setenv("TEST_NEO4J_PASSWORD", "s3cret")
	t.Setenv("TEST_DATA_DIR", "/data/tpch")

	path := writeConfig(t, `
data_dir: ${TEST_DATA_DIR}
neo4j:
  password: ${TEST_NEO4J_PASSWORD}
`)

	cfg, err := load(t, path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Neo4j.Password)
	assert.Equal(t, "/data/tpch", cfg.DataDir)
}

func TestLoadWithMissingEnvironmentVariables(t *testing.T) {
	path := writeConfig(t, `
neo4j:
  password: ${GRAPHONAUTS_TEST_UNSET_VARIABLE}
`)

	cfg, err := load(t, path)
	require.NoError(t, err)
	assert.Equal(t, "${GRAPHONAUTS_TEST_UNSET_VARIABLE}", cfg.Neo4j.Password)
}

func TestLoadWithEnvironmentOverrides(t *testing.T) {
	t.Setenv("GRAPHONAUTS_BACKEND", "arangodb")
	t.Setenv("GRAPHONAUTS_BATCH_SIZE", "250")
	t.Setenv("GRAPHONAUTS_ARANGODB_PASSWORD", "from-env")
	t.Setenv("GRAPHONAUTS_NEBULA_PROPAGATION_TIMEOUT", "2m")

	path := writeConfig(t, `
backend: neo4j
arangodb:
  password: from-file
`)

	cfg, err := load(t, path)
	require.NoError(t, err)
	assert.Equal(t, "arangodb", cfg.Backend)
	assert.Equal(t, 250, cfg.BatchSize)
	assert.Equal(t, "from-env", cfg.ArangoDB.Password)
	assert.Equal(t, 2*time.Minute, cfg.Nebula.Propagation.Timeout)
}

func TestLoadWithDefaults_FileNotFound(t *testing.T) {
	cfg, err := NewConfigLoader(NewValidator()).LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadWithDefaults_FileExists(t *testing.T) {
	path := writeConfig(t, "backend: memgraph\n")
	cfg, err := NewConfigLoader(NewValidator()).LoadWithDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, "memgraph", cfg.Backend)
}

func TestLoadInvalidFilePath(t *testing.T) {
	_, err := load(t, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.CONFIG_NOT_FOUND))
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "backend: [neo4j\n  data_dir: {")
	_, err := load(t, path)
	require.Error(t, err)
}

func TestLoad_UnmarshalError(t *testing.T) {
	path := writeConfig(t, "batch_size: lots\n")
	_, err := load(t, path)
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.CONFIG_PARSE_FAILED))
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			modify: func(*Config) {},
		},
		{
			name:    "unknown backend",
			modify:  func(c *Config) { c.Backend = "oracle" },
			wantErr: "backend must be one of",
		},
		{
			name:    "batch size too low",
			modify:  func(c *Config) { c.BatchSize = 0 },
			wantErr: "batch_size must be at least 1",
		},
		{
			name:    "empty data dir",
			modify:  func(c *Config) { c.DataDir = "" },
			wantErr: "data_dir is required",
		},
		{
			name:    "bad nebula host",
			modify:  func(c *Config) { c.Nebula.Hosts = []string{"graphd"} },
			wantErr: "nebula.hosts[0] must be host:port",
		},
		{
			name:    "arangodb endpoint not a URL",
			modify:  func(c *Config) { c.ArangoDB.Endpoints = []string{"localhost"} },
			wantErr: "arangodb.endpoints[0] must be a valid URL",
		},
		{
			name:    "unknown table",
			modify:  func(c *Config) { c.Tables = []string{"region", "warehouse"} },
			wantErr: `unknown TPC-H table "warehouse"`,
		},
		{
			name: "selected backend checks",
			modify: func(c *Config) {
				c.Memgraph.Password = "pw"
				c.Backend = "memgraph"
			},
			wantErr: "password given without username",
		},
		{
			name: "tracing without endpoint",
			modify: func(c *Config) {
				c.Tracing.Enabled = true
			},
			wantErr: "tracing: endpoint is required",
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := NewValidator().Validate(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, types.HasCode(err, types.CONFIG_VALIDATION_FAILED))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidation_NilConfig(t *testing.T) {
	err := NewValidator().Validate(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration is nil")
}

func TestValidation_MultipleErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 0
	cfg.DataDir = ""

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch_size")
	assert.Contains(t, err.Error(), "data_dir")
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "graphonauts.yaml")
	cfg := DefaultConfig()
	cfg.Backend = "arangodb"
	cfg.Nebula.Propagation.Settle = 7 * time.Second

	require.NoError(t, Write(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "settle: 7s")

	loaded, err := load(t, path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestBenchOptions_GraphFromArangoSection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bench.Options.Graph = ""
	cfg.ArangoDB.Graph = "tpch_sf10"
	assert.Equal(t, "tpch_sf10", cfg.BenchOptions().Graph)
}

func TestExpandRefs(t *testing.T) {
	t.Setenv("GRAPHONAUTS_TEST_HOST", "graphd")
	t.Setenv("GRAPHONAUTS_TEST_EMPTY", "")

	tests := []struct {
		input    string
		expected string
	}{
		{"${GRAPHONAUTS_TEST_HOST}:9669", "graphd:9669"},
		{"no variables", "no variables"},
		{"${GRAPHONAUTS_TEST_MISSING}", "${GRAPHONAUTS_TEST_MISSING}"},
		{"${GRAPHONAUTS_TEST_EMPTY}", "${GRAPHONAUTS_TEST_EMPTY}"},
		{"$GRAPHONAUTS_TEST_HOST", "$GRAPHONAUTS_TEST_HOST"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, expandRefs(tt.input), tt.input)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("GRAPHONAUTS_TEST_HOST", "graphd")

	in := map[string]any{
		"hosts":  []any{"${GRAPHONAUTS_TEST_HOST}:9669"},
		"urls":   []string{"http://${GRAPHONAUTS_TEST_HOST}:8529"},
		"nested": map[string]any{"port": 9669},
	}
	out := expandEnv(in).(map[string]any)
	assert.Equal(t, []any{"graphd:9669"}, out["hosts"])
	assert.Equal(t, []string{"http://graphd:8529"}, out["urls"])
	assert.Equal(t, 9669, out["nested"].(map[string]any)["port"])
}

func TestConfig_Redacted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Memgraph.Password = ""

	out := cfg.Redacted()
	assert.Equal(t, "[REDACTED]", out.ArangoDB.Password)
	assert.Equal(t, "[REDACTED]", out.Neo4j.Password)
	assert.Equal(t, "[REDACTED]", out.Nebula.Password)
	assert.Empty(t, out.Memgraph.Password)

	// The original is untouched.
	assert.Equal(t, "password", cfg.ArangoDB.Password)
}
