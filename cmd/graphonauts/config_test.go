package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obonovai/graphonauts/cmd/graphonauts/internal"
	"github.com/obonovai/graphonauts/internal/config"
)

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "graphonauts.yaml")

	res := runCLI(t, nil, "config", "init", "--config", path, "--backend", "arangodb")
	require.Equal(t, internal.ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "wrote "+path)

	cfg, err := config.NewConfigLoader(config.NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "arangodb", cfg.Backend)

	res = runCLI(t, nil, "config", "init", "--config", path)
	assert.Equal(t, internal.ExitConfigError, res.code)
	assert.Contains(t, res.stderr, "already exists")

	res = runCLI(t, nil, "config", "init", "--config", path, "--force")
	assert.Equal(t, internal.ExitSuccess, res.code, res.stderr)
}

func TestConfigValidate(t *testing.T) {
	cfgPath := writeConfig(t, nil)
	res := runCLI(t, nil, "config", "validate", "--config", cfgPath)
	require.Equal(t, internal.ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "is valid (backend neo4j)")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("backend: neo4j\nbatch_size: 0\n"), 0o600))
	res = runCLI(t, nil, "config", "validate", "--config", bad)
	assert.Equal(t, internal.ExitConfigError, res.code)
	assert.Contains(t, res.stderr, "batch_size")

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("backend: [neo4j\n"), 0o600))
	res = runCLI(t, nil, "config", "validate", "--config", broken)
	assert.Equal(t, internal.ExitConfigError, res.code)
}

func TestConfigShow(t *testing.T) {
	cfgPath := writeConfig(t, nil)

	res := runCLI(t, nil, "config", "show", "--config", cfgPath)
	require.Equal(t, internal.ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "backend: neo4j")
	assert.Contains(t, res.stdout, "[REDACTED]")
	assert.NotContains(t, res.stdout, "password: password")
}
