package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/obonovai/graphonauts/internal/types"
)

// EnvPrefix prefixes environment variables overriding configuration keys, e.g.
// GRAPHONAUTS_NEO4J_PASSWORD for neo4j.password.
const EnvPrefix = "GRAPHONAUTS"

// DefaultConfigFile is the file looked up in the working directory when no --config
// flag is given.
const DefaultConfigFile = "graphonauts.yaml"

// DefaultConfigPath returns the default config file path in dir.
func DefaultConfigPath(dir string) string {
	return filepath.Join(dir, DefaultConfigFile)
}

// Write saves cfg as YAML to path, creating parent directories.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return types.WrapError(types.CONFIG_PARSE_FAILED, "failed to marshal config", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return types.WrapError(types.CONFIG_LOAD_FAILED, "failed to create config directory", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return types.WrapError(types.CONFIG_LOAD_FAILED, "failed to write config file", err)
	}
	return nil
}
