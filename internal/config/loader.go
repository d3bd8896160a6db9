package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/obonovai/graphonauts/internal/types"
)

// ConfigLoader handles loading configuration from files.
type ConfigLoader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperConfigLoader implements ConfigLoader using Viper.
type viperConfigLoader struct {
	validator ConfigValidator
}

// NewConfigLoader creates a new ConfigLoader instance.
func NewConfigLoader(validator ConfigValidator) ConfigLoader {
	return &viperConfigLoader{
		validator: validator,
	}
}

// Load loads configuration from the specified file path on top of DefaultConfig.
// Keys missing from the file keep their defaults, GRAPHONAUTS_* environment variables
// override both, and ${VAR} references in values are expanded last.
// Returns an error if the file doesn't exist or cannot be parsed.
func (l *viperConfigLoader) Load(path string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil, types.WrapError(types.CONFIG_NOT_FOUND, fmt.Sprintf("config file %s not found", path), err)
		}
		var parseErr viper.ConfigParseError
		if errors.As(err, &parseErr) {
			return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to parse config file", err)
		}
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to read config file", err)
	}

	return l.finish(v)
}

// LoadWithDefaults loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration with environment
// overrides applied.
func (l *viperConfigLoader) LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		v, err := newViper()
		if err != nil {
			return nil, err
		}
		return l.finish(v)
	}

	return l.Load(path)
}

// newViper returns a viper instance seeded with DefaultConfig and bound to the
// environment. Seeding every key makes AutomaticEnv see all of them.
func newViper() (*viper.Viper, error) {
	defaults, err := toMap(DefaultConfig())
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.MergeConfigMap(defaults); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to apply defaults", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

func (l *viperConfigLoader) finish(v *viper.Viper) (*Config, error) {
	// AllSettings returns a fresh tree, so expanding in place is safe.
	settings, _ := expandEnv(v.AllSettings()).(map[string]any)

	resolved := viper.New()
	if err := resolved.MergeConfigMap(settings); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to apply interpolated config", err)
	}

	var cfg Config
	if err := resolved.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to unmarshal config", err)
	}

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// toMap converts cfg to the generic map form viper merges.
func toMap(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to marshal defaults", err)
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to unmarshal defaults", err)
	}
	return out, nil
}

// expandEnv replaces ${NAME} references in every string of a settings tree with
// the value of the environment variable NAME. References to unset or empty
// variables are kept verbatim so a missing secret fails validation visibly.
func expandEnv(node any) any {
	switch n := node.(type) {
	case map[string]any:
		for k, child := range n {
			n[k] = expandEnv(child)
		}
		return n
	case []any:
		for i, child := range n {
			n[i] = expandEnv(child)
		}
		return n
	case []string:
		out := make([]string, len(n))
		for i, str := range n {
			out[i] = expandRefs(str)
		}
		return out
	case string:
		return expandRefs(n)
	}
	return node
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandRefs(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		if val, ok := os.LookupEnv(envRef.FindStringSubmatch(ref)[1]); ok && val != "" {
			return val
		}
		return ref
	})
}
