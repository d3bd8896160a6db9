package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/obonovai/graphonauts/internal/graph"
	"github.com/obonovai/graphonauts/internal/tpch"
	"github.com/obonovai/graphonauts/internal/types"
)

// ConfigValidator validates configuration values.
type ConfigValidator interface {
	Validate(cfg *Config) error
}

// validatorImpl implements ConfigValidator using go-playground/validator.
type validatorImpl struct {
	validate *validator.Validate
}

// NewValidator creates a new ConfigValidator instance. Field paths in messages use
// the configuration keys, e.g. "nebula.hosts[0]".
func NewValidator() ConfigValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &validatorImpl{validate: v}
}

// Validate validates the configuration and returns detailed error messages.
func (v *validatorImpl) Validate(cfg *Config) error {
	if cfg == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "configuration is nil")
	}

	var errorMessages []string

	// Perform struct tag validation first
	if err := v.validate.Struct(cfg); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return types.WrapError(types.CONFIG_VALIDATION_FAILED, "validation error", err)
		}
		for _, e := range validationErrs {
			errorMessages = append(errorMessages, describeFieldError(e))
		}
	}

	// The selected backend must also pass the adapter's own checks
	if backend, err := cfg.SelectedBackend(); err == nil {
		if err := validateBackend(cfg, backend); err != nil {
			errorMessages = append(errorMessages, err.Error())
		}
	}

	for _, name := range cfg.Tables {
		if _, err := tpch.Lookup(name); err != nil {
			errorMessages = append(errorMessages, fmt.Sprintf("tables: %v", err))
		}
	}
	if err := cfg.Tracing.Validate(); err != nil {
		errorMessages = append(errorMessages, "tracing: "+err.Error())
	}
	if err := cfg.Metrics.Validate(); err != nil {
		errorMessages = append(errorMessages, "metrics: "+err.Error())
	}

	if len(errorMessages) > 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(errorMessages, "\n  - ")))
	}
	return nil
}

func validateBackend(cfg *Config, backend graph.Backend) error {
	switch backend {
	case graph.BackendArangoDB:
		return cfg.ArangoDB.Validate()
	case graph.BackendNeo4j:
		return cfg.Neo4j.Validate()
	case graph.BackendMemgraph:
		return cfg.Memgraph.Validate()
	case graph.BackendNebula:
		return cfg.Nebula.Validate()
	}
	return nil
}

// ruleMessages phrase failed validator tags; {param} stands for the tag parameter.
var ruleMessages = map[string]string{
	"required":      "is required",
	"min":           "must be at least {param}",
	"gte":           "must be at least {param}",
	"max":           "must be at most {param}",
	"lte":           "must be at most {param}",
	"gt":            "must be greater than {param}",
	"oneof":         "must be one of [{param}]",
	"url":           "must be a valid URL",
	"hostname_port": "must be host:port",
}

// describeFieldError renders e against its config key, e.g.
// "nebula.connect_timeout must be greater than 0 (got: 0s)".
func describeFieldError(e validator.FieldError) string {
	key := e.Namespace()
	if _, rest, ok := strings.Cut(key, "."); ok {
		key = rest
	}
	msg, ok := ruleMessages[e.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed %q (got: %v)", key, e.Tag(), e.Value())
	}
	msg = strings.ReplaceAll(msg, "{param}", e.Param())
	if e.Tag() == "required" {
		return key + " " + msg
	}
	return fmt.Sprintf("%s %s (got: %v)", key, msg, e.Value())
}
