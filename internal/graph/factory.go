package graph

import (
	"fmt"
	"log/slog"

	"github.com/obonovai/graphonauts/internal/types"
)

// Settings carries the configuration of every backend; New picks the relevant one.
type Settings struct {
	ArangoDB ArangoConfig
	Neo4j    CypherConfig
	Memgraph CypherConfig
	Nebula   NebulaConfig
}

// DefaultSettings returns the defaults of every backend.
func DefaultSettings() Settings {
	return Settings{
		ArangoDB: DefaultArangoConfig(),
		Neo4j:    DefaultNeo4jConfig(),
		Memgraph: DefaultMemgraphConfig(),
		Nebula:   DefaultNebulaConfig(),
	}
}

// New creates an unconnected adapter for backend.
func New(backend Backend, settings Settings, logger *slog.Logger) (Adapter, error) {
	var (
		adapter Adapter
		err     error
	)
	switch backend {
	case BackendArangoDB:
		var a *ArangoAdapter
		a, err = NewArangoAdapter(settings.ArangoDB, logger)
		adapter = a
	case BackendNeo4j:
		var a *CypherAdapter
		a, err = NewNeo4jAdapter(settings.Neo4j, logger)
		adapter = a
	case BackendMemgraph:
		var a *CypherAdapter
		a, err = NewMemgraphAdapter(settings.Memgraph, logger)
		adapter = a
	case BackendNebula:
		var a *NebulaAdapter
		a, err = NewNebulaAdapter(settings.Nebula, logger)
		adapter = a
	default:
		return nil, types.NewError(ErrCodeGraphUnsupportedBackend, fmt.Sprintf("unsupported backend %q", backend))
	}
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

var (
	_ Adapter       = (*ArangoAdapter)(nil)
	_ Counter       = (*ArangoAdapter)(nil)
	_ HealthChecker = (*ArangoAdapter)(nil)

	_ Adapter       = (*CypherAdapter)(nil)
	_ Counter       = (*CypherAdapter)(nil)
	_ HealthChecker = (*CypherAdapter)(nil)

	_ Adapter       = (*NebulaAdapter)(nil)
	_ Counter       = (*NebulaAdapter)(nil)
	_ HealthChecker = (*NebulaAdapter)(nil)
)
