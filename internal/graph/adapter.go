package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/obonovai/graphonauts/internal/tpch"
	"github.com/obonovai/graphonauts/internal/types"
)

// Backend names a supported graph database.
type Backend string

const (
	BackendArangoDB Backend = "arangodb"
	BackendNeo4j    Backend = "neo4j"
	BackendMemgraph Backend = "memgraph"
	BackendNebula   Backend = "nebula"
)

// Backends lists every supported backend.
func Backends() []Backend {
	return []Backend{BackendArangoDB, BackendNeo4j, BackendMemgraph, BackendNebula}
}

// ParseBackend resolves a backend name, case-insensitively.
func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Backends() {
		if b == known {
			return b, nil
		}
	}
	return "", types.NewError(ErrCodeGraphUnsupportedBackend, fmt.Sprintf("unsupported backend %q", s))
}

func (b Backend) String() string { return string(b) }

// WriteMode is the semantics of an adapter's bulk writes. It is a property of the
// backend, not of the loader.
type WriteMode string

const (
	// WriteModeInsert fails the batch when any record's key already exists.
	WriteModeInsert WriteMode = "insert"
	// WriteModeMerge matches on key and updates properties in place.
	WriteModeMerge WriteMode = "merge"
	// WriteModeOverwrite replaces existing records with the same identity.
	WriteModeOverwrite WriteMode = "overwrite"
)

// Idempotent reports whether writing the same batch twice leaves counts unchanged.
func (m WriteMode) Idempotent() bool {
	return m == WriteModeMerge || m == WriteModeOverwrite
}

// Adapter is the uniform lifecycle contract over one graph backend.
//
// An Adapter holds a single session and is not safe for concurrent use.
type Adapter interface {
	// Backend identifies the implementation.
	Backend() Backend

	// WriteMode reports the semantics of WriteVertices and WriteEdges.
	WriteMode() WriteMode

	// State returns the current lifecycle state.
	State() State

	// Connect opens the session. Unreachable hosts and rejected credentials
	// yield a GRAPH_CONNECTION_FAILED error.
	Connect(ctx context.Context) error

	// ProvisionSchema creates the namespace, vertex and edge kinds and secondary
	// indices when absent, and waits for the backend to apply them. It is idempotent.
	ProvisionSchema(ctx context.Context) error

	// WriteVertices issues one bulk write of vertices of table's kind.
	WriteVertices(ctx context.Context, table *tpch.Table, batch []tpch.VertexRecord) error

	// WriteEdges issues one bulk write of edges of rel's kind.
	WriteEdges(ctx context.Context, rel *tpch.Relationship, batch []tpch.EdgeRecord) error

	// MarkLoaded records that a load run against the provisioned schema finished.
	MarkLoaded() error

	// Query runs one native query (AQL, Cypher or nGQL). Parameter support is
	// backend dependent.
	Query(ctx context.Context, text string, params map[string]any) (QueryResult, error)

	// Clear removes every vertex and edge created by this harness. Clearing an
	// empty namespace succeeds.
	Clear(ctx context.Context) error

	// Close releases the session. It may be called repeatedly and after a failed Connect.
	Close(ctx context.Context) error
}

// QueryResult is the row-oriented result of one query.
type QueryResult struct {
	// Columns contains the names of the result columns, in order.
	Columns []string

	// Records contains the result rows as maps of column name to value.
	Records []map[string]any

	// Elapsed is the wall-clock duration of the call, including result transfer.
	Elapsed time.Duration
}

// Len returns the number of rows.
func (r QueryResult) Len() int { return len(r.Records) }

// Counts holds per kind totals as stored by a backend.
type Counts struct {
	Vertices map[string]int64 `json:"vertices" yaml:"vertices"`
	Edges    map[string]int64 `json:"edges" yaml:"edges"`
}

// TotalVertices sums vertex counts over all kinds.
func (c Counts) TotalVertices() int64 {
	var n int64
	for _, v := range c.Vertices {
		n += v
	}
	return n
}

// TotalEdges sums edge counts over all relationships.
func (c Counts) TotalEdges() int64 {
	var n int64
	for _, v := range c.Edges {
		n += v
	}
	return n
}

// Counter is implemented by adapters that can report stored vertex and edge counts.
// Vertex counts are keyed by table name and edge counts by relationship name.
type Counter interface {
	Counts(ctx context.Context) (Counts, error)
}

// HealthChecker is implemented by adapters that can probe their backend.
type HealthChecker interface {
	Health(ctx context.Context) types.HealthStatus
}
