package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/obonovai/graphonauts/internal/tpch"
	"github.com/obonovai/graphonauts/internal/types"
)

// MockCall represents a recorded method call on the mock adapter.
type MockCall struct {
	Method    string
	Args      []any
	Timestamp time.Time
}

// MockAdapter is an in-memory Adapter for tests. It enforces the same lifecycle as the
// real adapters, stores vertices and edges by key, honours its configured WriteMode
// and rejects edges whose endpoints are missing.
type MockAdapter struct {
	lifecycle
	mu sync.Mutex

	mode     WriteMode
	vertices map[string]map[string]map[string]any
	edges    map[string]map[string]tpch.EdgeRecord
	calls    []MockCall
	batches  map[string]int

	queryResults map[string]QueryResult
	queryErrors  map[string]error
	connectError error
	provisionErr error
	clearError   error
	writeFailure func(kind string, batch int) error
	health       types.HealthStatus
}

// NewMockAdapter creates an unconnected mock with the given write mode.
func NewMockAdapter(mode WriteMode) *MockAdapter {
	return &MockAdapter{
		lifecycle:    lifecycle{backend: "mock"},
		mode:         mode,
		vertices:     make(map[string]map[string]map[string]any),
		edges:        make(map[string]map[string]tpch.EdgeRecord),
		batches:      make(map[string]int),
		queryResults: make(map[string]QueryResult),
		queryErrors:  make(map[string]error),
		health:       types.Healthy("mock adapter"),
	}
}

func (m *MockAdapter) record(method string, args ...any) {
	m.calls = append(m.calls, MockCall{Method: method, Args: args, Timestamp: time.Now()})
}

func (m *MockAdapter) Backend() Backend     { return m.backend }
func (m *MockAdapter) WriteMode() WriteMode { return m.mode }

// SetBackend changes the reported backend name.
func (m *MockAdapter) SetBackend(b Backend) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backend = b
}

// SetConnectError makes Connect fail with err.
func (m *MockAdapter) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectError = err
}

// SetProvisionError makes ProvisionSchema fail with err.
func (m *MockAdapter) SetProvisionError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provisionErr = err
}

// SetClearError makes Clear fail with err.
func (m *MockAdapter) SetClearError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearError = err
}

// SetWriteFailure installs a hook consulted before every write. kind is a table or
// relationship name and batch the 0-based index of writes to that kind.
func (m *MockAdapter) SetWriteFailure(fn func(kind string, batch int) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeFailure = fn
}

// SetQueryResult configures the result returned for query text.
func (m *MockAdapter) SetQueryResult(text string, result QueryResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryResults[text] = result
}

// SetQueryError configures the error returned for query text.
func (m *MockAdapter) SetQueryError(text string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryErrors[text] = err
}

// SetHealth configures the reported health status.
func (m *MockAdapter) SetHealth(h types.HealthStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health = h
}

// Connect records the call and simulates connection.
func (m *MockAdapter) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Connect")

	if m.connectError != nil {
		return types.WrapError(ErrCodeGraphConnectionFailed, "mock: connect", m.connectError)
	}
	m.connected()
	return nil
}

// ProvisionSchema records the call and simulates provisioning.
func (m *MockAdapter) ProvisionSchema(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ProvisionSchema")

	if err := m.requireConnected("provision schema"); err != nil {
		return err
	}
	if m.provisionErr != nil {
		return types.WrapError(ErrCodeGraphSchemaProvisionFailed, "mock: provision", m.provisionErr)
	}
	m.provisioned()
	return nil
}

// WriteVertices stores the batch.
func (m *MockAdapter) WriteVertices(ctx context.Context, table *tpch.Table, batch []tpch.VertexRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("WriteVertices", table.Name, len(batch))

	if err := m.requireProvisioned("write vertices"); err != nil {
		return err
	}
	if err := m.injected(table.Name); err != nil {
		return err
	}

	stored := m.vertices[table.Name]
	if stored == nil {
		stored = make(map[string]map[string]any)
		m.vertices[table.Name] = stored
	}
	if m.mode == WriteModeInsert {
		for _, v := range batch {
			if _, dup := stored[v.Ref.Key]; dup {
				return types.NewError(ErrCodeGraphBatchWriteFailed,
					fmt.Sprintf("mock: unique constraint violated on %s", v.Ref))
			}
		}
	}
	for _, v := range batch {
		stored[v.Ref.Key] = v.Properties
	}
	return nil
}

// WriteEdges stores the batch after checking every endpoint exists.
func (m *MockAdapter) WriteEdges(ctx context.Context, rel *tpch.Relationship, batch []tpch.EdgeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("WriteEdges", rel.Name, len(batch))

	if err := m.requireProvisioned("write edges"); err != nil {
		return err
	}
	if err := m.injected(rel.Name); err != nil {
		return err
	}

	stored := m.edges[rel.Name]
	if stored == nil {
		stored = make(map[string]tpch.EdgeRecord)
		m.edges[rel.Name] = stored
	}
	for _, e := range batch {
		for _, ref := range []tpch.VertexRef{e.From, e.To} {
			if _, ok := m.vertices[ref.Kind][ref.Key]; !ok {
				return types.NewError(ErrCodeGraphBatchWriteFailed,
					fmt.Sprintf("mock: %s endpoint %s not found", rel.Name, ref))
			}
		}
		if _, dup := stored[e.Key()]; dup && m.mode == WriteModeInsert {
			return types.NewError(ErrCodeGraphBatchWriteFailed,
				fmt.Sprintf("mock: unique constraint violated on %s/%s", rel.Name, e.Key()))
		}
	}
	for _, e := range batch {
		stored[e.Key()] = e
	}
	return nil
}

func (m *MockAdapter) injected(kind string) error {
	n := m.batches[kind]
	m.batches[kind] = n + 1
	if m.writeFailure == nil {
		return nil
	}
	if err := m.writeFailure(kind, n); err != nil {
		if types.CodeOf(err) != "" {
			return err
		}
		return types.WrapError(ErrCodeGraphBatchWriteFailed, "mock: injected failure", err)
	}
	return nil
}

// MarkLoaded records the call and advances the lifecycle.
func (m *MockAdapter) MarkLoaded() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("MarkLoaded")
	return m.lifecycle.MarkLoaded()
}

// Query returns the configured result or error for text, or an empty result.
func (m *MockAdapter) Query(ctx context.Context, text string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Query", text, params)

	if err := m.requireConnected("query"); err != nil {
		return QueryResult{}, err
	}
	if err := m.queryErrors[text]; err != nil {
		return QueryResult{}, types.WrapError(ErrCodeGraphQueryFailed, "mock: query", err)
	}
	res, ok := m.queryResults[text]
	if !ok {
		res = QueryResult{Columns: []string{}, Records: []map[string]any{}}
	}
	res.Elapsed = time.Microsecond
	return res, nil
}

// Clear drops every stored vertex and edge.
func (m *MockAdapter) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Clear")

	if err := m.requireConnected("clear"); err != nil {
		return err
	}
	if m.clearError != nil {
		return types.WrapError(ErrCodeGraphClearFailed, "mock: clear", m.clearError)
	}
	m.vertices = make(map[string]map[string]map[string]any)
	m.edges = make(map[string]map[string]tpch.EdgeRecord)
	m.cleared()
	return nil
}

// Close records the call and simulates disconnection.
func (m *MockAdapter) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Close")
	m.closed()
	return nil
}

// Counts returns stored counts for every table and relationship.
func (m *MockAdapter) Counts(ctx context.Context) (Counts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Counts")

	if err := m.requireConnected("count"); err != nil {
		return Counts{}, err
	}
	counts := Counts{Vertices: map[string]int64{}, Edges: map[string]int64{}}
	for _, t := range tpch.Tables() {
		counts.Vertices[t.Name] = int64(len(m.vertices[t.Name]))
	}
	for _, r := range tpch.Relationships() {
		counts.Edges[r.Name] = int64(len(m.edges[r.Name]))
	}
	return counts, nil
}

// Health returns the configured status, or unhealthy when not connected.
func (m *MockAdapter) Health(ctx context.Context) types.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Health")

	if m.state == StateUnconnected {
		return types.Unhealthy("not connected")
	}
	return m.health
}

// Vertex returns the stored properties of a vertex.
func (m *MockAdapter) Vertex(kind, key string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	props, ok := m.vertices[kind][key]
	return props, ok
}

// VertexKeys returns the stored keys of a kind, in no particular order.
func (m *MockAdapter) VertexKeys(kind string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.vertices[kind]))
	for k := range m.vertices[kind] {
		keys = append(keys, k)
	}
	return keys
}

// Edges returns the stored edges of a relationship.
func (m *MockAdapter) Edges(rel string) []tpch.EdgeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]tpch.EdgeRecord, 0, len(m.edges[rel]))
	for _, e := range m.edges[rel] {
		out = append(out, e)
	}
	return out
}

// Calls returns a copy of all recorded calls.
func (m *MockAdapter) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times method was called.
func (m *MockAdapter) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

var (
	_ Adapter       = (*MockAdapter)(nil)
	_ Counter       = (*MockAdapter)(nil)
	_ HealthChecker = (*MockAdapter)(nil)
)
