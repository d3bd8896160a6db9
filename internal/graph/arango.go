package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"sort"
	"time"

	driver "github.com/arangodb/go-driver"
	"github.com/arangodb/go-driver/http"

	"github.com/obonovai/graphonauts/internal/tpch"
	"github.com/obonovai/graphonauts/internal/types"
)

// ArangoAdapter implements Adapter for ArangoDB. Every table is a document collection
// and every relationship an edge collection, joined in one named graph.
//
// Writes are insert-many: a duplicate _key rejects the whole batch. Edge keys are
// derived from their endpoints, so reloading a non-cleared database fails every batch.
type ArangoAdapter struct {
	lifecycle
	config ArangoConfig
	logger *slog.Logger

	client driver.Client
	db     driver.Database
}

// NewArangoAdapter creates an ArangoDB adapter. It must be connected via Connect() before use.
func NewArangoAdapter(config ArangoConfig, logger *slog.Logger) (*ArangoAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ArangoAdapter{
		lifecycle: lifecycle{backend: BackendArangoDB},
		config:    config,
		logger:    logger.With("backend", string(BackendArangoDB)),
	}, nil
}

func (a *ArangoAdapter) Backend() Backend     { return BackendArangoDB }
func (a *ArangoAdapter) WriteMode() WriteMode { return WriteModeInsert }

// Connect creates the HTTP client and verifies credentials with a version request.
func (a *ArangoAdapter) Connect(ctx context.Context) error {
	if a.client != nil {
		return nil
	}

	conn, err := http.NewConnection(http.ConnectionConfig{Endpoints: a.config.Endpoints})
	if err != nil {
		return types.WrapError(ErrCodeGraphConnectionFailed, "arangodb: invalid endpoints", err)
	}
	client, err := driver.NewClient(driver.ClientConfig{
		Connection:     conn,
		Authentication: driver.BasicAuthentication(a.config.Username, a.config.Password),
	})
	if err != nil {
		return types.WrapError(ErrCodeGraphConnectionFailed, "arangodb: create client", err)
	}

	err = connectWithRetry(ctx, BackendArangoDB, a.config.ConnectRetries, a.config.ConnectTimeout, func(ctx context.Context) error {
		dialCtx, cancel := context.WithTimeout(ctx, a.config.ConnectTimeout)
		defer cancel()
		_, err := client.Version(dialCtx)
		return err
	})
	if err != nil {
		return err
	}

	a.client = client
	a.connected()
	a.logger.Info("connected", "endpoints", a.config.Endpoints)
	return nil
}

// ProvisionSchema creates the database, one collection per table and relationship,
// persistent indices on secondary columns, and the named graph.
func (a *ArangoAdapter) ProvisionSchema(ctx context.Context) error {
	if err := a.requireConnected("provision schema"); err != nil {
		return err
	}

	db, err := a.ensureDatabase(ctx)
	if err != nil {
		return err
	}
	a.db = db

	for _, t := range tpch.Tables() {
		col, err := a.ensureCollection(ctx, t.Name, driver.CollectionTypeDocument)
		if err != nil {
			return err
		}
		for _, field := range t.Indexed {
			name := fmt.Sprintf("%s_%s_idx", t.Name, field)
			_, _, err := col.EnsurePersistentIndex(ctx, []string{field}, &driver.EnsurePersistentIndexOptions{Name: name})
			if err != nil && !IsAlreadyExists(err) {
				return types.WrapError(ErrCodeGraphSchemaProvisionFailed, "arangodb: index "+name, err)
			}
		}
	}

	defs := make([]driver.EdgeDefinition, 0, len(tpch.Relationships()))
	for _, r := range tpch.Relationships() {
		if _, err := a.ensureCollection(ctx, r.Name, driver.CollectionTypeEdge); err != nil {
			return err
		}
		defs = append(defs, driver.EdgeDefinition{
			Collection: r.Name,
			From:       []string{r.Source},
			To:         []string{r.Target},
		})
	}

	exists, err := db.GraphExists(ctx, a.config.Graph)
	if err != nil {
		return types.WrapError(ErrCodeGraphSchemaProvisionFailed, "arangodb: check graph", err)
	}
	if !exists {
		_, err := db.CreateGraphV2(ctx, a.config.Graph, &driver.CreateGraphOptions{EdgeDefinitions: defs})
		if err != nil && !driver.IsConflict(err) {
			return types.WrapError(ErrCodeGraphSchemaProvisionFailed, "arangodb: create graph "+a.config.Graph, err)
		}
	}

	if err := a.config.Propagation.Await(ctx, a.logger, "schema", nil); err != nil {
		return err
	}

	a.provisioned()
	a.logger.Info("schema provisioned", "database", a.config.Database, "graph", a.config.Graph)
	return nil
}

func (a *ArangoAdapter) ensureDatabase(ctx context.Context) (driver.Database, error) {
	exists, err := a.client.DatabaseExists(ctx, a.config.Database)
	if err != nil {
		return nil, types.WrapError(ErrCodeGraphSchemaProvisionFailed, "arangodb: check database", err)
	}
	if !exists {
		db, err := a.client.CreateDatabase(ctx, a.config.Database, nil)
		if err == nil {
			return db, nil
		}
		if !driver.IsConflict(err) {
			return nil, types.WrapError(ErrCodeGraphSchemaProvisionFailed, "arangodb: create database "+a.config.Database, err)
		}
	}
	db, err := a.client.Database(ctx, a.config.Database)
	if err != nil {
		return nil, types.WrapError(ErrCodeGraphSchemaProvisionFailed, "arangodb: open database "+a.config.Database, err)
	}
	return db, nil
}

func (a *ArangoAdapter) ensureCollection(ctx context.Context, name string, kind driver.CollectionType) (driver.Collection, error) {
	exists, err := a.db.CollectionExists(ctx, name)
	if err != nil {
		return nil, types.WrapError(ErrCodeGraphSchemaProvisionFailed, "arangodb: check collection "+name, err)
	}
	if !exists {
		col, err := a.db.CreateCollection(ctx, name, &driver.CreateCollectionOptions{Type: kind})
		if err == nil {
			return col, nil
		}
		if !driver.IsConflict(err) {
			return nil, types.WrapError(ErrCodeGraphSchemaProvisionFailed, "arangodb: create collection "+name, err)
		}
	}
	col, err := a.db.Collection(ctx, name)
	if err != nil {
		return nil, types.WrapError(ErrCodeGraphSchemaProvisionFailed, "arangodb: open collection "+name, err)
	}
	return col, nil
}

// WriteVertices inserts one batch of documents keyed by vertex key.
func (a *ArangoAdapter) WriteVertices(ctx context.Context, table *tpch.Table, batch []tpch.VertexRecord) error {
	if err := a.requireProvisioned("write vertices"); err != nil {
		return err
	}
	return a.insert(ctx, table.Name, vertexDocuments(batch))
}

// WriteEdges inserts one batch of edge documents.
func (a *ArangoAdapter) WriteEdges(ctx context.Context, rel *tpch.Relationship, batch []tpch.EdgeRecord) error {
	if err := a.requireProvisioned("write edges"); err != nil {
		return err
	}
	return a.insert(ctx, rel.Name, edgeDocuments(batch))
}

func (a *ArangoAdapter) insert(ctx context.Context, collection string, docs []map[string]any) error {
	col, err := a.db.Collection(ctx, collection)
	if err != nil {
		return driverError(err, arangoConnectionLost, ErrCodeGraphBatchWriteFailed, "arangodb: open collection "+collection)
	}

	_, errs, err := col.CreateDocuments(ctx, docs)
	if err != nil {
		return driverError(err, arangoConnectionLost, ErrCodeGraphBatchWriteFailed,
			fmt.Sprintf("arangodb: insert %d documents into %s", len(docs), collection))
	}
	return rejectedDocuments(collection, errs)
}

// vertexDocuments turns vertex records into documents whose _key is the vertex key.
func vertexDocuments(batch []tpch.VertexRecord) []map[string]any {
	docs := make([]map[string]any, len(batch))
	for i, v := range batch {
		doc := make(map[string]any, len(v.Properties)+1)
		for k, val := range v.Properties {
			doc[k] = val
		}
		doc["_key"] = v.Ref.Key
		docs[i] = doc
	}
	return docs
}

// edgeDocuments turns edge records into edge documents. _from and _to are the
// "collection/key" handles of the endpoints and _key is derived from them.
func edgeDocuments(batch []tpch.EdgeRecord) []map[string]any {
	docs := make([]map[string]any, len(batch))
	for i, e := range batch {
		doc := make(map[string]any, len(e.Properties)+3)
		for k, val := range e.Properties {
			doc[k] = val
		}
		doc["_key"] = e.Key()
		doc["_from"] = e.From.ID()
		doc["_to"] = e.To.ID()
		docs[i] = doc
	}
	return docs
}

// rejectedDocuments fails the whole batch when the server rejected any document,
// e.g. on a duplicate _key. The first rejection is kept as the cause.
func rejectedDocuments(collection string, errs driver.ErrorSlice) error {
	first := errs.FirstNonNil()
	if first == nil {
		return nil
	}
	failed := 0
	for _, e := range errs {
		if e != nil {
			failed++
		}
	}
	return types.WrapError(ErrCodeGraphBatchWriteFailed,
		fmt.Sprintf("arangodb: %d of %d documents rejected by %s", failed, len(errs), collection), first)
}

// arangoConnectionLost reports whether err comes from the HTTP transport rather than
// from a server response. ArangoError implements net.Error, so it is ruled out first.
func arangoConnectionLost(err error) bool {
	if driver.IsArangoError(err) {
		return false
	}
	if driver.IsResponse(err) {
		return true
	}
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) || errors.As(err, &netErr)
}

// Query runs an AQL query with bind parameters.
func (a *ArangoAdapter) Query(ctx context.Context, text string, params map[string]any) (QueryResult, error) {
	if err := a.requireConnected("query"); err != nil {
		return QueryResult{}, err
	}
	db, err := a.database(ctx)
	if err != nil {
		return QueryResult{}, driverError(err, arangoConnectionLost, ErrCodeGraphQueryFailed, "arangodb: open database")
	}

	start := time.Now()
	cursor, err := db.Query(driver.WithQueryBatchSize(ctx, 1000), text, params)
	if err != nil {
		return QueryResult{}, driverError(err, arangoConnectionLost, ErrCodeGraphQueryFailed, "query execution failed")
	}
	defer cursor.Close()

	result := QueryResult{Records: []map[string]any{}, Columns: []string{}}
	for cursor.HasMore() {
		var doc any
		if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
			if driver.IsNoMoreDocuments(err) {
				break
			}
			return QueryResult{}, driverError(err, arangoConnectionLost, ErrCodeGraphQueryFailed, "read cursor")
		}
		row, ok := doc.(map[string]any)
		if !ok {
			row = map[string]any{"value": doc}
		}
		result.Records = append(result.Records, row)
	}
	result.Elapsed = time.Since(start)

	if len(result.Records) > 0 {
		for k := range result.Records[0] {
			result.Columns = append(result.Columns, k)
		}
		sort.Strings(result.Columns)
	}
	return result, nil
}

// database returns the provisioned database handle, opening it when the adapter was
// connected to an existing namespace without provisioning.
func (a *ArangoAdapter) database(ctx context.Context) (driver.Database, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := a.client.Database(ctx, a.config.Database)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

// Clear truncates every harness collection that exists. The database, collections,
// indices and named graph are kept.
func (a *ArangoAdapter) Clear(ctx context.Context) error {
	if err := a.requireConnected("clear"); err != nil {
		return err
	}

	exists, err := a.client.DatabaseExists(ctx, a.config.Database)
	if err != nil {
		return driverError(err, arangoConnectionLost, ErrCodeGraphClearFailed, "arangodb: check database")
	}
	if !exists {
		a.cleared()
		return nil
	}
	db, err := a.database(ctx)
	if err != nil {
		return types.WrapError(ErrCodeGraphClearFailed, "arangodb: open database", err)
	}

	for _, name := range collectionNames() {
		col, err := db.Collection(ctx, name)
		if driver.IsNotFound(err) {
			continue
		}
		if err != nil {
			return types.WrapError(ErrCodeGraphClearFailed, "arangodb: open collection "+name, err)
		}
		if err := col.Truncate(ctx); err != nil {
			return types.WrapError(ErrCodeGraphClearFailed, "arangodb: truncate "+name, err)
		}
	}

	a.cleared()
	a.logger.Info("collections truncated", "database", a.config.Database)
	return nil
}

// Close drops the client. The HTTP transport holds no session to release.
func (a *ArangoAdapter) Close(ctx context.Context) error {
	a.client = nil
	a.db = nil
	a.closed()
	return nil
}

// Counts returns the document count of every collection.
func (a *ArangoAdapter) Counts(ctx context.Context) (Counts, error) {
	if err := a.requireConnected("count"); err != nil {
		return Counts{}, err
	}
	db, err := a.database(ctx)
	if err != nil {
		return Counts{}, types.WrapError(ErrCodeGraphQueryFailed, "arangodb: open database", err)
	}

	counts := Counts{Vertices: map[string]int64{}, Edges: map[string]int64{}}
	count := func(name string) (int64, error) {
		col, err := db.Collection(ctx, name)
		if driver.IsNotFound(err) {
			return 0, nil
		}
		if err != nil {
			return 0, types.WrapError(ErrCodeGraphQueryFailed, "arangodb: open collection "+name, err)
		}
		n, err := col.Count(ctx)
		if err != nil {
			return 0, types.WrapError(ErrCodeGraphQueryFailed, "arangodb: count "+name, err)
		}
		return n, nil
	}

	for _, t := range tpch.Tables() {
		if counts.Vertices[t.Name], err = count(t.Name); err != nil {
			return Counts{}, err
		}
	}
	for _, r := range tpch.Relationships() {
		if counts.Edges[r.Name], err = count(r.Name); err != nil {
			return Counts{}, err
		}
	}
	return counts, nil
}

// Health requests the server version.
func (a *ArangoAdapter) Health(ctx context.Context) types.HealthStatus {
	if a.client == nil {
		return types.Unhealthy("client not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	info, err := a.client.Version(healthCtx)
	if err != nil {
		return types.Unhealthyf("version request failed: %v", err)
	}
	return types.Healthy("connected to arangodb").
		WithVersion(string(info.Version)).
		WithLatency(time.Since(start))
}

func collectionNames() []string {
	var names []string
	for _, t := range tpch.Tables() {
		names = append(names, t.Name)
	}
	for _, r := range tpch.Relationships() {
		names = append(names, r.Name)
	}
	return names
}
