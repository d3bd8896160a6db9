package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"slices"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/obonovai/graphonauts/internal/tpch"
	"github.com/obonovai/graphonauts/internal/types"
)

// KeyProperty holds the vertex key on Cypher backends.
const KeyProperty = "key"

const neo4jDatabaseNotFound = "Neo.ClientError.Database.DatabaseNotFound"

// cypherDialect captures where Neo4j and Memgraph disagree.
type cypherDialect struct {
	// multiDatabase enables CREATE DATABASE and SHOW DATABASE.
	multiDatabase bool
	// namedIndexes selects "CREATE INDEX name IF NOT EXISTS FOR ..." over "CREATE INDEX ON :L(p)".
	namedIndexes bool
	// batchedClear enables CALL { ... } IN TRANSACTIONS.
	batchedClear bool
}

var (
	neo4jDialect    = cypherDialect{multiDatabase: true, namedIndexes: true, batchedClear: true}
	memgraphDialect = cypherDialect{}
)

// CypherAdapter implements Adapter for Bolt backends speaking Cypher: Neo4j and Memgraph.
// Writes use UNWIND ... MERGE and are idempotent.
type CypherAdapter struct {
	lifecycle
	config  CypherConfig
	dialect cypherDialect
	logger  *slog.Logger

	driver  neo4j.DriverWithContext
	session neo4j.SessionWithContext
}

// NewNeo4jAdapter creates a Neo4j adapter. It must be connected via Connect() before use.
func NewNeo4jAdapter(config CypherConfig, logger *slog.Logger) (*CypherAdapter, error) {
	return newCypherAdapter(BackendNeo4j, neo4jDialect, config, logger)
}

// NewMemgraphAdapter creates a Memgraph adapter. It must be connected via Connect() before use.
func NewMemgraphAdapter(config CypherConfig, logger *slog.Logger) (*CypherAdapter, error) {
	config.Database = ""
	return newCypherAdapter(BackendMemgraph, memgraphDialect, config, logger)
}

func newCypherAdapter(backend Backend, dialect cypherDialect, config CypherConfig, logger *slog.Logger) (*CypherAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CypherAdapter{
		lifecycle: lifecycle{backend: backend},
		config:    config,
		dialect:   dialect,
		logger:    logger.With("backend", string(backend)),
	}, nil
}

func (a *CypherAdapter) Backend() Backend     { return a.backend }
func (a *CypherAdapter) WriteMode() WriteMode { return WriteModeMerge }

// Connect opens the driver and the adapter's single session, retrying with
// exponential backoff.
func (a *CypherAdapter) Connect(ctx context.Context) error {
	if a.driver != nil {
		return nil
	}

	auth := neo4j.NoAuth()
	if a.config.Username != "" {
		auth = neo4j.BasicAuth(a.config.Username, a.config.Password, "")
	}
	configure := func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = 1
		c.ConnectionAcquisitionTimeout = a.config.ConnectTimeout
		c.SocketConnectTimeout = a.config.ConnectTimeout
	}

	err := connectWithRetry(ctx, a.backend, a.config.ConnectRetries, a.config.ConnectTimeout, func(ctx context.Context) error {
		driver, err := neo4j.NewDriverWithContext(a.config.URI, auth, configure)
		if err != nil {
			return err
		}
		if err := driver.VerifyConnectivity(ctx); err != nil {
			_ = driver.Close(ctx)
			return err
		}
		a.driver = driver
		return nil
	})
	if err != nil {
		return err
	}

	a.session = a.newSession(ctx, a.config.Database)
	a.connected()
	a.logger.Info("connected", "uri", a.config.URI, "database", a.config.Database)
	return nil
}

func (a *CypherAdapter) newSession(ctx context.Context, database string) neo4j.SessionWithContext {
	return a.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: database})
}

// ProvisionSchema creates the database (Neo4j only, when configured) and one index per
// vertex key and secondary column.
func (a *CypherAdapter) ProvisionSchema(ctx context.Context) error {
	if err := a.requireConnected("provision schema"); err != nil {
		return err
	}

	if a.dialect.multiDatabase && a.config.Database != "" {
		if err := a.createDatabase(ctx); err != nil {
			return err
		}
	}

	for _, stmt := range indexStatements(a.dialect) {
		if err := a.exec(ctx, stmt, nil); err != nil {
			if IsAlreadyExists(err) {
				a.logger.Debug("index already exists", "statement", stmt)
				continue
			}
			return types.WrapError(ErrCodeGraphSchemaProvisionFailed,
				fmt.Sprintf("%s: %s", a.backend, stmt), err)
		}
	}

	if a.dialect.namedIndexes {
		err := a.config.Propagation.Await(ctx, a.logger, "index population", func(ctx context.Context) (bool, error) {
			res, err := a.Query(ctx, "SHOW INDEXES YIELD state WHERE state <> 'ONLINE' RETURN count(*) AS pending", nil)
			if err != nil {
				return false, err
			}
			return firstInt(res, "pending") == 0, nil
		})
		if err != nil {
			return types.WrapError(ErrCodeGraphSchemaProvisionFailed, "neo4j: indexes not online", err)
		}
	}

	a.provisioned()
	a.logger.Info("schema provisioned")
	return nil
}

func (a *CypherAdapter) createDatabase(ctx context.Context) error {
	system := a.newSession(ctx, "system")
	defer system.Close(ctx)

	name := quoteIdent(a.config.Database)
	res, err := system.Run(ctx, "CREATE DATABASE "+name+" IF NOT EXISTS", nil)
	if err == nil {
		_, err = res.Consume(ctx)
	}
	if err != nil {
		var neoErr *neo4j.Neo4jError
		if errors.As(err, &neoErr) && strings.Contains(neoErr.Code, "Unsupported") {
			// Community edition serves a single database.
			a.logger.Warn("multiple databases unsupported, using server default", "database", a.config.Database)
			a.session.Close(ctx)
			a.config.Database = ""
			a.session = a.newSession(ctx, "")
			return nil
		}
		return types.WrapError(ErrCodeGraphSchemaProvisionFailed,
			fmt.Sprintf("neo4j: create database %s", a.config.Database), err)
	}

	err = a.config.Propagation.Await(ctx, a.logger, "database "+a.config.Database, func(ctx context.Context) (bool, error) {
		result, err := system.Run(ctx, "SHOW DATABASE "+name+" YIELD currentStatus RETURN currentStatus", nil)
		if err != nil {
			return false, err
		}
		records, err := result.Collect(ctx)
		if err != nil || len(records) == 0 {
			return false, err
		}
		for _, r := range records {
			if status, _ := r.Values[0].(string); status != "online" {
				return false, nil
			}
		}
		return true, nil
	})
	if err != nil {
		return types.WrapError(ErrCodeGraphSchemaProvisionFailed,
			fmt.Sprintf("neo4j: database %s not online", a.config.Database), err)
	}
	return nil
}

// WriteVertices merges one batch of vertices on their key.
func (a *CypherAdapter) WriteVertices(ctx context.Context, table *tpch.Table, batch []tpch.VertexRecord) error {
	if err := a.requireProvisioned("write vertices"); err != nil {
		return err
	}

	rows := make([]map[string]any, len(batch))
	for i, v := range batch {
		rows[i] = map[string]any{"key": v.Ref.Key, "props": v.Properties}
	}

	if _, err := a.write(ctx, vertexMergeStatement(table), rows); err != nil {
		return driverError(err, neo4jConnectionLost, ErrCodeGraphBatchWriteFailed,
			fmt.Sprintf("%s: merge %d %s vertices", a.backend, len(batch), table.Label))
	}
	return nil
}

// WriteEdges merges one batch of edges between existing endpoints. Rows whose
// endpoints are missing are not written and fail the batch.
func (a *CypherAdapter) WriteEdges(ctx context.Context, rel *tpch.Relationship, batch []tpch.EdgeRecord) error {
	if err := a.requireProvisioned("write edges"); err != nil {
		return err
	}

	rows := make([]map[string]any, len(batch))
	for i, e := range batch {
		rows[i] = map[string]any{"from": e.From.Key, "to": e.To.Key, "props": e.Properties}
	}

	written, err := a.write(ctx, edgeMergeStatement(rel), rows)
	if err != nil {
		return driverError(err, neo4jConnectionLost, ErrCodeGraphBatchWriteFailed,
			fmt.Sprintf("%s: merge %d %s edges", a.backend, len(batch), rel.Name))
	}
	if written < int64(len(batch)) {
		return types.NewError(ErrCodeGraphBatchWriteFailed,
			fmt.Sprintf("%s: %d of %d %s edges skipped, endpoint vertex missing",
				a.backend, int64(len(batch))-written, len(batch), rel.Name))
	}
	return nil
}

// write runs stmt with $rows in a managed write transaction and returns the
// "written" column of the single result row.
func (a *CypherAdapter) write(ctx context.Context, stmt string, rows []map[string]any) (int64, error) {
	result, err := a.session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, stmt, map[string]any{"rows": rows})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		written, _, err := neo4j.GetRecordValue[int64](record, "written")
		return written, err
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// Query runs text as an auto-commit transaction. Bound parameters are supported.
func (a *CypherAdapter) Query(ctx context.Context, text string, params map[string]any) (QueryResult, error) {
	if err := a.requireConnected("query"); err != nil {
		return QueryResult{}, err
	}

	start := time.Now()
	result, err := a.session.Run(ctx, text, params)
	if err != nil {
		return QueryResult{}, driverError(err, neo4jConnectionLost, ErrCodeGraphQueryFailed, "query execution failed")
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return QueryResult{}, driverError(err, neo4jConnectionLost, ErrCodeGraphQueryFailed, "query execution failed")
	}

	out := convertRecords(records)
	out.Elapsed = time.Since(start)
	return out, nil
}

// Clear detaches and deletes every node. On Neo4j the delete is split into
// transactions of ClearBatchSize nodes.
func (a *CypherAdapter) Clear(ctx context.Context) error {
	if err := a.requireConnected("clear"); err != nil {
		return err
	}

	stmt := "MATCH (n) DETACH DELETE n"
	if a.dialect.batchedClear && a.config.ClearBatchSize > 0 {
		stmt = fmt.Sprintf("MATCH (n) CALL { WITH n DETACH DELETE n } IN TRANSACTIONS OF %d ROWS", a.config.ClearBatchSize)
	}

	if err := a.exec(ctx, stmt, nil); err != nil {
		var neoErr *neo4j.Neo4jError
		if errors.As(err, &neoErr) && neoErr.Code == neo4jDatabaseNotFound {
			a.cleared()
			return nil
		}
		return driverError(err, neo4jConnectionLost, ErrCodeGraphClearFailed, fmt.Sprintf("%s: clear", a.backend))
	}

	a.cleared()
	a.logger.Info("graph cleared")
	return nil
}

// exec runs stmt in auto-commit mode and discards the result.
func (a *CypherAdapter) exec(ctx context.Context, stmt string, params map[string]any) error {
	result, err := a.session.Run(ctx, stmt, params)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

// Close releases the session and the driver.
func (a *CypherAdapter) Close(ctx context.Context) error {
	defer a.closed()

	if a.session != nil {
		_ = a.session.Close(ctx)
		a.session = nil
	}
	if a.driver == nil {
		return nil
	}
	err := a.driver.Close(ctx)
	a.driver = nil
	if err != nil {
		return types.WrapError(ErrCodeGraphConnectionClosed, "failed to close driver", err)
	}
	return nil
}

// Counts returns stored vertices per table and edges per relationship.
func (a *CypherAdapter) Counts(ctx context.Context) (Counts, error) {
	counts := Counts{Vertices: map[string]int64{}, Edges: map[string]int64{}}
	for _, t := range tpch.Tables() {
		res, err := a.Query(ctx, fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS c", quoteIdent(t.Label)), nil)
		if err != nil {
			return Counts{}, err
		}
		counts.Vertices[t.Name] = firstInt(res, "c")
	}
	for _, r := range tpch.Relationships() {
		stmt := fmt.Sprintf("MATCH (:%s)-[r:%s]->(:%s) RETURN count(r) AS c",
			quoteIdent(r.SourceTable().Label), quoteIdent(r.Label), quoteIdent(r.TargetTable().Label))
		res, err := a.Query(ctx, stmt, nil)
		if err != nil {
			return Counts{}, err
		}
		counts.Edges[r.Name] = firstInt(res, "c")
	}
	return counts, nil
}

// Health returns the current health status of the Bolt connection.
func (a *CypherAdapter) Health(ctx context.Context) types.HealthStatus {
	if a.driver == nil {
		return types.Unhealthy("driver not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	info, err := a.driver.GetServerInfo(healthCtx)
	if err != nil {
		return types.Unhealthyf("connectivity check failed: %v", err)
	}
	return types.Healthy("connected to " + string(a.backend)).
		WithVersion(info.Agent()).
		WithLatency(time.Since(start))
}

// neo4jConnectionLost reports whether err is a Bolt connectivity failure. Managed
// transactions retry those and then report the raw dial or socket errors inside a
// TransactionExecutionLimit.
func neo4jConnectionLost(err error) bool {
	var conn *neo4j.ConnectivityError
	var netErr net.Error
	if errors.As(err, &conn) || errors.As(err, &netErr) || errors.Is(err, io.EOF) {
		return true
	}
	var limit *neo4j.TransactionExecutionLimit
	if errors.As(err, &limit) {
		return slices.ContainsFunc(limit.Errors, neo4jConnectionLost)
	}
	return false
}

func indexStatements(d cypherDialect) []string {
	var out []string
	for _, t := range tpch.Tables() {
		props := append([]string{KeyProperty}, t.Indexed...)
		for _, p := range props {
			if d.namedIndexes {
				out = append(out, fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS FOR (n:%s) ON (n.%s)",
					quoteIdent(t.Name+"_"+p), quoteIdent(t.Label), quoteIdent(p)))
			} else {
				out = append(out, fmt.Sprintf("CREATE INDEX ON :%s(%s)", quoteIdent(t.Label), quoteIdent(p)))
			}
		}
	}
	return out
}

func vertexMergeStatement(t *tpch.Table) string {
	return fmt.Sprintf(
		"UNWIND $rows AS row MERGE (n:%s {%s: row.key}) SET n += row.props RETURN count(n) AS written",
		quoteIdent(t.Label), KeyProperty)
}

func edgeMergeStatement(r *tpch.Relationship) string {
	return fmt.Sprintf(
		"UNWIND $rows AS row "+
			"MATCH (a:%s {%s: row.from}) "+
			"MATCH (b:%s {%s: row.to}) "+
			"MERGE (a)-[r:%s]->(b) SET r += row.props "+
			"RETURN count(r) AS written",
		quoteIdent(r.SourceTable().Label), KeyProperty,
		quoteIdent(r.TargetTable().Label), KeyProperty,
		quoteIdent(r.Label))
}

// quoteIdent backtick-quotes a Cypher or nGQL identifier.
func quoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func convertRecords(records []*neo4j.Record) QueryResult {
	result := QueryResult{
		Records: make([]map[string]any, 0, len(records)),
		Columns: []string{},
	}
	if len(records) > 0 {
		result.Columns = records[0].Keys
	}
	for _, record := range records {
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = convertValue(record.Values[i])
		}
		result.Records = append(result.Records, row)
	}
	return result
}

// convertValue flattens graph entities to their property maps.
func convertValue(v any) any {
	switch v := v.(type) {
	case neo4j.Node:
		return v.Props
	case neo4j.Relationship:
		return v.Props
	case neo4j.Path:
		nodes := make([]any, len(v.Nodes))
		for i, n := range v.Nodes {
			nodes[i] = n.Props
		}
		return nodes
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = convertValue(e)
		}
		return out
	default:
		return v
	}
}

// firstInt returns column of the first row as int64, or 0.
func firstInt(res QueryResult, column string) int64 {
	if len(res.Records) == 0 {
		return 0
	}
	switch n := res.Records[0][column].(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
