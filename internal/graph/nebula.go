package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	nebula "github.com/vesoft-inc/nebula-go/v3"

	"github.com/obonovai/graphonauts/internal/tpch"
	"github.com/obonovai/graphonauts/internal/types"
)

// NebulaAdapter implements Adapter for NebulaGraph. Tables map to tags, relationships
// to edge types, and every vertex ID is the string "kind/key".
//
// INSERT overwrites existing vertices and edges, so writes are idempotent. nGQL does
// not check edge endpoints on insert.
type NebulaAdapter struct {
	lifecycle
	config NebulaConfig
	logger *slog.Logger

	pool    *nebula.ConnectionPool
	session nebulaSession
}

// nebulaSession is the part of *nebula.Session the adapter uses.
type nebulaSession interface {
	Execute(stmt string) (*nebula.ResultSet, error)
	ExecuteWithParameter(stmt string, params map[string]any) (*nebula.ResultSet, error)
	Release()
}

// NewNebulaAdapter creates a NebulaGraph adapter. It must be connected via Connect() before use.
func NewNebulaAdapter(config NebulaConfig, logger *slog.Logger) (*NebulaAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NebulaAdapter{
		lifecycle: lifecycle{backend: BackendNebula},
		config:    config,
		logger:    logger.With("backend", string(BackendNebula)),
	}, nil
}

func (a *NebulaAdapter) Backend() Backend     { return BackendNebula }
func (a *NebulaAdapter) WriteMode() WriteMode { return WriteModeOverwrite }

// Connect opens a single-connection pool and one authenticated session.
func (a *NebulaAdapter) Connect(ctx context.Context) error {
	if a.session != nil {
		return nil
	}

	hosts := make([]nebula.HostAddress, 0, len(a.config.Hosts))
	for _, h := range a.config.Hosts {
		host, port, err := splitHostPort(h)
		if err != nil {
			return types.WrapError(ErrCodeGraphConnectionFailed, "nebula: invalid host "+h, err)
		}
		hosts = append(hosts, nebula.HostAddress{Host: host, Port: port})
	}

	conf := nebula.GetDefaultConf()
	conf.TimeOut = a.config.ConnectTimeout
	conf.MaxConnPoolSize = 1
	conf.MinConnPoolSize = 1

	err := connectWithRetry(ctx, BackendNebula, a.config.ConnectRetries, a.config.ConnectTimeout, func(ctx context.Context) error {
		pool, err := nebula.NewConnectionPool(hosts, conf, nebulaLogger{a.logger})
		if err != nil {
			return err
		}
		session, err := pool.GetSession(a.config.Username, a.config.Password)
		if err != nil {
			pool.Close()
			return err
		}
		a.pool, a.session = pool, session
		return nil
	})
	if err != nil {
		return err
	}

	a.connected()
	a.logger.Info("connected", "hosts", a.config.Hosts)
	return nil
}

// ProvisionSchema creates the space, tags, edge types and indexes. Every step waits
// for metad to publish the change before the next one relies on it.
func (a *NebulaAdapter) ProvisionSchema(ctx context.Context) error {
	if err := a.requireConnected("provision schema"); err != nil {
		return err
	}
	prop := a.config.Propagation

	if err := a.ddl(ctx, createSpaceStatement(a.config)); err != nil {
		return err
	}
	err := prop.Await(ctx, a.logger, "space "+a.config.Space, func(ctx context.Context) (bool, error) {
		_, err := a.execute(ctx, "DESCRIBE SPACE "+quoteIdent(a.config.Space))
		return err == nil, err
	})
	if err == nil {
		_, err = a.execute(ctx, "USE "+quoteIdent(a.config.Space))
	}
	if err != nil {
		return provisionError("nebula: space not available", err)
	}

	for _, stmt := range schemaStatements() {
		if err := a.ddl(ctx, stmt); err != nil {
			return err
		}
	}
	err = prop.Await(ctx, a.logger, "tags and edge types", func(ctx context.Context) (bool, error) {
		return a.listed(ctx, "SHOW TAGS", tagNames())
	})
	if err == nil {
		err = prop.Await(ctx, a.logger, "edge types", func(ctx context.Context) (bool, error) {
			return a.listed(ctx, "SHOW EDGES", edgeNames())
		})
	}
	if err != nil {
		return provisionError("nebula: schema not available", err)
	}

	tagIdx, edgeIdx := indexStatementsNGQL()
	for _, stmt := range append(tagIdx, edgeIdx...) {
		if err := a.ddl(ctx, stmt); err != nil {
			return err
		}
	}
	err = prop.Await(ctx, a.logger, "indexes", func(ctx context.Context) (bool, error) {
		ok, err := a.listed(ctx, "SHOW TAG INDEXES", indexNames(tagIdx))
		if !ok || err != nil {
			return ok, err
		}
		return a.listed(ctx, "SHOW EDGE INDEXES", indexNames(edgeIdx))
	})
	if err != nil {
		return provisionError("nebula: indexes not available", err)
	}

	a.provisioned()
	a.logger.Info("schema provisioned", "space", a.config.Space)
	return nil
}

// ddl runs one schema statement, tolerating "already exists".
func (a *NebulaAdapter) ddl(ctx context.Context, stmt string) error {
	if _, err := a.execute(ctx, stmt); err != nil {
		if IsAlreadyExists(err) {
			a.logger.Debug("schema object already exists", "statement", stmt)
			return nil
		}
		return provisionError("nebula: "+stmt, err)
	}
	return nil
}

func provisionError(message string, err error) error {
	return driverError(err, nil, ErrCodeGraphSchemaProvisionFailed, message)
}

// listed reports whether the first column of a SHOW statement contains every name.
func (a *NebulaAdapter) listed(ctx context.Context, stmt string, names []string) (bool, error) {
	res, err := a.execute(ctx, stmt)
	if err != nil {
		return false, err
	}
	present := make(map[string]bool, res.Len())
	for _, row := range res.Records {
		if len(res.Columns) > 0 {
			if s, ok := row[res.Columns[0]].(string); ok {
				present[s] = true
			}
		}
	}
	for _, n := range names {
		if !present[n] {
			return false, nil
		}
	}
	return true, nil
}

// WriteVertices inserts one batch with a single INSERT VERTEX statement.
func (a *NebulaAdapter) WriteVertices(ctx context.Context, table *tpch.Table, batch []tpch.VertexRecord) error {
	if err := a.requireProvisioned("write vertices"); err != nil {
		return err
	}
	if _, err := a.execute(ctx, insertVertexStatement(table, batch)); err != nil {
		return driverError(err, nil, ErrCodeGraphBatchWriteFailed,
			fmt.Sprintf("nebula: insert %d %s vertices", len(batch), table.Label))
	}
	return nil
}

// WriteEdges inserts one batch with a single INSERT EDGE statement.
func (a *NebulaAdapter) WriteEdges(ctx context.Context, rel *tpch.Relationship, batch []tpch.EdgeRecord) error {
	if err := a.requireProvisioned("write edges"); err != nil {
		return err
	}
	if _, err := a.execute(ctx, insertEdgeStatement(rel, batch)); err != nil {
		return driverError(err, nil, ErrCodeGraphBatchWriteFailed,
			fmt.Sprintf("nebula: insert %d %s edges", len(batch), rel.Name))
	}
	return nil
}

// Query runs an nGQL statement in the provisioned space. Parameters are passed to
// the server, which accepts them in MATCH, GO and LOOKUP clauses.
func (a *NebulaAdapter) Query(ctx context.Context, text string, params map[string]any) (QueryResult, error) {
	if err := a.requireConnected("query"); err != nil {
		return QueryResult{}, err
	}
	if a.State() == StateConnected {
		if _, err := a.execute(ctx, "USE "+quoteIdent(a.config.Space)); err != nil {
			return QueryResult{}, driverError(err, nil, ErrCodeGraphQueryFailed, "nebula: use space")
		}
	}

	start := time.Now()
	rs, err := a.run(ctx, text, params)
	if err != nil {
		return QueryResult{}, driverError(err, nil, ErrCodeGraphQueryFailed, "query execution failed")
	}
	out, err := convertResultSet(rs)
	if err != nil {
		return QueryResult{}, types.WrapError(ErrCodeGraphQueryFailed, "read result", err)
	}
	out.Elapsed = time.Since(start)
	return out, nil
}

func (a *NebulaAdapter) execute(ctx context.Context, stmt string) (QueryResult, error) {
	rs, err := a.run(ctx, stmt, nil)
	if err != nil {
		return QueryResult{}, err
	}
	return convertResultSet(rs)
}

// sessionLost lists the response codes that mean the session or its connection is
// gone; statements cannot succeed on it any more.
var sessionLost = []nebula.ErrorCode{
	nebula.ErrorCode_E_DISCONNECTED,
	nebula.ErrorCode_E_FAIL_TO_CONNECT,
	nebula.ErrorCode_E_RPC_FAILURE,
	nebula.ErrorCode_E_SESSION_INVALID,
	nebula.ErrorCode_E_SESSION_TIMEOUT,
}

// run executes one statement. The client only returns an error when it could not
// reach graphd, even after reconnecting, so such errors are ConnectionErrors; a
// failed response is an ordinary error unless its code says the session is lost.
func (a *NebulaAdapter) run(ctx context.Context, stmt string, params map[string]any) (*nebula.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		rs  *nebula.ResultSet
		err error
	)
	if len(params) > 0 {
		rs, err = a.session.ExecuteWithParameter(stmt, params)
	} else {
		rs, err = a.session.Execute(stmt)
	}
	if err != nil {
		return nil, types.WrapError(ErrCodeGraphConnectionFailed, "nebula: execute", err)
	}
	if !rs.IsSucceed() {
		err := errors.New(rs.GetErrorMsg())
		if slices.Contains(sessionLost, rs.GetErrorCode()) {
			return nil, types.WrapError(ErrCodeGraphConnectionFailed, "nebula: session lost", err)
		}
		return nil, err
	}
	return rs, nil
}

// Clear drops the space and waits until metad no longer lists it.
func (a *NebulaAdapter) Clear(ctx context.Context) error {
	if err := a.requireConnected("clear"); err != nil {
		return err
	}

	space := quoteIdent(a.config.Space)
	if _, err := a.execute(ctx, "DROP SPACE IF EXISTS "+space); err != nil {
		return driverError(err, nil, ErrCodeGraphClearFailed, "nebula: drop space "+a.config.Space)
	}
	err := a.config.Propagation.Await(ctx, a.logger, "drop space "+a.config.Space, func(ctx context.Context) (bool, error) {
		_, err := a.execute(ctx, "DESCRIBE SPACE "+space)
		if IsConnectionError(err) {
			return false, err
		}
		return err != nil, nil
	})
	if err != nil {
		return driverError(err, nil, ErrCodeGraphClearFailed, "nebula: space still present")
	}

	a.cleared()
	a.logger.Info("space dropped", "space", a.config.Space)
	return nil
}

// Close releases the session and the pool.
func (a *NebulaAdapter) Close(ctx context.Context) error {
	if a.session != nil {
		a.session.Release()
		a.session = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	a.closed()
	return nil
}

// Counts counts vertices per tag and edges per edge type through their indexes.
func (a *NebulaAdapter) Counts(ctx context.Context) (Counts, error) {
	counts := Counts{Vertices: map[string]int64{}, Edges: map[string]int64{}}
	for _, t := range tpch.Tables() {
		res, err := a.Query(ctx, fmt.Sprintf("MATCH (v:%s) RETURN count(v) AS c", quoteIdent(t.Label)), nil)
		if err != nil {
			return Counts{}, err
		}
		counts.Vertices[t.Name] = firstInt(res, "c")
	}
	for _, r := range tpch.Relationships() {
		res, err := a.Query(ctx, fmt.Sprintf("MATCH ()-[e:%s]->() RETURN count(e) AS c", quoteIdent(r.Name)), nil)
		if err != nil {
			return Counts{}, err
		}
		counts.Edges[r.Name] = firstInt(res, "c")
	}
	return counts, nil
}

// Health runs a trivial statement on the session.
func (a *NebulaAdapter) Health(ctx context.Context) types.HealthStatus {
	if a.session == nil {
		return types.Unhealthy("session not initialized")
	}
	start := time.Now()
	if _, err := a.execute(ctx, "YIELD 1 AS ok"); err != nil {
		return types.Unhealthyf("probe failed: %v", err)
	}
	return types.Healthy("connected to nebula").WithLatency(time.Since(start))
}

func createSpaceStatement(c NebulaConfig) string {
	return fmt.Sprintf("CREATE SPACE IF NOT EXISTS %s (partition_num = %d, replica_factor = %d, vid_type = FIXED_STRING(%d))",
		quoteIdent(c.Space), c.Partitions, c.Replicas, c.VIDLength)
}

var nebulaTypes = map[tpch.ColumnType]string{
	tpch.TypeInt:    "int64",
	tpch.TypeFloat:  "double",
	tpch.TypeString: "string",
	tpch.TypeDate:   "string",
}

// schemaStatements returns CREATE TAG and CREATE EDGE statements for every kind.
func schemaStatements() []string {
	var out []string
	for _, t := range tpch.Tables() {
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = quoteIdent(c.Name) + " " + nebulaTypes[c.Type]
		}
		out = append(out, fmt.Sprintf("CREATE TAG IF NOT EXISTS %s(%s)", quoteIdent(t.Label), strings.Join(cols, ", ")))
	}
	for _, r := range tpch.Relationships() {
		owner := r.OwnerTable()
		cols := make([]string, len(r.Properties))
		for i, p := range r.Properties {
			c, _ := owner.Column(p)
			cols[i] = quoteIdent(p) + " " + nebulaTypes[c.Type]
		}
		out = append(out, fmt.Sprintf("CREATE EDGE IF NOT EXISTS %s(%s)", quoteIdent(r.Name), strings.Join(cols, ", ")))
	}
	return out
}

// indexStatementsNGQL returns tag and edge index statements. Every tag and edge type
// gets a property-less index, which MATCH and LOOKUP need to scan by kind; key and
// secondary columns get their own.
func indexStatementsNGQL() (tagIdx, edgeIdx []string) {
	for _, t := range tpch.Tables() {
		tagIdx = append(tagIdx, fmt.Sprintf("CREATE TAG INDEX IF NOT EXISTS %s ON %s()",
			quoteIdent(t.Name+"_idx"), quoteIdent(t.Label)))
		cols := t.Indexed
		if !t.HasCompositeKey() {
			cols = append([]string{t.Key[0]}, cols...)
		}
		for _, c := range cols {
			tagIdx = append(tagIdx, fmt.Sprintf("CREATE TAG INDEX IF NOT EXISTS %s ON %s(%s)",
				quoteIdent(t.Name+"_"+c+"_idx"), quoteIdent(t.Label), quoteIdent(c)))
		}
	}
	for _, r := range tpch.Relationships() {
		edgeIdx = append(edgeIdx, fmt.Sprintf("CREATE EDGE INDEX IF NOT EXISTS %s ON %s()",
			quoteIdent(r.Name+"_idx"), quoteIdent(r.Name)))
	}
	return tagIdx, edgeIdx
}

// indexNames extracts the unquoted index names from CREATE ... INDEX statements.
func indexNames(stmts []string) []string {
	names := make([]string, 0, len(stmts))
	for _, s := range stmts {
		start := strings.Index(s, "`")
		end := strings.Index(s[start+1:], "`")
		names = append(names, s[start+1:start+1+end])
	}
	return names
}

func tagNames() []string {
	var out []string
	for _, t := range tpch.Tables() {
		out = append(out, t.Label)
	}
	return out
}

func edgeNames() []string {
	var out []string
	for _, r := range tpch.Relationships() {
		out = append(out, r.Name)
	}
	return out
}

func insertVertexStatement(t *tpch.Table, batch []tpch.VertexRecord) string {
	var b strings.Builder
	b.WriteString("INSERT VERTEX ")
	b.WriteString(quoteIdent(t.Label))
	b.WriteString("(")
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(c.Name))
	}
	b.WriteString(") VALUES ")
	for i, v := range batch {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ngqlLiteral(v.Ref.ID()))
		b.WriteString(":(")
		for j, c := range t.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(ngqlLiteral(v.Properties[c.Name]))
		}
		b.WriteString(")")
	}
	return b.String()
}

func insertEdgeStatement(r *tpch.Relationship, batch []tpch.EdgeRecord) string {
	var b strings.Builder
	b.WriteString("INSERT EDGE ")
	b.WriteString(quoteIdent(r.Name))
	b.WriteString("(")
	for i, p := range r.Properties {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(p))
	}
	b.WriteString(") VALUES ")
	for i, e := range batch {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ngqlLiteral(e.From.ID()))
		b.WriteString("->")
		b.WriteString(ngqlLiteral(e.To.ID()))
		b.WriteString(":(")
		for j, p := range r.Properties {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(ngqlLiteral(e.Properties[p]))
		}
		b.WriteString(")")
	}
	return b.String()
}

var ngqlEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

// ngqlLiteral renders a property value as an nGQL literal. Doubles always carry a
// fraction so that whole numbers are not typed as int64.
func ngqlLiteral(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case string:
		return `"` + ngqlEscaper.Replace(v) + `"`
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case bool:
		return strconv.FormatBool(v)
	default:
		return `"` + ngqlEscaper.Replace(fmt.Sprint(v)) + `"`
	}
}

func convertResultSet(rs *nebula.ResultSet) (QueryResult, error) {
	cols := rs.GetColNames()
	out := QueryResult{
		Columns: cols,
		Records: make([]map[string]any, 0, rs.GetRowSize()),
	}
	for i := 0; i < rs.GetRowSize(); i++ {
		rec, err := rs.GetRowValuesByIndex(i)
		if err != nil {
			return QueryResult{}, err
		}
		row := make(map[string]any, len(cols))
		for j, col := range cols {
			val, err := rec.GetValueByIndex(j)
			if err != nil {
				return QueryResult{}, err
			}
			row[col] = nebulaValue(val)
		}
		out.Records = append(out.Records, row)
	}
	return out, nil
}

func nebulaValue(v *nebula.ValueWrapper) any {
	switch {
	case v == nil || v.IsNull():
		return nil
	case v.IsBool():
		b, _ := v.AsBool()
		return b
	case v.IsInt():
		n, _ := v.AsInt()
		return n
	case v.IsFloat():
		f, _ := v.AsFloat()
		return f
	case v.IsString():
		s, _ := v.AsString()
		return s
	case v.IsList():
		list, _ := v.AsList()
		out := make([]any, len(list))
		for i := range list {
			out[i] = nebulaValue(&list[i])
		}
		return out
	default:
		return v.String()
	}
}

// nebulaLogger routes the client library's log lines into slog.
type nebulaLogger struct {
	l *slog.Logger
}

func (n nebulaLogger) Info(msg string)  { n.l.Debug(msg, "component", "nebula-go") }
func (n nebulaLogger) Warn(msg string)  { n.l.Warn(msg, "component", "nebula-go") }
func (n nebulaLogger) Error(msg string) { n.l.Error(msg, "component", "nebula-go") }

// Fatal is logged at error level; the process is not terminated.
func (n nebulaLogger) Fatal(msg string) { n.l.Error(msg, "component", "nebula-go", "fatal", true) }
