package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/obonovai/graphonauts/internal/graph"
	"github.com/obonovai/graphonauts/internal/observability"
	"github.com/obonovai/graphonauts/internal/tpch"
	"github.com/obonovai/graphonauts/internal/types"
)

const tracerName = "github.com/obonovai/graphonauts/internal/loader"

// DriverConfig configures a Driver.
type DriverConfig struct {
	// BatchSize is the number of records per bulk write. Zero selects DefaultBatchSize.
	BatchSize int

	// Tables restricts the run to a subset of tables. They are still loaded in
	// tpch.LoadOrder. Empty loads all eight.
	Tables []string

	Logger         *slog.Logger
	Metrics        *observability.Metrics
	TracerProvider trace.TracerProvider
}

// Driver loads the TPC-H tables into one adapter in dependency order.
type Driver struct {
	adapter graph.Adapter
	open    Opener
	config  DriverConfig
	tables  map[string]bool
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewDriver creates a driver reading table files through open.
func NewDriver(adapter graph.Adapter, open Opener, config DriverConfig) (*Driver, error) {
	if adapter == nil || open == nil {
		return nil, errors.New("loader: adapter and opener are required")
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}

	selected := make(map[string]bool, len(tpch.LoadOrder))
	if len(config.Tables) == 0 {
		for _, name := range tpch.LoadOrder {
			selected[name] = true
		}
	}
	for _, name := range config.Tables {
		t, err := tpch.Lookup(name)
		if err != nil {
			return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED, "loader: invalid table selection", err)
		}
		selected[t.Name] = true
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		adapter: adapter,
		open:    open,
		config:  config,
		tables:  selected,
		logger:  logger,
		tracer:  observability.Tracer(config.TracerProvider, tracerName),
	}, nil
}

// Run loads every selected table, strictly one after another. Each table's vertices
// are loaded before its edges, and a table starts only after every batch of the
// previous one was attempted.
//
// The adapter must be schema-provisioned. The returned report is never nil; the
// error is non-nil only for a fatal condition, in which case the report is marked
// Aborted and covers the tables attempted so far.
func (d *Driver) Run(ctx context.Context) (*LoadReport, error) {
	backend := string(d.adapter.Backend())
	report := &LoadReport{
		RunID:     uuid.NewString(),
		Backend:   backend,
		WriteMode: string(d.adapter.WriteMode()),
		BatchSize: d.config.BatchSize,
		StartedAt: time.Now(),
	}
	logger := d.logger.With("run_id", report.RunID, "backend", backend)

	if s := d.adapter.State(); s != graph.StateSchemaProvisioned && s != graph.StateLoaded {
		report.Aborted = true
		return report, types.NewError(graph.ErrCodeGraphPreconditionFailed,
			fmt.Sprintf("%s: load not allowed in state %s", backend, s))
	}

	ctx, span := d.tracer.Start(ctx, "load",
		trace.WithAttributes(
			observability.AttrBackend.String(backend),
			observability.AttrRunID.String(report.RunID),
		))

	logger.Info("load started", "batch_size", d.config.BatchSize, "write_mode", report.WriteMode)

	var runErr error
	for _, name := range tpch.LoadOrder {
		if !d.tables[name] {
			continue
		}
		tr, err := d.loadTable(ctx, logger, tpch.MustLookup(name))
		report.Tables = append(report.Tables, tr)
		if err != nil {
			runErr = err
			report.Aborted = true
			break
		}
	}
	report.Elapsed = time.Since(report.StartedAt)

	if runErr == nil {
		runErr = d.adapter.MarkLoaded()
	}

	span.SetAttributes(
		observability.AttrRows.Int(report.VerticesWritten()+report.EdgesWritten()),
		observability.AttrFailed.Int(report.FailedBatches()),
	)
	observability.EndSpan(span, runErr)

	if runErr != nil {
		logger.Error("load aborted", "error", runErr, "elapsed", report.Elapsed)
		return report, runErr
	}
	logger.Info("load finished",
		"vertices", report.VerticesWritten(),
		"edges", report.EdgesWritten(),
		"failed_batches", report.FailedBatches(),
		"table_errors", report.TableErrors(),
		"elapsed", report.Elapsed)
	return report, nil
}

// loadTable runs the vertex pass and one edge pass per owned relationship, each over
// a fresh read of the table file. Only fatal errors are returned.
func (d *Driver) loadTable(ctx context.Context, logger *slog.Logger, table *tpch.Table) (TableReport, error) {
	start := time.Now()
	tr := TableReport{Table: table.Name}
	logger = logger.With("table", table.Name)

	ctx, span := d.tracer.Start(ctx, "load "+table.Name,
		trace.WithAttributes(observability.AttrTable.String(table.Name)))

	opts := Options{
		Backend:   string(d.adapter.Backend()),
		BatchSize: d.config.BatchSize,
		Logger:    logger,
		Metrics:   d.config.Metrics,
		Tracer:    d.tracer,
	}

	vertices, err := d.pass(ctx, table, func(rows *tpch.RowReader) (BatchReport, error) {
		return LoadBatches(ctx, table.Name, NewVertexSource(rows),
			func(ctx context.Context, batch []tpch.VertexRecord) error {
				return d.adapter.WriteVertices(ctx, table, batch)
			}, opts)
	})
	tr.Vertices = vertices
	if vertices.Kind == "" {
		tr.Vertices.Kind = table.Name
	}
	if err != nil {
		if fatal(ctx, err) {
			return d.finishTable(span, tr, start, err)
		}
		logger.Error("vertex pass stopped", "error", err)
		tr.AddError(err)
		if types.HasCode(err, types.DATASET_OPEN_FAILED) {
			tr, _ = d.finishTable(span, tr, start, nil)
			return tr, nil
		}
	}

	for _, rel := range table.Relationships() {
		edges, err := d.pass(ctx, table, func(rows *tpch.RowReader) (BatchReport, error) {
			return LoadBatches(ctx, rel.Name, NewEdgeSource(rows, rel),
				func(ctx context.Context, batch []tpch.EdgeRecord) error {
					return d.adapter.WriteEdges(ctx, rel, batch)
				}, opts)
		})
		if edges.Kind == "" {
			edges.Kind = rel.Name
		}
		tr.Edges = append(tr.Edges, edges)
		if err != nil {
			if fatal(ctx, err) {
				return d.finishTable(span, tr, start, err)
			}
			logger.Error("edge pass stopped", "relationship", rel.Name, "error", err)
			tr.AddError(err)
		}
	}

	tr, _ = d.finishTable(span, tr, start, nil)
	logger.Info("table loaded",
		"vertices", tr.Vertices.Written,
		"edges", tr.EdgesWritten(),
		"failed_batches", tr.FailedBatches(),
		"elapsed", tr.Elapsed)
	return tr, nil
}

// pass opens the table file, runs load over it and closes it.
func (d *Driver) pass(ctx context.Context, table *tpch.Table, load func(*tpch.RowReader) (BatchReport, error)) (BatchReport, error) {
	f, err := d.open(table)
	if err != nil {
		return BatchReport{}, err
	}
	defer f.Close()
	return load(tpch.NewRowReader(table, f))
}

func (d *Driver) finishTable(span trace.Span, tr TableReport, start time.Time, err error) (TableReport, error) {
	tr.Elapsed = time.Since(start)
	d.config.Metrics.ObserveTable(string(d.adapter.Backend()), tr.Table, tr.Elapsed)

	span.SetAttributes(
		attribute.Int("graphonauts.vertices", tr.Vertices.Written),
		attribute.Int("graphonauts.edges", tr.EdgesWritten()),
		observability.AttrBatches.Int(tr.Vertices.Batches),
		observability.AttrFailed.Int(tr.FailedBatches()),
	)
	if err == nil && len(tr.Errors) > 0 {
		span.SetAttributes(attribute.StringSlice("graphonauts.errors", tr.Errors))
	}
	observability.EndSpan(span, err)
	return tr, err
}

// fatal reports whether err must stop the whole run.
func fatal(ctx context.Context, err error) bool {
	return graph.IsConnectionError(err) ||
		graph.IsPreconditionError(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		ctx.Err() != nil
}
