package bench

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/obonovai/graphonauts/internal/graph"
	"github.com/obonovai/graphonauts/internal/observability"
)

const tracerName = "github.com/obonovai/graphonauts/internal/bench"

// maxErrorLen bounds backend error text kept in results.
const maxErrorLen = 512

// Result is the outcome of one catalogue query.
type Result struct {
	ID          string   `json:"id" yaml:"id"`
	Category    Category `json:"category" yaml:"category"`
	Description string   `json:"description" yaml:"description"`

	// Rows is the number of rows of the last execution.
	Rows int `json:"rows" yaml:"rows"`

	// Elapsed is the mean wall-clock time over all executions, Min and Max its bounds.
	Elapsed time.Duration   `json:"elapsed" yaml:"elapsed"`
	Min     time.Duration   `json:"min" yaml:"min"`
	Max     time.Duration   `json:"max" yaml:"max"`
	Timings []time.Duration `json:"timings,omitempty" yaml:"timings,omitempty"`

	Columns []string         `json:"columns,omitempty" yaml:"columns,omitempty"`
	Records []map[string]any `json:"records,omitempty" yaml:"records,omitempty"`
	Error   string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the query returned an error.
func (r Result) Failed() bool { return r.Error != "" }

// Report is the outcome of one catalogue run.
type Report struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	Backend   string        `json:"backend" yaml:"backend"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
	Results   []Result      `json:"results" yaml:"results"`
	Aborted   bool          `json:"aborted" yaml:"aborted"`
}

// Failed counts failed queries.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Failed() {
			n++
		}
	}
	return n
}

// Result returns the result of the query with id.
func (r *Report) Result(id string) (Result, bool) {
	for _, res := range r.Results {
		if res.ID == id {
			return res, true
		}
	}
	return Result{}, false
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Repetitions is how many times each query is executed. Zero means once.
	Repetitions int

	// KeepRecords keeps the returned rows of queries not marked CountOnly.
	KeepRecords bool

	Logger         *slog.Logger
	Metrics        *observability.Metrics
	TracerProvider trace.TracerProvider
}

// Runner executes query catalogues against one adapter.
type Runner struct {
	adapter graph.Adapter
	config  RunnerConfig
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewRunner creates a runner for adapter.
func NewRunner(adapter graph.Adapter, config RunnerConfig) *Runner {
	if config.Repetitions <= 0 {
		config.Repetitions = 1
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		adapter: adapter,
		config:  config,
		logger:  logger,
		tracer:  observability.Tracer(config.TracerProvider, tracerName),
	}
}

// RunCatalogue executes queries in order, one at a time. A failing query is recorded
// in its result and the run continues with the next one. A connection or lifecycle
// error, or context cancellation, stops the run; the report then covers the queries
// executed so far and is marked Aborted.
func (r *Runner) RunCatalogue(ctx context.Context, queries []Query) (*Report, error) {
	backend := string(r.adapter.Backend())
	report := &Report{
		RunID:     uuid.NewString(),
		Backend:   backend,
		StartedAt: time.Now(),
		Results:   make([]Result, 0, len(queries)),
	}
	logger := r.logger.With("run_id", report.RunID, "backend", backend)

	ctx, span := r.tracer.Start(ctx, "catalogue",
		trace.WithAttributes(
			observability.AttrBackend.String(backend),
			observability.AttrRunID.String(report.RunID),
		))

	var runErr error
	for _, q := range queries {
		res, err := r.run(ctx, logger, q)
		report.Results = append(report.Results, res)
		if err != nil {
			runErr = err
			report.Aborted = true
			break
		}
	}
	report.Elapsed = time.Since(report.StartedAt)

	span.SetAttributes(observability.AttrFailed.Int(report.Failed()))
	observability.EndSpan(span, runErr)

	if runErr != nil {
		logger.Error("catalogue aborted", "error", runErr, "completed", len(report.Results))
		return report, runErr
	}
	logger.Info("catalogue finished",
		"queries", len(report.Results),
		"failed", report.Failed(),
		"elapsed", report.Elapsed)
	return report, nil
}

// run executes one query config.Repetitions times. Only fatal errors are returned.
func (r *Runner) run(ctx context.Context, logger *slog.Logger, q Query) (Result, error) {
	res := Result{ID: q.ID, Category: q.Category, Description: q.Description}

	ctx, span := r.tracer.Start(ctx, "query "+q.ID,
		trace.WithAttributes(
			observability.AttrQueryID.String(q.ID),
			observability.AttrCategory.String(string(q.Category)),
		))

	var (
		out graph.QueryResult
		err error
	)
	for i := 0; i < r.config.Repetitions; i++ {
		out, err = r.adapter.Query(ctx, q.Text, q.Params)
		r.config.Metrics.ObserveQuery(string(r.adapter.Backend()), q.ID, string(q.Category), out.Len(), out.Elapsed, err)
		if err != nil {
			break
		}
		res.Timings = append(res.Timings, out.Elapsed)
	}

	if err != nil {
		res.Error = graph.TruncateError(err, maxErrorLen)
		observability.EndSpan(span, err)
		if fatal(ctx, err) {
			return res, err
		}
		logger.Error("query failed",
			"query_id", q.ID,
			"category", q.Category,
			"query", q.Text,
			"error", res.Error)
		return res, nil
	}

	res.Rows = out.Len()
	res.Min, res.Max, res.Elapsed = summarize(res.Timings)
	if len(res.Timings) == 1 {
		res.Timings = nil
	}
	if r.config.KeepRecords && !q.CountOnly {
		res.Columns = out.Columns
		res.Records = out.Records
	}

	span.SetAttributes(observability.AttrRows.Int(res.Rows))
	observability.EndSpan(span, nil)
	logger.Info("query finished",
		"query_id", q.ID,
		"category", q.Category,
		"rows", res.Rows,
		"elapsed", res.Elapsed)
	return res, nil
}

// summarize returns the minimum, maximum and mean of timings.
func summarize(timings []time.Duration) (lo, hi, mean time.Duration) {
	if len(timings) == 0 {
		return 0, 0, 0
	}
	sorted := append([]time.Duration(nil), timings...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, t := range sorted {
		total += t
	}
	return sorted[0], sorted[len(sorted)-1], total / time.Duration(len(sorted))
}

func fatal(ctx context.Context, err error) bool {
	return graph.IsConnectionError(err) ||
		graph.IsPreconditionError(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		ctx.Err() != nil
}
