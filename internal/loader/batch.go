package loader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/obonovai/graphonauts/internal/graph"
	"github.com/obonovai/graphonauts/internal/observability"
)

// DefaultBatchSize is the number of records per bulk write.
const DefaultBatchSize = 1000

// maxErrorLen bounds backend error text kept in reports and logs.
const maxErrorLen = 256

// Source yields records in order and returns io.EOF after the last one.
type Source[T any] interface {
	Next() (T, error)
}

// WriteFunc issues one bulk write. The batch slice is reused after the call returns.
type WriteFunc[T any] func(ctx context.Context, batch []T) error

// BatchFailure describes one rejected bulk write.
type BatchFailure struct {
	Kind  string `json:"kind" yaml:"kind"`
	Batch int    `json:"batch" yaml:"batch"`
	// FirstRow is the 0-based offset of the batch's first record within the kind.
	FirstRow int    `json:"first_row" yaml:"first_row"`
	Rows     int    `json:"rows" yaml:"rows"`
	Error    string `json:"error" yaml:"error"`
}

// BatchReport summarises the bulk writes of one vertex or edge kind.
type BatchReport struct {
	Kind      string         `json:"kind" yaml:"kind"`
	Attempted int            `json:"attempted" yaml:"attempted"`
	Written   int            `json:"written" yaml:"written"`
	Batches   int            `json:"batches" yaml:"batches"`
	Failures  []BatchFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Elapsed   time.Duration  `json:"elapsed" yaml:"elapsed"`
}

// Failed returns the number of rejected batches.
func (r BatchReport) Failed() int { return len(r.Failures) }

// Options carries what LoadBatches needs besides the records themselves.
type Options struct {
	Backend   string
	BatchSize int
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	// Tracer opens one span per kind; the global tracer is used when nil.
	Tracer trace.Tracer
}

func (o Options) batchSize() int {
	if o.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return o.BatchSize
}

// LoadBatches drains src into consecutive batches of opts.BatchSize records, preserving
// order, and issues one write per batch.
//
// A batch rejected with anything but a connection error is recorded in the report and
// the next batch is attempted. The returned error is non-nil only when loading this
// kind had to stop: a read error from src, a connection or precondition error from
// write, or context cancellation. The report is valid in every case.
func LoadBatches[T any](ctx context.Context, kind string, src Source[T], write WriteFunc[T], opts Options) (BatchReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := opts.batchSize()

	tracer := opts.Tracer
	if tracer == nil {
		tracer = observability.Tracer(nil, tracerName)
	}
	ctx, span := tracer.Start(ctx, "batches "+kind,
		trace.WithAttributes(observability.AttrKind.String(kind)))

	start := time.Now()
	report := BatchReport{Kind: kind}
	done := func(err error) (BatchReport, error) {
		report.Elapsed = time.Since(start)
		span.SetAttributes(
			observability.AttrBatches.Int(report.Batches),
			observability.AttrRows.Int(report.Written),
			observability.AttrFailed.Int(report.Failed()),
		)
		observability.EndSpan(span, err)
		return report, err
	}

	pending := make([]T, 0, size)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		batch := report.Batches
		report.Batches++
		report.Attempted += len(pending)

		began := time.Now()
		err := write(ctx, pending)
		opts.Metrics.ObserveBatch(opts.Backend, kind, len(pending), time.Since(began), err)

		switch {
		case err == nil:
			report.Written += len(pending)
		case graph.IsConnectionError(err) || graph.IsPreconditionError(err) || ctx.Err() != nil:
			return err
		default:
			failure := BatchFailure{
				Kind:     kind,
				Batch:    batch,
				FirstRow: report.Attempted - len(pending),
				Rows:     len(pending),
				Error:    graph.TruncateError(err, maxErrorLen),
			}
			report.Failures = append(report.Failures, failure)
			logger.Error("batch write failed",
				"kind", kind,
				"batch", batch,
				"first_row", failure.FirstRow,
				"rows", failure.Rows,
				"error", failure.Error)
		}

		pending = pending[:0]
		return nil
	}

	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Records read before the bad one are still written.
			if ferr := flush(); ferr != nil {
				return done(ferr)
			}
			return done(err)
		}

		pending = append(pending, rec)
		if len(pending) == size {
			if err := flush(); err != nil {
				return done(err)
			}
		}
	}

	return done(flush())
}
