package loader

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obonovai/graphonauts/internal/graph"
	"github.com/obonovai/graphonauts/internal/observability"
	"github.com/obonovai/graphonauts/internal/types"
)

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// recorder captures the sizes and contents of every write.
type recorder struct {
	sizes []int
	seen  []int
	fail  func(batch int) error
}

func (r *recorder) write(ctx context.Context, batch []int) error {
	n := len(r.sizes)
	r.sizes = append(r.sizes, len(batch))
	if r.fail != nil {
		if err := r.fail(n); err != nil {
			return err
		}
	}
	r.seen = append(r.seen, batch...)
	return nil
}

func TestLoadBatches_SplitsIntoFullBatchesAndRemainder(t *testing.T) {
	rec := &recorder{}
	report, err := LoadBatches(context.Background(), "customer", NewSliceSource(ints(6001)), rec.write, Options{})
	require.NoError(t, err)

	assert.Equal(t, []int{1000, 1000, 1000, 1000, 1000, 1000, 1}, rec.sizes)
	assert.Equal(t, ints(6001), rec.seen, "order must be preserved")
	assert.Equal(t, 7, report.Batches)
	assert.Equal(t, 6001, report.Attempted)
	assert.Equal(t, 6001, report.Written)
	assert.Zero(t, report.Failed())
	assert.Equal(t, "customer", report.Kind)
}

func TestLoadBatches_ExactMultipleHasNoEmptyBatch(t *testing.T) {
	rec := &recorder{}
	report, err := LoadBatches(context.Background(), "k", NewSliceSource(ints(30)), rec.write, Options{BatchSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 10, 10}, rec.sizes)
	assert.Equal(t, 3, report.Batches)
}

func TestLoadBatches_EmptySource(t *testing.T) {
	rec := &recorder{}
	report, err := LoadBatches(context.Background(), "k", NewSliceSource([]int{}), rec.write, Options{})
	require.NoError(t, err)
	assert.Empty(t, rec.sizes)
	assert.Zero(t, report.Batches)
	assert.Zero(t, report.Attempted)
}

func TestLoadBatches_FailedBatchIsRecordedAndLoadingContinues(t *testing.T) {
	rec := &recorder{fail: func(batch int) error {
		if batch == 1 {
			return types.NewError(graph.ErrCodeGraphBatchWriteFailed, "unique constraint violated "+strings.Repeat("x", 1000))
		}
		return nil
	}}

	report, err := LoadBatches(context.Background(), "orders", NewSliceSource(ints(25)), rec.write, Options{BatchSize: 10})
	require.NoError(t, err)

	assert.Equal(t, []int{10, 10, 5}, rec.sizes)
	assert.Equal(t, 25, report.Attempted)
	assert.Equal(t, 15, report.Written)
	require.Len(t, report.Failures, 1)

	f := report.Failures[0]
	assert.Equal(t, "orders", f.Kind)
	assert.Equal(t, 1, f.Batch)
	assert.Equal(t, 10, f.FirstRow)
	assert.Equal(t, 10, f.Rows)
	assert.Contains(t, f.Error, "unique constraint")
	assert.LessOrEqual(t, len(f.Error), maxErrorLen+3)
}

func TestLoadBatches_ConnectionErrorStops(t *testing.T) {
	connErr := types.NewError(graph.ErrCodeGraphConnectionFailed, "connection refused")
	rec := &recorder{fail: func(batch int) error {
		if batch == 0 {
			return connErr
		}
		return nil
	}}

	report, err := LoadBatches(context.Background(), "k", NewSliceSource(ints(25)), rec.write, Options{BatchSize: 10})
	require.Error(t, err)
	assert.True(t, graph.IsConnectionError(err))
	assert.Equal(t, []int{10}, rec.sizes)
	assert.Zero(t, report.Written)
	assert.Empty(t, report.Failures)
}

func TestLoadBatches_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{fail: func(batch int) error {
		cancel()
		return nil
	}}

	_, err := LoadBatches(ctx, "k", NewSliceSource(ints(25)), rec.write, Options{BatchSize: 10})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{10}, rec.sizes)
}

type failingSource struct {
	items []int
	pos   int
	err   error
}

func (s *failingSource) Next() (int, error) {
	if s.pos < len(s.items) {
		s.pos++
		return s.items[s.pos-1], nil
	}
	if s.err != nil {
		return 0, s.err
	}
	return 0, io.EOF
}

func TestLoadBatches_SourceErrorFlushesPendingRecords(t *testing.T) {
	readErr := types.NewError(types.DATASET_ROW_INVALID, "lineitem.tbl:4: expected 16 fields, got 3")
	rec := &recorder{}

	report, err := LoadBatches(context.Background(), "lineitem",
		&failingSource{items: ints(13), err: readErr}, rec.write, Options{BatchSize: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, readErr))
	assert.Equal(t, []int{10, 3}, rec.sizes)
	assert.Equal(t, 13, report.Written)
}

func TestLoadBatches_ObservesMetrics(t *testing.T) {
	m := observability.NewMetrics()
	rec := &recorder{fail: func(batch int) error {
		if batch == 0 {
			return errors.New("rejected")
		}
		return nil
	}}

	_, err := LoadBatches(context.Background(), "region", NewSliceSource(ints(15)), rec.write,
		Options{Backend: "neo4j", BatchSize: 10, Metrics: m})
	require.NoError(t, err)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == "graphonauts_load_batches_total" {
			found = true
			assert.Len(t, f.GetMetric(), 2, "one series per status")
		}
	}
	assert.True(t, found)
}
