package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/obonovai/graphonauts/internal/tpch"
	"github.com/obonovai/graphonauts/internal/types"
)

// Opener opens the raw .tbl stream of a table.
type Opener func(table *tpch.Table) (io.ReadCloser, error)

// DirOpener opens <dir>/<table>.tbl.
func DirOpener(dir string) Opener {
	return func(table *tpch.Table) (io.ReadCloser, error) {
		path := filepath.Join(dir, table.FileName())
		f, err := os.Open(path)
		if err != nil {
			return nil, types.WrapError(types.DATASET_OPEN_FAILED, fmt.Sprintf("open %s", path), err)
		}
		return f, nil
	}
}

// VertexSource yields the vertex of every row.
type VertexSource struct {
	rows *tpch.RowReader
}

// NewVertexSource reads vertices of rows' table.
func NewVertexSource(rows *tpch.RowReader) *VertexSource {
	return &VertexSource{rows: rows}
}

func (s *VertexSource) Next() (tpch.VertexRecord, error) {
	m, err := s.rows.NextMapped()
	if err != nil {
		return tpch.VertexRecord{}, err
	}
	return m.Vertex, nil
}

// EdgeSource yields the edge of one relationship from every row of its owning table.
type EdgeSource struct {
	rows *tpch.RowReader
	rel  *tpch.Relationship
}

// NewEdgeSource reads rel's edges from rows, which must read rel's owning table.
func NewEdgeSource(rows *tpch.RowReader, rel *tpch.Relationship) *EdgeSource {
	return &EdgeSource{rows: rows, rel: rel}
}

func (s *EdgeSource) Next() (tpch.EdgeRecord, error) {
	for {
		m, err := s.rows.NextMapped()
		if err != nil {
			return tpch.EdgeRecord{}, err
		}
		for _, e := range m.Edges {
			if e.Relationship == s.rel.Name {
				return e, nil
			}
		}
	}
}

// SliceSource yields the elements of a slice.
type SliceSource[T any] struct {
	items []T
	pos   int
}

// NewSliceSource returns a Source over items.
func NewSliceSource[T any](items []T) *SliceSource[T] {
	return &SliceSource[T]{items: items}
}

func (s *SliceSource[T]) Next() (T, error) {
	if s.pos >= len(s.items) {
		var zero T
		return zero, io.EOF
	}
	s.pos++
	return s.items[s.pos-1], nil
}
