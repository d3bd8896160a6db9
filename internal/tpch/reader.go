package tpch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/obonovai/graphonauts/internal/types"
)

// FieldDelimiter separates fields in dbgen output.
const FieldDelimiter = '|'

// RowReader reads pipe-delimited rows of one table. dbgen terminates every line
// with a delimiter, so each record carries one empty trailing field; it is ignored
// along with any other extra columns.
type RowReader struct {
	table *Table
	csv   *csv.Reader
	line  int
}

// NewRowReader returns a reader of table rows from r.
func NewRowReader(table *Table, r io.Reader) *RowReader {
	cr := csv.NewReader(r)
	cr.Comma = FieldDelimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return &RowReader{table: table, csv: cr}
}

// Line returns the 1-based line number of the last row returned by Next.
func (rr *RowReader) Line() int { return rr.line }

// Next returns the fields of the next row, or io.EOF. The returned slice is reused
// by the following call.
func (rr *RowReader) Next() ([]string, error) {
	rec, err := rr.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, types.WrapError(types.DATASET_READ_FAILED,
			fmt.Sprintf("%s: read line %d", rr.table.FileName(), rr.line+1), err)
	}
	rr.line++
	if len(rec) < len(rr.table.Columns) {
		return nil, types.NewError(types.DATASET_ROW_INVALID,
			fmt.Sprintf("%s:%d: expected %d fields, got %d",
				rr.table.FileName(), rr.line, len(rr.table.Columns), len(rec)))
	}
	return rec, nil
}

// NextMapped reads and maps the next row.
func (rr *RowReader) NextMapped() (Mapped, error) {
	rec, err := rr.Next()
	if err != nil {
		return Mapped{}, err
	}
	m, err := MapRow(rr.table, rec)
	if err != nil {
		return Mapped{}, fmt.Errorf("%s:%d: %w", rr.table.FileName(), rr.line, err)
	}
	return m, nil
}
