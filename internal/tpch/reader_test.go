package tpch

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obonovai/graphonauts/internal/types"
)

func openTestdata(t *testing.T, table string) *RowReader {
	t.Helper()
	tbl := MustLookup(table)
	f, err := os.Open(filepath.Join("testdata", tbl.FileName()))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return NewRowReader(tbl, f)
}

func readAll(t *testing.T, rr *RowReader) []Mapped {
	t.Helper()
	var out []Mapped
	for {
		m, err := rr.NextMapped()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, m)
	}
}

func TestRowReader_Region(t *testing.T) {
	rows := readAll(t, openTestdata(t, Region))
	require.Len(t, rows, 5)

	keys := make([]string, 0, len(rows))
	for _, m := range rows {
		keys = append(keys, m.Vertex.Key())
	}
	assert.Equal(t, []string{"0", "1", "2", "3", "4"}, keys)
	assert.Equal(t, "MIDDLE EAST", rows[4].Vertex.Properties["name"])
}

func TestRowReader_NationEdges(t *testing.T) {
	rows := readAll(t, openTestdata(t, Nation))
	require.Len(t, rows, 25)

	regions := map[string]bool{"0": true, "1": true, "2": true, "3": true, "4": true}
	edges := 0
	for _, m := range rows {
		for _, e := range m.Edges {
			require.Equal(t, "nation_region", e.Relationship)
			assert.True(t, regions[e.To.Key], "dangling edge to %s", e.To)
			edges++
		}
	}
	assert.Equal(t, 25, edges)
}

func TestRowReader_CompositeKeysUnique(t *testing.T) {
	for _, table := range []string{PartSupp, LineItem} {
		t.Run(table, func(t *testing.T) {
			seen := make(map[string]bool)
			for _, m := range readAll(t, openTestdata(t, table)) {
				assert.False(t, seen[m.Vertex.Key()], "duplicate key %s", m.Vertex.Key())
				seen[m.Vertex.Key()] = true
			}
			assert.NotEmpty(t, seen)
		})
	}
}

func TestRowReader_TooFewFields(t *testing.T) {
	rr := NewRowReader(MustLookup(Nation), strings.NewReader("0|ALGERIA|0|c|\n1|ARGENTINA|\n"))

	_, err := rr.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, rr.Line())

	_, err = rr.Next()
	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.DATASET_ROW_INVALID))
	assert.Contains(t, err.Error(), "nation.tbl:2")
}

func TestRowReader_QuotesAreLiteral(t *testing.T) {
	rr := NewRowReader(MustLookup(Region), strings.NewReader("0|AFRICA|say \"hi\" now|\n"))
	m, err := rr.NextMapped()
	require.NoError(t, err)
	assert.Equal(t, `say "hi" now`, m.Vertex.Properties["comment"])

	_, err = rr.NextMapped()
	assert.ErrorIs(t, err, io.EOF)
}
