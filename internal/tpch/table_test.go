package tpch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"region", "nation", "supplier", "customer", "part", "partsupp", "orders", "lineitem"},
		LoadOrder)

	names := make([]string, 0, len(LoadOrder))
	for _, tbl := range Tables() {
		names = append(names, tbl.Name)
	}
	assert.Equal(t, LoadOrder, names)
}

func TestTables_ColumnCounts(t *testing.T) {
	tests := []struct {
		table   string
		columns int
	}{
		{Region, 3},
		{Nation, 4},
		{Supplier, 7},
		{Customer, 8},
		{Part, 9},
		{PartSupp, 5},
		{Orders, 9},
		{LineItem, 16},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			tbl, err := Lookup(tt.table)
			require.NoError(t, err)
			assert.Len(t, tbl.Columns, tt.columns)
			for _, k := range tbl.Key {
				col, ok := tbl.Column(k)
				require.True(t, ok, "key column %s", k)
				assert.Equal(t, TypeInt, col.Type)
			}
			for _, idx := range tbl.Indexed {
				assert.GreaterOrEqual(t, tbl.ColumnIndex(idx), 0, "indexed column %s", idx)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	tbl, err := Lookup("LineItem")
	require.NoError(t, err)
	assert.Equal(t, LineItem, tbl.Name)
	assert.Equal(t, "lineitem.tbl", tbl.FileName())
	assert.True(t, tbl.HasCompositeKey())

	_, err = Lookup("warehouse")
	assert.Error(t, err)

	assert.Panics(t, func() { MustLookup("warehouse") })
}

func TestRelationships_Definitions(t *testing.T) {
	rels := Relationships()
	require.Len(t, rels, 9)

	seen := make(map[string]bool)
	for _, r := range rels {
		assert.False(t, seen[r.Name], "duplicate relationship name %s", r.Name)
		seen[r.Name] = true

		owner := r.OwnerTable()
		require.NotNil(t, owner, r.Name)
		assert.GreaterOrEqual(t, owner.ColumnIndex(r.ForeignKey), 0, r.Name)
		for _, p := range r.Properties {
			assert.GreaterOrEqual(t, owner.ColumnIndex(p), 0, "%s property %s", r.Name, p)
		}
		assert.True(t, r.Table == r.Source || r.Table == r.Target, r.Name)
		assert.NotNil(t, r.SourceTable())
		assert.NotNil(t, r.TargetTable())
	}
}

func TestRelationships_Direction(t *testing.T) {
	tests := []struct {
		name   string
		source string
		target string
	}{
		{"nation_region", Nation, Region},
		{"supplier_nation", Supplier, Nation},
		{"customer_nation", Customer, Nation},
		{"customer_orders", Customer, Orders},
		{"order_lineitems", Orders, LineItem},
		{"lineitem_part", LineItem, Part},
		{"lineitem_supplier", LineItem, Supplier},
		{"partsupp_part", PartSupp, Part},
		{"partsupp_supplier", PartSupp, Supplier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := LookupRelationship(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.source, r.Source)
			assert.Equal(t, tt.target, r.Target)
		})
	}

	_, err := LookupRelationship("region_nation")
	assert.Error(t, err)
}

// Every edge must be produced no earlier than both of its endpoint tables.
func TestRelationships_RespectLoadOrder(t *testing.T) {
	position := make(map[string]int, len(LoadOrder))
	for i, name := range LoadOrder {
		position[name] = i
	}

	for _, r := range Relationships() {
		owner := position[r.Table]
		assert.LessOrEqual(t, position[r.Source], owner, r.String())
		assert.LessOrEqual(t, position[r.Target], owner, r.String())
	}
}
