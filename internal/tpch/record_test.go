package tpch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obonovai/graphonauts/internal/types"
)

func TestMapRow_Region(t *testing.T) {
	m, err := MapRow(MustLookup(Region), strings.Split("4|MIDDLE EAST|uickly special accounts|", "|"))
	require.NoError(t, err)

	assert.Equal(t, VertexRef{Kind: Region, Key: "4"}, m.Vertex.Ref)
	assert.Equal(t, "region/4", m.Vertex.Ref.ID())
	assert.Equal(t, map[string]any{
		"regionkey": int64(4),
		"name":      "MIDDLE EAST",
		"comment":   "uickly special accounts",
	}, m.Vertex.Properties)
	assert.Empty(t, m.Edges)
}

func TestMapRow_NationEdge(t *testing.T) {
	m, err := MapRow(MustLookup(Nation), []string{"7", "GERMANY", "3", "l platelets"})
	require.NoError(t, err)

	require.Len(t, m.Edges, 1)
	e := m.Edges[0]
	assert.Equal(t, "nation_region", e.Relationship)
	assert.Equal(t, VertexRef{Kind: Nation, Key: "7"}, e.From)
	assert.Equal(t, VertexRef{Kind: Region, Key: "3"}, e.To)
	assert.Equal(t, map[string]any{"regionkey": int64(3)}, e.Properties)
	assert.Equal(t, "7-3", e.Key())
}

func TestMapRow_CompositeKeys(t *testing.T) {
	tests := []struct {
		name   string
		table  string
		fields string
		key    string
	}{
		{
			name:   "lineitem orderkey 1 linenumber 3",
			table:  LineItem,
			fields: "1|1|1|3|8|13309.60|0.10|0.02|N|O|1996-01-29|1996-03-05|1996-01-31|TAKE BACK RETURN|REG AIR|riously|",
			key:    "1_3",
		},
		{
			name:   "partsupp",
			table:  PartSupp,
			fields: "2|7|3956|337.09|after the fluffily|",
			key:    "2_7",
		},
		{
			name:   "leading zeros are normalised",
			table:  PartSupp,
			fields: "02|007|3956|337.09|x|",
			key:    "2_7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := MapRow(MustLookup(tt.table), strings.Split(tt.fields, "|"))
			require.NoError(t, err)
			assert.Equal(t, tt.key, m.Vertex.Key())
		})
	}
}

// (1, 23) and (12, 3) concatenate to the same digits; the separator keeps them apart.
func TestVertexKey_CollisionFree(t *testing.T) {
	tbl := MustLookup(PartSupp)
	a, err := VertexKey(tbl, []string{"1", "23", "0", "0", ""})
	require.NoError(t, err)
	b, err := VertexKey(tbl, []string{"12", "3", "0", "0", ""})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestMapRow_IncomingEdges(t *testing.T) {
	order, err := MapRow(MustLookup(Orders),
		strings.Split("1|370|O|172799.49|1996-01-02|5-LOW|Clerk#000000951|0|nstructions sleep|", "|"))
	require.NoError(t, err)
	require.Len(t, order.Edges, 1)
	assert.Equal(t, "customer_orders", order.Edges[0].Relationship)
	assert.Equal(t, VertexRef{Kind: Customer, Key: "370"}, order.Edges[0].From)
	assert.Equal(t, VertexRef{Kind: Orders, Key: "1"}, order.Edges[0].To)
	assert.Equal(t, "1996-01-02", order.Vertex.Properties["orderdate"])

	line, err := MapRow(MustLookup(LineItem),
		strings.Split("1|155|7|3|8|13309.60|0.10|0.02|N|O|1996-01-29|1996-03-05|1996-01-31|TAKE BACK RETURN|REG AIR|riously|", "|"))
	require.NoError(t, err)

	byName := make(map[string]EdgeRecord)
	for _, e := range line.Edges {
		byName[e.Relationship] = e
	}
	require.Len(t, byName, 3)
	assert.Equal(t, VertexRef{Kind: Orders, Key: "1"}, byName["order_lineitems"].From)
	assert.Equal(t, VertexRef{Kind: LineItem, Key: "1_3"}, byName["order_lineitems"].To)
	assert.Equal(t, VertexRef{Kind: Part, Key: "155"}, byName["lineitem_part"].To)
	assert.Equal(t, VertexRef{Kind: Supplier, Key: "7"}, byName["lineitem_supplier"].To)
}

func TestMapRow_PartSuppCarriesSupplyProperties(t *testing.T) {
	m, err := MapRow(MustLookup(PartSupp), strings.Split("1|2|8076|993.49|ven ideas|", "|"))
	require.NoError(t, err)

	for _, e := range m.Edges {
		if e.Relationship == "partsupp_supplier" {
			assert.Equal(t, int64(8076), e.Properties["availqty"])
			assert.InDelta(t, 993.49, e.Properties["supplycost"], 1e-9)
			return
		}
	}
	t.Fatal("partsupp_supplier edge not produced")
}

func TestMapRow_TrailingColumnsIgnored(t *testing.T) {
	m, err := MapRow(MustLookup(Region), []string{"0", "AFRICA", "c", "extra", "more", ""})
	require.NoError(t, err)
	assert.Len(t, m.Vertex.Properties, 3)
}

func TestMapRow_Deterministic(t *testing.T) {
	fields := strings.Split("1|1|2|1|17|21168.23|0.04|0.02|N|O|1996-03-13|1996-02-12|1996-03-22|DELIVER IN PERSON|TRUCK|egular courts|", "|")
	a, err := MapRow(MustLookup(LineItem), fields)
	require.NoError(t, err)
	b, err := MapRow(MustLookup(LineItem), fields)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMapRow_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		table  string
		fields []string
	}{
		{"too few fields", Nation, []string{"1", "ARGENTINA"}},
		{"non-numeric key", Region, []string{"x", "AFRICA", "c"}},
		{"non-numeric int column", Nation, []string{"1", "ARGENTINA", "one", "c"}},
		{"non-numeric float column", Supplier, []string{"1", "S", "A", "17", "27-918", "lots", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MapRow(MustLookup(tt.table), tt.fields)
			require.Error(t, err)
			assert.True(t, types.HasCode(err, types.DATASET_ROW_INVALID))
		})
	}
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(TypeFloat, " 5755.94 ")
	require.NoError(t, err)
	assert.InDelta(t, 5755.94, v, 1e-9)

	v, err = ParseValue(TypeString, "  Supplier#000000001 ")
	require.NoError(t, err)
	assert.Equal(t, "Supplier#000000001", v)

	_, err = ParseValue(ColumnType("BLOB"), "x")
	assert.Error(t, err)
}
