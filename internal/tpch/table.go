package tpch

import (
	"fmt"
	"strings"
)

// ColumnType is the value type of a TPC-H column.
type ColumnType string

const (
	TypeInt    ColumnType = "INT"
	TypeFloat  ColumnType = "DOUBLE"
	TypeString ColumnType = "STRING"
	// TypeDate values are kept as ISO-8601 strings ("1995-03-15") so that range
	// predicates compare lexicographically on every backend.
	TypeDate ColumnType = "DATE"
)

// Column is a single declared column of a table.
type Column struct {
	Name string
	Type ColumnType
}

// Table describes one TPC-H relation and the vertex kind it maps to.
type Table struct {
	// Name is the relation name and the file stem of its .tbl file.
	Name string

	// Label is the vertex label used by labelled backends (Cypher labels, nGQL tags).
	Label string

	// Columns lists the declared columns in file order.
	Columns []Column

	// Key lists the primary key column(s). Composite keys are joined with KeySeparator.
	Key []string

	// Indexed lists secondary columns worth indexing for the query catalogue.
	Indexed []string
}

// KeySeparator joins the parts of a composite vertex key.
const KeySeparator = "_"

// Table names.
const (
	Region   = "region"
	Nation   = "nation"
	Supplier = "supplier"
	Customer = "customer"
	Part     = "part"
	PartSupp = "partsupp"
	Orders   = "orders"
	LineItem = "lineitem"
)

var tables = map[string]*Table{
	Region: {
		Name:  Region,
		Label: "Region",
		Columns: []Column{
			{"regionkey", TypeInt},
			{"name", TypeString},
			{"comment", TypeString},
		},
		Key: []string{"regionkey"},
	},
	Nation: {
		Name:  Nation,
		Label: "Nation",
		Columns: []Column{
			{"nationkey", TypeInt},
			{"name", TypeString},
			{"regionkey", TypeInt},
			{"comment", TypeString},
		},
		Key:     []string{"nationkey"},
		Indexed: []string{"regionkey"},
	},
	Supplier: {
		Name:  Supplier,
		Label: "Supplier",
		Columns: []Column{
			{"suppkey", TypeInt},
			{"name", TypeString},
			{"address", TypeString},
			{"nationkey", TypeInt},
			{"phone", TypeString},
			{"acctbal", TypeFloat},
			{"comment", TypeString},
		},
		Key:     []string{"suppkey"},
		Indexed: []string{"nationkey"},
	},
	Customer: {
		Name:  Customer,
		Label: "Customer",
		Columns: []Column{
			{"custkey", TypeInt},
			{"name", TypeString},
			{"address", TypeString},
			{"nationkey", TypeInt},
			{"phone", TypeString},
			{"acctbal", TypeFloat},
			{"mktsegment", TypeString},
			{"comment", TypeString},
		},
		Key:     []string{"custkey"},
		Indexed: []string{"nationkey"},
	},
	Part: {
		Name:  Part,
		Label: "Part",
		Columns: []Column{
			{"partkey", TypeInt},
			{"name", TypeString},
			{"mfgr", TypeString},
			{"brand", TypeString},
			{"type", TypeString},
			{"size", TypeInt},
			{"container", TypeString},
			{"retailprice", TypeFloat},
			{"comment", TypeString},
		},
		Key: []string{"partkey"},
	},
	PartSupp: {
		Name:  PartSupp,
		Label: "PartSupp",
		Columns: []Column{
			{"partkey", TypeInt},
			{"suppkey", TypeInt},
			{"availqty", TypeInt},
			{"supplycost", TypeFloat},
			{"comment", TypeString},
		},
		Key:     []string{"partkey", "suppkey"},
		Indexed: []string{"partkey", "suppkey"},
	},
	Orders: {
		Name:  Orders,
		Label: "Order",
		Columns: []Column{
			{"orderkey", TypeInt},
			{"custkey", TypeInt},
			{"orderstatus", TypeString},
			{"totalprice", TypeFloat},
			{"orderdate", TypeDate},
			{"orderpriority", TypeString},
			{"clerk", TypeString},
			{"shippriority", TypeInt},
			{"comment", TypeString},
		},
		Key:     []string{"orderkey"},
		Indexed: []string{"custkey"},
	},
	LineItem: {
		Name:  LineItem,
		Label: "LineItem",
		Columns: []Column{
			{"orderkey", TypeInt},
			{"partkey", TypeInt},
			{"suppkey", TypeInt},
			{"linenumber", TypeInt},
			{"quantity", TypeFloat},
			{"extendedprice", TypeFloat},
			{"discount", TypeFloat},
			{"tax", TypeFloat},
			{"returnflag", TypeString},
			{"linestatus", TypeString},
			{"shipdate", TypeDate},
			{"commitdate", TypeDate},
			{"receiptdate", TypeDate},
			{"shipinstruct", TypeString},
			{"shipmode", TypeString},
			{"comment", TypeString},
		},
		Key:     []string{"orderkey", "linenumber"},
		Indexed: []string{"orderkey", "partkey", "suppkey"},
	},
}

// LoadOrder is the only table order in which every edge finds both endpoints loaded.
var LoadOrder = []string{Region, Nation, Supplier, Customer, Part, PartSupp, Orders, LineItem}

// Lookup returns the table definition for name.
func Lookup(name string) (*Table, error) {
	t, ok := tables[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown TPC-H table %q", name)
	}
	return t, nil
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name string) *Table {
	t, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Tables returns all table definitions in LoadOrder.
func Tables() []*Table {
	out := make([]*Table, 0, len(LoadOrder))
	for _, name := range LoadOrder {
		out = append(out, tables[name])
	}
	return out
}

// FileName returns the dbgen output file name for the table.
func (t *Table) FileName() string {
	return t.Name + ".tbl"
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column definition.
func (t *Table) Column(name string) (Column, bool) {
	if i := t.ColumnIndex(name); i >= 0 {
		return t.Columns[i], true
	}
	return Column{}, false
}

// HasCompositeKey reports whether the vertex key is built from more than one column.
func (t *Table) HasCompositeKey() bool {
	return len(t.Key) > 1
}

// Relationships returns the relationships produced by this table's rows.
func (t *Table) Relationships() []*Relationship {
	var out []*Relationship
	for _, r := range relationships {
		if r.Table == t.Name {
			out = append(out, r)
		}
	}
	return out
}
