package tpch

import "fmt"

// Relationship describes one foreign key of the relational schema as a directed edge kind.
//
// Table is the relation whose rows carry the foreign key and therefore produce the edge.
// This is usually Source, but not always: customer_orders points from the customer to
// the order and is produced by orders rows, which carry custkey.
type Relationship struct {
	// Name is unique across relationships and names the edge collection / edge type.
	Name string

	// Label is the Cypher relationship type. Labels may be shared by relationships
	// with different endpoint kinds (OF_PART is used by lineitem and partsupp).
	Label string

	// Table is the owning table, whose rows produce this edge.
	Table string

	// ForeignKey is the column of Table that holds the key of the other endpoint.
	ForeignKey string

	// Source and Target are the endpoint tables. Direction is fixed.
	Source string
	Target string

	// Properties lists the columns of Table copied onto the edge.
	Properties []string
}

var relationships = []*Relationship{
	{
		Name: "nation_region", Label: "BELONGS_TO",
		Table: Nation, ForeignKey: "regionkey",
		Source: Nation, Target: Region,
		Properties: []string{"regionkey"},
	},
	{
		Name: "supplier_nation", Label: "LOCATED_IN",
		Table: Supplier, ForeignKey: "nationkey",
		Source: Supplier, Target: Nation,
		Properties: []string{"nationkey"},
	},
	{
		Name: "customer_nation", Label: "LOCATED_IN",
		Table: Customer, ForeignKey: "nationkey",
		Source: Customer, Target: Nation,
		Properties: []string{"nationkey"},
	},
	{
		Name: "partsupp_part", Label: "OF_PART",
		Table: PartSupp, ForeignKey: "partkey",
		Source: PartSupp, Target: Part,
		Properties: []string{"partkey"},
	},
	{
		Name: "partsupp_supplier", Label: "SUPPLIED_BY",
		Table: PartSupp, ForeignKey: "suppkey",
		Source: PartSupp, Target: Supplier,
		Properties: []string{"suppkey", "availqty", "supplycost"},
	},
	{
		Name: "customer_orders", Label: "PLACED",
		Table: Orders, ForeignKey: "custkey",
		Source: Customer, Target: Orders,
		Properties: []string{"custkey"},
	},
	{
		Name: "order_lineitems", Label: "CONTAINS",
		Table: LineItem, ForeignKey: "orderkey",
		Source: Orders, Target: LineItem,
		Properties: []string{"orderkey"},
	},
	{
		Name: "lineitem_part", Label: "OF_PART",
		Table: LineItem, ForeignKey: "partkey",
		Source: LineItem, Target: Part,
		Properties: []string{"partkey"},
	},
	{
		Name: "lineitem_supplier", Label: "SUPPLIED_BY",
		Table: LineItem, ForeignKey: "suppkey",
		Source: LineItem, Target: Supplier,
		Properties: []string{"suppkey"},
	},
}

// Relationships returns every relationship, grouped by owning table in LoadOrder.
func Relationships() []*Relationship {
	out := make([]*Relationship, 0, len(relationships))
	for _, name := range LoadOrder {
		out = append(out, tables[name].Relationships()...)
	}
	return out
}

// LookupRelationship returns the relationship with the given name.
func LookupRelationship(name string) (*Relationship, error) {
	for _, r := range relationships {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("unknown relationship %q", name)
}

// SourceTable returns the table definition of the edge's tail.
func (r *Relationship) SourceTable() *Table { return tables[r.Source] }

// TargetTable returns the table definition of the edge's head.
func (r *Relationship) TargetTable() *Table { return tables[r.Target] }

// OwnerTable returns the table whose rows produce the edge.
func (r *Relationship) OwnerTable() *Table { return tables[r.Table] }

// Outgoing reports whether the owning table is the edge's tail.
func (r *Relationship) Outgoing() bool { return r.Table == r.Source }

// Endpoint returns the table at the far end from the owning table, i.e. the one
// whose key the foreign key column holds.
func (r *Relationship) Endpoint() string {
	if r.Outgoing() {
		return r.Target
	}
	return r.Source
}

func (r *Relationship) String() string {
	return fmt.Sprintf("%s(%s->%s)", r.Name, r.Source, r.Target)
}
