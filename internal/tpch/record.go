package tpch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/obonovai/graphonauts/internal/types"
)

// VertexRef identifies a vertex across a whole namespace.
type VertexRef struct {
	Kind string
	Key  string
}

// ID returns the namespace-wide identity "kind/key".
func (v VertexRef) ID() string {
	return v.Kind + "/" + v.Key
}

func (v VertexRef) String() string { return v.ID() }

// VertexRecord is one mapped vertex.
type VertexRecord struct {
	Ref        VertexRef
	Properties map[string]any
}

// Key is shorthand for Ref.Key.
func (v VertexRecord) Key() string { return v.Ref.Key }

// EdgeRecord is one mapped edge.
type EdgeRecord struct {
	Relationship string
	From         VertexRef
	To           VertexRef
	Properties   map[string]any
}

// Key returns a deterministic edge key unique within its relationship.
// Every relationship is functional from its owning table, so the endpoint pair is unique.
func (e EdgeRecord) Key() string {
	return e.From.Key + "-" + e.To.Key
}

// Mapped is the result of mapping one relational row.
type Mapped struct {
	Vertex VertexRecord
	Edges  []EdgeRecord
}

// MapRow maps one row of table into exactly one vertex and one edge per relationship
// the table owns. fields must hold at least len(table.Columns) values in declared order;
// extra trailing values are ignored. MapRow has no side effects.
func MapRow(table *Table, fields []string) (Mapped, error) {
	if len(fields) < len(table.Columns) {
		return Mapped{}, types.NewError(types.DATASET_ROW_INVALID,
			fmt.Sprintf("%s: expected %d fields, got %d", table.Name, len(table.Columns), len(fields)))
	}

	props := make(map[string]any, len(table.Columns))
	for i, col := range table.Columns {
		v, err := ParseValue(col.Type, fields[i])
		if err != nil {
			return Mapped{}, types.WrapError(types.DATASET_ROW_INVALID,
				fmt.Sprintf("%s.%s", table.Name, col.Name), err)
		}
		props[col.Name] = v
	}

	key, err := VertexKey(table, fields)
	if err != nil {
		return Mapped{}, err
	}
	self := VertexRef{Kind: table.Name, Key: key}

	owned := table.Relationships()
	edges := make([]EdgeRecord, 0, len(owned))
	for _, rel := range owned {
		other := VertexRef{Kind: rel.Endpoint(), Key: fmt.Sprint(props[rel.ForeignKey])}

		edge := EdgeRecord{
			Relationship: rel.Name,
			From:         self,
			To:           other,
			Properties:   make(map[string]any, len(rel.Properties)),
		}
		if !rel.Outgoing() {
			edge.From, edge.To = other, self
		}
		for _, p := range rel.Properties {
			edge.Properties[p] = props[p]
		}
		edges = append(edges, edge)
	}

	return Mapped{
		Vertex: VertexRecord{Ref: self, Properties: props},
		Edges:  edges,
	}, nil
}

// VertexKey derives the vertex key of a row. Single-column keys are the column value,
// composite keys join the parts with KeySeparator. Key parts must be integers.
func VertexKey(table *Table, fields []string) (string, error) {
	parts := make([]string, 0, len(table.Key))
	for _, name := range table.Key {
		i := table.ColumnIndex(name)
		if i < 0 || i >= len(fields) {
			return "", types.NewError(types.DATASET_ROW_INVALID,
				fmt.Sprintf("%s: key column %q missing", table.Name, name))
		}
		n, err := strconv.ParseInt(strings.TrimSpace(fields[i]), 10, 64)
		if err != nil {
			return "", types.WrapError(types.DATASET_ROW_INVALID,
				fmt.Sprintf("%s: key column %q is not an integer", table.Name, name), err)
		}
		parts = append(parts, strconv.FormatInt(n, 10))
	}
	return strings.Join(parts, KeySeparator), nil
}

// ParseValue converts a raw field to the Go value for the column type.
func ParseValue(t ColumnType, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch t {
	case TypeInt:
		return strconv.ParseInt(raw, 10, 64)
	case TypeFloat:
		return strconv.ParseFloat(raw, 64)
	case TypeString, TypeDate:
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported column type %q", t)
	}
}
