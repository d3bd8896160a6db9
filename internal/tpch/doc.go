// Package tpch defines the TPC-H relations and the rules that turn their rows into
// property-graph records.
//
// Every table becomes a vertex kind. Every foreign key listed in Relationships becomes a
// directed edge kind. The definitions are static and shared by all backends; only the
// encoding of the resulting records differs per backend.
//
// # Keys
//
// Tables with a single-column primary key use that column, stringified, as the vertex key.
// partsupp and lineitem have no such column and use a composite key:
//
//	partsupp: "<partkey>_<suppkey>"
//	lineitem: "<orderkey>_<linenumber>"
//
// Both parts are integers, so the underscore separator can never appear inside a part
// and the composite key is collision free.
//
// # Load order
//
// LoadOrder lists the tables so that every relationship's endpoints are loaded no later
// than the table that produces it:
//
//	region, nation, supplier, customer, part, partsupp, orders, lineitem
package tpch
