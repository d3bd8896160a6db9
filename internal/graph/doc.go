// Package graph defines the backend adapter contract and its implementations.
//
// An Adapter owns one session against one graph database and moves through a fixed
// lifecycle:
//
//	Unconnected -> Connected -> SchemaProvisioned -> Loaded -> Cleared
//	                                   ^                          |
//	                                   +--------------------------+
//
// Calling an operation out of order fails with a GRAPH_PRECONDITION_FAILED error
// instead of reaching the network.
//
// # Backends
//
//   - ArangoDB (AQL over HTTP): ArangoAdapter. Insert-many writes; a duplicate key
//     fails the whole batch.
//   - Neo4j and Memgraph (Cypher over Bolt): CypherAdapter. UNWIND ... MERGE writes,
//     idempotent.
//   - NebulaGraph (nGQL over Thrift): NebulaAdapter. INSERT writes, which overwrite
//     existing vertices and edges, idempotent.
//
// # Schema propagation
//
// Backends with a distributed metadata layer apply DDL asynchronously. Each adapter
// runs its DDL through a Propagation step which polls a convergence check where the
// backend exposes one and falls back to a fixed delay where it does not.
//
// # Optional capabilities
//
// Adapters may also implement Counter (per kind vertex and edge counts) and
// HealthChecker. All adapters in this package implement both.
package graph
