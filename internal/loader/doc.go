// Package loader moves mapped TPC-H records into a graph.Adapter.
//
// LoadBatches is the single chunked bulk-write loop used for every vertex and edge
// kind. Driver sequences it over the eight tables in tpch.LoadOrder: for each table it
// loads the vertices, then every relationship the table owns, before moving on.
//
// Failure policy: a rejected batch is logged and recorded in the report and loading
// continues with the next batch. Nothing is retried or rolled back. Only a connection
// error, a lifecycle precondition failure or context cancellation stops a run.
package loader
