// Package bench runs the comparative query catalogue against a loaded graph.
//
// Each backend has its own rendition of the same ordered list of queries, written in
// its native language (Cypher, AQL or nGQL) and identified by a shared ID such as "A1"
// or "D2". The runner executes a catalogue sequentially, timing every query and
// recording row counts. A failing query is recorded and the run moves on; only a lost
// connection stops it.
package bench
