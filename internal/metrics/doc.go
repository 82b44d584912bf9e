// Package metrics records one CompilationRecord per compilation.
//
// Sinks are injected by the composition root; nothing here is global.
// RingBuffer keeps the most recent records in memory, PrometheusSink
// exports counters and histograms, and Multi fans a record out to several
// sinks. The SQLite archive in package store is also a Sink.
package metrics
