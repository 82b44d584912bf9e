// Package store archives compilation records in SQLite.
//
// An Archive is a metrics.Sink: every pipeline run can be written to it
// alongside the in-memory and Prometheus sinks. It also keeps the canonical
// IR and the compiled steps of a run so a later build can recompile the same
// input and compare.
//
// # Ordering
//
// Rows are ordered by seq, an autoincrement column, and then by id with
// binary collation. recorded_at is informational and never used for
// ordering.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability and speed
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: artifacts must reference a compilation
//   - a single connection: SQLite allows one writer at a time
package store
