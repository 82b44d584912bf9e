// Package pipeline composes the formalization core into one call.
//
// A Pipeline takes a raw IR document through three stages:
//
//	ir_validation        normalize and validate the document
//	compile              turn the typed IR into workflow steps
//	workflow_validation  check the compiled steps against the IR
//
// Each run is stamped with a UUIDv7 compilation id and produces exactly one
// metrics.CompilationRecord, whether it succeeds or stops at a stage. The
// stage a failed run stopped at tells the caller who is at fault: an
// ir_validation failure means the upstream model produced a bad IR, while a
// compile or workflow_validation failure points at the compiler itself.
package pipeline
