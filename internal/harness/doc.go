// Package harness runs YAML compilation scenarios against the pipeline.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: sales_rep_batch
//	description: "Email each sales rep their opportunities"
//	ir_file: ../ir/sales_rep.yaml    # or an inline ir: mapping
//	compilation_id: cmp-sales-rep    # optional fixed id
//	expect:
//	  success: true
//	  stage: done
//	assertions:
//	  - type: contains_step
//	    step_type: scatter_gather
//	  - type: step_type
//	    index: -1
//	    step_type: action
//
// # Assertion Types
//
//   - step_count: exact (count) or minimum (min) number of top-level steps
//   - step_type: type of the top-level step at index (negative counts from the end)
//   - step_order: top-level step types appear in this order
//   - contains_step: a step of step_type (and operation, if given) exists at any depth
//   - warning: a compiler or checker warning with code exists
//   - error: a validation or checker error with code exists
//   - feature: the compiler reported feature
//
// # Deterministic Testing
//
// Every scenario runs with a fixed compilation id and a stepping clock, so
// the same scenario always produces byte-identical snapshots. Snapshot
// renders an outcome as canonical JSON for golden comparison.
package harness
