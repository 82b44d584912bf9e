// Package checker verifies compiled workflows before they are handed to a
// runtime.
//
// Check runs four independent passes over a step list:
//
//  1. variable continuity against an explicit scope stack
//  2. type compatibility of scatter_gather inputs
//  3. completeness of compiled operations against the IR's declarations
//  4. dead code, reported as warnings only
//
// A failed check points at a compiler defect, not at the user's input: the
// IR that produced the steps has already passed validation.
package checker
