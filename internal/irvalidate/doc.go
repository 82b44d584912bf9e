// Package irvalidate normalizes and validates declarative IR documents.
//
// Validation runs on the normalized form of the input and never panics on
// malformed documents. It has two phases:
//
//  1. A structural check against an embedded CUE schema (schema.cue).
//  2. Custom rules: execution-token scan, variable syntax, AI output schemas,
//     conditional and loop completeness, delivery-specific fields.
//
// Errors block compilation and signal that the IR must be regenerated
// upstream. Warnings are informational only.
package irvalidate
