// Package workflow defines the compiled step graph handed to the runtime.
//
// Step is a sealed sum type over ActionStep, TransformStep, AIProcessingStep
// and ScatterGatherStep. Config values that may reference variables are
// Template strings; their references are parsed into typed ir.VarRef values
// rather than scanned out of serialized JSON.
//
// The JSON form of a step is
//
//	{"id": "...", "type": "...", "output_variable": "...", "config": {...}}
//
// with "actions" nested for scatter_gather. DecodeSteps reads it back.
package workflow
