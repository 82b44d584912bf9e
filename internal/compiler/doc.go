// Package compiler turns a validated DeclarativeIR into a workflow step graph.
//
// Compilation is rule-based and deterministic. The resolvers each own one
// part of the IR:
//
//   - AIOperationResolver: ai_operations to ai_processing steps
//   - LoopResolver: loops, partitions and grouping to scatter_gather and
//     transform steps, including nested loop actions
//   - PluginResolver: delivery method to plugin key (supplied by the caller)
//
// Compiler.Compile drives them in a fixed order and numbers the resulting
// steps step1..stepN, with nested steps numbered stepK_1, stepK_2 and so on.
// Nothing here performs I/O or model calls; steps only describe work for an
// external runtime.
package compiler
