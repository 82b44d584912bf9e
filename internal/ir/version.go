package ir

// Version constants for the IR schema and compiler.
const (
	// CurrentVersion is the IR schema version written by normalization.
	CurrentVersion = "2.0"

	// CompilerVersion is the flowc compiler version.
	CompilerVersion = "0.3.0"
)
