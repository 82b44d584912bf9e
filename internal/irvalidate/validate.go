package irvalidate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/flowc/internal/ir"
)

// knownTopLevel lists the fields of DeclarativeIR.
var knownTopLevel = []string{
	"ir_version", "goal", "data_sources", "filters", "ai_operations", "conditionals",
	"loops", "partitions", "grouping", "rendering", "delivery", "edge_cases",
	"clarifications_required",
}

// Result is the outcome of validating one IR document.
type Result struct {
	Valid      bool              `json:"valid"`
	Errors     []ValidationError `json:"errors"`
	Warnings   []ValidationError `json:"warnings"`
	Normalized map[string]any    `json:"normalized_ir"`
	IR         *ir.DeclarativeIR `json:"-"`
}

// Validate normalizes doc and checks it against the IR grammar and the
// custom rules. All problems are collected; validation does not stop at the
// first error. Malformed input yields errors, never a panic.
func Validate(doc map[string]any) Result {
	normalized := Normalize(doc)

	errs := checkStructure(normalized)
	errs = append(errs, checkRules(normalized)...)
	slices.SortStableFunc(errs, func(a, b ValidationError) int {
		return strings.Compare(a.Path, b.Path)
	})

	res := Result{
		Errors:     errs,
		Warnings:   collectWarnings(normalized),
		Normalized: normalized,
	}
	if res.Errors == nil {
		res.Errors = []ValidationError{}
	}

	if len(res.Errors) == 0 {
		decoded, err := ir.Decode(normalized)
		if err != nil {
			res.Errors = append(res.Errors, ValidationError{Code: CodeSchema, Message: err.Error()})
		} else {
			res.IR = decoded
		}
	}
	res.Valid = len(res.Errors) == 0
	return res
}

// collectWarnings reports non-blocking observations about a normalized document.
func collectWarnings(doc map[string]any) []ValidationError {
	warnings := []ValidationError{}

	for _, k := range ir.SortedKeys(doc) {
		if !slices.Contains(knownTopLevel, k) {
			warnings = append(warnings, ValidationError{
				Path:    k,
				Code:    WarnUnknownField,
				Message: fmt.Sprintf("unknown top-level field %q is ignored", k),
			})
		}
	}

	if v, ok := doc["ir_version"].(string); ok && v != ir.CurrentVersion {
		warnings = append(warnings, ValidationError{
			Path:    "ir_version",
			Code:    WarnVersionMismatch,
			Message: fmt.Sprintf("ir_version %q differs from current version %q", v, ir.CurrentVersion),
		})
	}

	if n := len(list(doc["clarifications_required"])); n > 0 {
		warnings = append(warnings, ValidationError{
			Path:    "clarifications_required",
			Code:    WarnClarificationsPending,
			Message: fmt.Sprintf("%d clarification(s) still pending", n),
		})
	}

	if len(list(doc["filters"])) > 0 && !hasEdgeCase(doc, "no_rows_after_filter") {
		warnings = append(warnings, ValidationError{
			Path:    "edge_cases",
			Code:    WarnMissingFilterEdgeCase,
			Message: "filters are declared without a no_rows_after_filter edge case",
		})
	}
	return warnings
}

func hasEdgeCase(doc map[string]any, condition string) bool {
	for _, ec := range objects(doc["edge_cases"]) {
		if str(ec, "condition") == condition {
			return true
		}
	}
	return false
}
