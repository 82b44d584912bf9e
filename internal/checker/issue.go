package checker

import "fmt"

// Error codes.
const (
	CodeVariableUndefined = "VARIABLE_UNDEFINED"
	CodeTypeMismatch      = "TYPE_MISMATCH"
	CodeMissingOperation  = "MISSING_OPERATION"
	CodeOrphanedStep      = "ORPHANED_STEP"
)

// KindUnusedOutput marks an ORPHANED_STEP warning.
const KindUnusedOutput = "unused_output"

// Issue is one error or warning found in a workflow.
type Issue struct {
	Code    string `json:"code"`
	StepID  string `json:"step_id,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

func (i Issue) Error() string {
	if i.StepID == "" {
		return fmt.Sprintf("[%s] %s", i.Code, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Code, i.StepID, i.Message)
}

// Result is the outcome of Check. Valid is true iff Errors is empty.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}
