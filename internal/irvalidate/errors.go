package irvalidate

import "fmt"

// Error codes reported by Validate.
const (
	CodeSchema                = "SCHEMA"
	CodeForbiddenToken        = "FORBIDDEN_TOKEN"
	CodeMissingRequiredField  = "MISSING_REQUIRED_FIELD"
	CodeInvalidVariableSyntax = "INVALID_VARIABLE_SYNTAX"
)

// Warning codes. Warnings never make a document invalid.
const (
	WarnUnknownField          = "UNKNOWN_FIELD"
	WarnVersionMismatch       = "VERSION_MISMATCH"
	WarnClarificationsPending = "CLARIFICATIONS_PENDING"
	WarnMissingFilterEdgeCase = "MISSING_FILTER_EDGE_CASE"
)

// ValidationError is a path-qualified problem found in an IR document.
type ValidationError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
}
