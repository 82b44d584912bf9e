package harness

import "github.com/roach88/flowc/internal/pipeline"

// Result is the outcome of running one scenario.
type Result struct {
	// Pass is true when the expect clause and every assertion hold.
	Pass bool `json:"pass"`

	// Errors holds one message per failed check. Empty if Pass is true.
	Errors []string `json:"errors"`

	// Outcome is the pipeline run the checks were made against.
	Outcome *pipeline.Outcome `json:"outcome"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
