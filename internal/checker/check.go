package checker

import (
	"log/slog"

	"github.com/roach88/flowc/internal/ir"
	"github.com/roach88/flowc/internal/workflow"
)

// Check validates steps compiled from doc. doc may be nil, in which case the
// completeness pass is skipped. All passes run; nothing fails fast.
func Check(steps []workflow.Step, doc *ir.DeclarativeIR) Result {
	return CheckWithLogger(steps, doc, nil)
}

// CheckWithLogger is Check with per-pass debug logging.
func CheckWithLogger(steps []workflow.Step, doc *ir.DeclarativeIR, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var errs, warns []Issue
	passes := []struct {
		name string
		run  func() ([]Issue, []Issue)
	}{
		{"continuity", func() ([]Issue, []Issue) { return checkContinuity(steps), nil }},
		{"types", func() ([]Issue, []Issue) { return checkTypes(steps), nil }},
		{"completeness", func() ([]Issue, []Issue) { return checkCompleteness(steps, doc) }},
		{"dead_code", func() ([]Issue, []Issue) { return nil, checkDeadCode(steps) }},
	}
	for _, p := range passes {
		e, w := p.run()
		logger.Debug("workflow check", "pass", p.name, "errors", len(e), "warnings", len(w))
		errs = append(errs, e...)
		warns = append(warns, w...)
	}

	if errs == nil {
		errs = []Issue{}
	}
	if warns == nil {
		warns = []Issue{}
	}
	return Result{Valid: len(errs) == 0, Errors: errs, Warnings: warns}
}
