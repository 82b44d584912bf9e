package checker

import (
	"fmt"

	"github.com/roach88/flowc/internal/ir"
	"github.com/roach88/flowc/internal/workflow"
)

// checkCompleteness compares compiled step counts with what the IR declares.
// No AI steps at all for an IR that declares AI operations is an error; any
// other shortfall is a warning.
func checkCompleteness(steps []workflow.Step, doc *ir.DeclarativeIR) (errs, warns []Issue) {
	if doc == nil {
		return nil, nil
	}

	declaredFilters := len(doc.Filters)
	compiledFilters := workflow.Count(steps, func(s workflow.Step) bool {
		return s.StepType() == workflow.TypeTransform && s.Operation() == workflow.OpFilter
	})
	if compiledFilters < declaredFilters {
		warns = append(warns, shortfall("filter", declaredFilters, compiledFilters))
	}

	declaredAI := countDeclaredAI(doc)
	compiledAI := workflow.Count(steps, workflow.OfType(workflow.TypeAIProcessing))
	switch {
	case declaredAI > 0 && compiledAI == 0:
		errs = append(errs, Issue{
			Code:    CodeMissingOperation,
			Message: fmt.Sprintf("ir declares %d ai operations but no ai_processing step was compiled", declaredAI),
		})
	case compiledAI < declaredAI:
		warns = append(warns, shortfall("ai_processing", declaredAI, compiledAI))
	}

	declaredLoops := len(doc.Loops)
	compiledLoops := workflow.Count(steps, workflow.OfType(workflow.TypeScatterGather))
	if compiledLoops < declaredLoops {
		warns = append(warns, shortfall("scatter_gather", declaredLoops, compiledLoops))
	}
	return errs, warns
}

// countDeclaredAI counts top-level AI operations plus those nested in loops
// and conditionals.
func countDeclaredAI(doc *ir.DeclarativeIR) int {
	n := len(doc.AIOperations)
	count := func(actions []ir.LoopAction) {
		for _, a := range actions {
			if a.AIOperation != nil {
				n++
			}
		}
	}
	for _, l := range doc.Loops {
		count(l.Do)
	}
	for _, c := range doc.Conditionals {
		count(c.Then)
		count(c.Else)
	}
	return n
}

func shortfall(what string, declared, compiled int) Issue {
	return Issue{
		Code:    CodeMissingOperation,
		Message: fmt.Sprintf("ir declares %d %s operations, %d compiled", declared, what, compiled),
	}
}
