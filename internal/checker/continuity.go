package checker

import (
	"fmt"

	"github.com/roach88/flowc/internal/workflow"
)

// checkContinuity verifies that every placeholder resolves to an earlier
// output or an enclosing scatter_gather item. A reference like
// {{rep.email}} resolves by its base name.
func checkContinuity(steps []workflow.Step) []Issue {
	var errs []Issue
	walkScoped(steps, newScope(nil), &errs)
	return errs
}

func walkScoped(steps []workflow.Step, sc *scope, errs *[]Issue) {
	for _, s := range steps {
		seen := map[string]bool{}
		for _, ref := range s.Refs() {
			if sc.defined(ref.Name) || seen[ref.Name] {
				continue
			}
			seen[ref.Name] = true
			*errs = append(*errs, Issue{
				Code:    CodeVariableUndefined,
				StepID:  s.StepID(),
				Message: fmt.Sprintf("%s is not defined by an earlier step or an enclosing item variable", ref),
			})
		}

		switch v := s.(type) {
		case *workflow.ScatterGatherStep:
			child := newScope(sc)
			child.define(v.ItemVariable)
			walkScoped(v.Actions, child, errs)
		case *workflow.TransformStep:
			if b, ok := v.Config.(*workflow.BranchConfig); ok {
				walkScoped(b.Then, newScope(sc), errs)
				walkScoped(b.Else, newScope(sc), errs)
			}
		}

		sc.define(s.Output())
	}
}
