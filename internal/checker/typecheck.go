package checker

import (
	"fmt"

	"github.com/roach88/flowc/internal/ir"
	"github.com/roach88/flowc/internal/workflow"
)

// checkTypes reports scatter_gather steps whose input is known not to be an
// array. Inputs with a property path, or produced by a step of unknown
// shape, are not checked.
func checkTypes(steps []workflow.Step) []Issue {
	var errs []Issue
	checkTypesIn(steps, map[string]ValueType{}, &errs)
	return errs
}

func checkTypesIn(steps []workflow.Step, types map[string]ValueType, errs *[]Issue) {
	for _, s := range steps {
		if sg, ok := s.(*workflow.ScatterGatherStep); ok {
			if ref, ok := ir.SingleRef(string(sg.Input)); ok && len(ref.Path) == 0 {
				if t, known := types[ref.Name]; known && t != TypeArray && t != TypeAny {
					*errs = append(*errs, Issue{
						Code:    CodeTypeMismatch,
						StepID:  sg.ID,
						Message: fmt.Sprintf("scatter_gather input %s is %s, want array", ref, t),
					})
				}
			}
		}

		for _, children := range workflow.Children(s) {
			inner := make(map[string]ValueType, len(types))
			for k, v := range types {
				inner[k] = v
			}
			if sg, ok := s.(*workflow.ScatterGatherStep); ok {
				inner[sg.ItemVariable] = TypeAny
			}
			checkTypesIn(children, inner, errs)
		}

		if out := s.Output(); out != "" {
			types[out] = InferType(s)
		}
	}
}
