package compiler

import (
	"fmt"

	"github.com/roach88/flowc/internal/ir"
	"github.com/roach88/flowc/internal/workflow"
)

// resolveNested maps loop and branch actions to steps. inputVar is the data
// the first action consumes; each AI operation or transform replaces it for
// the actions after it. scope is the variable recipient_source fields are
// read from.
func (r *LoopResolver) resolveNested(actions []ir.LoopAction, inputVar, scope string) ([]workflow.Step, error) {
	steps := make([]workflow.Step, 0, len(actions))
	current := inputVar
	for i, a := range actions {
		switch a.Kind() {
		case "delivery":
			steps = append(steps, deliveryStep(*a.Delivery, r.plugins, ir.Ref(current), scope, r.subject))

		case "ai_operation":
			step, err := r.ai.resolveOne(*a.AIOperation, current)
			if err != nil {
				return nil, fmt.Errorf("do[%d]: %w", i, err)
			}
			steps = append(steps, step)
			current = step.OutputVariable

		case "transform":
			step := inlineTransform(*a.Transform, current, r.names)
			steps = append(steps, step)
			current = step.OutputVariable

		case "filter":
			step := filterStep(*a.Filter, current, r.names.claim(current+"_filtered"))
			steps = append(steps, step)
			current = step.OutputVariable

		case "reference":
			steps = append(steps, unresolvedStep(a.Ref, current))

		default:
			return nil, fmt.Errorf("do[%d]: empty action", i)
		}
	}
	return steps, nil
}

// inlineTransform maps a loop transform to its typed config. Operations
// without a dedicated config keep their field and value as given.
func inlineTransform(t ir.TransformSpec, inputVar string, names *nameSet) *workflow.TransformStep {
	var cfg workflow.TransformConfig
	switch t.Operation {
	case workflow.OpFilter:
		cfg = &workflow.FilterConfig{Field: t.Field, Operator: "equals", Value: t.Value}
	case workflow.OpGroup:
		cfg = &workflow.GroupConfig{GroupBy: t.Field}
	default:
		cfg = &workflow.MapConfig{Op: t.Operation, Field: t.Field, Value: t.Value}
	}

	base := identifier(t.Operation)
	if base == "" {
		base = "transformed"
	}
	return &workflow.TransformStep{
		OutputVariable: names.claim(inputVar + "_" + base),
		Input:          workflow.Template(ir.Ref(inputVar)),
		Config:         cfg,
	}
}

func filterStep(f ir.Filter, inputVar, output string) *workflow.TransformStep {
	return &workflow.TransformStep{
		OutputVariable: output,
		Input:          workflow.Template(ir.Ref(inputVar)),
		Config: &workflow.FilterConfig{
			Field:       f.Field,
			Operator:    f.Operator,
			Value:       f.Value,
			Description: f.Description,
		},
	}
}

// unresolvedStep keeps a bare string action for later binding. The data it
// would act on is recorded as the "input" param.
func unresolvedStep(ref, inputVar string) *workflow.ActionStep {
	return &workflow.ActionStep{
		Op:         ref,
		Capability: workflow.CapabilityGeneric,
		Unresolved: true,
		Reference:  ref,
		Config: &workflow.GenericConfig{Params: map[string]workflow.Template{
			"input": workflow.Template(ir.Ref(inputVar)),
		}},
	}
}

// unresolvedInput returns the data an unresolved action was recorded against.
func unresolvedInput(a *workflow.ActionStep) string {
	if g, ok := a.Config.(*workflow.GenericConfig); ok {
		return string(g.Params["input"])
	}
	return ""
}
