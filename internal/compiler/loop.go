package compiler

import (
	"fmt"

	"github.com/roach88/flowc/internal/ir"
	"github.com/roach88/flowc/internal/workflow"
)

// Loop defaults.
const (
	DefaultMaxIterations  = 1000
	DefaultMaxConcurrency = 10
	DefaultHandleEmpty    = "skip"
)

// LoopResolver compiles loops, partitions and grouping. Nested loop actions
// are mapped by kind; bare string actions stay unresolved ActionSteps for
// Compiler.Compile to bind.
type LoopResolver struct {
	MaxIterations  int
	MaxConcurrency int

	plugins PluginResolver
	ai      *AIOperationResolver
	names   *nameSet
	subject string
}

// NewLoopResolver creates a resolver with the default iteration limits.
func NewLoopResolver(plugins PluginResolver, ai *AIOperationResolver) *LoopResolver {
	if plugins == nil {
		plugins = NewStaticPluginResolver()
	}
	if ai == nil {
		ai = NewAIOperationResolver(nil)
	}
	return &LoopResolver{
		MaxIterations:  DefaultMaxIterations,
		MaxConcurrency: DefaultMaxConcurrency,
		plugins:        plugins,
		ai:             ai,
		names:          ai.names,
	}
}

// ResolveLoops returns one scatter_gather step per loop.
func (r *LoopResolver) ResolveLoops(loops []ir.Loop) ([]workflow.Step, error) {
	steps := make([]workflow.Step, 0, len(loops))
	for i, loop := range loops {
		item := loop.ItemVariable
		if item == "" {
			item = "item"
		}
		actions, err := r.resolveNested(loop.Do, item, item)
		if err != nil {
			return nil, fmt.Errorf("loops[%d]: %w", i, err)
		}

		out := loop.OutputVariable
		if out == "" {
			out = item + "_results"
		}
		steps = append(steps, &workflow.ScatterGatherStep{
			OutputVariable: r.names.claim(out),
			Input:          workflow.Template(ir.Ref(loop.ForEach)),
			ItemVariable:   item,
			Actions:        actions,
			MaxIterations:  orDefault(loop.MaxIterations, r.MaxIterations),
			MaxConcurrency: orDefault(loop.MaxConcurrency, r.MaxConcurrency),
		})
	}
	return steps, nil
}

// ResolvePartitions returns one partition transform per partition, each
// consuming the previous one's output.
func (r *LoopResolver) ResolvePartitions(parts []ir.Partition, inputVar string) []workflow.Step {
	steps := make([]workflow.Step, 0, len(parts))
	current := inputVar
	for _, p := range parts {
		handle := p.HandleEmpty
		if handle == "" {
			handle = DefaultHandleEmpty
		}
		splitBy := p.SplitBy
		if splitBy == "" {
			splitBy = "value"
		}
		out := p.OutputVariable
		if out == "" {
			out = "partitioned_data"
		}

		var cond *ir.Condition
		if p.Condition != nil {
			c := *p.Condition
			if c.Field == "" {
				c.Field = p.Field
			}
			cond = &c
		}

		step := &workflow.TransformStep{
			OutputVariable: r.names.claim(out),
			Input:          workflow.Template(ir.Ref(current)),
			Config: &workflow.PartitionConfig{
				Field:       p.Field,
				SplitBy:     splitBy,
				Condition:   cond,
				HandleEmpty: handle,
			},
		}
		steps = append(steps, step)
		current = step.OutputVariable
	}
	return steps
}

// ResolveGrouping returns a single group transform.
func (r *LoopResolver) ResolveGrouping(g ir.Grouping, inputVar string) *workflow.TransformStep {
	out := g.OutputVariable
	if out == "" {
		out = "grouped_data"
	}
	return &workflow.TransformStep{
		OutputVariable: r.names.claim(out),
		Input:          workflow.Template(ir.Ref(inputVar)),
		Config: &workflow.GroupConfig{
			GroupBy:      g.GroupBy,
			EmitPerGroup: g.EmitPerGroup,
		},
	}
}

// BatchPlan is the input to ResolveBatchProcessing.
type BatchPlan struct {
	Partitions []ir.Partition
	Grouping   ir.Grouping
	Rendering  *ir.Rendering
	Deliveries []ir.Delivery

	// Actions run for every group before rendering. They come from the
	// declared loops.
	Actions []ir.LoopAction
	// ItemVariable names the current group inside the scatter. Empty
	// selects "group".
	ItemVariable string
}

// ResolveBatchProcessing chains partition, group and scatter_gather so that
// every group is processed, rendered and delivered on its own. Inside the
// scatter the current group is bound to the item variable, and a delivery's
// recipient_source names a field of it. A bare string action naming a
// delivery method runs that delivery in place; it is not repeated after
// rendering.
func (r *LoopResolver) ResolveBatchProcessing(plan BatchPlan, inputVar string) ([]workflow.Step, error) {
	steps := r.ResolvePartitions(plan.Partitions, inputVar)
	current := inputVar
	if n := len(steps); n > 0 {
		current = steps[n-1].Output()
	}

	group := r.ResolveGrouping(plan.Grouping, current)
	steps = append(steps, group)

	item := plan.ItemVariable
	if item == "" {
		item = "group"
	}
	actions, err := r.resolveNested(plan.Actions, item, item)
	if err != nil {
		return nil, err
	}
	bound := r.bindDeliveries(actions, plan.Deliveries, item)

	content := lastOutput(actions, item)
	if plan.Rendering != nil {
		render := renderStep(*plan.Rendering, content, r.names.claim(item+"_rendered"))
		actions = append(actions, render)
		content = render.OutputVariable
	}
	for i, d := range plan.Deliveries {
		if bound[i] {
			continue
		}
		actions = append(actions, deliveryStep(d, r.plugins, ir.Ref(content), item, r.subject))
	}

	steps = append(steps, &workflow.ScatterGatherStep{
		OutputVariable: r.names.claim(item + "_results"),
		Input:          workflow.Template(ir.Ref(group.OutputVariable)),
		ItemVariable:   item,
		Actions:        actions,
		MaxIterations:  r.MaxIterations,
		MaxConcurrency: r.MaxConcurrency,
	})
	return steps, nil
}

// bindDeliveries replaces unresolved actions in list that name a delivery
// method with that delivery and returns the indexes of the deliveries used.
func (r *LoopResolver) bindDeliveries(list []workflow.Step, deliveries []ir.Delivery, scope string) map[int]bool {
	byMethod := map[string]int{}
	for i, d := range deliveries {
		key := normalizeKey(d.Method)
		if _, ok := byMethod[key]; !ok {
			byMethod[key] = i
		}
	}
	bound := map[int]bool{}
	for i, s := range list {
		a, ok := s.(*workflow.ActionStep)
		if !ok || !a.Unresolved {
			continue
		}
		idx, found := byMethod[normalizeKey(referenceName(a.Reference))]
		if !found {
			continue
		}
		list[i] = deliveryStep(deliveries[idx], r.plugins, unresolvedInput(a), scope, r.subject)
		bound[idx] = true
	}
	return bound
}

// lastOutput returns the output of the last step in list that has one.
func lastOutput(list []workflow.Step, fallback string) string {
	for i := len(list) - 1; i >= 0; i-- {
		if out := list[i].Output(); out != "" {
			return out
		}
	}
	return fallback
}

func renderStep(rd ir.Rendering, inputVar, output string) *workflow.TransformStep {
	return &workflow.TransformStep{
		OutputVariable: output,
		Input:          workflow.Template(ir.Ref(inputVar)),
		Config: &workflow.RenderConfig{
			Format:   rd.Type,
			Template: workflow.Template(rd.Template),
			Columns:  rd.Columns,
		},
	}
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
