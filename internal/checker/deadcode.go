package checker

import (
	"fmt"

	"github.com/roach88/flowc/internal/workflow"
)

// dependencyGraph maps a step id to the ids of the steps whose outputs it
// consumes.
type dependencyGraph map[string][]string

// buildDependencyGraph links each top-level step to the latest earlier step
// producing each variable it reads. References made by nested steps count
// as reads by their top-level container.
func buildDependencyGraph(steps []workflow.Step) dependencyGraph {
	graph := make(dependencyGraph, len(steps))
	producer := map[string]string{}

	for _, s := range steps {
		deps := []string{}
		seen := map[string]bool{}
		workflow.Walk([]workflow.Step{s}, func(inner workflow.Step, _ int) bool {
			for _, ref := range inner.Refs() {
				id, ok := producer[ref.Name]
				if ok && !seen[id] {
					seen[id] = true
					deps = append(deps, id)
				}
			}
			return true
		})
		graph[s.StepID()] = deps

		if out := s.Output(); out != "" {
			producer[out] = s.StepID()
		}
	}
	return graph
}

// checkDeadCode walks backwards from the terminal step and every action step
// and warns about steps with an output nothing reachable consumes.
func checkDeadCode(steps []workflow.Step) []Issue {
	if len(steps) == 0 {
		return nil
	}
	graph := buildDependencyGraph(steps)

	var roots []string
	for _, s := range steps {
		if s.StepType() == workflow.TypeAction {
			roots = append(roots, s.StepID())
		}
	}
	roots = append(roots, steps[len(steps)-1].StepID())

	reached := map[string]bool{}
	stack := roots
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[id] {
			continue
		}
		reached[id] = true
		stack = append(stack, graph[id]...)
	}

	var warns []Issue
	for _, s := range steps {
		if reached[s.StepID()] || s.Output() == "" {
			continue
		}
		warns = append(warns, Issue{
			Code:    CodeOrphanedStep,
			StepID:  s.StepID(),
			Kind:    KindUnusedOutput,
			Message: fmt.Sprintf("output %q is never consumed", s.Output()),
		})
	}
	return warns
}
