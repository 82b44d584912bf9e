package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/flowc/internal/pipeline"
	"github.com/roach88/flowc/internal/workflow"
)

// AssertionError is returned when an assertion fails.
// It includes the top-level step types to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Steps    []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s failed\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Steps) > 0 {
		fmt.Fprintf(&buf, "  Steps: %s\n", strings.Join(e.Steps, ", "))
	}
	return buf.String()
}

// evaluate dispatches one assertion against an outcome.
func evaluate(a Assertion, out *pipeline.Outcome) error {
	steps := out.Steps()
	switch a.Type {
	case AssertStepCount:
		return assertStepCount(steps, a)
	case AssertStepType:
		return assertStepType(steps, a)
	case AssertStepOrder:
		return assertStepOrder(steps, a)
	case AssertContainsStep:
		return assertContainsStep(steps, a)
	case AssertWarning:
		return assertCode(a, warningCodes(out))
	case AssertError:
		return assertCode(a, errorCodes(out))
	case AssertFeature:
		return assertFeature(out, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func stepTypes(steps []workflow.Step) []string {
	types := make([]string, len(steps))
	for i, s := range steps {
		types[i] = string(s.StepType())
	}
	return types
}

func assertStepCount(steps []workflow.Step, a Assertion) error {
	n := len(steps)
	if a.Min > 0 {
		if n < a.Min {
			return &AssertionError{
				Type:     AssertStepCount,
				Expected: fmt.Sprintf("at least %d steps", a.Min),
				Actual:   fmt.Sprintf("%d steps", n),
				Steps:    stepTypes(steps),
			}
		}
		return nil
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertStepCount,
			Expected: fmt.Sprintf("%d steps", a.Count),
			Actual:   fmt.Sprintf("%d steps", n),
			Steps:    stepTypes(steps),
		}
	}
	return nil
}

// assertStepType checks the type of the step at Index. A negative index
// counts from the end, so -1 is the last step.
func assertStepType(steps []workflow.Step, a Assertion) error {
	i := a.Index
	if i < 0 {
		i += len(steps)
	}
	if i < 0 || i >= len(steps) {
		return &AssertionError{
			Type:     AssertStepType,
			Expected: fmt.Sprintf("a step at index %d", a.Index),
			Actual:   fmt.Sprintf("%d steps", len(steps)),
			Steps:    stepTypes(steps),
		}
	}
	if got := string(steps[i].StepType()); got != a.StepType {
		return &AssertionError{
			Type:     AssertStepType,
			Expected: fmt.Sprintf("%s at index %d", a.StepType, a.Index),
			Actual:   got,
			Steps:    stepTypes(steps),
		}
	}
	return nil
}

// assertStepOrder checks that the step types appear in order. They need not
// be consecutive.
func assertStepOrder(steps []workflow.Step, a Assertion) error {
	types := stepTypes(steps)
	pos := 0
	for _, want := range a.StepTypes {
		idx := slices.Index(types[pos:], want)
		if idx < 0 {
			return &AssertionError{
				Type:     AssertStepOrder,
				Expected: fmt.Sprintf("steps in order: %v", a.StepTypes),
				Actual:   fmt.Sprintf("no %s after position %d", want, pos),
				Steps:    types,
			}
		}
		pos += idx + 1
	}
	return nil
}

func assertContainsStep(steps []workflow.Step, a Assertion) error {
	found := false
	workflow.Walk(steps, func(s workflow.Step, _ int) bool {
		if string(s.StepType()) == a.StepType && (a.Operation == "" || s.Operation() == a.Operation) {
			found = true
		}
		return !found
	})
	if found {
		return nil
	}
	want := a.StepType
	if a.Operation != "" {
		want += " (" + a.Operation + ")"
	}
	return &AssertionError{
		Type:     AssertContainsStep,
		Expected: "a " + want + " step at any depth",
		Actual:   "not found",
		Steps:    stepTypes(steps),
	}
}

func assertCode(a Assertion, codes []string) error {
	if slices.Contains(codes, a.Code) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: a.Code,
		Actual:   fmt.Sprintf("%v", codes),
	}
}

func assertFeature(out *pipeline.Outcome, a Assertion) error {
	var features []string
	if out.Compilation != nil {
		features = out.Compilation.Features
	}
	if slices.Contains(features, a.Feature) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFeature,
		Expected: a.Feature,
		Actual:   fmt.Sprintf("%v", features),
	}
}

func warningCodes(out *pipeline.Outcome) []string {
	var codes []string
	for _, w := range out.Validation.Warnings {
		codes = append(codes, w.Code)
	}
	if out.Compilation != nil {
		for _, w := range out.Compilation.Warnings {
			codes = append(codes, w.Code)
		}
	}
	if out.Check != nil {
		for _, w := range out.Check.Warnings {
			codes = append(codes, w.Code)
		}
	}
	return codes
}

func errorCodes(out *pipeline.Outcome) []string {
	var codes []string
	for _, e := range out.Validation.Errors {
		codes = append(codes, e.Code)
	}
	if out.Check != nil {
		for _, e := range out.Check.Errors {
			codes = append(codes, e.Code)
		}
	}
	if out.CompileError != "" {
		codes = append(codes, pipeline.ErrorTypeCompile)
	}
	return codes
}
