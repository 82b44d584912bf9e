package harness

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flowc/internal/compiler"
	"github.com/roach88/flowc/internal/ir"
	"github.com/roach88/flowc/internal/testutil"
)

func boolPtr(b bool) *bool { return &b }

func loadAndRun(t *testing.T, path string) *Result {
	t.Helper()
	s, err := LoadScenario(path)
	require.NoError(t, err)
	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	return result
}

func TestRun_Scenarios(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios", "")
	require.NoError(t, err)
	require.Len(t, paths, 4)

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			result := loadAndRun(t, path)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_FixedCompilationID(t *testing.T) {
	result := loadAndRun(t, "testdata/scenarios/filtered_email.yaml")
	assert.Equal(t, "cmp-filtered", result.Outcome.CompilationID)

	s := &Scenario{
		Name:        "default_id",
		Description: "no id given",
		IR:          testutil.MinimalIR(),
		Expect:      &ExpectClause{Success: boolPtr(true)},
	}
	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "test-compilation-default", result.Outcome.CompilationID)
	assert.InDelta(t, 1.0, result.Outcome.Record.CompilationTimeMS, 1e-9)
}

func TestRun_ExpectMismatch(t *testing.T) {
	s := &Scenario{
		Name:        "wrong_expectations",
		Description: "every expectation is wrong",
		IR:          testutil.MinimalIR(),
		Expect: &ExpectClause{
			Success:   boolPtr(false),
			Stage:     "ir_validation",
			ErrorType: "SCHEMA",
		},
	}
	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "expect.success")
	assert.Contains(t, result.Errors[1], "expect.stage")
	assert.Contains(t, result.Errors[2], "expect.error_type")
}

func TestRun_FailedAssertions(t *testing.T) {
	s := &Scenario{
		Name:        "failed_assertions",
		Description: "assertions that do not hold",
		IR:          testutil.MinimalIR(),
		Assertions: []Assertion{
			{Type: AssertStepCount, Count: 9},
			{Type: AssertStepCount, Min: 9},
			{Type: AssertStepType, Index: 5, StepType: "action"},
			{Type: AssertStepType, Index: 0, StepType: "transform"},
			{Type: AssertStepOrder, StepTypes: []string{"action", "scatter_gather"}},
			{Type: AssertContainsStep, StepType: "ai_processing"},
			{Type: AssertWarning, Code: "UNRESOLVED_REFERENCE"},
			{Type: AssertError, Code: "FORBIDDEN_TOKEN"},
			{Type: AssertFeature, Feature: "loops"},
		},
	}
	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, len(s.Assertions))
	assert.Contains(t, result.Errors[0], "assertions[0]: step_count failed")
	assert.Contains(t, result.Errors[8], "assertions[8]: feature failed")
}

func TestRun_PassingAssertionsOnMinimalIR(t *testing.T) {
	s := &Scenario{
		Name:        "minimal",
		Description: "read then send",
		IR:          testutil.MinimalIR(),
		Assertions: []Assertion{
			{Type: AssertStepCount, Count: 2},
			{Type: AssertStepCount, Min: 2},
			{Type: AssertStepType, Index: -1, StepType: "action"},
			{Type: AssertStepOrder, StepTypes: []string{"action", "action"}},
			{Type: AssertContainsStep, StepType: "action"},
		},
	}
	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

type failingCompiler struct{}

func (failingCompiler) Compile(*ir.DeclarativeIR) (*compiler.Result, error) {
	return nil, errors.New("compiler defect")
}

func TestRunWithOptions_CompileError(t *testing.T) {
	s := &Scenario{
		Name:        "compile_error",
		Description: "a compiler that always fails",
		IR:          testutil.MinimalIR(),
		Expect:      &ExpectClause{Success: boolPtr(false), Stage: "compile"},
		Assertions:  []Assertion{{Type: AssertError, Code: "COMPILE_ERROR"}},
	}
	result, err := RunWithOptions(context.Background(), s, Options{Compiler: failingCompiler{}})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Scenario{Name: "canceled", Description: "d", IR: testutil.MinimalIR()}
	_, err := Run(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
}
