package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/flowc/internal/pipeline"
	"github.com/roach88/flowc/internal/testutil"
)

// clockStart is the fixed start instant of every scenario run.
var clockStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Options configures scenario runs. The zero value uses the default compiler.
type Options struct {
	Compiler pipeline.Compiler
	Logger   *slog.Logger
}

// Run executes a scenario with the default options.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return RunWithOptions(ctx, scenario, Options{})
}

// RunWithOptions executes a scenario and evaluates its checks.
//
// Each run gets its own pipeline with a fixed compilation id and a clock that
// advances one millisecond per read, so outcomes are reproducible. The
// returned error is reserved for runs that could not happen at all; failed
// checks are reported in Result.
func RunWithOptions(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	p := pipeline.New(pipeline.Options{
		Compiler: opts.Compiler,
		IDs:      testutil.NewFixedIDGenerator(scenario.CompilationID),
		Clock:    testutil.NewStepClock(clockStart, time.Millisecond),
		Logger:   opts.Logger,
	})

	out, err := p.Run(ctx, scenario.IR)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Outcome = out
	checkExpect(scenario.Expect, out, result)
	for i, a := range scenario.Assertions {
		if err := evaluate(a, out); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return result, nil
}

func checkExpect(expect *ExpectClause, out *pipeline.Outcome, result *Result) {
	if expect == nil {
		return
	}
	if expect.Success != nil && *expect.Success != out.Success {
		result.AddError(fmt.Sprintf("expect.success: expected %t, got %t (stage %s, error %s)",
			*expect.Success, out.Success, out.Stage, out.ErrorType))
	}
	if expect.Stage != "" && expect.Stage != string(out.Stage) {
		result.AddError(fmt.Sprintf("expect.stage: expected %s, got %s", expect.Stage, out.Stage))
	}
	if expect.ErrorType != "" && expect.ErrorType != out.ErrorType {
		result.AddError(fmt.Sprintf("expect.error_type: expected %s, got %q", expect.ErrorType, out.ErrorType))
	}
}
