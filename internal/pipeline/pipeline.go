package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/flowc/internal/checker"
	"github.com/roach88/flowc/internal/compiler"
	"github.com/roach88/flowc/internal/ir"
	"github.com/roach88/flowc/internal/irvalidate"
	"github.com/roach88/flowc/internal/metrics"
	"github.com/roach88/flowc/internal/workflow"
)

// Stage names the point a run reached.
type Stage string

const (
	StageIRValidation       Stage = "ir_validation"
	StageCompile            Stage = "compile"
	StageWorkflowValidation Stage = "workflow_validation"
	StageDone               Stage = "done"
)

// ErrorTypeCompile is the record error type when the compiler returns an error.
const ErrorTypeCompile = "COMPILE_ERROR"

// Compiler is the compile stage. *compiler.Compiler satisfies it.
type Compiler interface {
	Compile(doc *ir.DeclarativeIR) (*compiler.Result, error)
}

// ArtifactWriter stores the IR and steps of a compilation after its record.
// *store.Archive satisfies it.
type ArtifactWriter interface {
	WriteArtifacts(ctx context.Context, compilationID string, doc map[string]any, steps json.RawMessage) error
}

// Options configures a Pipeline. Zero values select the defaults.
type Options struct {
	Compiler  Compiler
	Sink      metrics.Sink
	Artifacts ArtifactWriter
	IDs       IDGenerator
	Clock     Clock
	Logger    *slog.Logger
}

// Pipeline runs validate, compile and check over IR documents. A Pipeline
// holds no per-run state and may be shared between goroutines as long as its
// sink and artifact writer are safe for concurrent use.
type Pipeline struct {
	compiler  Compiler
	sink      metrics.Sink
	artifacts ArtifactWriter
	ids       IDGenerator
	clock     Clock
	logger    *slog.Logger
}

// New creates a pipeline.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		compiler:  opts.Compiler,
		sink:      opts.Sink,
		artifacts: opts.Artifacts,
		ids:       opts.IDs,
		clock:     opts.Clock,
		logger:    opts.Logger,
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.compiler == nil {
		p.compiler = compiler.New(compiler.Options{Logger: p.logger})
	}
	if p.sink == nil {
		p.sink = metrics.Discard{}
	}
	if p.ids == nil {
		p.ids = UUIDv7Generator{}
	}
	if p.clock == nil {
		p.clock = systemClock{}
	}
	return p
}

// Outcome is everything one run produced.
type Outcome struct {
	CompilationID string            `json:"compilation_id"`
	Success       bool              `json:"success"`
	Stage         Stage             `json:"stage"`
	ErrorType     string            `json:"error_type,omitempty"`
	Fingerprint   string            `json:"ir_fingerprint,omitempty"`
	Validation    irvalidate.Result `json:"validation"`
	Compilation   *compiler.Result  `json:"compilation,omitempty"`
	Check         *checker.Result   `json:"check,omitempty"`

	// CompileError is set when the compiler itself returned an error.
	CompileError string                    `json:"compile_error,omitempty"`
	Record       metrics.CompilationRecord `json:"record"`
}

// Steps returns the compiled steps, or nil when compilation did not happen.
func (o *Outcome) Steps() []workflow.Step {
	if o.Compilation == nil {
		return nil
	}
	return o.Compilation.Steps
}

// Run takes doc through every stage, stopping at the first stage that fails.
// Expected-invalid input yields an unsuccessful Outcome, not an error. The
// returned error is non-nil only when ctx is done.
//
// Sink and artifact failures are logged and do not fail the run.
func (p *Pipeline) Run(ctx context.Context, doc map[string]any) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := p.clock.Now()
	out := &Outcome{CompilationID: p.ids.Generate()}
	logger := p.logger.With("compilation_id", out.CompilationID)

	p.run(out, doc, logger)

	end := p.clock.Now()
	out.Record = p.record(out, start, end)

	if err := p.sink.Record(ctx, out.Record); err != nil {
		logger.Warn("metrics sink failed", "error", err)
	}
	if p.artifacts != nil && out.Compilation != nil {
		p.writeArtifacts(ctx, out, logger)
	}

	logger.Info("compilation finished",
		"success", out.Success,
		"stage", out.Stage,
		"steps", out.Record.StepCount,
		"warnings", out.Record.WarningCount,
		"duration_ms", out.Record.CompilationTimeMS)
	return out, ctx.Err()
}

func (p *Pipeline) run(out *Outcome, doc map[string]any, logger *slog.Logger) {
	out.Stage = StageIRValidation
	out.Validation = irvalidate.Validate(doc)

	if fp, err := ir.Fingerprint(out.Validation.Normalized); err != nil {
		logger.Warn("fingerprint failed", "error", err)
	} else {
		out.Fingerprint = fp
	}

	if !out.Validation.Valid {
		out.ErrorType = out.Validation.Errors[0].Code
		logger.Debug("ir rejected", "errors", len(out.Validation.Errors))
		return
	}

	out.Stage = StageCompile
	res, err := p.compiler.Compile(out.Validation.IR)
	if err != nil {
		out.ErrorType = ErrorTypeCompile
		out.CompileError = err.Error()
		logger.Error("compile failed", "error", err)
		return
	}
	out.Compilation = res

	out.Stage = StageWorkflowValidation
	check := checker.CheckWithLogger(res.Steps, out.Validation.IR, logger)
	out.Check = &check
	if !check.Valid {
		out.ErrorType = check.Errors[0].Code
		logger.Error("compiled workflow failed validation", "errors", len(check.Errors))
		return
	}

	out.Stage = StageDone
	out.Success = true
}

func (p *Pipeline) record(out *Outcome, start, end time.Time) metrics.CompilationRecord {
	rec := metrics.CompilationRecord{
		CompilationID:     out.CompilationID,
		Success:           out.Success,
		CompilationTimeMS: float64(end.Sub(start).Microseconds()) / 1000,
		ErrorType:         out.ErrorType,
		Stage:             string(out.Stage),
		Features:          []string{},
		IRFingerprint:     out.Fingerprint,
		RecordedAt:        end,
	}
	if out.Compilation != nil {
		rec.StepCount = len(out.Compilation.Steps)
		rec.Features = out.Compilation.Features
		rec.WarningCount = len(out.Compilation.Warnings)
	}
	if out.Check != nil {
		rec.WarningCount += len(out.Check.Warnings)
	}
	return rec
}

func (p *Pipeline) writeArtifacts(ctx context.Context, out *Outcome, logger *slog.Logger) {
	steps, err := workflow.MarshalSteps(out.Compilation.Steps)
	if err != nil {
		logger.Warn("marshal steps for archive failed", "error", err)
		return
	}
	if err := p.artifacts.WriteArtifacts(ctx, out.CompilationID, out.Validation.Normalized, steps); err != nil {
		logger.Warn("archive artifacts failed", "error", fmt.Errorf("write artifacts: %w", err))
	}
}
