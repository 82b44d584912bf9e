package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flowc/internal/checker"
	"github.com/roach88/flowc/internal/compiler"
	"github.com/roach88/flowc/internal/irvalidate"
	"github.com/roach88/flowc/internal/metrics"
	"github.com/roach88/flowc/internal/pipeline"
	"github.com/roach88/flowc/internal/store"
	"github.com/roach88/flowc/internal/workflow"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string
	DBPath string
}

// CompileResult is the JSON payload of the compile command.
type CompileResult struct {
	CompilationID     string                       `json:"compilation_id"`
	Success           bool                         `json:"success"`
	Stage             pipeline.Stage               `json:"stage"`
	ErrorType         string                       `json:"error_type,omitempty"`
	IRFingerprint     string                       `json:"ir_fingerprint,omitempty"`
	CompilationTimeMS float64                      `json:"compilation_time_ms"`
	ValidationErrors  []irvalidate.ValidationError `json:"validation_errors"`
	CompileError      string                       `json:"compile_error,omitempty"`
	Steps             json.RawMessage              `json:"workflow_steps"`
	Warnings          []compiler.Warning           `json:"compiler_warnings"`
	Features          []string                     `json:"features"`
	CheckErrors       []checker.Issue              `json:"check_errors"`
	CheckWarnings     []checker.Issue              `json:"check_warnings"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <ir-file>",
		Short: "Compile a declarative IR document into workflow steps",
		Long: `Validate, compile and check a declarative IR document.

The compiled steps are printed, or written to --output. Exits 1 when any
stage fails. When an archive is configured (--db or metrics.db_path) the
compilation is recorded there.`,
		Example: `  # Compile and print steps
  flowc compile workflow.yaml

  # Write steps to a file and record the compilation
  flowc compile workflow.yaml -o steps.json --db ~/.local/share/flowc/archive.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write compiled steps to file")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "archive database (overrides metrics.db_path)")

	return cmd
}

func runCompile(cmd *cobra.Command, opts *CompileOptions, path string) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	doc, err := LoadDocument(path, cmd.InOrStdin())
	if err != nil {
		return loadFailure(formatter, err)
	}

	archive, err := openArchive(opts.RootOptions, opts.DBPath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeArchive, err.Error(), nil)
	}
	if archive != nil {
		defer archive.Close()
	}

	ring := metrics.NewRingBuffer(opts.config().Metrics.Capacity)
	p := newPipeline(opts.RootOptions, sinks(ring, archive), artifactWriter(archive))

	out, err := p.Run(ctx, doc)
	if err != nil {
		return WrapExitError(ExitCommandError, "compile", err)
	}
	formatter.VerboseLog("Compilation %s finished at stage %s", out.CompilationID, out.Stage)

	result, err := compileResult(out)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	if !out.Success {
		if formatter.Format == "json" {
			if err := formatter.Error(ErrCodeCompile, fmt.Sprintf("compilation failed at stage %s", out.Stage), result); err != nil {
				return err
			}
		} else {
			fmt.Fprint(formatter.Writer, formatCompileFailure(out))
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: compilation failed at stage %s", path, out.Stage))
	}

	if opts.Output != "" {
		if err := writeSteps(opts.Output, result.Steps); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		formatter.VerboseLog("Wrote steps to %s", opts.Output)
	}

	text := formatCompileSuccess(out)
	if opts.Output == "" {
		text += string(indentJSON(result.Steps)) + "\n"
	}
	return formatter.Success(result, text)
}

// newPipeline builds a pipeline from the loaded configuration.
func newPipeline(opts *RootOptions, sink metrics.Sink, artifacts pipeline.ArtifactWriter) *pipeline.Pipeline {
	cfg := opts.config()
	logger := opts.logger()
	comp := compiler.New(compiler.Options{
		Plugins:        cfg.Plugins(),
		ModelTiers:     cfg.ModelTiers(),
		MaxIterations:  cfg.Compiler.MaxIterations,
		MaxConcurrency: cfg.Compiler.MaxConcurrency,
		Logger:         logger,
	})
	return pipeline.New(pipeline.Options{
		Compiler:  comp,
		Sink:      sink,
		Artifacts: artifacts,
		Logger:    logger,
	})
}

// openArchive opens the archive named by override or metrics.db_path.
// It returns a nil archive when neither is set.
func openArchive(opts *RootOptions, override string) (*store.Archive, error) {
	path := override
	if path == "" {
		path = opts.config().Metrics.DBPath
	}
	if path == "" {
		return nil, nil
	}
	return store.Open(path)
}

// artifactWriter keeps a nil archive from becoming a non-nil interface.
func artifactWriter(archive *store.Archive) pipeline.ArtifactWriter {
	if archive == nil {
		return nil
	}
	return archive
}

// sinks joins the in-memory buffer with the archive when there is one.
func sinks(ring *metrics.RingBuffer, archive *store.Archive, extra ...metrics.Sink) metrics.Sink {
	m := metrics.Multi{ring}
	m = append(m, extra...)
	if archive != nil {
		m = append(m, archive)
	}
	return m
}

func compileResult(out *pipeline.Outcome) (CompileResult, error) {
	steps, err := workflow.MarshalSteps(out.Steps())
	if err != nil {
		return CompileResult{}, fmt.Errorf("marshal steps: %w", err)
	}
	res := CompileResult{
		CompilationID:     out.CompilationID,
		Success:           out.Success,
		Stage:             out.Stage,
		ErrorType:         out.ErrorType,
		IRFingerprint:     out.Fingerprint,
		CompilationTimeMS: out.Record.CompilationTimeMS,
		ValidationErrors:  orEmpty(out.Validation.Errors),
		CompileError:      out.CompileError,
		Steps:             steps,
		Warnings:          []compiler.Warning{},
		Features:          []string{},
		CheckErrors:       []checker.Issue{},
		CheckWarnings:     []checker.Issue{},
	}
	if out.Compilation != nil {
		res.Warnings = orEmpty(out.Compilation.Warnings)
		res.Features = orEmpty(out.Compilation.Features)
	}
	if out.Check != nil {
		res.CheckErrors = orEmpty(out.Check.Errors)
		res.CheckWarnings = orEmpty(out.Check.Warnings)
	}
	return res, nil
}

func writeSteps(path string, steps json.RawMessage) error {
	data := append(indentJSON(steps), '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write steps: %w", err)
	}
	return nil
}

func indentJSON(data []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return data
	}
	return buf.Bytes()
}

func formatCompileSuccess(out *pipeline.Outcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Compiled %d step(s) [%s]\n", len(out.Steps()), out.CompilationID)
	if out.Compilation != nil {
		if len(out.Compilation.Features) > 0 {
			fmt.Fprintf(&sb, "Features: %s\n", strings.Join(out.Compilation.Features, ", "))
		}
		for _, w := range out.Compilation.Warnings {
			fmt.Fprintf(&sb, "  warning %s: %s\n", w.Code, w.Message)
		}
	}
	if out.Check != nil {
		for _, w := range out.Check.Warnings {
			fmt.Fprintf(&sb, "  warning %s\n", w.Error())
		}
	}
	return sb.String()
}

func formatCompileFailure(out *pipeline.Outcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Compilation failed at stage %s", out.Stage)
	if out.ErrorType != "" {
		fmt.Fprintf(&sb, " (%s)", out.ErrorType)
	}
	sb.WriteString("\n")
	for _, e := range out.Validation.Errors {
		fmt.Fprintf(&sb, "  error   %s\n", e.Error())
	}
	if out.CompileError != "" {
		fmt.Fprintf(&sb, "  error   %s\n", out.CompileError)
	}
	if out.Check != nil {
		for _, e := range out.Check.Errors {
			fmt.Fprintf(&sb, "  error   %s\n", e.Error())
		}
	}
	return sb.String()
}
