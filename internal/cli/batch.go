package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/flowc/internal/metrics"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Concurrency int
	DBPath      string
	Textfile    string
}

// BatchFileResult is the outcome for one input file.
type BatchFileResult struct {
	Path          string `json:"path"`
	CompilationID string `json:"compilation_id,omitempty"`
	Success       bool   `json:"success"`
	Stage         string `json:"stage,omitempty"`
	ErrorType     string `json:"error_type,omitempty"`
	StepCount     int    `json:"step_count"`
	Error         string `json:"error,omitempty"`
}

// BatchResult is the JSON payload of the batch command.
type BatchResult struct {
	Files   []BatchFileResult `json:"files"`
	Summary metrics.Summary   `json:"summary"`
	Failed  int               `json:"failed"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Compile every IR document in a directory",
		Long: `Compile every .json, .yaml and .yml file directly inside a directory,
several at a time, and print per-file outcomes with aggregate metrics.

Exits 1 when any file fails to load or compile.`,
		Example: `  # Compile a corpus eight at a time
  flowc batch ./irs --concurrency 8

  # Export Prometheus metrics for node_exporter
  flowc batch ./irs --textfile /var/lib/node_exporter/flowc.prom`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "c", 0, "files compiled at once (default batch.concurrency)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "archive database (overrides metrics.db_path)")
	cmd.Flags().StringVar(&opts.Textfile, "textfile", "", "write Prometheus metrics to file (overrides metrics.textfile)")

	return cmd
}

func runBatch(cmd *cobra.Command, opts *BatchOptions, dir string) error {
	formatter := opts.formatter(cmd)
	cfg := opts.config()
	logger := opts.logger()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	paths, err := FindDocuments(dir)
	if err != nil {
		return loadFailure(formatter, err)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = cfg.Batch.Concurrency
	}
	textfile := opts.Textfile
	if textfile == "" {
		textfile = cfg.Metrics.Textfile
	}

	archive, err := openArchive(opts.RootOptions, opts.DBPath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeArchive, err.Error(), nil)
	}
	if archive != nil {
		defer archive.Close()
	}

	reg := prometheus.NewRegistry()
	prom, err := metrics.NewPrometheusSink(reg)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	ring := metrics.NewRingBuffer(max(cfg.Metrics.Capacity, len(paths)))
	p := newPipeline(opts.RootOptions, sinks(ring, archive, prom), artifactWriter(archive))

	results := make([]BatchFileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			res := BatchFileResult{Path: path}
			defer func() { results[i] = res }()

			doc, err := LoadDocument(path, nil)
			if err != nil {
				res.Error = err.Error()
				return nil
			}
			out, err := p.Run(gctx, doc)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			res.CompilationID = out.CompilationID
			res.Success = out.Success
			res.Stage = string(out.Stage)
			res.ErrorType = out.ErrorType
			res.StepCount = out.Record.StepCount
			logger.Debug("batch file compiled", "path", path, "success", out.Success, "stage", out.Stage)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return WrapExitError(ExitCommandError, "batch interrupted", err)
	}

	if textfile != "" {
		if err := prometheus.WriteToTextfile(textfile, reg); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeGeneric, fmt.Sprintf("write textfile: %v", err), nil)
		}
		formatter.VerboseLog("Wrote metrics to %s", textfile)
	}

	result := BatchResult{Files: results, Summary: ring.Summary()}
	for _, r := range results {
		if !r.Success {
			result.Failed++
		}
	}

	if result.Failed > 0 {
		if formatter.Format == "json" {
			if err := formatter.Error(ErrCodeCompile, fmt.Sprintf("%d of %d file(s) failed", result.Failed, len(results)), result); err != nil {
				return err
			}
		} else {
			fmt.Fprint(formatter.Writer, formatBatch(dir, result))
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d file(s) failed", result.Failed, len(results)))
	}
	return formatter.Success(result, formatBatch(dir, result))
}

func formatBatch(dir string, r BatchResult) string {
	var sb strings.Builder
	for _, f := range r.Files {
		name, err := filepath.Rel(dir, f.Path)
		if err != nil {
			name = f.Path
		}
		switch {
		case f.Error != "":
			fmt.Fprintf(&sb, "FAIL %s: %s\n", name, f.Error)
		case !f.Success:
			fmt.Fprintf(&sb, "FAIL %s: stage %s (%s)\n", name, f.Stage, f.ErrorType)
		default:
			fmt.Fprintf(&sb, "ok   %s: %d step(s)\n", name, f.StepCount)
		}
	}
	s := r.Summary
	fmt.Fprintf(&sb, "\n%d file(s), %d failed, success rate %.0f%%, avg %.2fms, avg %.1f step(s)\n",
		len(r.Files), r.Failed, s.SuccessRate*100, s.AvgCompileTimeMS, s.AvgStepCount)
	return sb.String()
}
