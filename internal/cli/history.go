package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/flowc/internal/metrics"
	"github.com/roach88/flowc/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DBPath      string
	Limit       int
	Fingerprint string
	ID          string
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Compilations []metrics.CompilationRecord `json:"compilations"`
	Failures     []store.StageCount          `json:"failures_by_stage"`
}

// HistoryDetail is the JSON payload of history --id.
type HistoryDetail struct {
	Compilation metrics.CompilationRecord `json:"compilation"`
	Artifacts   *store.Artifacts          `json:"artifacts,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the compilation archive",
		Long: `List archived compilations, newest first, with failure counts per stage.

--fingerprint lists every compilation of the same IR. --id shows one
compilation with its stored IR and steps.`,
		Example: `  flowc history --db archive.db --limit 20
  flowc history --db archive.db --fingerprint 3f2a...
  flowc history --db archive.db --id 0190c8e2-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "archive database (overrides metrics.db_path)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "maximum compilations to list")
	cmd.Flags().StringVar(&opts.Fingerprint, "fingerprint", "", "list compilations of one IR fingerprint")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show one compilation")
	cmd.MarkFlagsMutuallyExclusive("fingerprint", "id")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	archive, err := openArchive(opts.RootOptions, opts.DBPath)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeArchive, err.Error(), nil)
	}
	if archive == nil {
		return fail(formatter, ExitCommandError, ErrCodeArchive, "no archive configured: pass --db or set metrics.db_path", nil)
	}
	defer archive.Close()

	if opts.ID != "" {
		return showCompilation(ctx, formatter, archive, opts.ID)
	}

	var records []metrics.CompilationRecord
	if opts.Fingerprint != "" {
		records, err = archive.FindByFingerprint(ctx, opts.Fingerprint)
	} else {
		records, err = archive.ListRecent(ctx, opts.Limit)
	}
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeArchive, err.Error(), nil)
	}
	failures, err := archive.FailuresByStage(ctx)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeArchive, err.Error(), nil)
	}

	result := HistoryResult{Compilations: records, Failures: failures}
	return formatter.Success(result, formatHistory(result))
}

func showCompilation(ctx context.Context, formatter *OutputFormatter, archive *store.Archive, id string) error {
	rec, err := archive.ReadCompilation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fail(formatter, ExitFailure, ErrCodeNotFound, fmt.Sprintf("compilation %s not found", id), nil)
	}
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeArchive, err.Error(), nil)
	}

	detail := HistoryDetail{Compilation: rec}
	art, err := archive.ReadArtifacts(ctx, id)
	switch {
	case err == nil:
		detail.Artifacts = &art
	case !errors.Is(err, store.ErrNotFound):
		return fail(formatter, ExitCommandError, ErrCodeArchive, err.Error(), nil)
	}

	var sb strings.Builder
	sb.WriteString(formatRecords([]metrics.CompilationRecord{rec}))
	if detail.Artifacts != nil {
		sb.WriteString("\nSteps:\n")
		sb.Write(indentJSON(detail.Artifacts.Steps))
		sb.WriteString("\n")
	}
	return formatter.Success(detail, sb.String())
}

func formatHistory(r HistoryResult) string {
	var sb strings.Builder
	if len(r.Compilations) == 0 {
		sb.WriteString("No compilations recorded.\n")
	} else {
		sb.WriteString(formatRecords(r.Compilations))
	}
	if len(r.Failures) > 0 {
		sb.WriteString("\nFailures by stage:\n")
		for _, f := range r.Failures {
			fmt.Fprintf(&sb, "  %-20s %d\n", f.Stage, f.Count)
		}
	}
	return sb.String()
}

func formatRecords(records []metrics.CompilationRecord) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRECORDED\tRESULT\tSTAGE\tSTEPS\tMS")
	for _, rec := range records {
		status := "ok"
		if !rec.Success {
			status = "fail"
			if rec.ErrorType != "" {
				status += " " + rec.ErrorType
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f\n",
			rec.CompilationID,
			rec.RecordedAt.Format("2006-01-02 15:04:05"),
			status,
			rec.Stage,
			rec.StepCount,
			rec.CompilationTimeMS)
	}
	tw.Flush()
	return sb.String()
}
