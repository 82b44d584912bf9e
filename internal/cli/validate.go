package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flowc/internal/irvalidate"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidateResult is the JSON payload of the validate command.
type ValidateResult struct {
	Valid    bool                         `json:"valid"`
	Errors   []irvalidate.ValidationError `json:"errors"`
	Warnings []irvalidate.ValidationError `json:"warnings"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <ir-file>",
		Short: "Validate a declarative IR document",
		Long: `Validate a declarative IR document against the structural schema and
the semantic rules. Use "-" to read from stdin.

Exits 1 when the document is invalid.`,
		Example: `  # Validate an IR file
  flowc validate workflow.yaml

  # Validate with JSON output
  flowc validate --format json workflow.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args[0])
		},
	}

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions, path string) error {
	formatter := opts.formatter(cmd)

	doc, err := LoadDocument(path, cmd.InOrStdin())
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded %s", path)

	res := irvalidate.Validate(doc)
	opts.logger().Debug("validated IR",
		"path", path,
		"valid", res.Valid,
		"errors", len(res.Errors),
		"warnings", len(res.Warnings))

	payload := ValidateResult{
		Valid:    res.Valid,
		Errors:   orEmpty(res.Errors),
		Warnings: orEmpty(res.Warnings),
	}

	if !res.Valid {
		if formatter.Format == "json" {
			if err := formatter.Error(ErrCodeValidation, "IR validation failed", payload); err != nil {
				return err
			}
		} else {
			fmt.Fprint(formatter.Writer, formatIssues("Validation failed", res.Errors, res.Warnings))
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d validation error(s)", path, len(res.Errors)))
	}

	text := "IR is valid\n"
	if len(res.Warnings) > 0 {
		text = formatIssues("IR is valid", nil, res.Warnings)
	}
	return formatter.Success(payload, text)
}

func formatIssues(title string, errs, warns []irvalidate.ValidationError) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")
	for _, e := range errs {
		fmt.Fprintf(&sb, "  error   %s\n", e.Error())
	}
	for _, w := range warns {
		fmt.Fprintf(&sb, "  warning %s\n", w.Error())
	}
	return sb.String()
}

// orEmpty keeps JSON output stable by encoding nil slices as [].
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
