package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flowc/internal/checker"
	"github.com/roach88/flowc/internal/irvalidate"
	"github.com/roach88/flowc/internal/workflow"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <steps-file> <ir-file>",
		Short: "Check compiled workflow steps against their IR",
		Long: `Run the workflow checker over previously compiled steps.

The steps file holds either a JSON array of steps or an object with a
workflow_steps key, as written by "flowc compile --format json".
Exits 1 when the steps have errors.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, rootOpts, args[0], args[1])
		},
	}
	return cmd
}

func runCheck(cmd *cobra.Command, opts *RootOptions, stepsPath, irPath string) error {
	formatter := opts.formatter(cmd)

	steps, err := loadSteps(stepsPath, cmd)
	if err != nil {
		return loadFailure(formatter, err)
	}
	doc, err := LoadDocument(irPath, cmd.InOrStdin())
	if err != nil {
		return loadFailure(formatter, err)
	}

	validation := irvalidate.Validate(doc)
	if !validation.Valid {
		details := ValidateResult{
			Valid:    false,
			Errors:   validation.Errors,
			Warnings: orEmpty(validation.Warnings),
		}
		return fail(formatter, ExitFailure, ErrCodeValidation, "IR validation failed", details)
	}

	res := checker.CheckWithLogger(steps, validation.IR, opts.logger())
	res.Errors = orEmpty(res.Errors)
	res.Warnings = orEmpty(res.Warnings)

	if !res.Valid {
		if formatter.Format == "json" {
			if err := formatter.Error(ErrCodeValidation, "workflow check failed", res); err != nil {
				return err
			}
		} else {
			fmt.Fprint(formatter.Writer, formatCheck("Workflow check failed", res))
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d workflow error(s)", stepsPath, len(res.Errors)))
	}
	return formatter.Success(res, formatCheck(fmt.Sprintf("Workflow is valid (%d step(s))", len(steps)), res))
}

// loadSteps accepts a bare step array or a compile result object.
func loadSteps(path string, cmd *cobra.Command) ([]workflow.Step, error) {
	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper struct {
			Steps json.RawMessage `json:"workflow_steps"`
			Data  *struct {
				Steps json.RawMessage `json:"workflow_steps"`
			} `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, &LoadError{Code: ErrCodeParse, Message: err.Error(), Path: path}
		}
		trimmed = wrapper.Steps
		if trimmed == nil && wrapper.Data != nil {
			trimmed = wrapper.Data.Steps
		}
		if trimmed == nil {
			return nil, &LoadError{Code: ErrCodeParse, Message: "no workflow_steps key", Path: path}
		}
	}
	steps, err := workflow.DecodeSteps(trimmed)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: err.Error(), Path: path}
	}
	return steps, nil
}

func formatCheck(title string, res checker.Result) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")
	for _, e := range res.Errors {
		fmt.Fprintf(&sb, "  error   %s\n", e.Error())
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&sb, "  warning %s\n", w.Error())
	}
	return sb.String()
}
