package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flowc/internal/ambiguity"
)

// DetectOptions holds flags for the detect command.
type DetectOptions struct {
	*RootOptions
	Input    string
	Prompt   string
	Semantic string
	Grounded string
	Strict   bool
}

// NewDetectCommand creates the detect command.
func NewDetectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DetectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect ambiguity in a semantic plan",
		Long: `Run every ambiguity detection layer over a prompt, its semantic plan and
its grounded plan, and print the merged report.

The inputs come either from one bundle file with enhanced_prompt,
semantic_plan and grounded_plan keys (--input), or from one file each.`,
		Example: `  # Detect from a bundle
  flowc detect --input plan.json

  # Fail when anything must be confirmed
  flowc detect --prompt prompt.json --semantic semantic.json --grounded grounded.json --strict`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "bundle file with all three inputs")
	cmd.Flags().StringVar(&opts.Prompt, "prompt", "", "enhanced prompt file")
	cmd.Flags().StringVar(&opts.Semantic, "semantic", "", "semantic plan file")
	cmd.Flags().StringVar(&opts.Grounded, "grounded", "", "grounded plan file")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 when any item must be confirmed")
	cmd.MarkFlagsMutuallyExclusive("input", "prompt")
	cmd.MarkFlagsMutuallyExclusive("input", "semantic")
	cmd.MarkFlagsMutuallyExclusive("input", "grounded")

	return cmd
}

func runDetect(cmd *cobra.Command, opts *DetectOptions) error {
	formatter := opts.formatter(cmd)

	in, err := loadDetectInput(cmd, opts)
	if err != nil {
		return loadFailure(formatter, err)
	}

	report := ambiguity.NewDetector(ambiguity.WithLogger(opts.logger())).Detect(in)

	if opts.Strict && report.Blocking() {
		if formatter.Format == "json" {
			if err := formatter.Error(ErrCodeValidation, "plan requires confirmation", report); err != nil {
				return err
			}
		} else {
			fmt.Fprint(formatter.Writer, formatReport(report))
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d item(s) must be confirmed", len(report.MustConfirm)))
	}
	return formatter.Success(report, formatReport(report))
}

func loadDetectInput(cmd *cobra.Command, opts *DetectOptions) (ambiguity.Input, error) {
	var in ambiguity.Input
	if opts.Input != "" {
		err := LoadJSON(opts.Input, cmd.InOrStdin(), &in)
		return in, err
	}
	if opts.Semantic == "" {
		return in, &LoadError{Code: ErrCodeGeneric, Message: "either --input or --semantic is required"}
	}
	if opts.Prompt != "" {
		if err := LoadJSON(opts.Prompt, cmd.InOrStdin(), &in.Prompt); err != nil {
			return in, err
		}
	}
	if err := LoadJSON(opts.Semantic, cmd.InOrStdin(), &in.Semantic); err != nil {
		return in, err
	}
	if opts.Grounded != "" {
		if err := LoadJSON(opts.Grounded, cmd.InOrStdin(), &in.Grounded); err != nil {
			return in, err
		}
	}
	return in, nil
}

func formatReport(r ambiguity.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Overall confidence: %.2f\n", r.OverallConfidence)
	section := func(title string, items []ambiguity.Item) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n%s (%d)\n", title, len(items))
		for _, it := range items {
			fmt.Fprintf(&sb, "  [%s] %s\n", it.ID, it.Title)
		}
	}
	section("Must confirm", r.MustConfirm)
	section("Should review", r.ShouldReview)
	section("Looks good", r.LooksGood)
	if len(r.GroundingAmbiguities) > 0 {
		fmt.Fprintf(&sb, "\nGrounding ambiguities (%d)\n", len(r.GroundingAmbiguities))
		for _, g := range r.GroundingAmbiguities {
			fmt.Fprintf(&sb, "  [%s] %s\n", g.AssumptionID, g.Description)
		}
	}
	return sb.String()
}
