package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/flowc/internal/ir"
	"github.com/roach88/flowc/internal/irvalidate"
)

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize <ir-file>",
		Short: "Print the normalized form of an IR document",
		Long: `Repair common template mistakes and print the IR as canonical JSON.
No validation is performed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)

			doc, err := LoadDocument(args[0], cmd.InOrStdin())
			if err != nil {
				return loadFailure(formatter, err)
			}
			normalized := irvalidate.Normalize(doc)
			if formatter.Format == "json" {
				return formatter.Success(normalized, "")
			}

			data, err := ir.MarshalCanonical(normalized)
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
			}
			return formatter.Success(nil, string(data)+"\n")
		},
	}
	return cmd
}
