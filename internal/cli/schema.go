package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/flowc/internal/irvalidate"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "schema",
		Short:         "Print the JSON Schema of the declarative IR",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			data, err := irvalidate.JSONSchema()
			if err != nil {
				return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
			}
			// The schema is the output in both formats.
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		},
	}
	return cmd
}
