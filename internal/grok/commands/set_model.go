package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func setModelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-model <model-id>",
		Short: "Persist the default Grok model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store().Set(args[0]); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Default model set to: %s\n", args[0])
			fmt.Fprintln(out, "Restart Claude Code for changes to take effect.")
			return nil
		},
	}
}
