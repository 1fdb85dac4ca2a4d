package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func showConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-config",
		Short: "Show the currently effective model and where it came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := store()
			modelID, source := st.Get()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Current model: %s (%s)\n", modelID, source)
			fmt.Fprintf(out, "Config file: %s\n", st.Path())
			return nil
		},
	}
}
