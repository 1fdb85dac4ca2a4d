package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/samestrin/grok-mcp/internal/grok"
)

func listModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-models",
		Short: "List available Grok models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			active, _ := store().Get()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Available Grok models:")
			for _, m := range grok.Models() {
				markers := ""
				if m.Default {
					markers += " [default]"
				}
				if m.ID == active {
					markers += " [active]"
				}
				fmt.Fprintf(out, "  %-26s%s\n", m.ID, markers)
				fmt.Fprintf(out, "    %s (%s-token context)\n", m.Label, humanize.Comma(int64(m.ContextWindow)))
			}
			return nil
		},
	}
}
