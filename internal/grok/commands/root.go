// Package commands implements the grok-mcp command tree: the stdio
// server (default) plus the administrative configuration surface.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/samestrin/grok-mcp/internal/grok/config"
	"github.com/samestrin/grok-mcp/internal/grok/mcpserver"
)

var configDir string

// RootCmd returns the root command for grok-mcp. Running with no
// subcommand serves the MCP session, so the host can launch the binary
// directly.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "grok-mcp",
		Short: "MCP server connecting Claude Code to xAI's Grok",
		Long: `grok-mcp is an MCP stdio server that lets Claude Code delegate
sub-tasks to xAI's Grok: ask questions, request code reviews, and
brainstorm ideas.

Requires the XAI_API_KEY environment variable.`,
		Version:       mcpserver.ServerVersion,
		RunE:          runServe,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"Configuration directory (default $GROK_MCP_CONFIG_DIR or ~/.claude-mcp-servers/grok)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(listModelsCmd())
	rootCmd.AddCommand(setModelCmd())
	rootCmd.AddCommand(showConfigCmd())

	return rootCmd
}

// store returns the configuration store selected by --config-dir.
func store() *config.Store {
	return config.NewStore(configDir)
}
