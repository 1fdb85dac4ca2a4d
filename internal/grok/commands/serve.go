package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samestrin/grok-mcp/internal/grok"
	"github.com/samestrin/grok-mcp/internal/grok/mcpserver"
	"github.com/samestrin/grok-mcp/pkg/xaiapi"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio (the default when no subcommand is given)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	return serve(cmd.Context(), xaiapi.EnvCredential(xaiapi.CredentialEnvVar), os.Stdin, os.Stdout)
}

// serve validates the credential, builds the inference client from the
// persisted model selection, and runs the session until EOF. The
// credential check happens before any protocol message is served: a
// session without it could never complete a tool call.
func serve(parent context.Context, credential xaiapi.CredentialProvider, r io.Reader, w io.Writer) error {
	key, err := credential()
	if err != nil {
		return grok.ErrMissingCredential(err)
	}

	modelID, source := store().Get()
	client := xaiapi.NewClient(key, xaiapi.BaseURL(), modelID)
	server := mcpserver.NewServer(r, w, client)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "%s v%s started, model %s (%s)\n",
		mcpserver.ServerName, mcpserver.ServerVersion, modelID, source)

	err = server.Run(ctx)
	if errors.Is(err, context.Canceled) {
		// Signal-driven shutdown is graceful.
		return nil
	}
	return err
}
