package mcpserver

import (
	"context"
	"io"

	"github.com/samestrin/grok-mcp/internal/mcp"
)

const (
	ServerName    = "grok-mcp"
	ServerVersion = "1.2.0"

	serverInstructions = "grok-mcp lets Claude Code delegate sub-tasks to xAI's Grok: ask free-form questions, request code reviews, or brainstorm ideas. Responses come back into Claude's context."
)

// Server wraps the MCP session with the Grok tool registry.
type Server struct {
	inner     *mcp.Server
	completer Completer
}

// NewServer creates a server speaking MCP on the given streams,
// forwarding validated tool calls to completer.
func NewServer(r io.Reader, w io.Writer, completer Completer) *Server {
	s := &Server{
		inner:     mcp.NewServer(r, w),
		completer: completer,
	}
	s.inner.SetServerInfo(ServerName, ServerVersion)
	s.inner.SetInstructions(serverInstructions)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	for _, spec := range ToolSpecs() {
		sp := spec // capture for closure
		s.inner.RegisterTool(mcp.Tool{
			Name:        sp.Name,
			Description: sp.Description,
			InputSchema: sp.InputSchema(),
		}, func(ctx context.Context, args map[string]any) (string, error) {
			output, err := s.Execute(ctx, sp.Name, args)
			if err != nil {
				return "", err
			}
			return "GROK RESPONSE:\n\n" + output, nil
		})
	}
}

// Run serves the session until EOF on the input stream or context
// cancellation.
func (s *Server) Run(ctx context.Context) error {
	return s.inner.Serve(ctx)
}
