package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
)

// ProtocolVersion is the MCP revision this server speaks.
const ProtocolVersion = "2024-11-05"

// DefaultMaxInFlight bounds concurrently executing tool calls.
const DefaultMaxInFlight = 4

// ToolHandler executes one tool call. A returned error becomes an
// isError tool result, never a session failure.
type ToolHandler func(ctx context.Context, args map[string]any) (string, error)

// Tool is the advertised shape of a registered tool.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ServerInfo identifies the server during initialize.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolsCapability advertises tool support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// Capabilities lists what the server supports.
type Capabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// InitializeResult is the reply to an initialize request.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
	Instructions    string       `json:"instructions,omitempty"`
}

// ToolsListResult is the reply to tools/list.
type ToolsListResult struct {
	Tools []Tool `json:"tools"`
}

// ToolsCallParams are the params of a tools/call request.
type ToolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// TextContent is a single text block in a tool result.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolsCallResult is the reply to tools/call.
type ToolsCallResult struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// Server serves one MCP session over one transport. Tool calls are
// dispatched concurrently so a slow call never blocks responses to
// other in-flight requests; every other method is answered inline.
type Server struct {
	transport    *Transport
	info         ServerInfo
	instructions string
	tools        []Tool
	handlers     map[string]ToolHandler
	maxInFlight  int
	errLog       io.Writer
}

// NewServer creates a server reading requests from r and writing
// responses to w.
func NewServer(r io.Reader, w io.Writer) *Server {
	return &Server{
		transport:   NewTransport(r, w),
		handlers:    make(map[string]ToolHandler),
		maxInFlight: DefaultMaxInFlight,
		errLog:      os.Stderr,
	}
}

// SetServerInfo sets the identity reported during initialize.
func (s *Server) SetServerInfo(name, version string) {
	s.info = ServerInfo{Name: name, Version: version}
}

// SetInstructions sets the instructions string some clients require.
func (s *Server) SetInstructions(instructions string) {
	s.instructions = instructions
}

// SetMaxInFlight overrides the concurrent tool-call limit.
func (s *Server) SetMaxInFlight(n int) {
	if n > 0 {
		s.maxInFlight = n
	}
}

// SetErrorLog redirects diagnostic output (default os.Stderr).
func (s *Server) SetErrorLog(w io.Writer) {
	s.errLog = w
}

// RegisterTool adds a tool. Registration order is the order tools/list
// advertises.
func (s *Server) RegisterTool(tool Tool, handler ToolHandler) {
	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
}

// Serve runs the session until EOF on the input stream or context
// cancellation. On EOF, in-flight tool calls drain (complete or time
// out) before Serve returns nil.
func (s *Server) Serve(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(s.maxInFlight)
	defer g.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := s.transport.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if pe, ok := AsProtocolError(err); ok {
			s.writeError(nil, pe.Code, pe.Message)
			continue
		}
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}

		switch req.Method {
		case "initialize":
			s.writeResult(req.ID, InitializeResult{
				ProtocolVersion: ProtocolVersion,
				Capabilities:    Capabilities{Tools: &ToolsCapability{}},
				ServerInfo:      s.info,
				Instructions:    s.instructions,
			})
		case "initialized", "notifications/initialized", "notifications/cancelled":
			// Notifications carry no response.
		case "tools/list":
			tools := s.tools
			if tools == nil {
				tools = []Tool{}
			}
			s.writeResult(req.ID, ToolsListResult{Tools: tools})
		case "resources/list":
			s.writeResult(req.ID, map[string][]any{"resources": {}})
		case "prompts/list":
			s.writeResult(req.ID, map[string][]any{"prompts": {}})
		case "tools/call":
			r := req
			g.Go(func() error {
				s.handleToolCall(ctx, r)
				return nil
			})
		default:
			if req.IsNotification() {
				fmt.Fprintf(s.errLog, "ignoring unknown notification: %s\n", req.Method)
				continue
			}
			s.writeError(req.ID, MethodNotFound, "Method not found: "+req.Method)
		}
	}
}

func (s *Server) handleToolCall(ctx context.Context, req *Request) {
	var params ToolsCallParams
	if req.Params != nil {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeError(req.ID, InvalidParams, "Invalid params: "+err.Error())
			return
		}
	}

	handler, ok := s.handlers[params.Name]
	if !ok {
		s.writeToolResult(req.ID, "Tool not found: "+params.Name, true)
		return
	}

	output, err := handler(ctx, params.Arguments)
	if err != nil {
		s.writeToolResult(req.ID, "Error: "+err.Error(), true)
		return
	}
	s.writeToolResult(req.ID, output, false)
}

func (s *Server) writeResult(id json.RawMessage, result any) {
	resp, err := NewResponse(id, result)
	if err != nil {
		s.writeError(id, InternalError, err.Error())
		return
	}
	if err := s.transport.Write(resp); err != nil {
		fmt.Fprintf(s.errLog, "write response: %v\n", err)
	}
}

func (s *Server) writeToolResult(id json.RawMessage, text string, isError bool) {
	s.writeResult(id, ToolsCallResult{
		Content: []TextContent{{Type: "text", Text: text}},
		IsError: isError,
	})
}

func (s *Server) writeError(id json.RawMessage, code int, message string) {
	if err := s.transport.Write(NewErrorResponse(id, code, message)); err != nil {
		fmt.Fprintf(s.errLog, "write error response: %v\n", err)
	}
}
