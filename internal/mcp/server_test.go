package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// runSession serves the given input to completion and returns the
// responses keyed by request id.
func runSession(t *testing.T, s *Server, output *bytes.Buffer) map[string]Response {
	t.Helper()
	if err := s.Serve(context.Background()); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	return parseResponses(t, output)
}

func parseResponses(t *testing.T, output *bytes.Buffer) map[string]Response {
	t.Helper()
	responses := make(map[string]Response)
	for _, line := range strings.Split(strings.TrimSpace(output.String()), "\n") {
		if line == "" {
			continue
		}
		var resp Response
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("response line is not valid JSON: %v\nline: %s", err, line)
		}
		responses[string(resp.ID)] = resp
	}
	return responses
}

func TestServerInitialize(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"test","version":"1.0"}}}` + "\n"
	var output bytes.Buffer
	s := NewServer(strings.NewReader(input), &output)
	s.SetServerInfo("test-server", "1.0.0")
	s.SetInstructions("testing")

	responses := runSession(t, s, &output)
	resp, ok := responses["1"]
	if !ok {
		t.Fatalf("no response for id 1, got %v", responses)
	}
	if resp.Error != nil {
		t.Fatalf("initialize returned error: %v", resp.Error)
	}

	var result InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if result.ProtocolVersion != ProtocolVersion {
		t.Errorf("ProtocolVersion = %q, want %q", result.ProtocolVersion, ProtocolVersion)
	}
	if result.ServerInfo.Name != "test-server" {
		t.Errorf("ServerInfo.Name = %q, want test-server", result.ServerInfo.Name)
	}
	if result.Capabilities.Tools == nil {
		t.Error("tools capability missing")
	}
	if result.Instructions != "testing" {
		t.Errorf("Instructions = %q, want testing", result.Instructions)
	}
}

func TestServerNotificationsProduceNoResponse(t *testing.T) {
	input := `{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
		`{"jsonrpc":"2.0","method":"notifications/cancelled","params":{"requestId":9}}` + "\n"
	var output bytes.Buffer
	s := NewServer(strings.NewReader(input), &output)

	if err := s.Serve(context.Background()); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	if output.Len() != 0 {
		t.Errorf("notifications produced output: %s", output.String())
	}
}

func TestServerToolsList_AdvertisementOrder(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n"
	var output bytes.Buffer
	s := NewServer(strings.NewReader(input), &output)
	noop := func(ctx context.Context, args map[string]any) (string, error) { return "", nil }
	s.RegisterTool(Tool{Name: "beta", InputSchema: json.RawMessage(`{}`)}, noop)
	s.RegisterTool(Tool{Name: "alpha", InputSchema: json.RawMessage(`{}`)}, noop)

	responses := runSession(t, s, &output)
	var result ToolsListResult
	if err := json.Unmarshal(responses["1"].Result, &result); err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if len(result.Tools) != 2 {
		t.Fatalf("len(Tools) = %d, want 2", len(result.Tools))
	}
	// Registration order, not lexical order.
	if result.Tools[0].Name != "beta" || result.Tools[1].Name != "alpha" {
		t.Errorf("tool order = %s, %s; want beta, alpha", result.Tools[0].Name, result.Tools[1].Name)
	}
}

func TestServerToolsCall(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"echo","arguments":{"text":"hello"}}}` + "\n"
	var output bytes.Buffer
	s := NewServer(strings.NewReader(input), &output)
	s.RegisterTool(Tool{Name: "echo", InputSchema: json.RawMessage(`{}`)},
		func(ctx context.Context, args map[string]any) (string, error) {
			text, _ := args["text"].(string)
			return "echo: " + text, nil
		})

	responses := runSession(t, s, &output)
	var result ToolsCallResult
	if err := json.Unmarshal(responses["7"].Result, &result); err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if result.IsError {
		t.Error("IsError = true, want false")
	}
	if len(result.Content) != 1 || result.Content[0].Text != "echo: hello" {
		t.Errorf("Content = %+v, want one text block 'echo: hello'", result.Content)
	}
}

func TestServerToolsCall_UnknownTool(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"missing"}}` + "\n"
	var output bytes.Buffer
	s := NewServer(strings.NewReader(input), &output)

	responses := runSession(t, s, &output)
	var result ToolsCallResult
	if err := json.Unmarshal(responses["3"].Result, &result); err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if !result.IsError {
		t.Error("unknown tool should be an isError result, not a protocol error")
	}
	if !strings.Contains(result.Content[0].Text, "missing") {
		t.Errorf("error text %q does not name the tool", result.Content[0].Text)
	}
}

// A handler error must come back as a normal isError response; the
// session keeps serving.
func TestServerToolsCall_HandlerError(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"bad"}}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n"
	var output bytes.Buffer
	s := NewServer(strings.NewReader(input), &output)
	s.RegisterTool(Tool{Name: "bad", InputSchema: json.RawMessage(`{}`)},
		func(ctx context.Context, args map[string]any) (string, error) {
			return "", io.ErrUnexpectedEOF
		})

	responses := runSession(t, s, &output)
	var result ToolsCallResult
	if err := json.Unmarshal(responses["1"].Result, &result); err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if !result.IsError {
		t.Error("handler failure should surface as isError result")
	}
	if _, ok := responses["2"]; !ok {
		t.Error("session did not continue after a failed tool call")
	}
}

func TestServerMalformedInputKeepsServing(t *testing.T) {
	input := "garbage line\n" + `{"jsonrpc":"2.0","id":5,"method":"tools/list"}` + "\n"
	var output bytes.Buffer
	s := NewServer(strings.NewReader(input), &output)

	responses := runSession(t, s, &output)
	if len(responses) != 2 {
		t.Fatalf("got %d responses, want parse error + list result", len(responses))
	}
	// The parse error carries no id.
	errResp, ok := responses[""]
	if !ok || errResp.Error == nil || errResp.Error.Code != ParseError {
		t.Errorf("missing parse error response, got %v", responses)
	}
	if ok2 := responses["5"].Error == nil; !ok2 {
		t.Errorf("valid request after garbage not served: %v", responses["5"].Error)
	}
}

func TestServerMethodNotFound(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":4,"method":"resources/read"}` + "\n"
	var output bytes.Buffer
	s := NewServer(strings.NewReader(input), &output)

	responses := runSession(t, s, &output)
	resp := responses["4"]
	if resp.Error == nil || resp.Error.Code != MethodNotFound {
		t.Errorf("Error = %+v, want method-not-found", resp.Error)
	}
}

func TestServerEmptyResourceAndPromptLists(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"resources/list"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"prompts/list"}` + "\n"
	var output bytes.Buffer
	s := NewServer(strings.NewReader(input), &output)

	responses := runSession(t, s, &output)
	if got := string(responses["1"].Result); got != `{"resources":[]}` {
		t.Errorf("resources/list result = %s", got)
	}
	if got := string(responses["2"].Result); got != `{"prompts":[]}` {
		t.Errorf("prompts/list result = %s", got)
	}
}

// Two calls must be able to overlap: a barrier that requires both
// handlers to arrive would deadlock on a serial dispatcher.
func TestServerPipelinedCalls(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"pair"}}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"pair"}}` + "\n"
	var output bytes.Buffer
	s := NewServer(strings.NewReader(input), &output)

	var barrier sync.WaitGroup
	barrier.Add(2)
	s.RegisterTool(Tool{Name: "pair", InputSchema: json.RawMessage(`{}`)},
		func(ctx context.Context, args map[string]any) (string, error) {
			barrier.Done()
			barrier.Wait()
			return "both in flight", nil
		})

	done := make(chan error, 1)
	go func() { done <- s.Serve(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pipelined calls did not overlap (dispatch is serial)")
	}

	responses := parseResponses(t, &output)
	for _, id := range []string{"1", "2"} {
		var result ToolsCallResult
		if err := json.Unmarshal(responses[id].Result, &result); err != nil {
			t.Fatalf("parse result %s: %v", id, err)
		}
		if result.IsError {
			t.Errorf("call %s failed: %+v", id, result)
		}
	}
}

// EOF with a call still running: the call drains and its response is
// written before Serve returns.
func TestServerDrainsInFlightOnEOF(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"slow"}}` + "\n"
	var output bytes.Buffer
	s := NewServer(strings.NewReader(input), &output)
	s.RegisterTool(Tool{Name: "slow", InputSchema: json.RawMessage(`{}`)},
		func(ctx context.Context, args map[string]any) (string, error) {
			time.Sleep(50 * time.Millisecond)
			return "done", nil
		})

	if err := s.Serve(context.Background()); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}

	responses := parseResponses(t, &output)
	var result ToolsCallResult
	if err := json.Unmarshal(responses["1"].Result, &result); err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if result.Content[0].Text != "done" {
		t.Errorf("Text = %q, want done", result.Content[0].Text)
	}
}

func TestServerContextCancellation(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var output bytes.Buffer
	s := NewServer(pr, &output)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	cancel()
	// Unblock the pending read.
	pw.Write([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n"))

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not observe cancellation")
	}
}
