package mcp

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"sync"
)

// Transport reads JSON-RPC requests from a stream and writes responses
// back. Reads accept one JSON value per message, with or without a
// trailing newline. Writes are newline-terminated and safe for
// concurrent use, so pipelined handlers can respond out of order.
type Transport struct {
	src io.Reader
	dec *json.Decoder

	wmu sync.Mutex
	w   io.Writer
}

// NewTransport wraps the given streams. Either side may be nil for a
// read-only or write-only transport.
func NewTransport(r io.Reader, w io.Writer) *Transport {
	t := &Transport{w: w}
	if r != nil {
		t.src = bufio.NewReader(r)
		t.dec = json.NewDecoder(t.src)
	}
	return t
}

// Read returns the next request on the stream. It returns io.EOF on
// clean end of input, a *ProtocolError for malformed input (the caller
// should answer it and keep reading), or another error for a broken
// stream.
func (t *Transport) Read() (*Request, error) {
	if t.dec == nil {
		return nil, errors.New("no reader configured")
	}

	var req Request
	if err := t.dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &ProtocolError{Code: ParseError, Message: "unexpected end of input"}
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			t.resync()
			return nil, &ProtocolError{Code: ParseError, Message: "parse error: " + syntaxErr.Error()}
		case errors.As(err, &typeErr):
			// Valid JSON, wrong shape (e.g. a bare string or array).
			return nil, &ProtocolError{Code: InvalidRequest, Message: "invalid request: " + typeErr.Error()}
		default:
			return nil, err
		}
	}

	if err := validate(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// resync discards input through the next newline so one garbage line
// does not poison the rest of the session, then rebuilds the decoder.
func (t *Transport) resync() {
	br := bufio.NewReader(io.MultiReader(t.dec.Buffered(), t.src))
	_, _ = br.ReadString('\n')
	t.src = br
	t.dec = json.NewDecoder(t.src)
}

func validate(req *Request) error {
	if req.JSONRPC != "2.0" {
		return &ProtocolError{Code: InvalidRequest, Message: `invalid request: jsonrpc must be "2.0"`}
	}
	if req.Method == "" {
		return &ProtocolError{Code: InvalidRequest, Message: "invalid request: missing method"}
	}
	return nil
}

// Write emits one response as a single newline-terminated JSON line.
func (t *Transport) Write(resp *Response) error {
	if t.w == nil {
		return errors.New("no writer configured")
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	t.wmu.Lock()
	defer t.wmu.Unlock()
	_, err = t.w.Write(data)
	return err
}
