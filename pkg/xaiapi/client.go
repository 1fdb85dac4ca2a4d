// Package xaiapi provides a client for the xAI chat-completions API
// with bounded retry for transient failures and typed errors that
// distinguish failures worth retrying from definitive rejections.
package xaiapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// Client issues chat-completion requests against an OpenAI-compatible
// endpoint. All retry and timeout knobs are exported so callers can
// tune them for the latency of the selected model.
type Client struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client

	// Retry configuration for transient failures.
	MaxRetries   int
	RetryDelay   time.Duration
	RetryBackoff float64 // multiplier for exponential backoff

	// Per-attempt timeout. Requests whose serialized body is at least
	// LargeInputBytes use LargeInputTimeout instead.
	Timeout           time.Duration
	LargeInputTimeout time.Duration
	LargeInputBytes   int

	apiKey string
}

// NewClient creates a client with default retry and timeout settings.
// The credential is read once at startup and held for the process
// lifetime.
func NewClient(apiKey, baseURL, model string) *Client {
	return &Client{
		BaseURL:           baseURL,
		Model:             model,
		HTTPClient:        &http.Client{},
		MaxRetries:        2,
		RetryDelay:        1 * time.Second,
		RetryBackoff:      2.0,
		Timeout:           30 * time.Second,
		LargeInputTimeout: 120 * time.Second,
		LargeInputBytes:   64 * 1024,
		apiKey:            apiKey,
	}
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the chat-completions request body.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Choice is one completion choice.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatResponse is the chat-completions response body.
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

// ErrorKind classifies an API failure.
type ErrorKind int

const (
	// KindTransient failures (timeouts, dropped connections, 5xx,
	// rate limiting) may succeed on retry.
	KindTransient ErrorKind = iota
	// KindDefinitive failures (bad credential, invalid model, rejected
	// content) cannot be fixed by retrying.
	KindDefinitive
)

// APIError is a non-2xx outcome from the completion endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Kind       ErrorKind
	RetryAfter time.Duration // server wait hint for 429, 0 if absent
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Complete sends a single-user-message completion and returns the
// generated text verbatim.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem sends a completion with an optional system
// message ahead of the user message.
func (c *Client) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var messages []Message
	if systemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: userPrompt})
	return c.CompleteMessages(ctx, messages)
}

// CompleteMessages sends a completion with the given message list.
func (c *Client) CompleteMessages(ctx context.Context, messages []Message) (string, error) {
	req := ChatRequest{
		Model:       c.Model,
		Messages:    messages,
		Temperature: 0.7,
	}
	return c.doWithRetry(ctx, req)
}

func (c *Client) doWithRetry(ctx context.Context, req ChatRequest) (string, error) {
	rateLimitRetried := false

	for attempt := 0; ; attempt++ {
		result, err := c.doOnce(ctx, req)
		if err == nil {
			return result, nil
		}
		// A cancelled caller beats any retry policy.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode == http.StatusTooManyRequests {
				// Rate limiting gets exactly one retry, honoring the
				// server's wait hint when it supplies one.
				if rateLimitRetried {
					return "", err
				}
				rateLimitRetried = true
				wait := apiErr.RetryAfter
				if wait <= 0 {
					wait = c.RetryDelay
				}
				if err := sleepCtx(ctx, wait); err != nil {
					return "", err
				}
				continue
			}
			if apiErr.Kind == KindDefinitive {
				return "", err
			}
		}

		// Transient: timeout, dropped connection, 5xx.
		if attempt >= c.MaxRetries {
			return "", fmt.Errorf("max retries exceeded: %w", err)
		}
		delay := time.Duration(float64(c.RetryDelay) * math.Pow(c.RetryBackoff, float64(attempt)))
		if err := sleepCtx(ctx, delay); err != nil {
			return "", err
		}
	}
}

func (c *Client) doOnce(ctx context.Context, req ChatRequest) (string, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeoutFor(len(reqBody)))
	defer cancel()

	url := c.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("request timed out after %s: %w", c.timeoutFor(len(reqBody)), err)
		}
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", newAPIError(resp, body)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return chatResp.Choices[0].Message.Content, nil
}

func (c *Client) timeoutFor(bodyLen int) time.Duration {
	if c.LargeInputTimeout > 0 && bodyLen >= c.LargeInputBytes {
		return c.LargeInputTimeout
	}
	return c.Timeout
}

// newAPIError classifies a non-2xx response. The message is pulled
// from the error body; xAI uses both OpenAI-style {"error":{"message"}}
// and flat {"error": "..."} shapes.
func newAPIError(resp *http.Response, body []byte) *APIError {
	msg := gjson.GetBytes(body, "error.message").String()
	if msg == "" {
		msg = gjson.GetBytes(body, "error").String()
	}
	if msg == "" {
		msg = "status " + strconv.Itoa(resp.StatusCode)
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		Kind:       KindDefinitive,
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		apiErr.Kind = KindTransient
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		apiErr.RetryAfter = time.Duration(secs) * time.Second
	}
	return apiErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
