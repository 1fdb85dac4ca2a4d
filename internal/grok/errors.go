package grok

import (
	"fmt"
	"strings"
)

// ErrorType classifies failures for handling decisions.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeValidation
	ErrTypeConfiguration
	ErrTypeConnection
	ErrTypeStartup
)

// GrokError provides structured error information with an optional
// hint for the person reading stderr.
type GrokError struct {
	Type    ErrorType
	Message string
	Cause   error
	Hint    string
}

func (e *GrokError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *GrokError) Unwrap() error {
	return e.Cause
}

// FormatWithHint returns the error message with the hint appended.
func (e *GrokError) FormatWithHint() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s\n  Hint: %s", e.Error(), e.Hint)
	}
	return e.Error()
}

// ErrUnknownModel creates an error for a model id absent from the catalog.
func ErrUnknownModel(id string) *GrokError {
	return &GrokError{
		Type:    ErrTypeValidation,
		Message: fmt.Sprintf("unknown model %q", id),
		Hint:    "Run 'grok-mcp list-models' to see available models. Available: " + strings.Join(ModelIDs(), ", "),
	}
}

// ErrMissingCredential creates the startup-fatal error for an absent
// API key.
func ErrMissingCredential(cause error) *GrokError {
	return &GrokError{
		Type:    ErrTypeStartup,
		Message: "no API credential available",
		Cause:   cause,
		Hint:    "Set the XAI_API_KEY environment variable before starting the server.",
	}
}

// ErrConfigWrite creates an error for a failed configuration write.
func ErrConfigWrite(path string, cause error) *GrokError {
	return &GrokError{
		Type:    ErrTypeConfiguration,
		Message: fmt.Sprintf("cannot write config file: %s", path),
		Cause:   cause,
		Hint:    "Check that the directory exists and is writable.",
	}
}
