package mcpserver

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Completer is the outbound inference dependency. Tests substitute a
// stub to count calls; production wires *xaiapi.Client.
type Completer interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ValidationError reports a rejected tool call. No outbound call is
// made when validation fails.
type ValidationError struct {
	Tool    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks args against the tool's parameter table and returns
// the validated string arguments with defaults applied. Oversized
// values are truncated to their declared limit; unknown extra
// arguments are ignored.
func Validate(spec ToolSpec, args map[string]any) (map[string]string, error) {
	validated := make(map[string]string, len(spec.Params))

	for _, p := range spec.Params {
		raw, present := args[p.Name]
		if !present {
			if p.Required {
				return nil, &ValidationError{Tool: spec.Name, Message: fmt.Sprintf("missing required parameter %q", p.Name)}
			}
			validated[p.Name] = p.Default
			continue
		}

		value, ok := raw.(string)
		if !ok {
			return nil, &ValidationError{Tool: spec.Name, Message: fmt.Sprintf("parameter %q must be a %s", p.Name, p.Type)}
		}
		if p.Required && strings.TrimSpace(value) == "" {
			return nil, &ValidationError{Tool: spec.Name, Message: fmt.Sprintf("parameter %q cannot be empty", p.Name)}
		}
		if p.MaxLength > 0 && len(value) > p.MaxLength {
			fmt.Fprintf(os.Stderr, "%s: %s truncated from %d to %d characters\n", spec.Name, p.Name, len(value), p.MaxLength)
			value = value[:p.MaxLength]
		}
		if value == "" {
			value = p.Default
		}
		validated[p.Name] = value
	}

	return validated, nil
}

// Execute resolves, validates and dispatches one tool call, returning
// the model's generated text verbatim. Validation failures
// short-circuit before any network access.
func (s *Server) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	spec, ok := Resolve(name)
	if !ok {
		return "", &ValidationError{Tool: name, Message: "unknown tool: " + name}
	}

	validated, err := Validate(spec, args)
	if err != nil {
		return "", err
	}

	prompt := spec.Template(validated)
	return s.completer.CompleteWithSystem(ctx, prompt.System, prompt.User)
}
