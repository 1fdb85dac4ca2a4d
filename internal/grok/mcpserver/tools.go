// Package mcpserver exposes the Grok delegation tools over MCP. Tools
// are plain data: a parameter table plus a prompt template, dispatched
// through one generic validate/template/call path, so adding a tool is
// adding one table entry.
package mcpserver

import (
	"encoding/json"
	"strings"
)

// Input limits, matching what the remote API will reasonably accept.
const (
	MaxPromptLength = 100000
	MaxCodeLength   = 500000
	maxFocusLength  = 50
)

// ParamSpec declares one tool parameter.
type ParamSpec struct {
	Name        string
	Type        string
	Description string
	Required    bool
	MaxLength   int
	Default     string
}

// Prompt is a fully built outbound prompt.
type Prompt struct {
	System string
	User   string
}

// ToolSpec declares one invocable tool: its advertised schema and the
// template turning validated arguments into a prompt.
type ToolSpec struct {
	Name        string
	Description string
	Params      []ParamSpec
	Template    func(args map[string]string) Prompt
}

// ToolSpecs returns the fixed tool registry in advertisement order.
func ToolSpecs() []ToolSpec {
	return []ToolSpec{
		{
			Name:        "ask",
			Description: "Ask Grok a question and get the response directly in Claude's context. Trigger: 'use grok', 'ask grok', or 'grok:' followed by a question.",
			Params: []ParamSpec{
				{Name: "question", Type: "string", Description: "The question or prompt for Grok", Required: true, MaxLength: MaxPromptLength},
			},
			Template: func(args map[string]string) Prompt {
				// The question passes through unmodified.
				return Prompt{User: args["question"]}
			},
		},
		{
			Name:        "code_review",
			Description: "Have Grok review code and return feedback directly to Claude. Trigger: 'grok review', 'grok code review', or 'have grok review'.",
			Params: []ParamSpec{
				{Name: "code", Type: "string", Description: "The code to review", Required: true, MaxLength: MaxCodeLength},
				{Name: "focus", Type: "string", Description: "Specific focus area (security, performance, etc.)", MaxLength: maxFocusLength, Default: "general"},
			},
			Template: func(args map[string]string) Prompt {
				focus := sanitizeFocus(args["focus"])
				var b strings.Builder
				b.WriteString("Please review this code with a focus on " + focus + ":\n\n")
				b.WriteString("```\n" + args["code"] + "\n```\n\n")
				b.WriteString("Provide specific, actionable feedback on:\n")
				b.WriteString("1. Potential issues or bugs\n")
				b.WriteString("2. Security concerns\n")
				b.WriteString("3. Performance optimizations\n")
				b.WriteString("4. Best practices\n")
				b.WriteString("5. Code clarity and maintainability")
				return Prompt{
					System: "You are an expert code reviewer.",
					User:   b.String(),
				}
			},
		},
		{
			Name:        "brainstorm",
			Description: "Brainstorm solutions with Grok, response visible to Claude. Trigger: 'grok brainstorm', 'brainstorm with grok', or 'grok ideas'.",
			Params: []ParamSpec{
				{Name: "topic", Type: "string", Description: "The topic to brainstorm about", Required: true, MaxLength: MaxPromptLength},
				{Name: "context", Type: "string", Description: "Additional context", MaxLength: MaxPromptLength},
			},
			Template: func(args map[string]string) Prompt {
				prompt := "Let's brainstorm about: " + args["topic"]
				if ctx := args["context"]; ctx != "" {
					prompt += "\n\nContext: " + ctx
				}
				prompt += "\n\nProvide 5-10 diverse, concrete ideas with alternatives and considerations."
				return Prompt{
					System: "You are a creative problem solver and brainstorming partner.",
					User:   prompt,
				}
			},
		},
	}
}

// Resolve returns the spec for name, if registered.
func Resolve(name string) (ToolSpec, bool) {
	for _, spec := range ToolSpecs() {
		if spec.Name == name {
			return spec, true
		}
	}
	return ToolSpec{}, false
}

// InputSchema renders the JSON Schema advertised for this tool,
// generated from the parameter table so the schema and the validator
// cannot drift apart.
func (t ToolSpec) InputSchema() json.RawMessage {
	type property struct {
		Type        string `json:"type"`
		Description string `json:"description,omitempty"`
		MaxLength   int    `json:"maxLength,omitempty"`
		Default     string `json:"default,omitempty"`
	}
	schema := struct {
		Type       string              `json:"type"`
		Properties map[string]property `json:"properties"`
		Required   []string            `json:"required,omitempty"`
	}{
		Type:       "object",
		Properties: make(map[string]property, len(t.Params)),
	}
	for _, p := range t.Params {
		schema.Properties[p.Name] = property{
			Type:        p.Type,
			Description: p.Description,
			MaxLength:   p.MaxLength,
			Default:     p.Default,
		}
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	data, err := json.Marshal(schema)
	if err != nil {
		// Build-time data; unreachable for valid specs.
		panic("mcpserver: cannot marshal input schema: " + err.Error())
	}
	return data
}

// sanitizeFocus keeps the focus area to a single short line so a long
// or multi-line value cannot restructure the review prompt.
func sanitizeFocus(focus string) string {
	focus = strings.ReplaceAll(focus, "\n", " ")
	if len(focus) > maxFocusLength {
		focus = focus[:maxFocusLength]
	}
	focus = strings.TrimSpace(focus)
	if focus == "" {
		return "general"
	}
	return focus
}
