// Package grok holds the model catalog and shared error types for the
// grok-mcp server.
package grok

// ModelDescriptor describes one selectable Grok model.
type ModelDescriptor struct {
	ID            string
	Label         string
	ContextWindow int // tokens
	Default       bool
}

// catalog is the fixed table of models this build knows about, in
// presentation order. Exactly one entry is the catalog default.
var catalog = []ModelDescriptor{
	{ID: "grok-4", Label: "Flagship model", ContextWindow: 256000},
	{ID: "grok-4-1-fast-reasoning", Label: "Fast reasoning model", ContextWindow: 2000000, Default: true},
	{ID: "grok-4-fast", Label: "Fast with reasoning", ContextWindow: 2000000},
	{ID: "grok-3", Label: "Previous flagship", ContextWindow: 131072},
	{ID: "grok-3-mini", Label: "Lighter/cheaper option", ContextWindow: 131072},
	{ID: "grok-2", Label: "Grok 2", ContextWindow: 131072},
	{ID: "grok-2-vision", Label: "Vision capable", ContextWindow: 32768},
}

// Models returns the catalog in presentation order.
func Models() []ModelDescriptor {
	out := make([]ModelDescriptor, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the descriptor for id, if it exists.
func Lookup(id string) (ModelDescriptor, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return ModelDescriptor{}, false
}

// Default returns the catalog default model.
func Default() ModelDescriptor {
	for _, m := range catalog {
		if m.Default {
			return m
		}
	}
	// The table is build-time data; a missing default is a programming
	// error caught by tests.
	panic("grok: model catalog has no default entry")
}

// ModelIDs returns every catalog identifier in presentation order.
func ModelIDs() []string {
	ids := make([]string, len(catalog))
	for i, m := range catalog {
		ids[i] = m.ID
	}
	return ids
}
