// Package config persists the selected model identifier for grok-mcp.
// The record is a single YAML file; reads degrade to the catalog
// default rather than failing, so a damaged record never bricks an
// installation.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/gofrs/flock"

	"github.com/samestrin/grok-mcp/internal/grok"
)

// Source reports where the effective model identifier came from.
type Source int

const (
	// SourceDefault means no usable record exists and the catalog
	// default is in effect.
	SourceDefault Source = iota
	// SourcePersisted means the identifier was read from the config file.
	SourcePersisted
)

func (s Source) String() string {
	if s == SourcePersisted {
		return "persisted"
	}
	return "catalog default"
}

// Store reads and writes the persisted model selection.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. An empty dir selects the
// default location.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// DefaultDir resolves the config directory:
// $GROK_MCP_CONFIG_DIR, then ~/.claude-mcp-servers/grok.
func DefaultDir() string {
	if dir := os.Getenv("GROK_MCP_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "grok-mcp")
	}
	return filepath.Join(home, ".claude-mcp-servers", "grok")
}

// Path returns the config file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, "config.yaml")
}

type record struct {
	Model string `yaml:"model"`
}

// Get returns the effective model identifier and its source. A missing
// file, an unreadable or corrupt record, and an identifier that no
// longer matches any catalog entry all fall back to the catalog
// default; none of these is fatal.
func (s *Store) Get() (string, Source) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return grok.Default().ID, SourceDefault
	}

	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		fmt.Fprintf(os.Stderr, "ignoring corrupt config %s: %v\n", s.Path(), err)
		return grok.Default().ID, SourceDefault
	}
	if _, ok := grok.Lookup(rec.Model); !ok {
		return grok.Default().ID, SourceDefault
	}
	return rec.Model, SourcePersisted
}

// Set persists the model identifier. Identifiers absent from the
// catalog are rejected and the store is left unchanged. The write is
// atomic (temp file then rename) under an exclusive lock so a
// concurrent reader never observes a partial record.
func (s *Store) Set(id string) error {
	if _, ok := grok.Lookup(id); !ok {
		return grok.ErrUnknownModel(id)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return grok.ErrConfigWrite(s.Path(), err)
	}

	fl := flock.New(s.Path() + ".lock")
	if err := fl.Lock(); err != nil {
		return grok.ErrConfigWrite(s.Path(), err)
	}
	defer fl.Unlock()

	data, err := yaml.Marshal(record{Model: id})
	if err != nil {
		return grok.ErrConfigWrite(s.Path(), err)
	}

	tmp, err := os.CreateTemp(s.dir, "config-*.yaml")
	if err != nil {
		return grok.ErrConfigWrite(s.Path(), err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return grok.ErrConfigWrite(s.Path(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return grok.ErrConfigWrite(s.Path(), err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return grok.ErrConfigWrite(s.Path(), err)
	}
	return nil
}
