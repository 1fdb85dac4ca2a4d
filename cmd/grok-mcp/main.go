package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/samestrin/grok-mcp/internal/grok"
	"github.com/samestrin/grok-mcp/internal/grok/commands"
)

func main() {
	if err := commands.RootCmd().Execute(); err != nil {
		var gerr *grok.GrokError
		if errors.As(err, &gerr) {
			fmt.Fprintln(os.Stderr, "Error: "+gerr.FormatWithHint())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
