package utils

import "github.com/mark3labs/mcp-go/mcp"

// WithRowsProperty declares an array-of-array-of-string property, the
// shape the spreadsheet tools take. mcp-go has no option for nested array
// items, so the schema fragment is written directly.
func WithRowsProperty(name, description string, required bool) mcp.ToolOption {
	return func(t *mcp.Tool) {
		t.InputSchema.Properties[name] = map[string]any{
			"type":        "array",
			"description": description,
			"items": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		}
		if required {
			t.InputSchema.Required = append(t.InputSchema.Required, name)
		}
	}
}
