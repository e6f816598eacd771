package utils

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRowsProperty(t *testing.T) {
	tool := mcp.NewTool("test_tool",
		mcp.WithDescription("schema probe"),
		WithRowsProperty("rows", "rows of cells", true),
		WithRowsProperty("extra", "optional rows", false),
	)

	prop, ok := tool.InputSchema.Properties["rows"].(map[string]any)
	require.True(t, ok, "rows property should be declared")

	assert.Equal(t, "array", prop["type"])
	assert.Equal(t, "rows of cells", prop["description"])

	items, ok := prop["items"].(map[string]any)
	require.True(t, ok, "rows should declare nested items")
	assert.Equal(t, "array", items["type"])

	assert.Contains(t, tool.InputSchema.Required, "rows")
	assert.NotContains(t, tool.InputSchema.Required, "extra")
}
