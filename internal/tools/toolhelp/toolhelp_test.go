package toolhelp

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdf-tools/internal/registry"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Register the PDF tools so help lookups resolve
	_ "github.com/sammcj/mcp-pdf-tools/internal/tools/pdf"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestGetToolHelpForExtractTool(t *testing.T) {
	registry.Init(testLogger())
	tool := &ToolHelpTool{}

	result, err := tool.Execute(context.Background(), testLogger(), &sync.Map{}, map[string]any{
		"tool_name": "pdf_extract_text",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	// Result payload is a JSON document with the extended help attached.
	var response ToolHelpResponse
	require.Len(t, result.Content, 1)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	require.NoError(t, json.Unmarshal([]byte(textContent.Text), &response))
	assert.Equal(t, "pdf_extract_text", response.ToolName)
	require.NotNil(t, response.ExtendedInfo)
	assert.NotEmpty(t, response.ExtendedInfo.WhenToUse)
}

func TestGetToolHelpUnknownTool(t *testing.T) {
	registry.Init(testLogger())
	tool := &ToolHelpTool{}

	_, err := tool.Execute(context.Background(), testLogger(), &sync.Map{}, map[string]any{
		"tool_name": "no_such_tool",
	})
	assert.Error(t, err)
}

func TestGetToolHelpMissingParameter(t *testing.T) {
	tool := &ToolHelpTool{}

	_, err := tool.Execute(context.Background(), testLogger(), &sync.Map{}, map[string]any{})
	assert.Error(t, err)
}

func TestGetToolHelpToolWithoutExtendedHelp(t *testing.T) {
	registry.Init(testLogger())
	tool := &ToolHelpTool{}

	// pdf_get_metadata registers but does not implement ExtendedHelpProvider.
	_, err := tool.Execute(context.Background(), testLogger(), &sync.Map{}, map[string]any{
		"tool_name": "pdf_get_metadata",
	})
	assert.Error(t, err)
}
