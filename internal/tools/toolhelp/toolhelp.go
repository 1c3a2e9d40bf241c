// Package toolhelp exposes the extended usage documentation that individual
// tools publish through the ExtendedHelpProvider interface.
package toolhelp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdf-tools/internal/registry"
	"github.com/sammcj/mcp-pdf-tools/internal/tools"
	"github.com/sirupsen/logrus"
)

// ToolHelpTool returns detailed usage information for tools that provide it
type ToolHelpTool struct{}

// init registers the tool with the registry
func init() {
	registry.Register(&ToolHelpTool{})
}

// ToolHelpResponse is the JSON shape returned to the caller
type ToolHelpResponse struct {
	ToolName     string              `json:"tool_name"`
	Description  string              `json:"description"`
	ExtendedInfo *tools.ExtendedHelp `json:"extended_info,omitempty"`
}

// Definition returns the tool's definition for MCP registration
func (t *ToolHelpTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"get_tool_help",
		mcp.WithDescription("Get detailed usage examples and troubleshooting tips for the PDF tools. Use when a tool call returned an unexpected result."),
		mcp.WithString("tool_name",
			mcp.Required(),
			mcp.Description("Name of the tool to get help for (e.g. pdf_extract_text)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// Execute executes the get_tool_help tool
func (t *ToolHelpTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	toolName, ok := args["tool_name"].(string)
	if !ok || toolName == "" {
		return nil, fmt.Errorf("missing or invalid required parameter: tool_name")
	}

	tool, exists := registry.GetTool(toolName)
	if !exists {
		return nil, fmt.Errorf("tool '%s' not found or disabled. Available tools: %s",
			toolName, strings.Join(registry.GetEnabledToolNames(), ", "))
	}

	provider, ok := tool.(tools.ExtendedHelpProvider)
	if !ok {
		return nil, fmt.Errorf("tool '%s' does not provide extended help. Tools with extended help: %s",
			toolName, strings.Join(registry.GetToolNamesWithExtendedHelp(), ", "))
	}

	response := &ToolHelpResponse{
		ToolName:     toolName,
		Description:  tool.Definition().Description,
		ExtendedInfo: provider.ProvideExtendedInfo(),
	}

	jsonBytes, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
