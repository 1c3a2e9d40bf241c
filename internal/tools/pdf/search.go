package pdf

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdf-tools/internal/pdfdoc"
	"github.com/sammcj/mcp-pdf-tools/internal/registry"
	"github.com/sirupsen/logrus"
)

// SearchTool finds occurrences of a substring across all pages.
type SearchTool struct{}

// init registers the tool with the registry
func init() {
	registry.Register(&SearchTool{})
}

// Definition returns the tool's definition for MCP registration
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_search",
		mcp.WithDescription("Search a PDF for a case-insensitive substring. Returns each match's page number, offset within the page text, and surrounding context. Use this to locate content before extracting pages."),
		mcp.WithString("pdf_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF file"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for (case-insensitive, literal substring)"),
		),
		mcp.WithNumber("context_chars",
			mcp.Description("Characters of surrounding text to include on each side of a match (default: 200)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of matches to return (default: 50)"),
		),
	)
}

// Execute executes the tool's logic
func (t *SearchTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	path, err := parsePDFPath(args)
	if err != nil {
		return nil, err
	}

	query, _ := args["query"].(string)

	contextChars, err := intArg(args, "context_chars", 200)
	if err != nil {
		return nil, err
	}
	maxResults, err := intArg(args, "max_results", 50)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"pdf_path":    path,
		"query":       query,
		"max_results": maxResults,
	}).Info("Searching PDF")

	doc, err := openDocument(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := doc.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("Failed to close PDF document")
		}
	}()

	result, err := pdfdoc.Search(doc, query, contextChars, maxResults)
	if err != nil {
		return nil, err
	}

	return newToolResultJSON(map[string]any{
		"pdf_path":      path,
		"query":         result.Query,
		"matches":       result.Matches,
		"total_matches": result.TotalMatches,
		"total_pages":   doc.PageCount(),
		"truncated":     result.Truncated,
	})
}
