package pdf

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdf-tools/internal/registry"
	"github.com/sirupsen/logrus"
)

// MetadataTool reports document properties without extracting page text.
type MetadataTool struct{}

// init registers the tool with the registry
func init() {
	registry.Register(&MetadataTool{})
}

// Definition returns the tool's definition for MCP registration
func (t *MetadataTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_get_metadata",
		mcp.WithDescription("Get PDF document properties (title, author, page count, file size) without extracting any page text. Use this first to size up a document before extraction."),
		mcp.WithString("pdf_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF file"),
		),
	)
}

// Execute executes the tool's logic
func (t *MetadataTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	path, err := parsePDFPath(args)
	if err != nil {
		return nil, err
	}

	logger.WithField("pdf_path", path).Info("Reading PDF metadata")

	doc, err := openDocument(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := doc.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("Failed to close PDF document")
		}
	}()

	return newToolResultJSON(doc.Metadata())
}
