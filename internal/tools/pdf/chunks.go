package pdf

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdf-tools/internal/pdfdoc"
	"github.com/sammcj/mcp-pdf-tools/internal/registry"
	"github.com/sammcj/mcp-pdf-tools/internal/tools"
	"github.com/sirupsen/logrus"
)

// ChunksTool plans page ranges for reading a document in instalments.
type ChunksTool struct{}

// init registers the tool with the registry
func init() {
	registry.Register(&ChunksTool{})
}

// Definition returns the tool's definition for MCP registration
func (t *ChunksTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_get_chunks",
		mcp.WithDescription("Plan how to read a large PDF in pieces: returns page ranges sized by character budget, with optional page overlap between consecutive chunks. Feed each chunk's start_page/end_page to pdf_extract_text."),
		mcp.WithString("pdf_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF file"),
		),
		mcp.WithNumber("max_chars_per_chunk",
			mcp.Description("Character budget per chunk; a single page larger than this still forms its own chunk (default: 50000)"),
		),
		mcp.WithNumber("overlap_pages",
			mcp.Description("Pages shared between consecutive chunks for continuity (default: 1)"),
		),
	)
}

// Execute executes the tool's logic
func (t *ChunksTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	path, err := parsePDFPath(args)
	if err != nil {
		return nil, err
	}

	maxCharsPerChunk, err := intArg(args, "max_chars_per_chunk", 50000)
	if err != nil {
		return nil, err
	}
	overlapPages, err := intArg(args, "overlap_pages", 1)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"pdf_path":            path,
		"max_chars_per_chunk": maxCharsPerChunk,
		"overlap_pages":       overlapPages,
	}).Info("Planning PDF chunks")

	doc, err := openDocument(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := doc.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("Failed to close PDF document")
		}
	}()

	plan, err := pdfdoc.PlanChunks(doc, maxCharsPerChunk, overlapPages)
	if err != nil {
		return nil, err
	}

	return newToolResultJSON(map[string]any{
		"pdf_path":            path,
		"total_pages":         plan.TotalPages,
		"total_chunks":        plan.TotalChunks,
		"max_chars_per_chunk": plan.MaxCharsPerChunk,
		"overlap_pages":       plan.OverlapPages,
		"chunks":              plan.Chunks,
	})
}

// ProvideExtendedInfo implements the ExtendedHelpProvider interface
func (t *ChunksTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		WhenToUse:    "Use before reading a document too large for one pdf_extract_text call. The plan covers every page and each chunk fits the character budget (except single pages that exceed it on their own).",
		WhenNotToUse: "Don't use for small documents that fit in one extraction, and don't treat estimated_chars as exact - markers and separators added at extraction time are not counted.",
		CommonPatterns: []string{
			"Default plan: {\"pdf_path\": \"/docs/manual.pdf\"}",
			"Tighter chunks, no overlap: {\"pdf_path\": \"/docs/manual.pdf\", \"max_chars_per_chunk\": 20000, \"overlap_pages\": 0}",
		},
		ParameterDetails: map[string]string{
			"max_chars_per_chunk": "Must be >= 1. Sized against the sum of raw page text lengths.",
			"overlap_pages":       "Must be >= 0. Large overlaps are clamped so each chunk still starts at least one page after the previous one.",
		},
	}
}
