package pdf

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdf-tools/internal/pdfdoc"
	"github.com/sammcj/mcp-pdf-tools/internal/registry"
	"github.com/sammcj/mcp-pdf-tools/internal/tools"
	"github.com/sirupsen/logrus"
)

// ExtractTool extracts page-marked text from a page range.
type ExtractTool struct{}

// init registers the tool with the registry
func init() {
	registry.Register(&ExtractTool{})
}

// Definition returns the tool's definition for MCP registration
func (t *ExtractTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_extract_text",
		mcp.WithDescription("Extract text from a page range of a PDF. Output contains a '--- Page N ---' marker per page. Out-of-range pages are clamped to the document, not rejected. Use max_chars to cap the response size."),
		mcp.WithString("pdf_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF file"),
		),
		mcp.WithNumber("start_page",
			mcp.Description("First page to extract, 1-indexed (default: 1)"),
		),
		mcp.WithNumber("end_page",
			mcp.Description("Last page to extract, inclusive (default: last page)"),
		),
		mcp.WithNumber("max_chars",
			mcp.Description("Maximum characters to return; output is cut mid-page when exceeded (default: unlimited)"),
		),
	)
}

// Execute executes the tool's logic
func (t *ExtractTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	path, err := parsePDFPath(args)
	if err != nil {
		return nil, err
	}

	startPage, err := intArg(args, "start_page", 1)
	if err != nil {
		return nil, err
	}
	endPage, err := intArg(args, "end_page", 0)
	if err != nil {
		return nil, err
	}
	maxChars, err := intArg(args, "max_chars", pdfdoc.NoCharLimit)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"pdf_path":   path,
		"start_page": startPage,
		"end_page":   endPage,
		"max_chars":  maxChars,
	}).Info("Extracting PDF text")

	doc, err := openDocument(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := doc.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("Failed to close PDF document")
		}
	}()

	// end_page omitted or 0 means "to the last page".
	if endPage < 1 {
		endPage = doc.PageCount()
	}

	result, err := pdfdoc.Extract(doc, startPage, endPage, maxChars)
	if err != nil {
		return nil, err
	}

	response := map[string]any{
		"pdf_path":       path,
		"text":           result.Text,
		"pages_included": result.PagesIncluded,
		"start_page":     result.StartPage,
		"end_page":       result.EndPage,
		"total_pages":    doc.PageCount(),
		"truncated":      result.Truncated,
		"char_count":     result.CharCount,
	}
	if result.Truncated {
		response["note"] = fmt.Sprintf("Text truncated at %d characters. Use smaller page ranges or increase max_chars.", maxChars)
	}

	return newToolResultJSON(response)
}

// ProvideExtendedInfo implements the ExtendedHelpProvider interface
func (t *ExtractTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		WhenToUse:    "Use to read the actual content of a PDF once pdf_get_metadata has told you how large it is. Extract in page ranges rather than whole documents to keep responses within context limits.",
		WhenNotToUse: "Don't use on scanned documents without a text layer (pages come back empty; OCR is out of scope), and don't extract entire large documents in one call - use pdf_get_chunks to plan ranges first.",
		CommonPatterns: []string{
			"Whole small document: {\"pdf_path\": \"/docs/memo.pdf\"}",
			"Specific section: {\"pdf_path\": \"/docs/report.pdf\", \"start_page\": 12, \"end_page\": 18}",
			"Bounded response: {\"pdf_path\": \"/docs/book.pdf\", \"start_page\": 1, \"end_page\": 50, \"max_chars\": 30000}",
		},
		ParameterDetails: map[string]string{
			"start_page": "1-indexed. Values below 1 clamp to 1; values beyond the last page clamp to the last page.",
			"end_page":   "Inclusive. Omit (or pass 0) for the last page. An end_page before start_page collapses to start_page alone.",
			"max_chars":  "Caps len(text) including page markers. When hit, truncated=true and a note explains the cut.",
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "Pages come back as bare '--- Page N ---' markers with no text",
				Solution: "The page has no embedded text layer (likely a scanned image). The marker is still emitted so page positions stay visible.",
			},
			{
				Problem:  "Response is cut off mid-sentence",
				Solution: "max_chars was hit. Check the truncated flag and pages_included, then continue from the last included page with a new call.",
			},
		},
	}
}
