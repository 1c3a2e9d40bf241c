// Package pdf implements the PDF reading tools: metadata reporting, ranged
// text extraction, substring search and chunk planning. Each tool operates
// on an absolute filesystem path and opens the document for the duration of
// a single request.
package pdf

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdf-tools/internal/pdfdoc"
	"github.com/sammcj/mcp-pdf-tools/internal/security"
)

// DefaultMaxFileSizeMB caps the size of documents the tools will open.
// Override with the PDF_MAX_FILE_SIZE environment variable (in megabytes).
const DefaultMaxFileSizeMB = 200

// parsePDFPath extracts and validates the mandatory pdf_path argument.
func parsePDFPath(args map[string]any) (string, error) {
	raw, ok := args["pdf_path"]
	if !ok {
		return "", fmt.Errorf("missing required parameter: pdf_path")
	}
	path, ok := raw.(string)
	if !ok || path == "" {
		return "", fmt.Errorf("pdf_path must be a non-empty string")
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("pdf_path must be an absolute path, got: %s", path)
	}
	return filepath.Clean(path), nil
}

// openDocument runs the shared pre-open checks (access policy, size ceiling)
// and opens the document. Callers must Close the returned handle.
func openDocument(path string) (*pdfdoc.File, error) {
	if err := security.CheckFileAccess(path); err != nil {
		return nil, err
	}

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		if maxBytes := maxFileSizeBytes(); info.Size() > maxBytes {
			return nil, fmt.Errorf("%w: file is %.1fMB, limit is %dMB (set PDF_MAX_FILE_SIZE to raise it)",
				pdfdoc.ErrInvalidParameter, float64(info.Size())/(1024*1024), maxBytes/(1024*1024))
		}
	}

	return pdfdoc.Open(path)
}

// maxFileSizeBytes resolves the file size ceiling from the environment.
func maxFileSizeBytes() int64 {
	limitMB := int64(DefaultMaxFileSizeMB)
	if env := os.Getenv("PDF_MAX_FILE_SIZE"); env != "" {
		if parsed, err := strconv.ParseInt(env, 10, 64); err == nil && parsed > 0 {
			limitMB = parsed
		}
	}
	return limitMB * 1024 * 1024
}

// intArg reads an optional integer argument. JSON numbers arrive as float64;
// integral values are accepted in any numeric representation.
func intArg(args map[string]any, key string, defaultValue int) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return defaultValue, nil
	}

	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer, got %v", key, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer, got %v", key, v)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, raw)
	}
}

// newToolResultJSON creates a new tool result with indented JSON content
func newToolResultJSON(data any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}
