package pdf

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sammcj/mcp-pdf-tools/internal/pdfdoc"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestToolDefinitions(t *testing.T) {
	metadata := (&MetadataTool{}).Definition()
	assert.Equal(t, "pdf_get_metadata", metadata.Name)
	assert.NotEmpty(t, metadata.Description)
	assert.Contains(t, metadata.InputSchema.Required, "pdf_path")

	extract := (&ExtractTool{}).Definition()
	assert.Equal(t, "pdf_extract_text", extract.Name)
	assert.Contains(t, extract.InputSchema.Required, "pdf_path")
	for _, param := range []string{"start_page", "end_page", "max_chars"} {
		assert.Contains(t, extract.InputSchema.Properties, param)
		assert.NotContains(t, extract.InputSchema.Required, param)
	}

	search := (&SearchTool{}).Definition()
	assert.Equal(t, "pdf_search", search.Name)
	assert.Contains(t, search.InputSchema.Required, "pdf_path")
	assert.Contains(t, search.InputSchema.Required, "query")

	chunks := (&ChunksTool{}).Definition()
	assert.Equal(t, "pdf_get_chunks", chunks.Name)
	assert.Contains(t, chunks.InputSchema.Required, "pdf_path")
	for _, param := range []string{"max_chars_per_chunk", "overlap_pages"} {
		assert.Contains(t, chunks.InputSchema.Properties, param)
		assert.NotContains(t, chunks.InputSchema.Required, param)
	}
}

func TestExecuteRejectsBadPathArguments(t *testing.T) {
	logger := testLogger()
	cache := &sync.Map{}
	ctx := context.Background()

	badArgs := []map[string]any{
		{},                           // missing pdf_path
		{"pdf_path": "relative.pdf"}, // not absolute
		{"pdf_path": ""},             // empty
		{"pdf_path": 123},            // wrong type
	}

	for _, args := range badArgs {
		_, err := (&MetadataTool{}).Execute(ctx, logger, cache, args)
		assert.Error(t, err)

		_, err = (&ExtractTool{}).Execute(ctx, logger, cache, args)
		assert.Error(t, err)

		_, err = (&SearchTool{}).Execute(ctx, logger, cache, args)
		assert.Error(t, err)

		_, err = (&ChunksTool{}).Execute(ctx, logger, cache, args)
		assert.Error(t, err)
	}
}

func TestExecuteMissingFile(t *testing.T) {
	logger := testLogger()
	cache := &sync.Map{}
	ctx := context.Background()

	args := map[string]any{"pdf_path": "/nonexistent/no-such-file.pdf"}

	_, err := (&MetadataTool{}).Execute(ctx, logger, cache, args)
	require.Error(t, err)
	assert.ErrorIs(t, err, pdfdoc.ErrFileNotFound)
}

func TestExecuteCorruptFile(t *testing.T) {
	logger := testLogger()
	cache := &sync.Map{}
	ctx := context.Background()

	// A file that exists but is not a PDF.
	notPDF := filepath.Join(t.TempDir(), "not-a-pdf.pdf")
	require.NoError(t, os.WriteFile(notPDF, []byte("this is plain text, not a PDF"), 0600))

	_, err := (&MetadataTool{}).Execute(ctx, logger, cache, map[string]any{"pdf_path": notPDF})
	require.Error(t, err)
	assert.ErrorIs(t, err, pdfdoc.ErrCorruptDocument)
}

func TestExecuteFileSizeCeiling(t *testing.T) {
	logger := testLogger()
	cache := &sync.Map{}
	ctx := context.Background()

	t.Setenv("PDF_MAX_FILE_SIZE", "1") // 1MB ceiling

	big := filepath.Join(t.TempDir(), "big.pdf")
	require.NoError(t, os.WriteFile(big, make([]byte, 2*1024*1024), 0600))

	_, err := (&MetadataTool{}).Execute(ctx, logger, cache, map[string]any{"pdf_path": big})
	require.Error(t, err)
	assert.ErrorIs(t, err, pdfdoc.ErrInvalidParameter)
}

func TestExtractExecuteRejectsFractionalPageNumbers(t *testing.T) {
	logger := testLogger()
	cache := &sync.Map{}
	ctx := context.Background()

	_, err := (&ExtractTool{}).Execute(ctx, logger, cache, map[string]any{
		"pdf_path":   "/nonexistent/file.pdf",
		"start_page": 1.5,
	})
	assert.Error(t, err)
}
