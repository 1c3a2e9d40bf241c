// Package pdfdoc implements document windowing over PDF files: metadata
// reporting, page-range text extraction, substring search and chunk
// planning. PDF parsing is delegated to ledongthuc/pdf for per-page text
// and pdfcpu for structural validation; this package implements neither a
// parser nor a layout engine.
package pdfdoc

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Document is the page-level view the windowing operations consume.
// Page numbers are 1-indexed throughout.
type Document interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// PageText returns the extracted plain text of a page. A page with no
	// embedded text layer (e.g. a scanned page) yields an empty string,
	// not an error.
	PageText(pageNum int) (string, error)
}

// File is an open PDF backed by the filesystem. It holds an open file
// handle for the duration of a single request; callers must Close it on
// every exit path.
type File struct {
	path   string
	size   int64
	file   *os.File
	reader *pdf.Reader

	// pageTexts memoises per-page extraction within this handle's lifetime.
	// Search and chunk planning revisit pages; nothing outlives the request.
	pageTexts map[int]string
}

// Open validates and opens a PDF by absolute path.
// It fails with ErrFileNotFound when the path does not resolve to a
// readable file, and with ErrCorruptDocument when the file cannot be
// interpreted as a PDF (including encrypted documents that cannot be
// unlocked).
func Open(path string) (*File, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileNotFound, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}

	// Structural validation via pdfcpu catches truncated cross-reference
	// tables and locked encrypted files before the text reader touches them.
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, path, err)
	}

	f, reader, err := openReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, path, err)
	}

	return &File{
		path:      path,
		size:      info.Size(),
		file:      f,
		reader:    reader,
		pageTexts: make(map[int]string),
	}, nil
}

// openReader wraps pdf.Open with panic recovery; the reader panics on some
// malformed cross-reference streams instead of returning an error.
func openReader(path string) (f *os.File, reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			if f != nil {
				_ = f.Close()
				f = nil
			}
			reader = nil
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, reader, err = pdf.Open(path)
	return f, reader, err
}

// Close releases the underlying file handle.
func (d *File) Close() error {
	return d.file.Close()
}

// Path returns the absolute path the document was opened from.
func (d *File) Path() string {
	return d.path
}

// FileSize returns the document size in bytes.
func (d *File) FileSize() int64 {
	return d.size
}

// PageCount returns the number of pages in the document.
func (d *File) PageCount() int {
	return d.reader.NumPage()
}

// PageText extracts the plain text of a single page. Extraction failures on
// individual pages (missing text layer, broken content stream) map to empty
// text rather than errors so page iteration always makes progress.
func (d *File) PageText(pageNum int) (string, error) {
	if pageNum < 1 || pageNum > d.PageCount() {
		return "", fmt.Errorf("%w: page %d out of range 1-%d", ErrInvalidParameter, pageNum, d.PageCount())
	}

	if text, ok := d.pageTexts[pageNum]; ok {
		return text, nil
	}

	text := extractPageText(d.reader, pageNum)
	d.pageTexts[pageNum] = text
	return text, nil
}

// extractPageText recovers from panics in the content stream decoder;
// a page the decoder cannot handle yields empty text.
func extractPageText(reader *pdf.Reader, pageNum int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
