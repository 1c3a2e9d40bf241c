package pdfdoc

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// NoCharLimit disables the character cap for Extract.
const NoCharLimit = -1

// ExtractionResult is the page-marked text of a page range.
type ExtractionResult struct {
	// Text is the concatenated output: one page marker per included page,
	// each followed by that page's extracted text.
	Text string `json:"text"`

	// PagesIncluded lists the page numbers that contributed to Text, in order.
	PagesIncluded []int `json:"pages_included"`

	// StartPage and EndPage are the clamped bounds that were extracted.
	StartPage int `json:"start_page"`
	EndPage   int `json:"end_page"`

	// Truncated reports whether a character cap cut the output short.
	Truncated bool `json:"truncated"`

	// CharCount equals len(Text).
	CharCount int `json:"char_count"`
}

// pageMarker delimits pages in extracted output so page boundaries remain
// locatable even for pages with no text layer.
func pageMarker(pageNum int) string {
	return fmt.Sprintf("--- Page %d ---\n", pageNum)
}

// ClampPageRange normalises a requested 1-indexed page range against a page
// count. Out-of-range values clamp silently rather than failing: a start
// below 1 clamps up to 1, a start beyond the last page clamps down to it,
// and an end beyond the last page clamps down to it. An end below the
// (clamped) start collapses to a single page.
func ClampPageRange(startPage, endPage, pageCount int) (int, int) {
	if startPage < 1 {
		startPage = 1
	}
	if startPage > pageCount {
		startPage = pageCount
	}
	if endPage > pageCount {
		endPage = pageCount
	}
	if endPage < startPage {
		endPage = startPage
	}
	return startPage, endPage
}

// Extract concatenates the text of pages startPage..endPage with page
// markers. maxChars caps the total output length in bytes; pass NoCharLimit
// (or any negative value) for no cap. When the cap is hit mid-page the
// output is cut at that boundary and Truncated is set; no further pages are
// emitted.
func Extract(doc Document, startPage, endPage, maxChars int) (*ExtractionResult, error) {
	if doc.PageCount() < 1 {
		return &ExtractionResult{}, nil
	}
	startPage, endPage = ClampPageRange(startPage, endPage, doc.PageCount())

	var buf strings.Builder
	result := &ExtractionResult{
		StartPage: startPage,
		EndPage:   endPage,
	}

	for pageNum := startPage; pageNum <= endPage; pageNum++ {
		text, err := doc.PageText(pageNum)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d: %w", pageNum, err)
		}

		segment := pageMarker(pageNum) + text
		if pageNum > startPage {
			segment = "\n\n" + segment
		}

		if maxChars >= 0 && buf.Len()+len(segment) > maxChars {
			remaining := maxChars - buf.Len()
			if cut := truncateToRuneBoundary(segment, remaining); cut != "" {
				buf.WriteString(cut)
				result.PagesIncluded = append(result.PagesIncluded, pageNum)
			}
			result.Truncated = true
			break
		}

		buf.WriteString(segment)
		result.PagesIncluded = append(result.PagesIncluded, pageNum)
	}

	result.Text = buf.String()
	result.CharCount = len(result.Text)
	return result, nil
}

// truncateToRuneBoundary cuts s to at most n bytes without splitting a
// UTF-8 sequence.
func truncateToRuneBoundary(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
