package pdfdoc

import (
	"fmt"
	"strings"
)

// SearchMatch is one occurrence of the query within the document.
type SearchMatch struct {
	// Page is the 1-indexed page the match occurs on.
	Page int `json:"page"`

	// Offset is the byte offset of the match within the page's text.
	Offset int `json:"match_offset"`

	// Context is the surrounding page text, clipped to the page bounds.
	Context string `json:"context"`
}

// SearchResult is the outcome of a document-wide substring search.
type SearchResult struct {
	Query   string        `json:"query"`
	Matches []SearchMatch `json:"matches"`

	// TotalMatches counts every occurrence in the document, including those
	// beyond the match cap.
	TotalMatches int `json:"total_matches"`

	// Truncated reports whether the match cap left occurrences unreturned.
	Truncated bool `json:"truncated"`
}

// Search scans every page for case-insensitive, non-overlapping occurrences
// of query, left to right. Each match carries up to contextChars of
// surrounding text on either side, clipped at the page bounds. At most
// maxResults matches are returned; maxResults < 1 means no cap. The scan
// still counts occurrences past the cap so TotalMatches is exact.
// An empty or whitespace-only query fails with ErrInvalidQuery.
func Search(doc Document, query string, contextChars, maxResults int) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrInvalidQuery)
	}
	if contextChars < 0 {
		return nil, fmt.Errorf("%w: context_chars must be >= 0, got %d", ErrInvalidParameter, contextChars)
	}

	result := &SearchResult{
		Query:   query,
		Matches: []SearchMatch{},
	}
	needle := strings.ToLower(query)

	for pageNum := 1; pageNum <= doc.PageCount(); pageNum++ {
		text, err := doc.PageText(pageNum)
		if err != nil {
			return nil, fmt.Errorf("searching page %d: %w", pageNum, err)
		}

		haystack := strings.ToLower(text)
		for pos := 0; ; {
			idx := strings.Index(haystack[pos:], needle)
			if idx < 0 {
				break
			}
			offset := pos + idx
			result.TotalMatches++

			if maxResults < 1 || len(result.Matches) < maxResults {
				result.Matches = append(result.Matches, SearchMatch{
					Page:    pageNum,
					Offset:  offset,
					Context: contextWindow(text, offset, len(needle), contextChars),
				})
			}

			// Non-overlapping: resume after the matched text.
			pos = offset + len(needle)
		}
	}

	result.Truncated = result.TotalMatches > len(result.Matches)
	return result, nil
}

// contextWindow returns the text surrounding a match, extending up to
// contextChars bytes on each side without crossing the page bounds.
func contextWindow(text string, offset, matchLen, contextChars int) string {
	start := offset - contextChars
	if start < 0 {
		start = 0
	}
	end := offset + matchLen + contextChars
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}
