package pdfdoc

import (
	"fmt"
	"strings"
)

// fakeDoc is an in-memory Document for exercising the windowing operations
// without real PDF fixtures. Page N's text is pages[N-1].
type fakeDoc struct {
	pages []string
}

func (d *fakeDoc) PageCount() int {
	return len(d.pages)
}

func (d *fakeDoc) PageText(pageNum int) (string, error) {
	if pageNum < 1 || pageNum > len(d.pages) {
		return "", fmt.Errorf("%w: page %d out of range 1-%d", ErrInvalidParameter, pageNum, len(d.pages))
	}
	return d.pages[pageNum-1], nil
}

// uniformDoc builds a document of pageCount pages whose text is each exactly
// charsPerPage bytes.
func uniformDoc(pageCount, charsPerPage int) *fakeDoc {
	pages := make([]string, pageCount)
	for i := range pages {
		pages[i] = strings.Repeat("x", charsPerPage)
	}
	return &fakeDoc{pages: pages}
}
