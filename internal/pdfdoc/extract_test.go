package pdfdoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampPageRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		pageCount  int
		wantStart  int
		wantEnd    int
	}{
		{name: "in range", start: 2, end: 4, pageCount: 5, wantStart: 2, wantEnd: 4},
		{name: "fully out of range clamps to whole document", start: 0, end: 999, pageCount: 5, wantStart: 1, wantEnd: 5},
		{name: "negative start clamps to first page", start: -3, end: 2, pageCount: 5, wantStart: 1, wantEnd: 2},
		{name: "start beyond last page clamps to last page", start: 9, end: 9, pageCount: 5, wantStart: 5, wantEnd: 5},
		{name: "end before start collapses to single page", start: 3, end: 2, pageCount: 5, wantStart: 3, wantEnd: 3},
		{name: "single page document", start: 1, end: 1, pageCount: 1, wantStart: 1, wantEnd: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := ClampPageRange(tt.start, tt.end, tt.pageCount)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestExtractMarkersAndOrder(t *testing.T) {
	doc := &fakeDoc{pages: []string{"alpha", "bravo", "charlie"}}

	result, err := Extract(doc, 1, 3, NoCharLimit)
	require.NoError(t, err)

	want := "--- Page 1 ---\nalpha\n\n--- Page 2 ---\nbravo\n\n--- Page 3 ---\ncharlie"
	assert.Equal(t, want, result.Text)
	assert.Equal(t, []int{1, 2, 3}, result.PagesIncluded)
	assert.False(t, result.Truncated)
	assert.Equal(t, len(result.Text), result.CharCount)
	assert.Equal(t, 1, result.StartPage)
	assert.Equal(t, 3, result.EndPage)
}

func TestExtractSubrange(t *testing.T) {
	doc := &fakeDoc{pages: []string{"one", "two", "three", "four"}}

	result, err := Extract(doc, 2, 3, NoCharLimit)
	require.NoError(t, err)

	assert.Equal(t, "--- Page 2 ---\ntwo\n\n--- Page 3 ---\nthree", result.Text)
	assert.Equal(t, []int{2, 3}, result.PagesIncluded)
}

func TestExtractEmptyPageKeepsMarker(t *testing.T) {
	doc := &fakeDoc{pages: []string{"text", "", "more"}}

	result, err := Extract(doc, 1, 3, NoCharLimit)
	require.NoError(t, err)

	assert.Contains(t, result.Text, "--- Page 2 ---\n")
	assert.Equal(t, []int{1, 2, 3}, result.PagesIncluded)
}

func TestExtractOutOfRangeClampsToWholeDocument(t *testing.T) {
	doc := uniformDoc(5, 10)

	result, err := Extract(doc, 0, 999, NoCharLimit)
	require.NoError(t, err)

	assert.Equal(t, 1, result.StartPage)
	assert.Equal(t, 5, result.EndPage)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, result.PagesIncluded)
}

func TestExtractTruncation(t *testing.T) {
	doc := &fakeDoc{pages: []string{strings.Repeat("a", 100), strings.Repeat("b", 100)}}

	limit := 120
	result, err := Extract(doc, 1, 2, limit)
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	assert.Equal(t, limit, result.CharCount)
	assert.Equal(t, limit, len(result.Text))
	// First page fits whole, second is cut mid-page.
	assert.Equal(t, []int{1, 2}, result.PagesIncluded)
}

func TestExtractTruncationExcludesUnreachedPages(t *testing.T) {
	doc := &fakeDoc{pages: []string{strings.Repeat("a", 50), strings.Repeat("b", 50), strings.Repeat("c", 50)}}

	// Budget covers page 1's segment only; page 2's separator pushes past it.
	result, err := Extract(doc, 1, 3, 66)
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	assert.LessOrEqual(t, result.CharCount, 66)
	assert.NotContains(t, result.PagesIncluded, 3)
}

func TestExtractZeroLimit(t *testing.T) {
	doc := uniformDoc(2, 10)

	result, err := Extract(doc, 1, 2, 0)
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	assert.Equal(t, "", result.Text)
	assert.Equal(t, 0, result.CharCount)
	assert.Empty(t, result.PagesIncluded)
}

func TestExtractTruncationRespectsRuneBoundaries(t *testing.T) {
	doc := &fakeDoc{pages: []string{strings.Repeat("é", 50)}}

	result, err := Extract(doc, 1, 1, 20)
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	assert.LessOrEqual(t, result.CharCount, 20)
	assert.True(t, strings.HasPrefix(result.Text, "--- Page 1 ---\n"))
	for _, r := range result.Text {
		assert.NotEqual(t, '�', r)
	}
}
