package pdfdoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCaseInsensitive(t *testing.T) {
	doc := &fakeDoc{pages: []string{"The Quick Brown Fox", "no foxes here, just a FOX"}}

	result, err := Search(doc, "fox", 5, 0)
	require.NoError(t, err)

	require.Len(t, result.Matches, 3)
	assert.Equal(t, 1, result.Matches[0].Page)
	assert.Equal(t, 16, result.Matches[0].Offset)
	assert.Equal(t, 2, result.Matches[1].Page)
	assert.Equal(t, 3, result.Matches[1].Offset)
	assert.Equal(t, 2, result.Matches[2].Page)
	assert.Equal(t, 22, result.Matches[2].Offset)
	assert.Equal(t, 3, result.TotalMatches)
	assert.False(t, result.Truncated)
}

func TestSearchOrderingPageThenOffset(t *testing.T) {
	doc := &fakeDoc{pages: []string{"b a b", "a b a"}}

	result, err := Search(doc, "a", 0, 0)
	require.NoError(t, err)

	require.Len(t, result.Matches, 3)
	for i := 1; i < len(result.Matches); i++ {
		prev, cur := result.Matches[i-1], result.Matches[i]
		inOrder := cur.Page > prev.Page || (cur.Page == prev.Page && cur.Offset > prev.Offset)
		assert.True(t, inOrder, "match %d out of order", i)
	}
}

func TestSearchNonOverlappingMatches(t *testing.T) {
	doc := &fakeDoc{pages: []string{"aaaa"}}

	result, err := Search(doc, "aa", 0, 0)
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, 0, result.Matches[0].Offset)
	assert.Equal(t, 2, result.Matches[1].Offset)
}

func TestSearchContextWindow(t *testing.T) {
	page := strings.Repeat("x", 50) + "needle" + strings.Repeat("y", 50)
	doc := &fakeDoc{pages: []string{page}}

	result, err := Search(doc, "needle", 10, 0)
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	m := result.Matches[0]
	assert.Equal(t, 50, m.Offset)
	assert.Equal(t, strings.Repeat("x", 10)+"needle"+strings.Repeat("y", 10), m.Context)
	assert.LessOrEqual(t, len(m.Context), 2*10+len("needle"))
}

func TestSearchContextClippedAtPageBounds(t *testing.T) {
	doc := &fakeDoc{pages: []string{"needle at start", "ends with needle"}}

	result, err := Search(doc, "needle", 100, 0)
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, "needle at start", result.Matches[0].Context)
	assert.Equal(t, "ends with needle", result.Matches[1].Context)
}

func TestSearchContextPreservesOriginalCase(t *testing.T) {
	doc := &fakeDoc{pages: []string{"Before NEEDLE After"}}

	result, err := Search(doc, "needle", 4, 0)
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "ore NEEDLE Aft", result.Matches[0].Context)
}

func TestSearchMaxResults(t *testing.T) {
	doc := &fakeDoc{pages: []string{"a a a a a"}}

	result, err := Search(doc, "a", 0, 3)
	require.NoError(t, err)

	assert.Len(t, result.Matches, 3)
	assert.Equal(t, 5, result.TotalMatches)
	assert.True(t, result.Truncated)
}

func TestSearchMaxResultsExactFit(t *testing.T) {
	doc := &fakeDoc{pages: []string{"a a a"}}

	result, err := Search(doc, "a", 0, 3)
	require.NoError(t, err)

	assert.Len(t, result.Matches, 3)
	assert.Equal(t, 3, result.TotalMatches)
	assert.False(t, result.Truncated)
}

func TestSearchNoMatches(t *testing.T) {
	doc := &fakeDoc{pages: []string{"nothing to see"}}

	result, err := Search(doc, "absent", 10, 0)
	require.NoError(t, err)

	assert.NotNil(t, result.Matches)
	assert.Empty(t, result.Matches)
	assert.Equal(t, 0, result.TotalMatches)
	assert.False(t, result.Truncated)
}

func TestSearchEmptyQuery(t *testing.T) {
	doc := &fakeDoc{pages: []string{"text"}}

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := Search(doc, query, 10, 0)
		assert.ErrorIs(t, err, ErrInvalidQuery, "query %q", query)
	}
}

func TestSearchNegativeContextChars(t *testing.T) {
	doc := &fakeDoc{pages: []string{"text"}}

	_, err := Search(doc, "text", -1, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
