package notebook

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtraction_AddSkipsBlankPages(t *testing.T) {
	var x Extraction
	assert.False(t, x.Add(PageContent{Page: "empty", Text: " \n\t "}))
	assert.True(t, x.Add(PageContent{Page: "full", Text: "Underwriter: Acme"}))
	require.Len(t, x.Pages, 1)
	assert.Equal(t, "full", x.Pages[0].Page)
}

func TestExtraction_FailPreservesCause(t *testing.T) {
	cause := errors.New("bad markup")
	var x Extraction
	x.Fail(PageContent{Notebook: "Book", Section: "Q1", Page: "Acme", PageID: "{1}"}, cause)

	require.Len(t, x.Failures, 1)
	pe := x.Failures[0]
	assert.ErrorIs(t, pe, cause)
	assert.Equal(t, "{1}", pe.PageID)
	assert.Contains(t, pe.Error(), `page "Acme" (Book / Q1)`)
}

func TestHierarchy_PageCount(t *testing.T) {
	h := Hierarchy{Notebooks: []Notebook{
		{Sections: []Section{{Pages: []PageRef{{ID: "a"}, {ID: "b"}}}, {Pages: []PageRef{{ID: "c"}}}}},
		{Sections: []Section{{}}},
	}}
	assert.Equal(t, 3, h.PageCount())
}
