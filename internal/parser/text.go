package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/notegest/internal/notebook"
)

// TextParser handles plain text files. Form feeds separate pages.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]notebook.PageContent, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return splitPages(filename, string(src)), nil
}

// splitPages cuts text at form feeds. A single page is named after the
// file, several are numbered.
func splitPages(filename, text string) []notebook.PageContent {
	parts := strings.Split(text, "\f")
	b := newPageBuilder(filename)
	for i, part := range parts {
		if len(parts) > 1 {
			b.heading(2, fmt.Sprintf("Page %d", i+1))
		}
		b.text(part)
	}
	return b.finish()
}
