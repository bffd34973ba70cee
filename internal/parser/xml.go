package parser

import (
	"io"

	"github.com/dgallion1/notegest/internal/notebook"
	"github.com/dgallion1/notegest/internal/onenote"
)

// PageXMLParser handles raw GetPageContent dumps saved to disk.
type PageXMLParser struct{}

func (p *PageXMLParser) Parse(r io.Reader, filename string) ([]notebook.PageContent, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	name, text, err := onenote.ParsePage(src)
	if err != nil {
		return nil, err
	}

	b := newPageBuilder(filename)
	if name != "" {
		b.page = name
	}
	b.text(text)
	return b.finish(), nil
}
