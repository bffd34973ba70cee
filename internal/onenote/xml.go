package onenote

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/notegest/internal/notebook"
)

// Namespace is the OneNote 2013 schema namespace. Elements are matched by
// local name so 2010 exports parse too.
const Namespace = "http://schemas.microsoft.com/office/onenote/2013/onenote"

func newDecoder(data []byte) *xml.Decoder {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	dec := xml.NewDecoder(bytes.NewReader(data))
	// Automation output is re-encoded as UTF-8 whatever the declaration says.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	return dec
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// ParseHierarchy reads GetHierarchy output. Section groups are flattened and
// anything in the recycle bin is skipped.
func ParseHierarchy(data []byte) (*notebook.Hierarchy, error) {
	dec := newDecoder(data)
	h := &notebook.Hierarchy{}

	var nb *notebook.Notebook
	var sec *notebook.Section
	recycleDepth := 0
	depth := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse hierarchy: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			if recycleDepth > 0 {
				continue
			}
			if attr(el, "isRecycleBin") == "true" || attr(el, "isInRecycleBin") == "true" {
				recycleDepth = depth
				continue
			}
			switch el.Name.Local {
			case "Notebook":
				h.Notebooks = append(h.Notebooks, notebook.Notebook{ID: attr(el, "ID"), Name: attr(el, "name")})
				nb = &h.Notebooks[len(h.Notebooks)-1]
				sec = nil
			case "Section":
				if nb == nil {
					// Hierarchy rooted below a notebook.
					h.Notebooks = append(h.Notebooks, notebook.Notebook{})
					nb = &h.Notebooks[len(h.Notebooks)-1]
				}
				nb.Sections = append(nb.Sections, notebook.Section{ID: attr(el, "ID"), Name: attr(el, "name")})
				sec = &nb.Sections[len(nb.Sections)-1]
			case "Page":
				if sec == nil {
					continue
				}
				sec.Pages = append(sec.Pages, notebook.PageRef{ID: attr(el, "ID"), Name: attr(el, "name")})
			}
		case xml.EndElement:
			if recycleDepth == depth {
				recycleDepth = 0
			}
			depth--
			if recycleDepth > 0 {
				continue
			}
			switch el.Name.Local {
			case "Section":
				sec = nil
			case "Notebook":
				nb, sec = nil, nil
			}
		}
	}
	return h, nil
}

// PageText returns the text of every T element in page XML, one per line,
// in document order. T payloads are HTML fragments; their markup is dropped.
func PageText(data []byte) (string, error) {
	_, text, err := ParsePage(data)
	return text, err
}

// ParsePage returns the page's name attribute along with its text.
func ParsePage(data []byte) (name, text string, err error) {
	dec := newDecoder(data)

	var lines []string
	var cur strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", "", fmt.Errorf("parse page: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "Page":
				if name == "" {
					name = attr(el, "name")
				}
			case "T":
				inText = true
				cur.Reset()
			}
		case xml.CharData:
			if inText {
				cur.Write(el)
			}
		case xml.EndElement:
			if el.Name.Local == "T" && inText {
				inText = false
				if t := strings.TrimSpace(StripHTML(cur.String())); t != "" {
					lines = append(lines, t)
				}
			}
		}
	}
	return name, strings.Join(lines, "\n"), nil
}

// StripHTML returns the text content of an HTML fragment with entities
// decoded. Line breaks become newlines.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}
	z := html.NewTokenizer(strings.NewReader(fragment))
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" {
				sb.WriteByte('\n')
			}
		}
	}
}
