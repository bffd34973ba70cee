// Package parser turns exported notebook files into pages so they can run
// through the same chunking and validation as live notebooks.
package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/notegest/internal/notebook"
)

// ErrUnsupportedFormat is returned by ForFile for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Parser converts raw file bytes into pages.
type Parser interface {
	Parse(r io.Reader, filename string) ([]notebook.PageContent, error)
}

// SupportedExtensions lists file extensions that can be imported.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".xml":      true,
}

// Options carries parser settings from configuration.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".xml":
		return &PageXMLParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// baseName is the file name without directory or extension. It names the
// notebook every page of an imported file belongs to.
func baseName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// pageBuilder groups text lines into pages at headings. A top-level heading
// opens a section and a page; deeper headings open a page in the current
// section.
type pageBuilder struct {
	notebook string
	section  string
	page     string
	lines    []string
	pages    []notebook.PageContent
}

func newPageBuilder(filename string) *pageBuilder {
	name := baseName(filename)
	return &pageBuilder{notebook: name, page: name}
}

func (b *pageBuilder) heading(level int, title string) {
	b.flush()
	if level <= 1 {
		b.section = title
	}
	b.page = title
}

func (b *pageBuilder) text(s string) {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			b.lines = append(b.lines, line)
		}
	}
}

func (b *pageBuilder) flush() {
	if len(b.lines) > 0 {
		b.pages = append(b.pages, notebook.PageContent{
			Notebook: b.notebook,
			Section:  b.section,
			Page:     b.page,
			Text:     strings.Join(b.lines, "\n"),
		})
	}
	b.lines = nil
}

func (b *pageBuilder) finish() []notebook.PageContent {
	b.flush()
	return b.pages
}
