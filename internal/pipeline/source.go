package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/notegest/internal/notebook"
	"github.com/dgallion1/notegest/internal/parser"
)

// notebookExtensions are opened through OneNote itself.
var notebookExtensions = map[string]bool{
	".one":     true,
	".onepkg":  true,
	".onetoc2": true,
}

// IsNotebookFile reports whether path is a native OneNote file.
func IsNotebookFile(path string) bool {
	return notebookExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsSupported reports whether any source can read path.
func IsSupported(path string) bool {
	return IsNotebookFile(path) || parser.IsSupportedExtension(path)
}

// FileSource reads notebooks that were already exported to another format.
type FileSource struct {
	Options parser.Options
}

func (s FileSource) Extract(ctx context.Context, path string) (notebook.Extraction, error) {
	p, err := parser.ForFile(path, s.Options)
	if err != nil {
		return notebook.Extraction{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return notebook.Extraction{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	pages, err := p.Parse(f, path)
	if err != nil {
		return notebook.Extraction{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if err := ctx.Err(); err != nil {
		return notebook.Extraction{}, err
	}

	var ext notebook.Extraction
	for _, pg := range pages {
		ext.Add(pg)
	}
	return ext, nil
}

// Router sends exported files to Files and every other path, native
// notebooks included, to Live.
type Router struct {
	Live  Source
	Files Source
}

func (r Router) Extract(ctx context.Context, path string) (notebook.Extraction, error) {
	if parser.IsSupportedExtension(path) && r.Files != nil {
		return r.Files.Extract(ctx, path)
	}
	if r.Live == nil {
		return notebook.Extraction{}, fmt.Errorf("%s: live notebook automation is not configured", filepath.Base(path))
	}
	return r.Live.Extract(ctx, path)
}
