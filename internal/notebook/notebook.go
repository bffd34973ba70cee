package notebook

import "fmt"

// Hierarchy is the notebook tree reported by the automation interface.
type Hierarchy struct {
	Notebooks []Notebook
}

// Notebook is a top-level container. Pages inside section groups are
// flattened into the notebook's section list.
type Notebook struct {
	ID       string
	Name     string
	Sections []Section
}

// Section holds page references in display order.
type Section struct {
	ID    string
	Name  string
	Pages []PageRef
}

// PageRef identifies a page whose content has not been fetched yet.
type PageRef struct {
	ID   string
	Name string
}

// PageCount returns the number of page references in the hierarchy.
func (h *Hierarchy) PageCount() int {
	n := 0
	for _, nb := range h.Notebooks {
		for _, s := range nb.Sections {
			n += len(s.Pages)
		}
	}
	return n
}

// PageContent is the plain text of one page plus where it came from.
type PageContent struct {
	Notebook string `json:"notebook"`
	Section  string `json:"section"`
	Page     string `json:"page"`
	PageID   string `json:"page_id,omitempty"`
	Text     string `json:"content"`
}

// PageError records why a single page could not be read.
type PageError struct {
	Notebook string
	Section  string
	Page     string
	PageID   string
	Err      error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %q (%s / %s): %v", e.Page, e.Notebook, e.Section, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Extraction is the result of reading one notebook source. Failed pages do
// not abort extraction; they are collected in Failures.
type Extraction struct {
	Pages    []PageContent
	Failures []*PageError
}

// Add appends a page, ignoring pages without text.
func (x *Extraction) Add(p PageContent) bool {
	if isBlank(p.Text) {
		return false
	}
	x.Pages = append(x.Pages, p)
	return true
}

// Fail records a page-level failure.
func (x *Extraction) Fail(ref PageContent, err error) {
	x.Failures = append(x.Failures, &PageError{
		Notebook: ref.Notebook,
		Section:  ref.Section,
		Page:     ref.Page,
		PageID:   ref.PageID,
		Err:      err,
	})
}

func isBlank(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
		default:
			return false
		}
	}
	return true
}
