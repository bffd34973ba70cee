package parser

import (
	"strings"
	"testing"
)

func TestTextParser_SinglePage(t *testing.T) {
	input := "Underwriter: Acme Corp\n\n\nEffective: 01/02/2023\n   \n"
	p := &TextParser{}
	pages, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	pg := pages[0]
	if pg.Notebook != "notes" || pg.Page != "notes" {
		t.Errorf("expected notebook and page %q, got %q/%q", "notes", pg.Notebook, pg.Page)
	}
	if pg.Text != "Underwriter: Acme Corp\nEffective: 01/02/2023" {
		t.Errorf("blank lines should be dropped, got %q", pg.Text)
	}
}

func TestTextParser_FormFeedSplitsPages(t *testing.T) {
	input := "first page\fsecond page\n\f\ffourth"
	p := &TextParser{}
	pages, err := p.Parse(strings.NewReader(input), "dump.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 non-empty pages, got %d", len(pages))
	}
	want := []string{"Page 1", "Page 2", "Page 4"}
	for i, w := range want {
		if pages[i].Page != w {
			t.Errorf("page[%d]: expected %q, got %q", i, w, pages[i].Page)
		}
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	pages, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected 0 pages for empty input, got %d", len(pages))
	}
}

func TestSplitPages_TrailingFormFeeds(t *testing.T) {
	pages := splitPages("/tmp/notes.pdf", "a\fb\f\f")
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d: %+v", len(pages), pages)
	}
	for i, want := range []struct{ page, text string }{{"Page 1", "a"}, {"Page 2", "b"}} {
		pg := pages[i]
		if pg.Page != want.page || pg.Text != want.text {
			t.Errorf("page[%d]: expected %q/%q, got %q/%q", i, want.page, want.text, pg.Page, pg.Text)
		}
		if pg.Notebook != "notes" || pg.Section != "" {
			t.Errorf("page[%d]: expected notebook %q and no section, got %q/%q", i, "notes", pg.Notebook, pg.Section)
		}
	}
}

func TestSplitPages_OnlyFormFeeds(t *testing.T) {
	if pages := splitPages("blank.pdf", "\f\f\f"); len(pages) != 0 {
		t.Errorf("expected no pages, got %+v", pages)
	}
}
