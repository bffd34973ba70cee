package extract

import (
	"regexp"
	"strings"

	"github.com/dgallion1/notegest/internal/notebook"
)

// Field values stay on the label's line.
const value = `([A-Za-z &,.'\-]+)`

var (
	underwriterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)underwriter:[ \t]*` + value),
		regexp.MustCompile(`(?i)underwritten[ \t]+by[ \t]+` + value),
	}
	companyPattern         = regexp.MustCompile(`(?i)(?:company|business|client|account):[ \t]*` + value)
	brokerPattern          = regexp.MustCompile(`(?i)broker:[ \t]*` + value)
	companyFallbackPattern = regexp.MustCompile(`([A-Z][a-z]+[ \t]+[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)*)[ \t]*(?:LLC|INC|CORP|COMPANY)`)
)

// Fields pulls the typed fields out of an accepted chunk. RawContent and the
// source fields are left for the caller.
func Fields(chunk string) Entry {
	var e Entry

	for _, re := range underwriterPatterns {
		if v := firstCapture(re, chunk); v != "" {
			e.Underwriter = v
			break
		}
	}
	e.Company = firstCapture(companyPattern, chunk)
	if e.Company == "" {
		e.Company = firstCapture(companyFallbackPattern, chunk)
	}
	e.Broker = firstCapture(brokerPattern, chunk)

	if dates := datePattern.FindAllString(chunk, -1); len(dates) > 0 {
		e.Dates = strings.Join(dates, ", ")
		e.PrimaryDate = dates[0]
	}
	if amounts := amountPattern.FindAllString(chunk, -1); len(amounts) > 0 {
		e.Amounts = strings.Join(amounts, ", ")
	}
	return e
}

// FromChunk builds a complete entry for a chunk found on page.
func FromChunk(page notebook.PageContent, chunk string) Entry {
	e := Fields(chunk)
	e.SourceNotebook = page.Notebook
	e.SourceSection = page.Section
	e.SourcePage = page.Page
	e.RawContent = chunk
	return e
}

func firstCapture(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
