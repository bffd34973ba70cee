package extract

import (
	"regexp"
	"strings"
)

// Rules tunes entry validation.
type Rules struct {
	// AcceptUnderwritten lets "underwritten" count as an underwriter mention.
	AcceptUnderwritten bool
}

// DefaultRules returns the validation rules used when none are configured.
func DefaultRules() Rules {
	return Rules{AcceptUnderwritten: true}
}

var (
	datePattern          = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	amountPattern        = regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`)
	companyLabelPattern  = regexp.MustCompile(`(?i)(?:company|business|client|account):\s*[a-z]`)
	businessNamePattern  = regexp.MustCompile(`[A-Z][a-z]+\s+[A-Z][a-z]+\s+(?:LLC|INC|CORP|COMPANY)`)
	underwriterNAPattern = regexp.MustCompile(`(?i)underwrit(?:er|ten\s+by):?\s*n/a`)
)

// Valid reports whether a chunk looks like a business entry.
func (r Rules) Valid(chunk string) bool {
	// An underwriter explicitly marked N/A disqualifies the whole chunk.
	if underwriterNAPattern.MatchString(chunk) {
		return false
	}

	lower := strings.ToLower(chunk)
	notApplicable := strings.Contains(lower, "n/a")

	mentionsUnderwriter := strings.Contains(lower, "underwriter") ||
		(r.AcceptUnderwritten && strings.Contains(lower, "underwritten"))
	if mentionsUnderwriter && !notApplicable {
		return true
	}

	hasBroker := strings.Contains(lower, "broker") && !notApplicable
	hasCompany := companyLabelPattern.MatchString(chunk)
	hasBusinessName := businessNamePattern.MatchString(chunk)

	return (hasBroker || hasCompany || hasBusinessName) && datePattern.MatchString(chunk)
}

// Valid checks a chunk with DefaultRules.
func Valid(chunk string) bool {
	return DefaultRules().Valid(chunk)
}
