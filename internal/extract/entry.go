package extract

// Entry is one business entry. Optional fields are empty when their
// pattern did not match and are omitted from JSON.
type Entry struct {
	SourceNotebook string `json:"source_notebook"`
	SourceSection  string `json:"source_section"`
	SourcePage     string `json:"source_page"`
	RawContent     string `json:"raw_content"`
	Underwriter    string `json:"underwriter,omitempty"`
	Company        string `json:"company,omitempty"`
	Broker         string `json:"broker,omitempty"`
	Dates          string `json:"dates,omitempty"`
	PrimaryDate    string `json:"primary_date,omitempty"`
	Amounts        string `json:"amounts,omitempty"`
}

// Columns lists every entry field in export order.
var Columns = []string{
	"source_notebook",
	"source_section",
	"source_page",
	"raw_content",
	"underwriter",
	"company",
	"broker",
	"dates",
	"primary_date",
	"amounts",
}

// Field returns the value stored under a column name and whether the entry
// carries it. Source columns are always present.
func (e Entry) Field(column string) (string, bool) {
	switch column {
	case "source_notebook":
		return e.SourceNotebook, true
	case "source_section":
		return e.SourceSection, true
	case "source_page":
		return e.SourcePage, true
	case "raw_content":
		return e.RawContent, true
	case "underwriter":
		return e.Underwriter, e.Underwriter != ""
	case "company":
		return e.Company, e.Company != ""
	case "broker":
		return e.Broker, e.Broker != ""
	case "dates":
		return e.Dates, e.Dates != ""
	case "primary_date":
		return e.PrimaryDate, e.PrimaryDate != ""
	case "amounts":
		return e.Amounts, e.Amounts != ""
	}
	return "", false
}
