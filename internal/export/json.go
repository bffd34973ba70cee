package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgallion1/notegest/internal/extract"
)

// WriteJSON writes entries to path as an indented array. Non-ASCII text and
// <>& are written as-is.
func WriteJSON(path string, entries []extract.Entry) error {
	if entries == nil {
		entries = []extract.Entry{}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
