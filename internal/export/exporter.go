package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/dgallion1/notegest/internal/extract"
)

// Prefix starts every export file name.
const Prefix = "onenote_extracted_"

const stampLayout = "20060102_150405"

// Files names the two outputs of one export.
type Files struct {
	Stem string `json:"stem"`
	XLSX string `json:"xlsx"`
	JSON string `json:"json"`
	// TruncatedCells counts spreadsheet cells cut to the xlsx cell limit.
	// The JSON file always carries the full text.
	TruncatedCells int `json:"truncated_cells,omitempty"`
}

// Exporter writes timestamped export pairs into a directory.
type Exporter struct {
	dir string
	log *zap.Logger
	now func() time.Time
}

func NewExporter(dir string, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{dir: dir, log: log, now: time.Now}
}

// Dir is the output directory.
func (e *Exporter) Dir() string { return e.dir }

// Export writes entries to <dir>/onenote_extracted_<stamp>.xlsx and .json.
// A second export within the same second gets a numeric suffix rather than
// overwriting the first.
func (e *Exporter) Export(entries []extract.Entry) (Files, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("create output dir: %w", err)
	}

	stem, err := e.freeStem(Prefix + e.now().Format(stampLayout))
	if err != nil {
		return Files{}, err
	}
	files := Files{
		Stem: stem,
		XLSX: filepath.Join(e.dir, stem+".xlsx"),
		JSON: filepath.Join(e.dir, stem+".json"),
	}

	truncated, err := WriteXLSX(files.XLSX, NewTable(entries))
	if err != nil {
		return Files{}, err
	}
	if truncated > 0 {
		files.TruncatedCells = truncated
		e.log.Warn("xlsx cells truncated to the spreadsheet limit, json export is complete",
			zap.Int("cells", truncated),
			zap.Int("limit", excelize.TotalCellChars),
			zap.String("xlsx", files.XLSX),
		)
	}
	if err := WriteJSON(files.JSON, entries); err != nil {
		return files, err
	}

	e.log.Info("export written",
		zap.Int("entries", len(entries)),
		zap.String("xlsx", files.XLSX),
		zap.String("json", files.JSON),
	)
	return files, nil
}

func (e *Exporter) freeStem(base string) (string, error) {
	stem := base
	for i := 2; ; i++ {
		_, errX := os.Stat(filepath.Join(e.dir, stem+".xlsx"))
		_, errJ := os.Stat(filepath.Join(e.dir, stem+".json"))
		if errors.Is(errX, fs.ErrNotExist) && errors.Is(errJ, fs.ErrNotExist) {
			return stem, nil
		}
		if i > 1000 {
			return "", fmt.Errorf("no free export name for %s", base)
		}
		stem = fmt.Sprintf("%s_%d", base, i)
	}
}
