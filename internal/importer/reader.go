package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/MacroMan5/budgetmanager/internal/mapping"
)

// rawRow is one CSV record plus its 1-based position in the file,
// counted before header and skip rows are dropped.
type rawRow struct {
	cells []string
	index int
}

// readRows splits the file into data rows, honoring the mapping's
// skip-row count and header flag. Field counts vary across institutions
// so no fixed record length is enforced here; the normalizer checks each
// row against the mapping.
func readRows(r io.Reader, m mapping.Mapping) ([]rawRow, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	skip := m.SkipRows
	if m.HasHeader {
		skip++
	}
	if len(records) <= skip {
		return nil, nil
	}

	rows := make([]rawRow, 0, len(records)-skip)
	for i, rec := range records[skip:] {
		if isBlank(rec) {
			continue
		}
		rows = append(rows, rawRow{cells: rec, index: skip + i + 1})
	}
	return rows, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// stripBOM removes a leading UTF-8 byte order mark, which several banks
// prepend to their exports.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return strings.NewReader(string(buf[:n]))
	}
	if buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}
