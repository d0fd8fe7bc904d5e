// Package inventory turns rows of the inscription inventory into gazetteer
// places: one place per administrative level mentioned in a row, linked to
// the levels above it.
package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/andreiashu/gazetteer"
)

// CNumber is the row key of the inscription number.
const CNumber = "cnumber"

// Row is one inventory line keyed by level name ("cnumber", "country", ...).
// An empty value means the level is not mentioned.
type Row map[string]string

// Columns maps row keys to CSV header labels. A key with an empty label is
// not read.
type Columns map[string]string

// DefaultColumns returns the header labels of the inventory spreadsheet.
func DefaultColumns() Columns {
	return Columns{
		CNumber:    "N° C.",
		"country":  "Pays",
		"province": "Province  (Tỉnh, Thành Phố)",
		"district": "District (Huyện ou Thì xã)",
		"commune":  "Commune  (Xã)",
		"village":  "Village  (Thôn)",
		"position": "Position",
	}
}

// ErrMissingColumn is returned when a configured header is absent.
var ErrMissingColumn = errors.New("missing column")

const bom = "\ufeff"

// ReadRows reads a CSV inventory with a header line. Headers are matched
// against cols after whitespace cleanup; every cell is cleaned the same way.
func ReadRows(r io.Reader, cols Columns) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}

	positions := make(map[string]int, len(header))
	for i, h := range header {
		positions[gazetteer.Clean(h)] = i
	}

	index := make(map[string]int, len(cols))
	var missing []string
	for key, label := range cols {
		if label == "" {
			continue
		}
		i, ok := positions[gazetteer.Clean(label)]
		if !ok {
			missing = append(missing, fmt.Sprintf("%s (%q)", key, label))
			continue
		}
		index[key] = i
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(rows)+1, err)
		}
		row := make(Row, len(index))
		for key, i := range index {
			if i < len(record) {
				row[key] = gazetteer.Clean(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
