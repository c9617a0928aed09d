package table

import (
	"fmt"
	"strings"
)

// IDColumn is the reserved identifier column name. When the input carries a
// column with this name its values are used as record identifiers; otherwise
// sequential identifiers are synthesized at load time.
const IDColumn = "record_id"

// Table is an immutable in-memory view of one loaded dataset: an ordered set
// of column names plus row-major string cells. Empty cells are missing.
type Table struct {
	columns  []string
	colIndex map[string]int
	ids      []string
	rows     [][]string
	idSynth  bool
}

// New builds a table from a header and row slice. Rows shorter than the
// header are padded with missing cells; longer rows are truncated. Record
// identifiers come from an existing record_id column or are synthesized.
func New(columns []string, rows [][]string) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}

	colIndex := make(map[string]int, len(columns))
	for i, col := range columns {
		col = strings.TrimSpace(col)
		columns[i] = col
		if _, exists := colIndex[col]; exists {
			return nil, fmt.Errorf("duplicate column name %q", col)
		}
		colIndex[col] = i
	}

	normalized := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) == len(columns) {
			normalized[i] = row
			continue
		}
		fixed := make([]string, len(columns))
		copy(fixed, row)
		normalized[i] = fixed
	}

	t := &Table{
		columns:  columns,
		colIndex: colIndex,
		rows:     normalized,
	}

	idCol, hasID := colIndex[IDColumn]
	t.idSynth = !hasID
	t.ids = make([]string, len(normalized))
	for i, row := range normalized {
		if hasID && strings.TrimSpace(row[idCol]) != "" {
			t.ids[i] = strings.TrimSpace(row[idCol])
		} else {
			t.ids[i] = fmt.Sprintf("REC_%06d", i)
		}
	}

	return t, nil
}

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	return t.columns
}

// NumRows returns the number of records.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIndex[name]
	return ok
}

// RecordID returns the identifier of the record at row i.
func (t *Table) RecordID(i int) string {
	return t.ids[i]
}

// SyntheticIDs reports whether record identifiers were synthesized rather
// than taken from a record_id column.
func (t *Table) SyntheticIDs() bool {
	return t.idSynth
}

// Value returns the raw cell for (row, column) and whether it is present.
// An unknown column or blank cell is reported as absent.
func (t *Table) Value(row int, column string) (string, bool) {
	idx, ok := t.colIndex[column]
	if !ok {
		return "", false
	}
	v := t.rows[row][idx]
	if strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Row returns the raw cells of row i in column order.
func (t *Table) Row(i int) []string {
	return t.rows[i]
}
