package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// LoadCSV reads a delimited file into a table. The first row is the header.
// Structural problems (ragged rows, bad quoting, empty file) are returned to
// the caller; the pipeline driver decides whether to fall back to LoadCSVHead.
func LoadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, record)
	}

	return New(header, rows)
}

// LoadCSVHead is the lenient recovery loader: it reads at most maxRows data
// rows, tolerates ragged rows, and skips rows it cannot parse at all. Record
// identifiers are always synthesized, ignoring any record_id column, so a
// partially read file cannot alias real identifiers.
func LoadCSVHead(path string, maxRows int) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Renaming the id column forces synthesized identifiers.
	for i, col := range header {
		if col == IDColumn {
			header[i] = IDColumn + "_raw"
		}
	}

	var rows [][]string
	skipped := 0
	for len(rows) < maxRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, record)
	}

	t, err := New(header, rows)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		fmt.Printf("Recovery load: skipped %d unreadable rows\n", skipped)
	}
	return t, nil
}
