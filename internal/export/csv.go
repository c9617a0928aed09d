package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/azraattar/deduplication-system/internal/dedupe"
)

// Sink is an extra destination for a run's predictions, beyond the CSV
// artifact every run writes.
type Sink interface {
	Name() string
	Save(runID string, candidates []dedupe.Candidate) error
}

// Header is the fixed column order of the predictions artifact.
var Header = []string{"record_id_l", "record_id_r", "match_score", "match_tier"}

// WriteCSV writes the predictions artifact to path, creating parent
// directories and fully overwriting any previous artifact.
func WriteCSV(path string, candidates []dedupe.Candidate) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, c := range candidates {
		row := []string{
			c.RecordIDL,
			c.RecordIDR,
			strconv.FormatFloat(c.Score, 'f', 4, 64),
			string(c.Tier),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSV loads a predictions artifact back for the collaborators (the
// evaluator and the web results view). The core never reads its own output.
func ReadCSV(path string) ([]dedupe.Candidate, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[col] = i
	}
	for _, required := range []string{"record_id_l", "record_id_r"} {
		if _, ok := colIdx[required]; !ok {
			return nil, fmt.Errorf("predictions file %s missing column %q", path, required)
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	candidates := make([]dedupe.Candidate, 0, len(rows))
	for _, row := range rows {
		c := dedupe.Candidate{
			RecordIDL: row[colIdx["record_id_l"]],
			RecordIDR: row[colIdx["record_id_r"]],
		}
		if i, ok := colIdx["match_score"]; ok && i < len(row) {
			c.Score, _ = strconv.ParseFloat(row[i], 64)
		}
		if i, ok := colIdx["match_tier"]; ok && i < len(row) {
			c.Tier = dedupe.Tier(row[i])
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}
