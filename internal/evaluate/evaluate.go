// Package evaluate computes pair-level accuracy of a predictions artifact
// against a separately labeled ground-truth table. It shares the symmetric
// pair-identity rule with the matching core: (A,B) and (B,A) are one pair.
package evaluate

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/azraattar/deduplication-system/internal/export"
)

// Metrics holds pairwise precision/recall against the labeled ground truth.
type Metrics struct {
	TrueDuplicates      int
	PredictedDuplicates int
	TruePositives       int
	FalsePositives      int
	FalseNegatives      int
	Precision           float64
	Recall              float64
	F1Score             float64
}

type pair struct {
	l, r string
}

func makePair(a, b string) pair {
	if b < a {
		a, b = b, a
	}
	return pair{l: a, r: b}
}

// Evaluate compares the predictions artifact against a ground-truth table
// with record_id, is_duplicate and original_id columns: each labeled
// duplicate contributes the (record_id, original_id) pair.
func Evaluate(predictionsPath, truthPath string) (*Metrics, error) {
	predicted, err := loadPredictedPairs(predictionsPath)
	if err != nil {
		return nil, err
	}

	truth, err := loadTruthPairs(truthPath)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		TrueDuplicates:      len(truth),
		PredictedDuplicates: len(predicted),
	}

	for p := range predicted {
		if _, ok := truth[p]; ok {
			m.TruePositives++
		} else {
			m.FalsePositives++
		}
	}
	m.FalseNegatives = len(truth) - m.TruePositives

	if m.TruePositives+m.FalsePositives > 0 {
		m.Precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}
	if m.TruePositives+m.FalseNegatives > 0 {
		m.Recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}
	if m.Precision+m.Recall > 0 {
		m.F1Score = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	return m, nil
}

// loadPredictedPairs reads the artifact and canonicalizes its pairs.
func loadPredictedPairs(path string) (map[pair]struct{}, error) {
	candidates, err := export.ReadCSV(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions: %w", err)
	}

	pairs := make(map[pair]struct{}, len(candidates))
	for _, c := range candidates {
		pairs[makePair(c.RecordIDL, c.RecordIDR)] = struct{}{}
	}
	return pairs, nil
}

// loadTruthPairs builds the ground-truth pair set from the labeled table.
func loadTruthPairs(path string) (map[pair]struct{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ground truth %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read ground truth header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.TrimSpace(col)] = i
	}
	for _, required := range []string{"record_id", "is_duplicate", "original_id"} {
		if _, ok := colIdx[required]; !ok {
			return nil, fmt.Errorf("ground truth %s missing column %q", path, required)
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read ground truth: %w", err)
	}

	pairs := make(map[pair]struct{})
	for _, row := range rows {
		if !isTruthy(row[colIdx["is_duplicate"]]) {
			continue
		}
		dupID := strings.TrimSpace(row[colIdx["record_id"]])
		origID := strings.TrimSpace(row[colIdx["original_id"]])
		if dupID == "" || origID == "" {
			continue
		}
		pairs[makePair(dupID, origID)] = struct{}{}
	}
	return pairs, nil
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "t":
		return true
	}
	return false
}

// WriteCSV saves the metrics as a one-row CSV, creating parent directories.
func WriteCSV(path string, m *Metrics) error {
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

	if err := writer.Write([]string{
		"true_duplicates", "predicted_duplicates", "true_positives",
		"false_positives", "false_negatives", "precision", "recall", "f1_score",
	}); err != nil {
		return err
	}

	return writer.Write([]string{
		strconv.Itoa(m.TrueDuplicates),
		strconv.Itoa(m.PredictedDuplicates),
		strconv.Itoa(m.TruePositives),
		strconv.Itoa(m.FalsePositives),
		strconv.Itoa(m.FalseNegatives),
		strconv.FormatFloat(m.Precision, 'f', 4, 64),
		strconv.FormatFloat(m.Recall, 'f', 4, 64),
		strconv.FormatFloat(m.F1Score, 'f', 4, 64),
	})
}
