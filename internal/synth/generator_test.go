package synth

import (
	"encoding/csv"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := &Config{Records: 200, DuplicateRate: 0.15, Seed: 7}

	first := Generate(cfg)
	second := Generate(cfg)
	if !reflect.DeepEqual(first, second) {
		t.Error("same seed produced different datasets")
	}

	other := Generate(&Config{Records: 200, DuplicateRate: 0.15, Seed: 8})
	if reflect.DeepEqual(first, other) {
		t.Error("different seeds produced identical datasets")
	}
}

func TestGenerateCountsAndLabels(t *testing.T) {
	cfg := &Config{Records: 100, DuplicateRate: 0.15, Seed: 42}
	rows := Generate(cfg)

	if len(rows) != 115 {
		t.Fatalf("got %d rows, want 115 (100 base + 15 duplicates)", len(rows))
	}

	baseIDs := make(map[string]bool)
	var duplicates [][]string
	for _, row := range rows {
		if len(row) != len(Header) {
			t.Fatalf("row has %d fields, want %d: %v", len(row), len(Header), row)
		}
		switch row[10] {
		case "false":
			baseIDs[row[0]] = true
			if row[11] != "" {
				t.Errorf("base record %s has original_id %q", row[0], row[11])
			}
		case "true":
			duplicates = append(duplicates, row)
		default:
			t.Errorf("record %s has is_duplicate = %q", row[0], row[10])
		}
	}

	if len(baseIDs) != 100 {
		t.Errorf("got %d base records, want 100", len(baseIDs))
	}
	if len(duplicates) != 15 {
		t.Errorf("got %d duplicates, want 15", len(duplicates))
	}

	// Every duplicate label must point at a base record that exists.
	for _, dup := range duplicates {
		if !strings.HasPrefix(dup[0], "DUP_") {
			t.Errorf("duplicate id %q lacks DUP_ prefix", dup[0])
		}
		if !baseIDs[dup[11]] {
			t.Errorf("duplicate %s labels missing source %q", dup[0], dup[11])
		}
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "synthetic.csv")
	cfg := &Config{Records: 50, DuplicateRate: 0.2, Seed: 1}

	n, err := WriteCSV(path, cfg)
	if err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if n != 60 {
		t.Errorf("reported %d rows, want 60", n)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening dataset: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("reading dataset: %v", err)
	}
	if len(records) != 61 {
		t.Fatalf("file holds %d lines, want header + 60 rows", len(records))
	}
	if !reflect.DeepEqual(records[0], Header) {
		t.Errorf("header = %v, want %v", records[0], Header)
	}
}

func TestIntroduceTypo(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	if got := introduceTypo(rng, "a"); got != "a" {
		t.Errorf("introduceTypo on single rune = %q, want unchanged", got)
	}

	// One swap, deletion or replacement: the result length stays within one
	// of the original.
	for i := 0; i < 50; i++ {
		got := introduceTypo(rng, "Johnson")
		if len(got) < len("Johnson")-1 || len(got) > len("Johnson") {
			t.Fatalf("introduceTypo(%q) = %q, more than one edit", "Johnson", got)
		}
	}
}
