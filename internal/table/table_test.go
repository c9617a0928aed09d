package table

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewSynthesizesIDs(t *testing.T) {
	tbl, err := New([]string{"name", "city"}, [][]string{
		{"Alice", "Alton"},
		{"Bob", "Liphook"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !tbl.SyntheticIDs() {
		t.Error("SyntheticIDs() = false, want true without a record_id column")
	}
	if got := tbl.RecordID(0); got != "REC_000000" {
		t.Errorf("RecordID(0) = %v, want REC_000000", got)
	}
	if got := tbl.RecordID(1); got != "REC_000001" {
		t.Errorf("RecordID(1) = %v, want REC_000001", got)
	}
}

func TestNewUsesExistingIDColumn(t *testing.T) {
	tbl, err := New([]string{"record_id", "name"}, [][]string{
		{"CUST_9", "Alice"},
		{"", "Bob"}, // blank id still gets a synthesized one
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if tbl.SyntheticIDs() {
		t.Error("SyntheticIDs() = true, want false with a record_id column")
	}
	if got := tbl.RecordID(0); got != "CUST_9" {
		t.Errorf("RecordID(0) = %v, want CUST_9", got)
	}
	if got := tbl.RecordID(1); got != "REC_000001" {
		t.Errorf("RecordID(1) = %v, want REC_000001", got)
	}
}

func TestValueMissing(t *testing.T) {
	tbl, err := New([]string{"name", "notes"}, [][]string{
		{"Alice", ""},
		{"  ", "present"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name        string
		row         int
		column      string
		wantPresent bool
	}{
		{"present value", 0, "name", true},
		{"empty cell", 0, "notes", false},
		{"whitespace-only cell", 1, "name", false},
		{"unknown column", 0, "missing_col", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, present := tbl.Value(tt.row, tt.column)
			if present != tt.wantPresent {
				t.Errorf("Value(%d, %q) present = %v, want %v", tt.row, tt.column, present, tt.wantPresent)
			}
		})
	}
}

func TestNewRejectsDuplicateColumns(t *testing.T) {
	_, err := New([]string{"name", "name"}, nil)
	if err == nil {
		t.Error("New() with duplicate columns: want error, got nil")
	}
}

func TestLoadCSVRejectsRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	content := "name,city\nAlice,Alton\nBob,Liphook,extra\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadCSV(path); err == nil {
		t.Error("LoadCSV() on ragged file: want error, got nil")
	}
}

func TestLoadCSVHeadRecovers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	content := "record_id,name,city\nA1,Alice,Alton\nA2,Bob,Liphook,extra\nA3,Cara\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tbl, err := LoadCSVHead(path, 2)
	if err != nil {
		t.Fatalf("LoadCSVHead() error = %v", err)
	}

	if got := tbl.NumRows(); got != 2 {
		t.Errorf("NumRows() = %d, want 2 (capped)", got)
	}
	// Recovery loads never trust the file's identifiers.
	if got := tbl.RecordID(0); got != "REC_000000" {
		t.Errorf("RecordID(0) = %v, want synthesized REC_000000", got)
	}
}
