package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/azraattar/deduplication-system/internal/dedupe"
)

func TestWriteCSVCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmarks", "nested", "predictions.csv")

	candidates := []dedupe.Candidate{
		dedupe.NewCandidate("B", "A", 0.9615, dedupe.TierHigh),
		dedupe.NewCandidate("C", "D", 1.0, dedupe.TierExact),
	}
	if err := WriteCSV(path, candidates); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("artifact has %d lines, want 3:\n%s", len(lines), raw)
	}
	if lines[0] != strings.Join(Header, ",") {
		t.Errorf("header = %q, want %q", lines[0], strings.Join(Header, ","))
	}
	if lines[1] != "A,B,0.9615,HIGH" {
		t.Errorf("first row = %q", lines[1])
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read back %d candidates, want 2", len(got))
	}
	if got[0] != candidates[0] || got[1] != candidates[1] {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, candidates)
	}
}

func TestWriteCSVOverwritesPreviousArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.csv")

	if err := WriteCSV(path, []dedupe.Candidate{
		dedupe.NewCandidate("A", "B", 1.0, dedupe.TierExact),
	}); err != nil {
		t.Fatalf("first WriteCSV() error = %v", err)
	}
	if err := WriteCSV(path, nil); err != nil {
		t.Fatalf("second WriteCSV() error = %v", err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("stale artifact survived overwrite: %+v", got)
	}
}

func TestReadCSVMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("foo,bar\n1,2\n"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := ReadCSV(path); err == nil {
		t.Fatal("ReadCSV() on a non-artifact file succeeded, want error")
	}
}
