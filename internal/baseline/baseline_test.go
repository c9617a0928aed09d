package baseline

import (
	"testing"

	"github.com/azraattar/deduplication-system/internal/classify"
	"github.com/azraattar/deduplication-system/internal/table"
)

func TestExactDedup(t *testing.T) {
	tbl, err := table.New(
		[]string{"record_id", "customer_name", "city", "is_duplicate", "original_id"},
		[][]string{
			{"A", "Jonathan Smith", "Alton", "false", ""},
			{"B", "Jonathan Smith", "Alton", "true", "A"},
			{"C", "Jonathan Smith", "Dover", "false", ""},
			{"D", "Mary Jones", "Alton", "false", ""},
			{"E", "Jonathan Smith", "Alton", "true", "A"},
		})
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}

	result := ExactDedup(tbl)

	// Identifier and label columns are excluded, so B and E both repeat A's
	// comparison row; C differs on city.
	if result.Duplicates != 2 {
		t.Errorf("duplicates = %d, want 2", result.Duplicates)
	}
	if result.Records != 5 {
		t.Errorf("records = %d, want 5", result.Records)
	}
	if result.Method != "baseline_exact" {
		t.Errorf("method = %q", result.Method)
	}
}

func TestSimpleFuzzy(t *testing.T) {
	tbl, err := table.New([]string{"record_id", "customer_name"}, [][]string{
		{"A", "Jonathan Smith"},
		{"B", "Jonathon Smith"},
		{"C", "Mary Jones"},
	})
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}
	cols := &classify.Result{NameLike: []string{"customer_name"}}

	// One edit over 14 characters scores ~92.9: above 90, below 95.
	result := SimpleFuzzy(tbl, cols, 90)
	if result.Duplicates != 1 {
		t.Errorf("duplicates at 90 = %d, want 1", result.Duplicates)
	}

	result = SimpleFuzzy(tbl, cols, 95)
	if result.Duplicates != 0 {
		t.Errorf("duplicates at 95 = %d, want 0", result.Duplicates)
	}
}

func TestSimpleFuzzyNoTextualColumns(t *testing.T) {
	tbl, err := table.New([]string{"record_id", "amount"}, [][]string{
		{"A", "10"}, {"B", "10"},
	})
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}

	result := SimpleFuzzy(tbl, &classify.Result{}, 90)
	if result.Duplicates != 0 {
		t.Errorf("duplicates = %d, want 0", result.Duplicates)
	}
	if result.Note == "" {
		t.Error("expected a note about missing textual columns")
	}
}
