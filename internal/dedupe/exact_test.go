package dedupe

import (
	"testing"

	"github.com/azraattar/deduplication-system/internal/table"
)

func TestExactMatchesGroupsAndPairs(t *testing.T) {
	tbl, err := table.New([]string{"record_id", "order_id"}, [][]string{
		{"A", "ORD-1"},
		{"B", "ord-1 "},
		{"C", "ORD-1"},
		{"D", "ORD-2"},
		{"E", ""},
		{"F", ""},
	})
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}

	matches := ExactMatches(tbl, []string{"order_id"})

	// Three records share ORD-1 after normalization: C(3,2) = 3 pairs.
	// Singleton ORD-2 and the blank cells contribute nothing.
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3: %+v", len(matches), matches)
	}

	wantPairs := map[string]bool{
		"A|B": true, "A|C": true, "B|C": true,
	}
	for _, m := range matches {
		key := m.RecordIDL + "|" + m.RecordIDR
		if !wantPairs[key] {
			t.Errorf("unexpected pair %q", key)
		}
		if m.Score != 1.0 {
			t.Errorf("pair %q score = %v, want 1.0", key, m.Score)
		}
		if m.Tier != TierExact {
			t.Errorf("pair %q tier = %q, want %q", key, m.Tier, TierExact)
		}
	}
}

func TestExactMatchesMultipleColumns(t *testing.T) {
	tbl, err := table.New([]string{"record_id", "order_id", "invoice_code"}, [][]string{
		{"A", "ORD-1", "INV-9"},
		{"B", "ORD-1", "INV-9"},
		{"C", "ORD-3", "INV-7"},
	})
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}

	matches := ExactMatches(tbl, []string{"order_id", "invoice_code"})

	// The A/B pair matches on both columns; it is emitted twice here and
	// collapsed by the match set.
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}

	set := NewMatchSet()
	for _, m := range matches {
		set.Add(m)
	}
	if got := len(set.Candidates()); got != 1 {
		t.Errorf("match set holds %d pairs after dedupe, want 1", got)
	}
}

func TestExactMatchesSkipsUnknownColumn(t *testing.T) {
	tbl, err := table.New([]string{"record_id", "code"}, [][]string{
		{"A", "X"}, {"B", "X"},
	})
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}

	if matches := ExactMatches(tbl, []string{"missing", "code"}); len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
}
