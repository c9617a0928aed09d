package dedupe

import (
	"strings"

	"github.com/azraattar/deduplication-system/internal/table"
)

// ExactMatches runs the exact tier: for each exact-key column independently,
// records are grouped by normalized value and every group of size >= 2 emits
// all C(n,2) pairs at score 1.0. Grouping keeps this O(n) per column. A pair
// matched by several key columns is emitted once per column; the match set's
// pair-identity dedupe collapses those later.
func ExactMatches(t *table.Table, columns []string) []Candidate {
	var matches []Candidate

	for _, col := range columns {
		if !t.HasColumn(col) {
			continue
		}

		groups := make(map[string][]int)
		for i := 0; i < t.NumRows(); i++ {
			raw, ok := t.Value(i, col)
			if !ok {
				continue
			}
			key := strings.TrimSpace(strings.ToLower(raw))
			groups[key] = append(groups[key], i)
		}

		for _, rows := range groups {
			if len(rows) < 2 {
				continue
			}
			for i := 0; i < len(rows); i++ {
				for j := i + 1; j < len(rows); j++ {
					matches = append(matches, NewCandidate(
						t.RecordID(rows[i]), t.RecordID(rows[j]), 1.0, TierExact))
				}
			}
		}
	}

	return matches
}
