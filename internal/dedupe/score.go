package dedupe

import (
	"strings"

	"github.com/azraattar/deduplication-system/internal/table"
)

// Scorer computes a normalized similarity score for a record pair over a
// fixed column set. It is a pure function of its inputs: no caching, no
// hidden state, and score(a,b) == score(b,a).
type Scorer struct {
	columns []string
}

// NewScorer creates a scorer over the given comparison columns.
func NewScorer(columns []string) *Scorer {
	return &Scorer{columns: columns}
}

// Score returns the mean per-column similarity in [0,100] for rows i and j.
// A column contributes only when both values are present and differ after
// normalization; identical values carry no discriminating signal and are
// excluded from the average rather than scored as 100. With no contributing
// columns the score is 0.
func (s *Scorer) Score(t *table.Table, i, j int) float64 {
	totalScore := 0.0
	validCols := 0

	for _, col := range s.columns {
		if !t.HasColumn(col) {
			continue
		}

		raw1, ok1 := t.Value(i, col)
		raw2, ok2 := t.Value(j, col)
		if !ok1 || !ok2 {
			continue
		}

		val1 := strings.TrimSpace(strings.ToLower(raw1))
		val2 := strings.TrimSpace(strings.ToLower(raw2))
		if val1 == "" || val2 == "" || val1 == val2 {
			continue
		}

		totalScore += similarityRatio(val1, val2)
		validCols++
	}

	if validCols == 0 {
		return 0
	}
	return totalScore / float64(validCols)
}

// similarityRatio converts edit distance to a similarity in [0,100]:
// (1 - distance/maxLen) * 100.
func similarityRatio(s1, s2 string) float64 {
	distance := LevenshteinDistance(s1, s2)

	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}
	if maxLen == 0 {
		return 0
	}

	return (1.0 - float64(distance)/float64(maxLen)) * 100.0
}

// LevenshteinDistance computes Levenshtein distance between two strings
func LevenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1, len2 := len(s1), len(s2)
	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	// Create matrix
	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	// Fill matrix
	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}

			matrix[i][j] = minInt(
				minInt(matrix[i-1][j]+1, matrix[i][j-1]+1), // min of deletion and insertion
				matrix[i-1][j-1]+cost,                      // substitution
			)
		}
	}

	return matrix[len1][len2]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
