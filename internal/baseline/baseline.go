// Package baseline provides the naive reference points the tiered pipeline
// is benchmarked against: whole-row exact dedupe (fast, misses near
// duplicates) and an uncapped-cost all-pairs fuzzy scan (accurate on what it
// covers, quadratic).
package baseline

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/azraattar/deduplication-system/internal/classify"
	"github.com/azraattar/deduplication-system/internal/dedupe"
	"github.com/azraattar/deduplication-system/internal/table"
)

// labelColumns are ground-truth columns excluded from row comparison.
var labelColumns = map[string]bool{
	table.IDColumn: true,
	"is_duplicate": true,
	"original_id":  true,
}

// Result summarizes one baseline run.
type Result struct {
	Method     string
	Records    int
	Duplicates int
	Elapsed    time.Duration
	AllocMB    float64
	Note       string
}

// ExactDedup counts records whose full comparison row (all columns except
// identifiers and labels) has been seen before — the drop_duplicates
// equivalent.
func ExactDedup(t *table.Table) *Result {
	start := time.Now()
	allocBefore := heapAllocMB()

	var compareCols []string
	for _, col := range t.Columns() {
		if !labelColumns[col] {
			compareCols = append(compareCols, col)
		}
	}

	seen := make(map[string]bool, t.NumRows())
	duplicates := 0
	var key strings.Builder
	for i := 0; i < t.NumRows(); i++ {
		key.Reset()
		for _, col := range compareCols {
			v, _ := t.Value(i, col)
			key.WriteString(v)
			key.WriteByte('\x1f')
		}
		k := key.String()
		if seen[k] {
			duplicates++
		} else {
			seen[k] = true
		}
	}

	return &Result{
		Method:     "baseline_exact",
		Records:    t.NumRows(),
		Duplicates: duplicates,
		Elapsed:    time.Since(start),
		AllocMB:    heapAllocMB() - allocBefore,
	}
}

// fuzzySampleCap bounds the all-pairs scan; beyond this the projection is
// the point, not the result.
const fuzzySampleCap = 10000

// SimpleFuzzy runs an unblocked all-pairs similarity scan over the most
// name-like columns, counting record pairs at or above threshold (0-100
// scale). It exists to show why blocking matters: cost grows quadratically,
// so large tables are truncated to fuzzySampleCap records and the result
// notes the projection.
func SimpleFuzzy(t *table.Table, cols *classify.Result, threshold float64) *Result {
	start := time.Now()
	allocBefore := heapAllocMB()

	compareCols := cols.NameLike
	if len(compareCols) == 0 {
		compareCols = cols.FreeText
	}
	if len(compareCols) == 0 {
		compareCols = cols.GenericString
	}
	if len(compareCols) == 0 {
		return &Result{Method: "baseline_fuzzy", Records: t.NumRows(), Note: "no textual columns to compare"}
	}

	limit := t.NumRows()
	note := ""
	if limit > fuzzySampleCap {
		limit = fuzzySampleCap
		note = fmt.Sprintf("truncated to first %d records; full scan would be ~%dx slower",
			fuzzySampleCap, projectionFactor(t.NumRows()))
	}

	scorer := dedupe.NewScorer(compareCols)
	duplicates := 0
	for i := 0; i < limit; i++ {
		for j := i + 1; j < limit; j++ {
			if scorer.Score(t, i, j) >= threshold {
				duplicates++
			}
		}
	}

	return &Result{
		Method:     "baseline_fuzzy",
		Records:    limit,
		Duplicates: duplicates,
		Elapsed:    time.Since(start),
		AllocMB:    heapAllocMB() - allocBefore,
		Note:       note,
	}
}

func projectionFactor(n int) int {
	factor := (n / fuzzySampleCap) * (n / fuzzySampleCap)
	if factor < 1 {
		factor = 1
	}
	return factor
}

func heapAllocMB() float64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return float64(stats.HeapAlloc) / 1024 / 1024
}
