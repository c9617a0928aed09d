package dedupe

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/azraattar/deduplication-system/internal/classify"
	"github.com/azraattar/deduplication-system/internal/table"
)

func TestEngineExactTierWinsOverFuzzy(t *testing.T) {
	tbl, err := table.New([]string{"record_id", "order_id", "customer_name"}, [][]string{
		{"A", "ORD-1", "Jonathan Christopher Smith"},
		{"B", "ORD-1", "Jonathan Christopher Smyth"},
	})
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}

	cols := &classify.Result{
		ExactKey: []string{"order_id"},
		NameLike: []string{"customer_name"},
	}

	matches, _ := NewEngine(nil).Run(tbl, cols)

	// One edit over 26 characters scores ~96.2, so the fuzzy tier would also
	// find this pair; the exact tier saw it first and its label stands.
	if matches.Len() != 1 {
		t.Fatalf("got %d pairs, want 1", matches.Len())
	}
	got := matches.Candidates()[0]
	if got.Tier != TierExact {
		t.Errorf("tier = %q, want %q", got.Tier, TierExact)
	}
	if got.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", got.Score)
	}

	counts := matches.TierCounts()
	if counts[TierExact] != 1 || counts[TierHigh] != 0 {
		t.Errorf("tier counts = %v, want EXACT=1 HIGH=0", counts)
	}
}

func TestEngineHighTierThreshold(t *testing.T) {
	tbl, err := table.New([]string{"record_id", "customer_name"}, [][]string{
		{"A", "Jonathan Christopher Smith"},
		{"B", "Jonathan Christopher Smyth"},
		{"C", "Jonathan Brown"},
	})
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}

	cols := &classify.Result{NameLike: []string{"customer_name"}}
	matches, stats := NewEngine(nil).Run(tbl, cols)

	// All three share block "jon", so every pair is compared, but only the
	// one-edit pair clears the 95 threshold.
	if stats.Comparisons != 3 {
		t.Errorf("comparisons = %d, want 3", stats.Comparisons)
	}
	if matches.Len() != 1 {
		t.Fatalf("got %d pairs, want 1: %+v", matches.Len(), matches.Candidates())
	}

	got := matches.Candidates()[0]
	if got.RecordIDL != "A" || got.RecordIDR != "B" {
		t.Errorf("pair = %s|%s, want A|B", got.RecordIDL, got.RecordIDR)
	}
	if got.Tier != TierHigh {
		t.Errorf("tier = %q, want %q", got.Tier, TierHigh)
	}
	if got.Score < 0.95 || got.Score > 1.0 {
		t.Errorf("score = %v, want within [0.95, 1.0]", got.Score)
	}
}

func TestEngineSkipsOversizedBlocks(t *testing.T) {
	rows := make([][]string, 5)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("R%d", i), fmt.Sprintf("smith variant %d", i)}
	}
	tbl, err := table.New([]string{"record_id", "customer_name"}, rows)
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}

	cfg := DefaultConfig()
	cfg.MaxBlockSize = 4
	cols := &classify.Result{NameLike: []string{"customer_name"}}

	matches, stats := NewEngine(cfg).Run(tbl, cols)

	// All five records land in block "smi", which is over the cap: the block
	// is dropped whole, with no comparisons and no pairs, and counted.
	if stats.BlocksSkipped != 1 {
		t.Errorf("blocks skipped = %d, want 1", stats.BlocksSkipped)
	}
	if stats.Comparisons != 0 {
		t.Errorf("comparisons = %d, want 0", stats.Comparisons)
	}
	if matches.Len() != 0 {
		t.Errorf("got %d pairs, want 0", matches.Len())
	}
}

func TestEngineComparesWithinUnknownBlock(t *testing.T) {
	tbl, err := table.New([]string{"record_id", "customer_name"}, [][]string{
		{"A", "ab"},
		{"B", "ax"},
		{"C", "jonathan smith"},
	})
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}

	cols := &classify.Result{NameLike: []string{"customer_name"}}
	_, stats := NewEngine(nil).Run(tbl, cols)

	// The two sub-3-character values share the unknown sentinel block and are
	// still compared with each other; the third record blocks alone.
	if stats.Comparisons != 1 {
		t.Errorf("comparisons = %d, want 1", stats.Comparisons)
	}
}

func TestEngineSkipsEmptyCategories(t *testing.T) {
	tbl, err := table.New([]string{"record_id", "amount"}, [][]string{
		{"A", "10"}, {"B", "20"},
	})
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}

	matches, stats := NewEngine(nil).Run(tbl, &classify.Result{})
	if matches.Len() != 0 || stats.Comparisons != 0 {
		t.Errorf("empty classification produced %d pairs, %d comparisons",
			matches.Len(), stats.Comparisons)
	}
}

func TestEngineFallbackColumnLimit(t *testing.T) {
	tbl, err := table.New([]string{"record_id", "col_a", "col_b", "col_c"}, [][]string{
		{"A", "redwood lane", "blue", "cat"},
		{"B", "redwood lane!", "blue", "cat"},
	})
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}

	cfg := DefaultConfig()
	cfg.FallbackColumns = 1
	cols := &classify.Result{GenericString: []string{"col_a", "col_b", "col_c"}}

	matches, _ := NewEngine(cfg).Run(tbl, cols)

	// With the fallback trimmed to col_a only, the score is the single-column
	// similarity of the two street strings, not diluted by col_b and col_c.
	if matches.Len() != 1 {
		t.Fatalf("got %d pairs, want 1", matches.Len())
	}
	want := similarityRatio("redwood lane", "redwood lane!") / 100.0
	if got := matches.Candidates()[0].Score; got != want {
		t.Errorf("score = %v, want %v", got, want)
	}
}

func TestEngineParallelMatchesSequential(t *testing.T) {
	var rows [][]string
	surnames := []string{"smith", "smyth", "jones", "janes", "brown", "brawn"}
	for b, first := range []string{"alice", "bravo", "carol", "delta"} {
		for i, last := range surnames {
			id := fmt.Sprintf("R%02d%02d", b, i)
			rows = append(rows, []string{id, first + " " + last})
		}
	}
	tbl, err := table.New([]string{"record_id", "customer_name"}, rows)
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}

	cols := &classify.Result{NameLike: []string{"customer_name"}}

	seqCfg := DefaultConfig()
	seqCfg.HighThreshold = 90
	seqMatches, seqStats := NewEngine(seqCfg).Run(tbl, cols)

	parCfg := DefaultConfig()
	parCfg.HighThreshold = 90
	parCfg.Workers = 4
	parMatches, parStats := NewEngine(parCfg).Run(tbl, cols)

	if seqMatches.Len() == 0 {
		t.Fatal("fixture produced no pairs; nothing to compare")
	}
	if !reflect.DeepEqual(seqMatches.Candidates(), parMatches.Candidates()) {
		t.Errorf("parallel candidates differ from sequential:\nseq: %+v\npar: %+v",
			seqMatches.Candidates(), parMatches.Candidates())
	}
	if seqStats.Comparisons != parStats.Comparisons {
		t.Errorf("comparisons differ: seq %d, par %d", seqStats.Comparisons, parStats.Comparisons)
	}
}
