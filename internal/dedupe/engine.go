package dedupe

import (
	"sync"

	"github.com/azraattar/deduplication-system/internal/classify"
	"github.com/azraattar/deduplication-system/internal/debug"
	"github.com/azraattar/deduplication-system/internal/table"
)

// Config holds the engine thresholds and limits. Thresholds are on the
// 0-100 similarity scale.
type Config struct {
	HighThreshold   float64 // name-like tier
	MediumThreshold float64 // free-text tier
	LowThreshold    float64 // generic-string fallback tier
	FallbackColumns int     // how many generic-string columns the LOW tier uses
	MaxBlockSize    int     // blocks larger than this are skipped entirely
	Workers         int     // worker pool size for block scoring; <=1 is sequential
	Debug           bool
}

// DefaultConfig returns the recommended engine configuration.
func DefaultConfig() *Config {
	return &Config{
		HighThreshold:   95,
		MediumThreshold: 90,
		LowThreshold:    85,
		FallbackColumns: 2,
		MaxBlockSize:    100,
		Workers:         1,
	}
}

// Stats reports what the engine skipped or scanned, so blocking's recall
// cost is measurable rather than invisible.
type Stats struct {
	Comparisons   int
	BlocksSkipped int // blocks over the size cap, dropped without comparison
}

// Engine runs the tiered matching pipeline over a classified table.
type Engine struct {
	cfg *Config
}

// NewEngine creates an engine; a nil config selects defaults.
func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// Run executes the four strategies in confidence order and merges their
// candidates under first-tier-wins dedupe:
//
//	EXACT  exact-key columns, no threshold
//	HIGH   name-like columns, blocking + scoring at HighThreshold
//	MEDIUM free-text columns, blocking + scoring at MediumThreshold
//	LOW    top generic-string columns, blocking + scoring at LowThreshold
//
// A fuzzy tier only runs when its category has at least one column.
func (e *Engine) Run(t *table.Table, cols *classify.Result) (*MatchSet, *Stats) {
	matches := NewMatchSet()
	stats := &Stats{}

	defer debug.Timing(e.cfg.Debug, "tiered matching")()

	exact := ExactMatches(t, cols.ExactKey)
	for _, c := range exact {
		matches.Add(c)
	}
	debug.Output(e.cfg.Debug, "EXACT: %d pairs from %d key columns", len(exact), len(cols.ExactKey))

	e.runFuzzyTier(matches, stats, t, cols.NameLike, e.cfg.HighThreshold, TierHigh)
	e.runFuzzyTier(matches, stats, t, cols.FreeText, e.cfg.MediumThreshold, TierMedium)

	fallback := cols.GenericString
	if len(fallback) > e.cfg.FallbackColumns {
		fallback = fallback[:e.cfg.FallbackColumns]
	}
	e.runFuzzyTier(matches, stats, t, fallback, e.cfg.LowThreshold, TierLow)

	debug.Output(e.cfg.Debug, "merged: %d pairs, %d comparisons, %d oversized blocks skipped",
		matches.Len(), stats.Comparisons, stats.BlocksSkipped)

	return matches, stats
}

// blockResult carries one scored block back from a worker, tagged with its
// position so merge order stays deterministic.
type blockResult struct {
	pos         int
	candidates  []Candidate
	comparisons int
}

// runFuzzyTier blocks on the first (most discriminating) column of the list
// and scores every within-block pair over the full column list. Blocks
// smaller than two records have no pairs; blocks over the size cap are
// skipped entirely to bound worst-case cost, trading recall for tractability.
func (e *Engine) runFuzzyTier(matches *MatchSet, stats *Stats, t *table.Table, columns []string, threshold float64, tier Tier) {
	if len(columns) == 0 {
		return
	}
	blockCol := columns[0]
	if !t.HasColumn(blockCol) {
		return
	}

	index := BuildBlockIndex(t, blockCol)
	scorer := NewScorer(columns)

	// Collect the blocks worth scoring, in sorted key order.
	var blocks [][]int
	for _, key := range index.Keys {
		rows := index.Blocks[key]
		if len(rows) < 2 {
			continue
		}
		if len(rows) > e.cfg.MaxBlockSize {
			stats.BlocksSkipped++
			debug.Output(e.cfg.Debug, "%s: skipping block %q with %d records (cap %d)",
				tier, key, len(rows), e.cfg.MaxBlockSize)
			continue
		}
		blocks = append(blocks, rows)
	}

	results := e.scoreBlocks(t, scorer, blocks, threshold, tier)

	accepted := 0
	for _, res := range results {
		stats.Comparisons += res.comparisons
		for _, c := range res.candidates {
			if matches.Add(c) {
				accepted++
			}
		}
	}
	debug.Output(e.cfg.Debug, "%s: %d blocks, %d new pairs at threshold %.0f",
		tier, len(blocks), accepted, threshold)
}

// scoreBlocks scores each block's pairs, fanning blocks out over a worker
// pool when configured. Results always come back in block order, so the
// match set sees candidates in the same sequence regardless of Workers.
func (e *Engine) scoreBlocks(t *table.Table, scorer *Scorer, blocks [][]int, threshold float64, tier Tier) []blockResult {
	results := make([]blockResult, len(blocks))

	if e.cfg.Workers <= 1 || len(blocks) < 2 {
		for pos, rows := range blocks {
			results[pos] = scoreBlock(t, scorer, pos, rows, threshold, tier)
		}
		return results
	}

	workers := e.cfg.Workers
	if workers > len(blocks) {
		workers = len(blocks)
	}

	type job struct {
		pos  int
		rows []int
	}
	jobChan := make(chan job, len(blocks))
	resultChan := make(chan blockResult, len(blocks))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for jb := range jobChan {
				resultChan <- scoreBlock(t, scorer, jb.pos, jb.rows, threshold, tier)
			}
		}()
	}

	for pos, rows := range blocks {
		jobChan <- job{pos: pos, rows: rows}
	}
	close(jobChan)
	wg.Wait()
	close(resultChan)

	for res := range resultChan {
		results[res.pos] = res
	}
	return results
}

// scoreBlock compares every pair inside one block.
func scoreBlock(t *table.Table, scorer *Scorer, pos int, rows []int, threshold float64, tier Tier) blockResult {
	res := blockResult{pos: pos}

	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			res.comparisons++
			score := scorer.Score(t, rows[i], rows[j])
			if score >= threshold {
				res.candidates = append(res.candidates, NewCandidate(
					t.RecordID(rows[i]), t.RecordID(rows[j]), score/100.0, tier))
			}
		}
	}

	return res
}
