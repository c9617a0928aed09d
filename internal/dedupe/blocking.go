package dedupe

import (
	"sort"
	"strings"

	"github.com/azraattar/deduplication-system/internal/table"
)

// UnknownBlock is the reserved sentinel block. Records whose blocking value
// is missing or too short to derive a key land here instead of being
// silently dropped, so they are still compared with each other.
const UnknownBlock = "unknown"

// blockKeyMinLen is the minimum value length that yields a real block key.
const blockKeyMinLen = 3

// BlockIndex groups record indices by coarse block key. Keys holds the keys
// in sorted order so iteration over the index is deterministic.
type BlockIndex struct {
	Keys   []string
	Blocks map[string][]int
}

// BlockKey derives the coarse key for one blocking value: lower-case the
// value, and take the first whitespace-delimited token truncated to three
// characters, or the first three characters when there is no token boundary.
// Absent or too-short values fall into the unknown sentinel block.
func BlockKey(value string, present bool) string {
	if !present {
		return UnknownBlock
	}

	key := strings.ToLower(value)
	if len([]rune(key)) < blockKeyMinLen {
		return UnknownBlock
	}

	if tokens := strings.Fields(key); len(tokens) > 0 {
		key = tokens[0]
	}

	runes := []rune(key)
	if len(runes) > blockKeyMinLen {
		runes = runes[:blockKeyMinLen]
	}
	return string(runes)
}

// BuildBlockIndex assigns every record to a block in one linear pass over
// the table.
func BuildBlockIndex(t *table.Table, column string) *BlockIndex {
	blocks := make(map[string][]int)

	for i := 0; i < t.NumRows(); i++ {
		value, present := t.Value(i, column)
		key := BlockKey(value, present)
		blocks[key] = append(blocks[key], i)
	}

	keys := make([]string, 0, len(blocks))
	for key := range blocks {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return &BlockIndex{Keys: keys, Blocks: blocks}
}
