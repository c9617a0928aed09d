package dedupe

// Tier labels which matching strategy and threshold produced a candidate.
type Tier string

const (
	TierExact  Tier = "EXACT"
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

// Candidate is an unordered pair of record identifiers with a similarity
// score in [0,1]. The pair is stored in canonical order so (A,B) and (B,A)
// are the same candidate.
type Candidate struct {
	RecordIDL string  `json:"record_id_l"`
	RecordIDR string  `json:"record_id_r"`
	Score     float64 `json:"match_score"`
	Tier      Tier    `json:"match_tier"`
}

// NewCandidate builds a candidate with the identifier pair canonicalized.
func NewCandidate(a, b string, score float64, tier Tier) Candidate {
	if b < a {
		a, b = b, a
	}
	return Candidate{RecordIDL: a, RecordIDR: b, Score: score, Tier: tier}
}

type pairKey struct {
	l, r string
}

// MatchSet collects candidates in discovery order and deduplicates them by
// symmetric pair identity. The first-encountered tier wins: tiers run in
// EXACT, HIGH, MEDIUM, LOW order, so a pair rediscovered by a later, weaker
// strategy is dropped rather than merged or re-scored. This is deliberately
// precision-first; the tier label on a pair always reflects the strongest
// evidence seen for it.
type MatchSet struct {
	candidates []Candidate
	seen       map[pairKey]struct{}
}

// NewMatchSet creates an empty match set.
func NewMatchSet() *MatchSet {
	return &MatchSet{seen: make(map[pairKey]struct{})}
}

// Add inserts a candidate unless its pair has already been recorded.
// It reports whether the candidate was kept.
func (m *MatchSet) Add(c Candidate) bool {
	key := pairKey{c.RecordIDL, c.RecordIDR}
	if _, dup := m.seen[key]; dup {
		return false
	}
	m.seen[key] = struct{}{}
	m.candidates = append(m.candidates, c)
	return true
}

// Candidates returns the deduplicated candidates in discovery order.
func (m *MatchSet) Candidates() []Candidate {
	return m.candidates
}

// Len returns the number of deduplicated pairs.
func (m *MatchSet) Len() int {
	return len(m.candidates)
}

// TierCounts returns the number of pairs recorded per tier, with all four
// tiers always present.
func (m *MatchSet) TierCounts() map[Tier]int {
	counts := map[Tier]int{
		TierExact:  0,
		TierHigh:   0,
		TierMedium: 0,
		TierLow:    0,
	}
	for _, c := range m.candidates {
		counts[c.Tier]++
	}
	return counts
}
