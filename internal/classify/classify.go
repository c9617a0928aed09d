package classify

import (
	"sort"
	"strconv"
	"strings"

	"github.com/azraattar/deduplication-system/internal/table"
)

// Category is the closed set of column categories. Every eligible column is
// assigned exactly one category.
type Category string

const (
	CategoryExactKey      Category = "exact_key"
	CategoryNameLike      Category = "name_like"
	CategoryFreeText      Category = "free_text"
	CategoryGenericString Category = "generic_string"
	CategoryNumeric       Category = "numeric"
)

// Profile holds the derived statistics for one column.
type Profile struct {
	Column          string
	Category        Category
	UniquenessRatio float64 // distinct non-missing / non-missing
	AvgLength       float64 // mean stringified length, case-normalized
	NonMissing      int
	Numeric         bool // every non-missing value parses as a number
}

// Config holds the classification heuristics. The uniqueness bands and
// keyword lists are tunable defaults with no derivation behind them; treat
// them as a starting point, not as calibrated values.
type Config struct {
	ExactUniqueness  float64  // above this a column is identifier-like
	NameBandLow      float64  // name-like uniqueness band, exclusive
	NameBandHigh     float64
	FreeTextMinLen   float64 // average length above this suggests free text
	FreeTextMaxRatio float64
	ExactKeywords    []string
	NameKeywords     []string
}

// DefaultConfig returns the recommended classification heuristics.
func DefaultConfig() *Config {
	return &Config{
		ExactUniqueness:  0.8,
		NameBandLow:      0.1,
		NameBandHigh:     0.8,
		FreeTextMinLen:   10,
		FreeTextMaxRatio: 0.5,
		ExactKeywords:    []string{"id", "code", "sku", "order", "claim", "invoice", "transaction"},
		NameKeywords:     []string{"name", "customer", "client", "employee", "product", "item", "guest"},
	}
}

// Result partitions the eligible columns into the five categories.
// GenericString is pre-sorted by descending uniqueness ratio so the most
// selective column is tried first.
type Result struct {
	ExactKey      []string
	NameLike      []string
	FreeText      []string
	GenericString []string
	Numeric       []string
	Profiles      map[string]Profile
}

// Classify profiles every column except the identifier column and assigns
// each to exactly one category. Columns with zero non-missing values are
// skipped entirely.
func Classify(t *table.Table, cfg *Config) *Result {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	result := &Result{Profiles: make(map[string]Profile)}
	var genericRatios []Profile

	for _, col := range t.Columns() {
		if col == table.IDColumn {
			continue
		}

		profile := profileColumn(t, col)
		if profile.NonMissing == 0 {
			continue
		}

		colLower := strings.ToLower(col)

		switch {
		case profile.UniquenessRatio > cfg.ExactUniqueness ||
			containsAny(colLower, cfg.ExactKeywords) ||
			profile.Numeric:
			profile.Category = CategoryExactKey
			result.ExactKey = append(result.ExactKey, col)

		case profile.UniquenessRatio > cfg.NameBandLow &&
			profile.UniquenessRatio < cfg.NameBandHigh &&
			containsAny(colLower, cfg.NameKeywords):
			profile.Category = CategoryNameLike
			result.NameLike = append(result.NameLike, col)

		case profile.AvgLength > cfg.FreeTextMinLen &&
			profile.UniquenessRatio < cfg.FreeTextMaxRatio:
			profile.Category = CategoryFreeText
			result.FreeText = append(result.FreeText, col)

		case !profile.Numeric:
			profile.Category = CategoryGenericString
			genericRatios = append(genericRatios, profile)

		default:
			profile.Category = CategoryNumeric
			result.Numeric = append(result.Numeric, col)
		}

		result.Profiles[col] = profile
	}

	// Most selective string columns first.
	sort.SliceStable(genericRatios, func(i, j int) bool {
		return genericRatios[i].UniquenessRatio > genericRatios[j].UniquenessRatio
	})
	for _, p := range genericRatios {
		result.GenericString = append(result.GenericString, p.Column)
	}

	return result
}

// CategoryMap returns column -> category for the pipeline summary.
func (r *Result) CategoryMap() map[string]string {
	m := make(map[string]string, len(r.Profiles))
	for col, p := range r.Profiles {
		m[col] = string(p.Category)
	}
	return m
}

// profileColumn computes uniqueness ratio, average length and numeric-ness
// over the non-missing, case-normalized values of one column.
func profileColumn(t *table.Table, col string) Profile {
	distinct := make(map[string]struct{})
	nonMissing := 0
	totalLen := 0
	numeric := true

	for i := 0; i < t.NumRows(); i++ {
		raw, ok := t.Value(i, col)
		if !ok {
			continue
		}
		nonMissing++

		normalized := strings.ToLower(raw)
		distinct[normalized] = struct{}{}
		totalLen += len(normalized)

		if numeric {
			if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
				numeric = false
			}
		}
	}

	profile := Profile{Column: col, NonMissing: nonMissing}
	if nonMissing == 0 {
		return profile
	}

	profile.UniquenessRatio = float64(len(distinct)) / float64(nonMissing)
	profile.AvgLength = float64(totalLen) / float64(nonMissing)
	profile.Numeric = numeric
	return profile
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
