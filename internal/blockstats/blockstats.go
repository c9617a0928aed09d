// Package blockstats measures how well candidate blocking rules would cut
// the comparison space of a dataset. The table is loaded into an in-memory
// SQLite database and each rule is evaluated as a GROUP BY over a derived
// key, which makes the block-size distribution a single aggregate query.
package blockstats

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/azraattar/deduplication-system/internal/classify"
	"github.com/azraattar/deduplication-system/internal/table"
)

// Rule is one blocking strategy: a SQL expression deriving a block key.
type Rule struct {
	Name    string
	KeyExpr string
}

// RuleStat summarizes one rule's block-size distribution. Only blocks with
// two or more records count: singleton blocks produce no comparisons.
type RuleStat struct {
	Rule         string
	Blocks       int
	Comparisons  int64
	AvgBlockSize float64
	MaxBlockSize int
	Elapsed      time.Duration
}

// Report is the full blocking analysis for one dataset.
type Report struct {
	Records            int
	NaiveComparisons   int64
	BlockedComparisons int64
	ReductionPct       float64
	Rules              []RuleStat
}

// DefaultRules derives one three-character-prefix rule per candidate
// blocking column, mirroring the keys the matching engine itself blocks on,
// so the report measures the pipeline's actual comparison budget.
func DefaultRules(cols *classify.Result) []Rule {
	var rules []Rule
	add := func(col string) {
		rules = append(rules, Rule{
			Name:    fmt.Sprintf("prefix3(%s)", col),
			KeyExpr: fmt.Sprintf("substr(lower(%s), 1, 3)", quoteIdent(col)),
		})
	}

	if len(cols.NameLike) > 0 {
		add(cols.NameLike[0])
	}
	if len(cols.FreeText) > 0 {
		add(cols.FreeText[0])
	}
	for i, col := range cols.GenericString {
		if i >= 2 {
			break
		}
		add(col)
	}
	return rules
}

// Analyze loads the table into in-memory SQLite and evaluates every rule.
func Analyze(t *table.Table, rules []Rule) (*Report, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("no blocking rules to analyze")
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	defer db.Close()

	if err := loadRecords(db, t); err != nil {
		return nil, err
	}

	n := int64(t.NumRows())
	report := &Report{
		Records:          t.NumRows(),
		NaiveComparisons: n * (n - 1) / 2,
	}

	for _, rule := range rules {
		stat, err := analyzeRule(db, rule)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Name, err)
		}
		report.BlockedComparisons += stat.Comparisons
		report.Rules = append(report.Rules, *stat)
	}

	if report.NaiveComparisons > 0 {
		report.ReductionPct = (1 - float64(report.BlockedComparisons)/float64(report.NaiveComparisons)) * 100
	}
	return report, nil
}

// loadRecords creates the records table and bulk-inserts all rows in one
// transaction.
func loadRecords(db *sql.DB, t *table.Table) error {
	cols := t.Columns()
	defs := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = quoteIdent(col) + " TEXT"
		placeholders[i] = "?"
	}

	createStmt := fmt.Sprintf("CREATE TABLE records (%s)", strings.Join(defs, ", "))
	if _, err := db.Exec(createStmt); err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	insertStmt := fmt.Sprintf("INSERT INTO records VALUES (%s)", strings.Join(placeholders, ", "))
	stmt, err := tx.Prepare(insertStmt)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < t.NumRows(); i++ {
		row := t.Row(i)
		args := make([]interface{}, len(row))
		for j, v := range row {
			args[j] = v
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// analyzeRule runs one GROUP BY aggregation and folds the block sizes.
func analyzeRule(db *sql.DB, rule Rule) (*RuleStat, error) {
	start := time.Now()

	query := fmt.Sprintf(`
		SELECT %s AS block_key, COUNT(*) AS records_in_block
		FROM records
		GROUP BY block_key
		HAVING COUNT(*) > 1
	`, rule.KeyExpr)

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stat := &RuleStat{Rule: rule.Name}
	totalSize := 0
	for rows.Next() {
		var key sql.NullString
		var size int
		if err := rows.Scan(&key, &size); err != nil {
			return nil, err
		}
		stat.Blocks++
		totalSize += size
		stat.Comparisons += int64(size) * int64(size-1) / 2
		if size > stat.MaxBlockSize {
			stat.MaxBlockSize = size
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stat.Blocks > 0 {
		stat.AvgBlockSize = float64(totalSize) / float64(stat.Blocks)
	}
	stat.Elapsed = time.Since(start)
	return stat, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// WriteCSV saves the per-rule statistics, creating parent directories.
func WriteCSV(path string, report *Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{
		"rule", "n_blocks", "total_comparisons", "avg_block_size", "max_block_size", "execution_time_ms",
	}); err != nil {
		return err
	}

	for _, stat := range report.Rules {
		if err := writer.Write([]string{
			stat.Rule,
			strconv.Itoa(stat.Blocks),
			strconv.FormatInt(stat.Comparisons, 10),
			strconv.FormatFloat(stat.AvgBlockSize, 'f', 1, 64),
			strconv.Itoa(stat.MaxBlockSize),
			strconv.FormatInt(stat.Elapsed.Milliseconds(), 10),
		}); err != nil {
			return err
		}
	}
	return nil
}
