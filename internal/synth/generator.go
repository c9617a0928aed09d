// Package synth generates labeled synthetic customer datasets for exercising
// and evaluating the matching pipeline. Every duplicate row records the id of
// the row it was derived from, so the evaluator has exact ground truth.
package synth

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

// Config controls dataset generation. The same seed always yields the same
// dataset.
type Config struct {
	Records       int
	DuplicateRate float64
	Seed          int64
}

// DefaultConfig returns a small, reproducible dataset configuration.
func DefaultConfig() *Config {
	return &Config{
		Records:       10000,
		DuplicateRate: 0.15,
		Seed:          42,
	}
}

// Header is the column order of generated datasets. The trailing two columns
// are the ground-truth labels consumed by the evaluator.
var Header = []string{
	"record_id", "first_name", "last_name", "email", "phone",
	"address", "city", "state", "zip_code", "dob",
	"is_duplicate", "original_id",
}

var (
	firstNames = []string{
		"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
		"Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan",
		"Joseph", "Jessica", "Thomas", "Sarah", "Charles", "Karen", "Daniel",
		"Nancy", "Matthew", "Lisa", "Anthony", "Betty", "Mark", "Margaret",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
		"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
		"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
		"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark",
	}
	streets = []string{
		"Main Street", "Oak Avenue", "Maple Drive", "Cedar Lane", "Park Road",
		"Elm Street", "Washington Avenue", "Lake Drive", "Hill Road",
		"Church Street", "Mill Lane", "Station Road", "High Street",
	}
	cities = []string{
		"Springfield", "Riverside", "Fairview", "Franklin", "Greenville",
		"Bristol", "Clinton", "Salem", "Madison", "Georgetown", "Arlington",
	}
	states    = []string{"CA", "TX", "NY", "FL", "IL", "PA", "OH", "GA", "NC", "MI"}
	mailHosts = []string{"example.com", "mail.com", "inbox.net", "post.org"}
)

// record holds one generated row in Header order.
type record []string

// Generate produces the base records plus labeled duplicates, shuffled.
func Generate(cfg *Config) [][]string {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	base := make([]record, cfg.Records)
	for i := range base {
		base[i] = cleanRecord(rng, i)
	}

	nDuplicates := int(float64(cfg.Records) * cfg.DuplicateRate)
	rows := make([][]string, 0, cfg.Records+nDuplicates)
	for _, r := range base {
		rows = append(rows, r)
	}
	for i := 0; i < nDuplicates; i++ {
		source := base[rng.Intn(len(base))]
		rows = append(rows, duplicateOf(rng, source, i))
	}

	rng.Shuffle(len(rows), func(i, j int) {
		rows[i], rows[j] = rows[j], rows[i]
	})
	return rows
}

// WriteCSV generates a dataset and writes it to path.
func WriteCSV(path string, cfg *Config) (int, error) {
	rows := Generate(cfg)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(Header); err != nil {
		return 0, err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return 0, err
		}
	}
	writer.Flush()
	return len(rows), writer.Error()
}

func cleanRecord(rng *rand.Rand, i int) record {
	first := firstNames[rng.Intn(len(firstNames))]
	last := lastNames[rng.Intn(len(lastNames))]

	return record{
		fmt.Sprintf("REC_%08d", i),
		first,
		last,
		fmt.Sprintf("%s.%s%d@%s", strings.ToLower(first), strings.ToLower(last),
			rng.Intn(1000), mailHosts[rng.Intn(len(mailHosts))]),
		fmt.Sprintf("%03d-%03d-%04d", 200+rng.Intn(700), rng.Intn(1000), rng.Intn(10000)),
		fmt.Sprintf("%d %s", 1+rng.Intn(9999), streets[rng.Intn(len(streets))]),
		cities[rng.Intn(len(cities))],
		states[rng.Intn(len(states))],
		fmt.Sprintf("%05d", 10000+rng.Intn(89999)),
		fmt.Sprintf("%04d-%02d-%02d", 1945+rng.Intn(60), 1+rng.Intn(12), 1+rng.Intn(28)),
		"false",
		"",
	}
}

// duplicateOf derives a labeled duplicate. Kind weights follow the observed
// mix in messy customer data: 5% exact copies, 40% typos, 35% partially
// nulled fields, 20% transposed names.
func duplicateOf(rng *rand.Rand, source record, i int) record {
	dup := make(record, len(source))
	copy(dup, source)
	dup[0] = fmt.Sprintf("DUP_%08d", i)
	dup[10] = "true"
	dup[11] = source[0]

	roll := rng.Float64()
	switch {
	case roll < 0.05:
		// exact copy

	case roll < 0.45:
		if rng.Float64() < 0.6 {
			dup[1] = introduceTypo(rng, dup[1])
		}
		if rng.Float64() < 0.6 {
			dup[2] = introduceTypo(rng, dup[2])
		}
		if rng.Float64() < 0.4 {
			dup[5] = introduceTypo(rng, dup[5])
		}

	case roll < 0.80:
		// Null one or two of email/phone/address.
		fields := []int{3, 4, 5}
		rng.Shuffle(len(fields), func(a, b int) { fields[a], fields[b] = fields[b], fields[a] })
		for _, f := range fields[:1+rng.Intn(2)] {
			dup[f] = ""
		}

	default:
		dup[1], dup[2] = dup[2], dup[1]
		if rng.Float64() < 0.5 {
			dup[3] = fmt.Sprintf("%s.%s%d@%s", strings.ToLower(dup[1]), strings.ToLower(dup[2]),
				rng.Intn(1000), mailHosts[rng.Intn(len(mailHosts))])
		}
	}

	return dup
}

// introduceTypo applies one random swap, deletion or replacement.
func introduceTypo(rng *rand.Rand, text string) string {
	runes := []rune(text)
	if len(runes) < 2 {
		return text
	}

	switch rng.Intn(3) {
	case 0:
		idx := rng.Intn(len(runes) - 1)
		runes[idx], runes[idx+1] = runes[idx+1], runes[idx]
	case 1:
		idx := rng.Intn(len(runes))
		runes = append(runes[:idx], runes[idx+1:]...)
	default:
		runes[rng.Intn(len(runes))] = rune('a' + rng.Intn(26))
	}
	return string(runes)
}
