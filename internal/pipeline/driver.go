package pipeline

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/azraattar/deduplication-system/internal/classify"
	"github.com/azraattar/deduplication-system/internal/dedupe"
	"github.com/azraattar/deduplication-system/internal/export"
	"github.com/azraattar/deduplication-system/internal/table"
)

// State tracks the driver through its strictly sequential run. There is no
// retry or partial-resume state.
type State string

const (
	StateLoaded     State = "LOADED"
	StateClassified State = "CLASSIFIED"
	StateMatched    State = "MATCHED"
	StatePersisted  State = "PERSISTED"
)

// Status distinguishes a full run from a degraded one, so callers can decide
// whether to trust the output instead of having load failures hidden behind
// a silent fallback.
type Status string

const (
	StatusFull     Status = "full"
	StatusDegraded Status = "degraded"
)

// fallbackRows caps the recovery load after a failed full load.
const fallbackRows = 1000

// Summary is the structured result of one pipeline run.
type Summary struct {
	RunID         string              `json:"run_id"`
	State         State               `json:"state"`
	Status        Status              `json:"status"`
	LoadError     string              `json:"load_error,omitempty"`
	Records       int                 `json:"input_records"`
	Pairs         int                 `json:"duplicate_pairs"`
	Elapsed       time.Duration       `json:"total_time"`
	DetectionRate float64             `json:"detection_rate"`
	Tiers         map[dedupe.Tier]int `json:"tiers"`
	Comparisons   int                 `json:"comparisons"`
	BlocksSkipped int                 `json:"blocks_skipped"`
	Columns       map[string]string   `json:"col_types"`
}

// Driver orchestrates load -> classify -> match -> persist for one input
// file. Each invocation loads its own table and writes its own artifact, so
// concurrent runs over different inputs are safe; concurrent runs sharing an
// output path race on the final write (last writer wins).
type Driver struct {
	classifyCfg *classify.Config
	engineCfg   *dedupe.Config
	sinks       []export.Sink
}

// NewDriver creates a driver; nil configs select defaults.
func NewDriver(classifyCfg *classify.Config, engineCfg *dedupe.Config) *Driver {
	if classifyCfg == nil {
		classifyCfg = classify.DefaultConfig()
	}
	if engineCfg == nil {
		engineCfg = dedupe.DefaultConfig()
	}
	return &Driver{classifyCfg: classifyCfg, engineCfg: engineCfg}
}

// AddSink registers an additional destination for the predictions beyond the
// CSV artifact.
func (d *Driver) AddSink(sink export.Sink) {
	d.sinks = append(d.sinks, sink)
}

// Run executes the pipeline over inputPath and writes the predictions
// artifact to outputPath, overwriting any previous artifact there.
//
// A load failure does not fail the run: the driver falls back to a capped
// lenient load with synthesized identifiers and returns a zero-match
// summary marked StatusDegraded with the load error attached. Errors are
// only returned for failures to persist the artifact.
func (d *Driver) Run(inputPath, outputPath string) (*Summary, error) {
	start := time.Now()
	summary := &Summary{
		RunID:  uuid.NewString(),
		Status: StatusFull,
		Tiers:  dedupe.NewMatchSet().TierCounts(),
	}

	t, err := table.LoadCSV(inputPath)
	if err != nil {
		return d.runDegraded(summary, inputPath, outputPath, start, err)
	}
	summary.State = StateLoaded
	log.Printf("Loaded %d records, %d columns from %s", t.NumRows(), len(t.Columns()), inputPath)

	cols := classify.Classify(t, d.classifyCfg)
	summary.State = StateClassified
	log.Printf("Classified columns: %d exact-key, %d name-like, %d free-text, %d generic, %d numeric",
		len(cols.ExactKey), len(cols.NameLike), len(cols.FreeText), len(cols.GenericString), len(cols.Numeric))

	engine := dedupe.NewEngine(d.engineCfg)
	matches, stats := engine.Run(t, cols)
	summary.State = StateMatched

	if err := d.persist(outputPath, summary.RunID, matches); err != nil {
		return nil, err
	}
	summary.State = StatePersisted

	summary.Records = t.NumRows()
	summary.Pairs = matches.Len()
	summary.Elapsed = time.Since(start)
	summary.DetectionRate = detectionRate(matches.Len(), t.NumRows())
	summary.Tiers = matches.TierCounts()
	summary.Comparisons = stats.Comparisons
	summary.BlocksSkipped = stats.BlocksSkipped
	summary.Columns = cols.CategoryMap()

	log.Printf("Run %s complete: %d pairs from %d records in %v",
		summary.RunID, summary.Pairs, summary.Records, summary.Elapsed.Round(time.Millisecond))
	return summary, nil
}

// runDegraded is the recovery path: reload at most fallbackRows rows with
// synthesized identifiers and return a zero-match summary. No matching runs
// on recovered rows; the caller sees exactly what failed and can reject the
// result.
func (d *Driver) runDegraded(summary *Summary, inputPath, outputPath string, start time.Time, loadErr error) (*Summary, error) {
	log.Printf("Load failed for %s, falling back to capped recovery load: %v", inputPath, loadErr)

	summary.Status = StatusDegraded
	summary.LoadError = loadErr.Error()

	if t, err := table.LoadCSVHead(inputPath, fallbackRows); err == nil {
		summary.Records = t.NumRows()
	} else {
		log.Printf("Recovery load also failed for %s: %v", inputPath, err)
	}

	// The artifact is still overwritten so a stale previous run cannot be
	// mistaken for this one.
	if err := d.persist(outputPath, summary.RunID, dedupe.NewMatchSet()); err != nil {
		return nil, err
	}
	summary.State = StatePersisted

	summary.Elapsed = time.Since(start)
	summary.Columns = map[string]string{}
	return summary, nil
}

// persist writes the CSV artifact and pushes the pairs to any extra sinks.
func (d *Driver) persist(outputPath, runID string, matches *dedupe.MatchSet) error {
	if err := export.WriteCSV(outputPath, matches.Candidates()); err != nil {
		return fmt.Errorf("failed to persist predictions: %w", err)
	}

	for _, sink := range d.sinks {
		if err := sink.Save(runID, matches.Candidates()); err != nil {
			// A sink failure must not invalidate the artifact already written.
			log.Printf("Sink %s failed: %v", sink.Name(), err)
		}
	}
	return nil
}

// detectionRate is a capped heuristic estimate, min(100, pairs*2/records*100).
// It is not a verified recall figure.
func detectionRate(pairs, records int) float64 {
	if records == 0 {
		return 0
	}
	rate := float64(pairs) * 2 / float64(records) * 100
	if rate > 100 {
		return 100
	}
	return rate
}
