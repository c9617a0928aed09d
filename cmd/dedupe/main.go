package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/azraattar/deduplication-system/internal/baseline"
	"github.com/azraattar/deduplication-system/internal/blockstats"
	"github.com/azraattar/deduplication-system/internal/classify"
	"github.com/azraattar/deduplication-system/internal/config"
	"github.com/azraattar/deduplication-system/internal/dedupe"
	"github.com/azraattar/deduplication-system/internal/evaluate"
	"github.com/azraattar/deduplication-system/internal/export"
	"github.com/azraattar/deduplication-system/internal/pipeline"
	"github.com/azraattar/deduplication-system/internal/synth"
	tabular "github.com/azraattar/deduplication-system/internal/table"
	"github.com/azraattar/deduplication-system/internal/web"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Universal tabular deduplication system",
		Long:  `Schema-free duplicate detection for tabular datasets using column classification and tiered blocking + fuzzy matching`,
	}

	rootCmd.AddCommand(createRunCmd())
	rootCmd.AddCommand(createEvaluateCmd())
	rootCmd.AddCommand(createGenerateCmd())
	rootCmd.AddCommand(createBlockstatsCmd())
	rootCmd.AddCommand(createBaselineCmd())
	rootCmd.AddCommand(createServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// classifyConfigFromEnv builds the classification heuristics, allowing the
// uniqueness bands to be tuned without a rebuild.
func classifyConfigFromEnv() *classify.Config {
	cfg := classify.DefaultConfig()
	cfg.ExactUniqueness = config.GetEnvFloat("DEDUPE_EXACT_UNIQUENESS", cfg.ExactUniqueness)
	cfg.NameBandLow = config.GetEnvFloat("DEDUPE_NAME_BAND_LOW", cfg.NameBandLow)
	cfg.NameBandHigh = config.GetEnvFloat("DEDUPE_NAME_BAND_HIGH", cfg.NameBandHigh)
	cfg.FreeTextMinLen = config.GetEnvFloat("DEDUPE_FREETEXT_MIN_LEN", cfg.FreeTextMinLen)
	cfg.FreeTextMaxRatio = config.GetEnvFloat("DEDUPE_FREETEXT_MAX_RATIO", cfg.FreeTextMaxRatio)
	return cfg
}

// engineConfigFromEnv builds the engine configuration from the environment.
func engineConfigFromEnv() *dedupe.Config {
	cfg := dedupe.DefaultConfig()
	cfg.HighThreshold = config.GetEnvFloat("DEDUPE_HIGH_THRESHOLD", cfg.HighThreshold)
	cfg.MediumThreshold = config.GetEnvFloat("DEDUPE_MEDIUM_THRESHOLD", cfg.MediumThreshold)
	cfg.LowThreshold = config.GetEnvFloat("DEDUPE_LOW_THRESHOLD", cfg.LowThreshold)
	cfg.MaxBlockSize = config.GetEnvInt("DEDUPE_MAX_BLOCK_SIZE", cfg.MaxBlockSize)
	cfg.Workers = config.GetEnvInt("DEDUPE_WORKERS", cfg.Workers)
	cfg.Debug = config.GetEnvBool("DEDUPE_DEBUG", cfg.Debug)
	return cfg
}

// createRunCmd creates the run subcommand
func createRunCmd() *cobra.Command {
	var outputPath string
	var postgresDSN string
	var workers int

	cmd := &cobra.Command{
		Use:   "run [input.csv]",
		Short: "Run the deduplication pipeline over a dataset",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			engineCfg := engineConfigFromEnv()
			if workers > 0 {
				engineCfg.Workers = workers
			}

			driver := pipeline.NewDriver(classifyConfigFromEnv(), engineCfg)

			if postgresDSN != "" {
				sink, err := export.OpenPostgres(postgresDSN)
				if err != nil {
					log.Fatalf("Failed to connect to Postgres sink: %v", err)
				}
				defer sink.Close()
				driver.AddSink(sink)
			}

			summary, err := driver.Run(args[0], outputPath)
			if err != nil {
				log.Fatalf("Pipeline failed: %v", err)
			}

			printSummary(summary, outputPath)
			if summary.Status == pipeline.StatusDegraded {
				os.Exit(2)
			}
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o",
		config.GetEnv("DEDUPE_OUTPUT_PATH", "data/raw/dynamic_predictions.csv"),
		"predictions artifact path")
	cmd.Flags().StringVar(&postgresDSN, "postgres-dsn", config.GetEnv("DEDUPE_POSTGRES_DSN", ""),
		"optional Postgres DSN to mirror predictions into")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker pool size for block scoring (0 = from env/default)")

	return cmd
}

// printSummary renders the run summary as a table.
func printSummary(summary *pipeline.Summary, outputPath string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Run %s", summary.RunID)
	t.AppendRows([]table.Row{
		{"Status", string(summary.Status)},
		{"Records", summary.Records},
		{"Pairs", summary.Pairs},
		{"Detection rate", fmt.Sprintf("%.1f%%", summary.DetectionRate)},
		{"Elapsed", summary.Elapsed.Round(time.Millisecond)},
		{"Comparisons", summary.Comparisons},
		{"Blocks skipped", summary.BlocksSkipped},
	})
	t.AppendSeparator()
	for _, tier := range []dedupe.Tier{dedupe.TierExact, dedupe.TierHigh, dedupe.TierMedium, dedupe.TierLow} {
		t.AppendRow(table.Row{string(tier), summary.Tiers[tier]})
	}
	t.Render()

	if summary.LoadError != "" {
		fmt.Printf("Load error (degraded run): %s\n", summary.LoadError)
	}
	fmt.Printf("Predictions written to %s\n", outputPath)
}

// createEvaluateCmd creates the evaluate subcommand
func createEvaluateCmd() *cobra.Command {
	var metricsPath string

	cmd := &cobra.Command{
		Use:   "evaluate [predictions.csv] [ground_truth.csv]",
		Short: "Evaluate predictions against a labeled ground truth",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			metrics, err := evaluate.Evaluate(args[0], args[1])
			if err != nil {
				log.Fatalf("Evaluation failed: %v", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetTitle("Accuracy")
			t.AppendRows([]table.Row{
				{"True duplicate pairs", metrics.TrueDuplicates},
				{"Predicted pairs", metrics.PredictedDuplicates},
				{"True positives", metrics.TruePositives},
				{"False positives", metrics.FalsePositives},
				{"False negatives", metrics.FalseNegatives},
				{"Precision", fmt.Sprintf("%.2f%%", metrics.Precision*100)},
				{"Recall", fmt.Sprintf("%.2f%%", metrics.Recall*100)},
				{"F1 score", fmt.Sprintf("%.2f%%", metrics.F1Score*100)},
			})
			t.Render()

			if err := evaluate.WriteCSV(metricsPath, metrics); err != nil {
				log.Fatalf("Failed to write metrics: %v", err)
			}
			fmt.Printf("Metrics saved to %s\n", metricsPath)
		},
	}

	cmd.Flags().StringVar(&metricsPath, "metrics-out", "benchmarks/accuracy_metrics.csv",
		"metrics output path")
	return cmd
}

// createGenerateCmd creates the generate subcommand
func createGenerateCmd() *cobra.Command {
	cfg := synth.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "generate [output.csv]",
		Short: "Generate a labeled synthetic customer dataset",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			total, err := synth.WriteCSV(args[0], cfg)
			if err != nil {
				log.Fatalf("Generation failed: %v", err)
			}
			fmt.Printf("Wrote %d records (%d clean + duplicates at rate %.0f%%) to %s\n",
				total, cfg.Records, cfg.DuplicateRate*100, args[0])
		},
	}

	cmd.Flags().IntVar(&cfg.Records, "records", cfg.Records, "number of clean records")
	cmd.Flags().Float64Var(&cfg.DuplicateRate, "duplicate-rate", cfg.DuplicateRate, "duplicate rate")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	return cmd
}

// createBlockstatsCmd creates the blockstats subcommand
func createBlockstatsCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "blockstats [input.csv]",
		Short: "Analyze blocking-rule effectiveness for a dataset",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			tbl, err := tabular.LoadCSV(args[0])
			if err != nil {
				log.Fatalf("Failed to load %s: %v", args[0], err)
			}

			cols := classify.Classify(tbl, classifyConfigFromEnv())
			report, err := blockstats.Analyze(tbl, blockstats.DefaultRules(cols))
			if err != nil {
				log.Fatalf("Blocking analysis failed: %v", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetTitle("Blocking analysis")
			t.AppendHeader(table.Row{"Rule", "Blocks", "Comparisons", "Avg size", "Max size"})
			for _, stat := range report.Rules {
				t.AppendRow(table.Row{stat.Rule, stat.Blocks, stat.Comparisons,
					fmt.Sprintf("%.1f", stat.AvgBlockSize), stat.MaxBlockSize})
			}
			t.Render()

			fmt.Printf("Naive comparisons: %d\n", report.NaiveComparisons)
			fmt.Printf("Blocked comparisons: %d\n", report.BlockedComparisons)
			fmt.Printf("Reduction: %.2f%%\n", report.ReductionPct)

			if err := blockstats.WriteCSV(outputPath, report); err != nil {
				log.Fatalf("Failed to write analysis: %v", err)
			}
			fmt.Printf("Analysis saved to %s\n", outputPath)
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "benchmarks/blocking_analysis.csv",
		"analysis output path")
	return cmd
}

// createBaselineCmd creates the baseline subcommand
func createBaselineCmd() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "baseline [input.csv]",
		Short: "Run the naive baseline benchmarks",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			tbl, err := tabular.LoadCSV(args[0])
			if err != nil {
				log.Fatalf("Failed to load %s: %v", args[0], err)
			}
			cols := classify.Classify(tbl, classifyConfigFromEnv())

			results := []*baseline.Result{
				baseline.ExactDedup(tbl),
				baseline.SimpleFuzzy(tbl, cols, threshold),
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetTitle("Baselines")
			t.AppendHeader(table.Row{"Method", "Records", "Duplicates", "Elapsed", "Alloc MB", "Note"})
			for _, res := range results {
				t.AppendRow(table.Row{res.Method, res.Records, res.Duplicates,
					res.Elapsed.Round(time.Millisecond), fmt.Sprintf("%.1f", res.AllocMB), res.Note})
			}
			t.Render()
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 80, "fuzzy baseline similarity threshold (0-100)")
	return cmd
}

// createServeCmd creates the serve subcommand
func createServeCmd() *cobra.Command {
	webCfg := web.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the upload-and-run web server",
		Run: func(cmd *cobra.Command, args []string) {
			driver := pipeline.NewDriver(classifyConfigFromEnv(), engineConfigFromEnv())

			server, err := web.NewServer(webCfg, driver)
			if err != nil {
				log.Fatalf("Failed to create server: %v", err)
			}
			if err := server.Start(); err != nil {
				log.Fatalf("Server failed: %v", err)
			}
		},
	}

	cmd.Flags().StringVar(&webCfg.Host, "host", config.GetEnv("DEDUPE_WEB_HOST", webCfg.Host), "listen host")
	cmd.Flags().IntVar(&webCfg.Port, "port", config.GetEnvInt("DEDUPE_WEB_PORT", webCfg.Port), "listen port")
	cmd.Flags().StringVar(&webCfg.UploadDir, "upload-dir", webCfg.UploadDir, "upload directory")
	cmd.Flags().StringVar(&webCfg.OutputPath, "output", webCfg.OutputPath, "predictions artifact path")
	return cmd
}
