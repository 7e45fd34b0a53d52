package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feedlens/feedlens/internal/action"
	"github.com/feedlens/feedlens/internal/config"
	"github.com/feedlens/feedlens/internal/database"
	"github.com/feedlens/feedlens/internal/importer"
	"github.com/feedlens/feedlens/internal/ingest"
	"github.com/feedlens/feedlens/internal/llm"
	"github.com/feedlens/feedlens/internal/report"
	"github.com/feedlens/feedlens/internal/signal"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "feedlens",
	Short:   "Customer feedback signal pipeline",
	Long:    "FeedLens ingests customer feedback, scores sentiment/urgency/impact/priority, deduplicates imports, and recommends next actions.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(rescoreCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(listCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("feedlens", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/feedlens/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the database path and AI provider.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Database: %s\n\n", db.Path())
		fmt.Println("Feedback:")
		fmt.Printf("  Total: %d\n", stats.TotalFeedback)
		fmt.Printf("  Average priority: %.2f\n", stats.AvgPriority)

		if len(stats.BySource) > 0 {
			fmt.Println("\nBy source:")
			sources := make([]string, 0, len(stats.BySource))
			for s := range stats.BySource {
				sources = append(sources, s)
			}
			sort.Strings(sources)
			for _, s := range sources {
				fmt.Printf("  %s: %d\n", s, stats.BySource[s])
			}
		}

		provider := llm.CreateProvider(providerOptions())
		if provider != nil {
			fmt.Println("\nAI provider: configured")
		} else {
			fmt.Println("\nAI provider: not configured")
		}
		return nil
	},
}

// --- ingest command ---

var ingestSource string

var ingestCmd = &cobra.Command{
	Use:   "ingest [text]",
	Short: "Ingest one feedback text and score it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		svc := ingest.NewService(db, signal.NewScorer(signal.NewVADER()))
		id, signals, err := svc.Ingest(args[0], ingestSource)
		if err != nil {
			return err
		}

		fmt.Printf("Stored feedback [%d]\n", id)
		printSignals(signals)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestSource, "source", "s", "", "Feedback source label (default \"manual\")")
}

// --- import command ---

var importBatchSize int

var importCmd = &cobra.Command{
	Use:   "import [csv-file]",
	Short: "Import feedback from a CSV export with dedup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		batchSize := cfg.Import.BatchSize
		if importBatchSize > 0 {
			batchSize = importBatchSize
		}

		imp := importer.New(db, signal.NewScorer(signal.NewVADER()), batchSize, cfg.Import.Source)
		stats, err := imp.ImportFile(args[0])
		if err != nil {
			return err
		}

		fmt.Println("Import complete:")
		fmt.Printf("  Imported: %d\n", stats.Imported)
		fmt.Printf("  Skipped: %d\n", stats.Skipped)
		fmt.Printf("  Errors: %d\n", stats.Errors)
		fmt.Printf("  Total processed: %d\n", stats.TotalProcessed)

		if total, err := db.CountBySource(cfg.Import.Source); err == nil {
			fmt.Printf("  Stored %s rows: %d\n", cfg.Import.Source, total)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 0, "Rows per insert batch (default from config)")
}

// --- rescore command ---

var rescoreLatest int

var rescoreCmd = &cobra.Command{
	Use:   "rescore [id]",
	Short: "Recompute signals for stored feedback",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && rescoreLatest == 0 {
			return fmt.Errorf("provide a feedback id or --latest N")
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		svc := ingest.NewService(db, signal.NewScorer(signal.NewVADER()))

		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid feedback id: %s", args[0])
			}
			signals, err := svc.Rescore(id)
			if errors.Is(err, ingest.ErrNotFound) {
				return fmt.Errorf("feedback %d not found", id)
			}
			if err != nil {
				return err
			}
			fmt.Printf("Rescored feedback [%d]\n", id)
			printSignals(signals)
			return nil
		}

		updated, err := svc.RescoreLatest(rescoreLatest)
		if err != nil {
			return err
		}
		fmt.Printf("Rescored %d of the latest %d feedback rows\n", updated, rescoreLatest)
		return nil
	},
}

func init() {
	rescoreCmd.Flags().IntVar(&rescoreLatest, "latest", 0, "Rescore the newest N rows instead of one id")
}

// --- analyze command ---

var (
	analyzeText string
	analyzeAI   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [id]",
	Short: "Recommend a next step and responsible team",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := resolveActionInput(args)
		if err != nil {
			return err
		}

		var rec action.Recommendation
		if analyzeAI {
			provider := llm.CreateProvider(providerOptions())
			if provider == nil {
				return fmt.Errorf("--ai requires a configured provider; set an API key or run without --ai")
			}
			rec = action.ClassifyWithAI(context.Background(), provider, in)
		} else {
			rec = action.Classify(in)
		}

		fmt.Printf("Team:      %s\n", rec.Team)
		fmt.Printf("Next step: %s\n", rec.NextStep)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeText, "text", "t", "", "Analyze literal text instead of a stored row")
	analyzeCmd.Flags().BoolVar(&analyzeAI, "ai", false, "Refine the recommendation with the chat provider")
}

// resolveActionInput builds classifier input from a stored row id or from
// literal --text scored on the fly.
func resolveActionInput(args []string) (action.Input, error) {
	if analyzeText != "" {
		signals := signal.NewScorer(signal.NewVADER()).Compute(analyzeText)
		return action.Input{
			Text:      analyzeText,
			Tags:      signals.Tags,
			Priority:  signals.Priority,
			Urgency:   signals.Urgency,
			Sentiment: signals.Sentiment,
			Impact:    signals.Impact,
		}, nil
	}

	if len(args) != 1 {
		return action.Input{}, fmt.Errorf("provide a feedback id or --text")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return action.Input{}, fmt.Errorf("invalid feedback id: %s", args[0])
	}

	db, err := openDB()
	if err != nil {
		return action.Input{}, err
	}
	defer db.Close()

	row, err := db.GetFeedbackByID(id)
	if err != nil {
		return action.Input{}, err
	}
	if row == nil {
		return action.Input{}, fmt.Errorf("feedback %d not found", id)
	}
	return action.Input{
		Text:      row.RawText,
		Tags:      row.Tags,
		Priority:  row.Priority,
		Urgency:   row.Urgency,
		Sentiment: row.Sentiment,
		Impact:    row.Impact,
	}, nil
}

// --- summarize command ---

const summarizeSystemPrompt = "You summarize customer feedback. Reply with one plain sentence capturing the core issue or request. No preamble."

var summarizeCmd = &cobra.Command{
	Use:   "summarize [id-or-text]",
	Short: "One-line AI summary of a feedback row or literal text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := llm.CreateProvider(providerOptions())
		if provider == nil {
			return fmt.Errorf("summarize requires a configured provider; set an API key in the environment")
		}

		text := args[0]
		// A numeric argument refers to a stored row.
		if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			row, err := db.GetFeedbackByID(id)
			if err != nil {
				return err
			}
			if row == nil {
				return fmt.Errorf("feedback %d not found", id)
			}
			text = row.RawText
		}

		summary, err := provider.Chat(context.Background(), summarizeSystemPrompt, text)
		if err != nil {
			return fmt.Errorf("summarizing: %w", err)
		}
		fmt.Println(strings.TrimSpace(summary))
		return nil
	},
}

// --- report command ---

var (
	reportDays int
	reportTop  int
	reportHTML string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a markdown digest of recent feedback",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		md, err := report.NewReporter(db).Digest(reportDays, reportTop)
		if err != nil {
			return err
		}

		if reportHTML == "" {
			fmt.Print(md)
			return nil
		}

		html, err := report.RenderHTML(md)
		if err != nil {
			return err
		}
		if err := os.WriteFile(reportHTML, []byte(html), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("Wrote HTML report: %s\n", reportHTML)
		return nil
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportDays, "days", 7, "Window size in days")
	reportCmd.Flags().IntVar(&reportTop, "top", 5, "Number of top-priority items")
	reportCmd.Flags().StringVar(&reportHTML, "html", "", "Write HTML to this file instead of printing markdown")
}

// --- list command ---

var (
	listLimit       int
	listPrioritized bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored feedback",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		var rows []database.Feedback
		if listPrioritized {
			rows, err = db.ListPrioritized(listLimit)
		} else {
			rows, err = db.ListRecent(listLimit)
		}
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			fmt.Println("No feedback stored. Add some with: feedlens ingest")
			return nil
		}

		for _, row := range rows {
			text := row.RawText
			if len(text) > 70 {
				text = text[:70] + "..."
			}
			fmt.Printf("[%d] p=%.2f s=%+.2f %-14s %s\n",
				row.ID, row.Priority, row.Sentiment, row.Source, text)
			if len(row.Tags) > 0 {
				fmt.Printf("      tags: %s\n", strings.Join(row.Tags, ", "))
			}
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum rows to show")
	listCmd.Flags().BoolVarP(&listPrioritized, "prioritized", "p", false, "Order by priority instead of recency")
}

func printSignals(s signal.Signals) {
	fmt.Printf("  Sentiment: %+.2f\n", s.Sentiment)
	fmt.Printf("  Urgency:   %.2f\n", s.Urgency)
	fmt.Printf("  Impact:    %.2f\n", s.Impact)
	fmt.Printf("  Priority:  %.2f\n", s.Priority)
	fmt.Printf("  Tags:      %s\n", strings.Join(s.Tags, ", "))
}

func providerOptions() llm.Options {
	return llm.Options{
		Provider:        cfg.AI.Provider,
		GeminiModel:     cfg.AI.GeminiModel,
		GeminiKeyEnv:    cfg.AI.GeminiKeyEnv,
		OpenAIModel:     cfg.AI.OpenAIModel,
		OpenAIKeyEnv:    cfg.AI.OpenAIKeyEnv,
		AnthropicModel:  cfg.AI.AnthropicModel,
		AnthropicKeyEnv: cfg.AI.AnthropicKeyEnv,
		MaxTokens:       cfg.AI.MaxTokens,
	}
}

func openDB() (*database.DB, error) {
	dbPath := cfg.GetDatabasePath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.Open(dbPath)
}
