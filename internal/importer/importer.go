// Package importer bulk-loads third-party review exports: it detects the
// CSV column layout, runs every row through the signal pipeline, and inserts
// batches deduplicated against the store by content hash.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/feedlens/feedlens/internal/database"
	"github.com/feedlens/feedlens/internal/signal"
)

// Store is the persistence capability the importer needs.
type Store interface {
	ExistingHashes(hashes []string) (map[string]bool, error)
	InsertFeedbackBatch(rows []database.Feedback) (int, error)
}

// Stats holds the counters for one import run.
type Stats struct {
	Imported       int
	Skipped        int
	Errors         int
	TotalProcessed int
}

// Importer drives a dedup-aware batch import of review CSVs.
type Importer struct {
	store     Store
	scorer    *signal.Scorer
	batchSize int
	source    string
}

// New creates an Importer. A batch size below 1 falls back to 100.
func New(store Store, scorer *signal.Scorer, batchSize int, source string) *Importer {
	if batchSize < 1 {
		batchSize = 100
	}
	if source == "" {
		source = "app_store_csv"
	}
	return &Importer{store: store, scorer: scorer, batchSize: batchSize, source: source}
}

// ImportFile imports reviews from a CSV file on disk.
func (imp *Importer) ImportFile(path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV: %w", err)
	}
	defer f.Close()
	return imp.Import(f)
}

// Import reads CSV data, detects the column mapping from the header row, and
// processes rows in sequential batches. It fails before any row when no
// review-text column can be detected; per-row problems only move counters.
func (imp *Importer) Import(r io.Reader) (*Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	mapping, err := DetectMapping(header)
	if err != nil {
		return nil, err
	}
	log.Printf("detected column mapping: review_text=%q rating=%q title=%q date=%q version=%q reviewer=%q",
		mapping.ReviewText, mapping.Rating, mapping.Title, mapping.Date, mapping.AppVersion, mapping.Reviewer)

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[col] = i
	}

	stats := &Stats{}
	var batch []database.Feedback
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("error reading CSV row: %v", err)
			stats.TotalProcessed++
			stats.Errors++
			continue
		}
		stats.TotalProcessed++

		row := imp.processRow(record, colIndex, mapping)
		if row == nil {
			stats.Skipped++
			continue
		}
		batch = append(batch, *row)

		if len(batch) >= imp.batchSize {
			imp.flush(batch, stats)
			batch = batch[:0]
		}
		if stats.TotalProcessed%100 == 0 {
			log.Printf("processed %d rows...", stats.TotalProcessed)
		}
	}
	if len(batch) > 0 {
		imp.flush(batch, stats)
	}

	log.Printf("import complete: %d imported, %d skipped, %d errors (%d rows)",
		stats.Imported, stats.Skipped, stats.Errors, stats.TotalProcessed)
	return stats, nil
}

// processRow extracts text and optional metadata from one record and runs
// the signal pipeline. Returns nil when the row has no usable text.
func (imp *Importer) processRow(record []string, colIndex map[string]int, mapping Mapping) *database.Feedback {
	get := func(col string) string {
		if col == "" {
			return ""
		}
		i, ok := colIndex[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	reviewText := get(mapping.ReviewText)
	title := get(mapping.Title)

	text := reviewText
	if isPlaceholder(text) {
		text = title
	}
	if isPlaceholder(text) {
		return nil
	}

	// Combine title and review when both carry distinct content.
	if !isPlaceholder(title) && title != text {
		text = title + ". " + text
	}

	// Optional metadata is best-effort: a field that fails to parse is
	// omitted, never a row failure.
	metadata := make(map[string]any)
	if raw := get(mapping.Rating); raw != "" {
		if rating, err := strconv.ParseFloat(raw, 64); err == nil {
			metadata["rating"] = rating
		}
	}
	if date := get(mapping.Date); !isPlaceholder(date) {
		metadata["review_date"] = date
	}
	if version := get(mapping.AppVersion); !isPlaceholder(version) {
		metadata["app_version"] = version
	}
	if reviewer := get(mapping.Reviewer); !isPlaceholder(reviewer) {
		metadata["reviewer"] = reviewer
	}
	if len(metadata) == 0 {
		metadata = nil
	}

	signals := imp.scorer.Compute(text)
	return &database.Feedback{
		RawText:        text,
		NormalizedText: signals.NormalizedText,
		ContentHash:    signals.ContentHash,
		Sentiment:      signals.Sentiment,
		Urgency:        signals.Urgency,
		Impact:         signals.Impact,
		Priority:       signals.Priority,
		Tags:           signals.Tags,
		Source:         imp.source,
		Metadata:       metadata,
	}
}

// flush deduplicates the batch against hashes already in the store and
// inserts the remainder. A store failure is caught at batch granularity:
// the whole batch counts as errors and the run continues.
func (imp *Importer) flush(batch []database.Feedback, stats *Stats) {
	hashes := make([]string, len(batch))
	for i := range batch {
		hashes[i] = batch[i].ContentHash
	}

	existing, err := imp.store.ExistingHashes(hashes)
	if err != nil {
		log.Printf("error checking existing hashes: %v", err)
		stats.Errors += len(batch)
		return
	}

	// Rows whose hash is already stored are dropped. Two rows within the
	// same batch that share a hash both pass this filter; self-dedup is
	// intentionally not performed here.
	var newRows []database.Feedback
	for i := range batch {
		if !existing[batch[i].ContentHash] {
			newRows = append(newRows, batch[i])
		}
	}

	inserted, err := imp.store.InsertFeedbackBatch(newRows)
	if err != nil {
		log.Printf("error inserting batch: %v", err)
		stats.Errors += len(batch)
		return
	}

	stats.Imported += inserted
	stats.Skipped += len(batch) - inserted
	log.Printf("inserted %d new rows (skipped %d duplicates)", inserted, len(batch)-inserted)
}

// isPlaceholder reports whether a cell is blank or one of the export
// placeholders some tools write for missing values.
func isPlaceholder(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "none":
		return true
	}
	return false
}
