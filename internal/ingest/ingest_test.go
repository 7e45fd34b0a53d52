package ingest

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/feedlens/feedlens/internal/database"
	"github.com/feedlens/feedlens/internal/signal"
)

// stubAnalyzer gives deterministic sentiment without a lexicon.
type stubAnalyzer struct {
	score float64
}

func (s *stubAnalyzer) Compound(_ string) float64 { return s.score }

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestIngestStoresSignals(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, signal.NewScorer(&stubAnalyzer{score: -0.6}))

	id, signals, err := svc.Ingest("Payment failed, urgent! All users affected in production", "")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero id")
	}
	if math.Abs(signals.Priority-(0.6*signals.Urgency+0.4*signals.Impact)) > 1e-9 {
		t.Error("priority invariant violated")
	}

	row, err := db.GetFeedbackByID(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row.Source != "manual" {
		t.Errorf("expected default source 'manual', got %q", row.Source)
	}
	if row.ContentHash != signals.ContentHash {
		t.Error("stored hash differs from computed hash")
	}
	if row.Tags[0] != signal.TagVeryNegative {
		t.Errorf("unexpected first tag: %v", row.Tags)
	}
}

func TestIngestCustomSource(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, signal.NewScorer(&stubAnalyzer{}))

	id, _, err := svc.Ingest("some api feedback", "api")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	row, _ := db.GetFeedbackByID(id)
	if row.Source != "api" {
		t.Errorf("expected source 'api', got %q", row.Source)
	}
}

func TestRescoreOverwritesSignals(t *testing.T) {
	db := openTestDB(t)
	analyzer := &stubAnalyzer{score: 0.8}
	svc := NewService(db, signal.NewScorer(analyzer))

	id, first, err := svc.Ingest("the dashboard is nice", "manual")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if first.Tags[0] != signal.TagVeryPositive {
		t.Fatalf("unexpected initial bucket: %v", first.Tags)
	}

	// The analyzer's opinion changes; rescore must pick it up.
	analyzer.score = -0.9
	signals, err := svc.Rescore(id)
	if err != nil {
		t.Fatalf("rescore: %v", err)
	}
	if signals.Tags[0] != signal.TagVeryNegative {
		t.Errorf("expected very_negative after rescore, got %v", signals.Tags)
	}

	row, _ := db.GetFeedbackByID(id)
	if row.RawText != "the dashboard is nice" {
		t.Error("raw text must be preserved across rescore")
	}
	if row.Tags[0] != signal.TagVeryNegative {
		t.Errorf("signals not persisted: %v", row.Tags)
	}
}

func TestRescoreMissingID(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, signal.NewScorer(&stubAnalyzer{}))

	_, err := svc.Rescore(12345)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRescoreLatest(t *testing.T) {
	db := openTestDB(t)
	analyzer := &stubAnalyzer{score: 0.1}
	svc := NewService(db, signal.NewScorer(analyzer))

	for _, text := range []string{"first", "second", "third"} {
		if _, _, err := svc.Ingest(text, "manual"); err != nil {
			t.Fatal(err)
		}
	}

	analyzer.score = -0.1
	updated, err := svc.RescoreLatest(2)
	if err != nil {
		t.Fatalf("rescore latest: %v", err)
	}
	if updated != 2 {
		t.Errorf("expected 2 updated, got %d", updated)
	}

	// Newest two rows carry the new bucket, the oldest keeps the old one.
	rows, _ := db.ListRecent(3)
	if rows[0].Tags[0] != signal.TagNegative || rows[1].Tags[0] != signal.TagNegative {
		t.Errorf("expected rescored rows first: %v / %v", rows[0].Tags, rows[1].Tags)
	}
	if rows[2].Tags[0] != signal.TagNeutral {
		t.Errorf("expected untouched oldest row, got %v", rows[2].Tags)
	}
}
