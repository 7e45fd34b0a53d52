// Package ingest wires the signal pipeline to the store for single-item
// ingestion and re-scoring.
package ingest

import (
	"errors"
	"fmt"
	"log"

	"github.com/feedlens/feedlens/internal/database"
	"github.com/feedlens/feedlens/internal/signal"
)

// ErrNotFound is returned when a feedback id does not exist.
var ErrNotFound = errors.New("feedback not found")

// Store is the persistence capability the service needs.
type Store interface {
	InsertFeedback(f *database.Feedback) (int64, error)
	GetFeedbackByID(id int64) (*database.Feedback, error)
	UpdateSignals(id int64, normalizedText, contentHash string,
		sentiment, urgency, impact, priority float64, tags []string) error
	ListRecent(limit int) ([]database.Feedback, error)
}

// Service computes signals and persists feedback rows.
type Service struct {
	store  Store
	scorer *signal.Scorer
}

// NewService creates an ingestion service.
func NewService(store Store, scorer *signal.Scorer) *Service {
	return &Service{store: store, scorer: scorer}
}

// Ingest computes signals for raw text and inserts one feedback row.
// An empty source defaults to "manual".
func (s *Service) Ingest(text, source string) (int64, signal.Signals, error) {
	if source == "" {
		source = "manual"
	}
	signals := s.scorer.Compute(text)
	id, err := s.store.InsertFeedback(&database.Feedback{
		RawText:        text,
		NormalizedText: signals.NormalizedText,
		ContentHash:    signals.ContentHash,
		Sentiment:      signals.Sentiment,
		Urgency:        signals.Urgency,
		Impact:         signals.Impact,
		Priority:       signals.Priority,
		Tags:           signals.Tags,
		Source:         source,
	})
	if err != nil {
		return 0, signal.Signals{}, fmt.Errorf("inserting feedback: %w", err)
	}
	return id, signals, nil
}

// Rescore recomputes signals from the stored raw text and overwrites the
// signal fields, preserving raw text and identity. Useful to backfill rows
// created before scoring changed.
func (s *Service) Rescore(id int64) (signal.Signals, error) {
	row, err := s.store.GetFeedbackByID(id)
	if err != nil {
		return signal.Signals{}, fmt.Errorf("loading feedback %d: %w", id, err)
	}
	if row == nil {
		return signal.Signals{}, fmt.Errorf("feedback id=%d: %w", id, ErrNotFound)
	}

	signals := s.scorer.Compute(row.RawText)
	if err := s.store.UpdateSignals(id, signals.NormalizedText, signals.ContentHash,
		signals.Sentiment, signals.Urgency, signals.Impact, signals.Priority,
		signals.Tags); err != nil {
		return signal.Signals{}, fmt.Errorf("updating feedback %d: %w", id, err)
	}
	return signals, nil
}

// RescoreLatest re-scores the newest limit rows and returns how many were
// updated. Individual row failures are logged and skipped.
func (s *Service) RescoreLatest(limit int) (int, error) {
	rows, err := s.store.ListRecent(limit)
	if err != nil {
		return 0, fmt.Errorf("listing feedback: %w", err)
	}
	updated := 0
	for _, row := range rows {
		if _, err := s.Rescore(row.ID); err != nil {
			log.Printf("error rescoring feedback %d: %v", row.ID, err)
			continue
		}
		updated++
	}
	return updated, nil
}
