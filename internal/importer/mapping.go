package importer

import (
	"errors"
	"strings"
)

// ErrNoReviewTextColumn aborts an import before any row is processed:
// without a review-text column there is nothing to ingest.
var ErrNoReviewTextColumn = errors.New("could not detect review text column")

// Mapping associates semantic fields with source CSV column names.
// Empty string means the field is absent; only ReviewText is mandatory.
type Mapping struct {
	ReviewText string
	Rating     string
	Title      string
	Date       string
	AppVersion string
	Reviewer   string
}

// Per-field pattern lists, in match priority order. A column maps to a
// field when its lowered name contains the pattern as a substring.
var (
	reviewTextPatterns = []string{"review", "content", "text", "comment", "feedback", "body", "message"}
	ratingPatterns     = []string{"rating", "score", "stars", "star"}
	titlePatterns      = []string{"title", "subject", "headline", "summary"}
	datePatterns       = []string{"date", "created", "submitted", "time", "timestamp"}
	versionPatterns    = []string{"version", "app_version", "build"}
	reviewerPatterns   = []string{"reviewer", "user", "author", "name"}
)

// DetectMapping heuristically maps arbitrary CSV headers onto semantic
// fields. For each field the first pattern with any match wins, and among
// matching columns the first in column order is taken.
func DetectMapping(columns []string) (Mapping, error) {
	m := Mapping{
		ReviewText: matchColumn(columns, reviewTextPatterns),
		Rating:     matchColumn(columns, ratingPatterns),
		Title:      matchColumn(columns, titlePatterns),
		Date:       matchColumn(columns, datePatterns),
		AppVersion: matchColumn(columns, versionPatterns),
		Reviewer:   matchColumn(columns, reviewerPatterns),
	}
	if m.ReviewText == "" {
		return Mapping{}, ErrNoReviewTextColumn
	}
	return m, nil
}

func matchColumn(columns []string, patterns []string) string {
	for _, pattern := range patterns {
		for _, col := range columns {
			if strings.Contains(strings.ToLower(strings.TrimSpace(col)), pattern) {
				return col
			}
		}
	}
	return ""
}
