// Package report computes KPI windows over stored feedback and renders a
// markdown digest, optionally converted to HTML.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/feedlens/feedlens/internal/action"
	"github.com/feedlens/feedlens/internal/database"
)

// Thresholds for the windowed counters.
const (
	urgentThreshold   = 0.66
	positiveThreshold = 0.2
	negativeThreshold = -0.2
)

// DayPoint is the average sentiment for one calendar day.
type DayPoint struct {
	Date         string
	AvgSentiment float64
}

// KPIs summarizes a feedback window.
type KPIs struct {
	Total             int
	Urgent            int
	Positive          int
	Negative          int
	AvgPriority       float64
	SentimentOverTime []DayPoint
}

// ComputeKPIs derives windowed counters from feedback rows.
func ComputeKPIs(rows []database.Feedback) KPIs {
	k := KPIs{Total: len(rows)}
	var prioritySum float64
	byDay := make(map[string]*struct {
		sum float64
		n   int
	})

	for _, row := range rows {
		prioritySum += row.Priority
		if row.Urgency >= urgentThreshold {
			k.Urgent++
		}
		if row.Sentiment >= positiveThreshold {
			k.Positive++
		}
		if row.Sentiment <= negativeThreshold {
			k.Negative++
		}
		if day := dayOf(row.CreatedAt); day != "" {
			d, ok := byDay[day]
			if !ok {
				d = &struct {
					sum float64
					n   int
				}{}
				byDay[day] = d
			}
			d.sum += row.Sentiment
			d.n++
		}
	}

	if k.Total > 0 {
		k.AvgPriority = prioritySum / float64(k.Total)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		d := byDay[day]
		k.SentimentOverTime = append(k.SentimentOverTime, DayPoint{
			Date:         day,
			AvgSentiment: d.sum / float64(d.n),
		})
	}
	return k
}

func dayOf(createdAt *string) string {
	if createdAt == nil || len(*createdAt) < 10 {
		return ""
	}
	return (*createdAt)[:10]
}

// Store is the persistence capability the reporter needs.
type Store interface {
	ListSince(cutoff time.Time) ([]database.Feedback, error)
	ListPrioritized(limit int) ([]database.Feedback, error)
}

// Reporter builds markdown digests of recent feedback.
type Reporter struct {
	store Store
}

// NewReporter creates a Reporter.
func NewReporter(store Store) *Reporter {
	return &Reporter{store: store}
}

// Digest renders a markdown report covering the last days of feedback and
// the topN highest-priority items with their action recommendations.
func (r *Reporter) Digest(days, topN int) (string, error) {
	rows, err := r.store.ListSince(time.Now().AddDate(0, 0, -days))
	if err != nil {
		return "", fmt.Errorf("loading feedback window: %w", err)
	}
	top, err := r.store.ListPrioritized(topN)
	if err != nil {
		return "", fmt.Errorf("loading prioritized feedback: %w", err)
	}

	k := ComputeKPIs(rows)
	var b strings.Builder
	fmt.Fprintf(&b, "# Feedback Digest\n\n")
	fmt.Fprintf(&b, "Window: last %d days\n\n", days)
	fmt.Fprintf(&b, "## KPIs\n\n")
	fmt.Fprintf(&b, "- Total feedback: %d\n", k.Total)
	fmt.Fprintf(&b, "- Urgent (urgency >= %.2f): %d\n", urgentThreshold, k.Urgent)
	fmt.Fprintf(&b, "- Positive: %d\n", k.Positive)
	fmt.Fprintf(&b, "- Negative: %d\n", k.Negative)
	fmt.Fprintf(&b, "- Average priority: %.2f\n", k.AvgPriority)

	if len(k.SentimentOverTime) > 0 {
		fmt.Fprintf(&b, "\n## Sentiment over time\n\n")
		for _, p := range k.SentimentOverTime {
			fmt.Fprintf(&b, "- %s: %+.2f\n", p.Date, p.AvgSentiment)
		}
	}

	if len(top) > 0 {
		fmt.Fprintf(&b, "\n## Top priorities\n\n")
		for _, row := range top {
			rec := action.Classify(action.Input{
				Text:      row.RawText,
				Tags:      row.Tags,
				Priority:  row.Priority,
				Urgency:   row.Urgency,
				Sentiment: row.Sentiment,
				Impact:    row.Impact,
			})
			fmt.Fprintf(&b, "### #%d (priority %.2f)\n\n", row.ID, row.Priority)
			fmt.Fprintf(&b, "> %s\n\n", excerpt(row.RawText, 200))
			fmt.Fprintf(&b, "- Team: %s\n", rec.Team)
			fmt.Fprintf(&b, "- Next step: %s\n\n", rec.NextStep)
		}
	}

	return b.String(), nil
}

// RenderHTML converts a markdown digest to standalone HTML.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

func excerpt(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
