// Package signal implements the feedback signal pipeline: text
// normalization, content hashing for dedup, sentiment/urgency/impact/
// priority scoring, and tag derivation.
package signal

// Signals holds every derived signal for one piece of feedback.
// It is computed once and treated as immutable afterward.
type Signals struct {
	NormalizedText string
	ContentHash    string
	Sentiment      float64 // compound polarity, -1..1
	Urgency        float64 // 0..1
	Impact         float64 // 0..1
	Priority       float64 // 0..1
	Tags           []string
}

// Scorer runs the full pipeline over raw text using the injected
// sentiment analyzer.
type Scorer struct {
	analyzer Analyzer
}

// NewScorer creates a Scorer backed by the given sentiment analyzer.
func NewScorer(analyzer Analyzer) *Scorer {
	return &Scorer{analyzer: analyzer}
}

// Compute derives all signals for raw text. Sentiment is computed from the
// original text so punctuation and case cues survive; everything else works
// on the normalized form.
func (s *Scorer) Compute(raw string) Signals {
	normalized := Normalize(raw)
	sentiment := s.analyzer.Compound(raw)
	urgency := Urgency(normalized, sentiment)
	impact := Impact(normalized)
	return Signals{
		NormalizedText: normalized,
		ContentHash:    ContentHash(normalized),
		Sentiment:      sentiment,
		Urgency:        urgency,
		Impact:         impact,
		Priority:       Priority(urgency, impact),
		Tags:           Tags(normalized, sentiment),
	}
}
