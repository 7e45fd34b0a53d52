package signal

import "github.com/jonreiter/govader"

// VADER is the default Analyzer, a lexicon-based sentiment model suited to
// short informal text like reviews and support messages.
type VADER struct {
	inner *govader.SentimentIntensityAnalyzer
}

// NewVADER creates a VADER analyzer with the standard lexicon.
func NewVADER() *VADER {
	return &VADER{inner: govader.NewSentimentIntensityAnalyzer()}
}

// Compound returns the compound polarity score in [-1, 1].
// Empty input scores 0.
func (v *VADER) Compound(text string) float64 {
	return v.inner.PolarityScores(text).Compound
}
