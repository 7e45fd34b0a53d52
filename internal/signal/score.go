package signal

import "strings"

// Analyzer is the sentiment capability. Compound returns a polarity score
// in [-1, 1] and must tolerate empty input.
type Analyzer interface {
	Compound(text string) float64
}

var urgencyKeywords = []string{
	"crash", "urgent", "asap", "now", "immediately", "not working", "down",
	"can't", "cannot", "error", "fail", "bug", "broken", "refund", "cancel",
	"deadline", "outage", "blocker", "stuck", "hang", "freeze",
}

var impactKeywords = []string{
	"payment", "checkout", "billing", "invoice", "subscription", "paying",
	"enterprise", "admin", "team", "org", "organization", "workspace",
	"production", "prod", "release", "customers", "everyone", "all users",
	"revenue", "sales", "trial conversion", "onboarding", "retention",
}

// Urgency scores how pressing a piece of feedback is: negative tone,
// urgent vocabulary, and exclamation density.
func Urgency(normalized string, sentiment float64) float64 {
	neg := 0.0
	if sentiment < 0 {
		neg = -sentiment
	}
	kw := 0.0
	if hasAny(normalized, urgencyKeywords) {
		kw = 1.0
	}
	exclaim := float64(strings.Count(normalized, "!"))
	punct := exclaim / 3.0
	if punct > 1.0 {
		punct = 1.0
	}
	return clamp01(0.55*neg + 0.35*kw + 0.10*punct)
}

// Impact scores breadth of effect: revenue/checkout/team-wide vocabulary,
// plus a bump for longer texts that carry more context.
func Impact(normalized string) float64 {
	kw := 0.0
	if hasAny(normalized, impactKeywords) {
		kw = 1.0
	}
	longish := 0.0
	if len(normalized) >= 140 {
		longish = 1.0
	}
	return clamp01(0.6*kw + 0.4*longish)
}

// Priority is a fixed linear combination of urgency and impact.
func Priority(urgency, impact float64) float64 {
	return clamp01(0.6*urgency + 0.4*impact)
}

func hasAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
