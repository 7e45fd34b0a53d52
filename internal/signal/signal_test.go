package signal

import (
	"math"
	"strings"
	"testing"
)

// fixedAnalyzer returns a canned compound score.
type fixedAnalyzer struct {
	score float64
}

func (f *fixedAnalyzer) Compound(_ string) float64 { return f.score }

func TestNormalizeLowercasesAndTrims(t *testing.T) {
	got := Normalize("  Payment FAILED  ")
	if got != "payment failed" {
		t.Errorf("expected %q, got %q", "payment failed", got)
	}
}

func TestNormalizeStripsURLsAndEmails(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"see https://example.com/bug for details", "see for details"},
		{"also www.example.com broke", "also broke"},
		{"contact me at user@example.com please", "contact me at please"},
		{"a\t b\n\n  c", "a b c"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"  Hello   WORLD!! ",
		"visit https://x.io NOW",
		"mail a@b.co and c@d.org",
		"",
		"already normalized text",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestContentHashStable(t *testing.T) {
	norm := Normalize("Payment failed, urgent!")
	h1 := ContentHash(norm)
	h2 := ContentHash(Normalize("payment   failed, urgent!"))
	if h1 != h2 {
		t.Errorf("equal normalized text must collide: %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("expected 64-char hex digest, got %d chars", len(h1))
	}
}

func TestScoreBounds(t *testing.T) {
	texts := []string{
		"",
		"everything is great",
		"URGENT!!! crash crash crash payment production all users broken",
		strings.Repeat("very long impactful production outage text ", 10),
	}
	for _, sentiment := range []float64{-1, -0.5, 0, 0.5, 1} {
		for _, text := range texts {
			norm := Normalize(text)
			u := Urgency(norm, sentiment)
			i := Impact(norm)
			p := Priority(u, i)
			if u < 0 || u > 1 {
				t.Errorf("urgency out of range: %f", u)
			}
			if i < 0 || i > 1 {
				t.Errorf("impact out of range: %f", i)
			}
			if p < 0 || p > 1 {
				t.Errorf("priority out of range: %f", p)
			}
		}
	}
}

func TestPriorityFormula(t *testing.T) {
	for _, u := range []float64{0, 0.25, 0.5, 0.75, 1} {
		for _, i := range []float64{0, 0.3, 0.7, 1} {
			want := 0.6*u + 0.4*i
			if want > 1 {
				want = 1
			}
			if got := Priority(u, i); math.Abs(got-want) > 1e-9 {
				t.Errorf("Priority(%f, %f) = %f, want %f", u, i, got, want)
			}
		}
	}
}

func TestUrgencyComponents(t *testing.T) {
	// No keywords, neutral sentiment, no exclamations.
	if got := Urgency("all fine here", 0); got != 0 {
		t.Errorf("expected 0 urgency, got %f", got)
	}
	// Keyword hit alone contributes 0.35.
	if got := Urgency("this is urgent", 0); math.Abs(got-0.35) > 1e-9 {
		t.Errorf("expected 0.35 urgency, got %f", got)
	}
	// Negative sentiment contributes 0.55 * |sentiment|.
	if got := Urgency("all fine here", -1); math.Abs(got-0.55) > 1e-9 {
		t.Errorf("expected 0.55 urgency, got %f", got)
	}
	// Exclamations saturate at 3.
	if got := Urgency("wow!!!!!!", 0); math.Abs(got-0.10) > 1e-9 {
		t.Errorf("expected 0.10 urgency, got %f", got)
	}
}

func TestImpactComponents(t *testing.T) {
	if got := Impact("short and harmless"); got != 0 {
		t.Errorf("expected 0 impact, got %f", got)
	}
	if got := Impact("checkout is weird"); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("expected 0.6 impact, got %f", got)
	}
	long := strings.Repeat("neutral filler words without triggers ", 4)
	if len(long) < 140 {
		t.Fatalf("test text too short: %d", len(long))
	}
	if got := Impact(long); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("expected 0.4 impact for long text, got %f", got)
	}
}

func TestTagsSentimentBucketFirst(t *testing.T) {
	cases := []struct {
		sentiment float64
		want      string
	}{
		{-0.9, TagVeryNegative},
		{-0.5, TagVeryNegative},
		{-0.1, TagNegative},
		{0, TagNeutral},
		{0.5, TagNeutral},
		{0.51, TagVeryPositive},
	}
	for _, tc := range cases {
		tags := Tags("some text", tc.sentiment)
		if len(tags) == 0 || tags[0] != tc.want {
			t.Errorf("sentiment %f: expected first tag %q, got %v", tc.sentiment, tc.want, tags)
		}
	}
}

func TestTagsExactlyOneBucket(t *testing.T) {
	buckets := map[string]bool{
		TagVeryNegative: true, TagNegative: true,
		TagNeutral: true, TagVeryPositive: true,
	}
	for _, sentiment := range []float64{-1, -0.5, -0.2, 0, 0.3, 0.6, 1} {
		tags := Tags("bug in billing, a feature request would be great", sentiment)
		count := 0
		for _, tag := range tags {
			if buckets[tag] {
				count++
			}
		}
		if count != 1 {
			t.Errorf("sentiment %f: expected exactly one bucket tag, got %v", sentiment, tags)
		}
	}
}

func TestTagsContentOrder(t *testing.T) {
	tags := Tags("a feature request would be great, but there is a bug in billing", 0)
	want := []string{TagNeutral, "feature_request", "bug", "billing"}
	if len(tags) != len(want) {
		t.Fatalf("expected %v, got %v", want, tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tag %d: expected %q, got %q", i, want[i], tags[i])
		}
	}
}

func TestComputePipeline(t *testing.T) {
	scorer := NewScorer(&fixedAnalyzer{score: -0.6})
	s := scorer.Compute("Payment failed, urgent! All users affected in production")

	if s.NormalizedText != "payment failed, urgent! all users affected in production" {
		t.Errorf("unexpected normalized text: %q", s.NormalizedText)
	}
	if s.ContentHash != ContentHash(s.NormalizedText) {
		t.Error("content hash must be a function of normalized text")
	}
	// Impact keyword hit, text shorter than 140 chars.
	if math.Abs(s.Impact-0.6) > 1e-9 {
		t.Errorf("expected impact 0.6, got %f", s.Impact)
	}
	if math.Abs(s.Priority-(0.6*s.Urgency+0.4*s.Impact)) > 1e-9 {
		t.Errorf("priority invariant violated: %f", s.Priority)
	}
	if s.Tags[0] != TagVeryNegative {
		t.Errorf("expected very_negative bucket, got %v", s.Tags)
	}
	hasBilling := false
	for _, tag := range s.Tags {
		if tag == "billing" {
			hasBilling = true
		}
	}
	if !hasBilling {
		t.Errorf("expected billing tag for payment feedback, got %v", s.Tags)
	}
}

func TestComputeHashIgnoresOrigin(t *testing.T) {
	scorer := NewScorer(&fixedAnalyzer{})
	a := scorer.Compute("The App Crashes on startup")
	b := scorer.Compute("  the app   crashes on startup ")
	if a.ContentHash != b.ContentHash {
		t.Error("identical normalized text must produce identical hashes")
	}
}

func TestVADERBounds(t *testing.T) {
	v := NewVADER()
	for _, text := range []string{"", "I love this app!", "This is terrible and broken."} {
		score := v.Compound(text)
		if score < -1 || score > 1 {
			t.Errorf("compound score out of range for %q: %f", text, score)
		}
	}
	if v.Compound("I absolutely love this, amazing!") <= 0 {
		t.Error("expected positive compound for enthusiastic text")
	}
	if v.Compound("This is horrible, I hate it.") >= 0 {
		t.Error("expected negative compound for hostile text")
	}
}
