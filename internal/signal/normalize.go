package signal

import (
	"regexp"
	"strings"
)

var (
	urlRe        = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailRe      = regexp.MustCompile(`\S+@\S+\.\S+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes raw feedback text for hashing and keyword matching:
// lowercase, strip URL-like and email-like substrings, collapse whitespace.
// It never fails and is idempotent.
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = urlRe.ReplaceAllString(s, " ")
	s = emailRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
