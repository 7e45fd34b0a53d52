package signal

// Sentiment bucket tags. Exactly one of these is always the first tag.
const (
	TagVeryNegative = "very_negative"
	TagNegative     = "negative"
	TagNeutral      = "neutral"
	TagVeryPositive = "very_positive"
)

// Tags derives categorical tags from normalized text and the compound
// sentiment. The first tag is always the sentiment bucket; the remaining
// checks run in a fixed order so output is repeatable.
func Tags(normalized string, sentiment float64) []string {
	var tags []string
	switch {
	case sentiment <= -0.5:
		tags = append(tags, TagVeryNegative)
	case sentiment < 0:
		tags = append(tags, TagNegative)
	case sentiment > 0.5:
		tags = append(tags, TagVeryPositive)
	default:
		tags = append(tags, TagNeutral)
	}
	if hasAny(normalized, []string{"feature request", "would be great"}) {
		tags = append(tags, "feature_request")
	}
	if hasAny(normalized, []string{"bug", "error", "not working"}) {
		tags = append(tags, "bug")
	}
	if hasAny(normalized, []string{"pricing", "billing", "payment"}) {
		tags = append(tags, "billing")
	}
	return tags
}
