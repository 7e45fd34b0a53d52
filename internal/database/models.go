package database

// Feedback represents one stored feedback row with its computed signals.
type Feedback struct {
	ID             int64
	RawText        string
	NormalizedText string
	ContentHash    string
	Sentiment      float64
	Urgency        float64
	Impact         float64
	Priority       float64
	Tags           []string
	Source         string
	Metadata       map[string]any
	CreatedAt      *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalFeedback int
	BySource      map[string]int
	AvgPriority   float64
}
