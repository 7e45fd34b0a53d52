// Package action maps feedback text and its computed signals to an owning
// team and a next step. Classification is a state-free two-stage process:
// ordered rule tables first, then an optional AI pass that may override the
// rule result but always falls back to it.
package action

import "strings"

// Team is one of the seven fixed organizational categories.
type Team string

const (
	TeamCore        Team = "Engineering (Core App Team)"
	TeamFrontend    Team = "Engineering (Frontend Team)"
	TeamPerformance Team = "Engineering (Performance Team)"
	TeamProduct     Team = "Product Management"
	TeamSupport     Team = "Customer Success/Support"
	TeamBilling     Team = "Finance/Billing Team"
	TeamDesign      Team = "UX Design"
)

// Teams enumerates every valid team.
var Teams = []Team{
	TeamCore, TeamFrontend, TeamPerformance, TeamProduct,
	TeamSupport, TeamBilling, TeamDesign,
}

// MaxNextStepLen caps the next-step text, rule-based or AI-enhanced.
const MaxNextStepLen = 80

// Input carries the feedback text and signals the classifier works from.
type Input struct {
	Text      string
	Tags      []string
	Priority  float64
	Urgency   float64
	Sentiment float64
	Impact    float64
}

// Recommendation is the classification result.
type Recommendation struct {
	NextStep string
	Team     Team
}

// matchInput is the lowered view of an Input that rules match against.
type matchInput struct {
	text  string
	tags  map[string]bool
	input Input
}

func newMatchInput(in Input) matchInput {
	tags := make(map[string]bool, len(in.Tags))
	for _, tag := range in.Tags {
		tags[strings.ToLower(tag)] = true
	}
	return matchInput{text: strings.ToLower(in.Text), tags: tags, input: in}
}

func (m matchInput) containsAny(keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(m.text, k) {
			return true
		}
	}
	return false
}

// Classify runs the rule stage: both tables are evaluated in priority order
// and the first matching rule wins.
func Classify(in Input) Recommendation {
	m := newMatchInput(in)
	return Recommendation{
		NextStep: truncate(stepFor(m), MaxNextStepLen),
		Team:     teamFor(m),
	}
}

// ValidTeam reports whether the given team is one of the seven fixed values.
func ValidTeam(team Team) bool {
	for _, t := range Teams {
		if t == team {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
