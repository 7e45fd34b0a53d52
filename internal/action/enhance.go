package action

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/feedlens/feedlens/internal/llm"
)

const enhanceSystemPrompt = `You are an AI Action Analyzer for customer feedback. Generate two outputs:

1. NEXT_STEP: A single, clear action item (max 80 chars, verb-based command)
2. RESPONSIBLE_TEAM: Select from these teams only:
   - Engineering (Core App Team)
   - Engineering (Frontend Team)
   - Engineering (Performance Team)
   - Product Management
   - Customer Success/Support
   - Finance/Billing Team
   - UX Design

Respond in this exact format:
NEXT_STEP: [action]
RESPONSIBLE_TEAM: [team]`

// ClassifyWithAI runs the rule stage and then asks the chat provider to
// refine the result. The AI pass never fails outward: any provider error or
// unparseable reply returns the unmodified rule-based recommendation.
func ClassifyWithAI(ctx context.Context, provider llm.Provider, in Input) Recommendation {
	base := Classify(in)
	if provider == nil || !provider.IsConfigured() {
		return base
	}

	user := fmt.Sprintf(`Feedback: %s
Priority: %.2f | Urgency: %.2f | Impact: %.2f | Sentiment: %.2f
Tags: %s

Current analysis:
- Team: %s
- Step: %s

Provide optimized analysis:`,
		in.Text, in.Priority, in.Urgency, in.Impact, in.Sentiment,
		strings.Join(in.Tags, ", "), base.Team, base.NextStep)

	response, err := provider.Chat(ctx, enhanceSystemPrompt, user)
	if err != nil {
		log.Printf("action enhancement failed, using rule-based result: %v", err)
		return base
	}
	return parseEnhanced(response, base)
}

// parseEnhanced scans the reply for the two labeled lines. A missing or
// unrecognizable line keeps the rule-based value; a team outside the fixed
// seven is rejected in favor of the rule-based team.
func parseEnhanced(response string, base Recommendation) Recommendation {
	out := base
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "NEXT_STEP:"); ok {
			if step := strings.TrimSpace(rest); step != "" {
				out.NextStep = truncate(step, MaxNextStepLen)
			}
		} else if rest, ok := strings.CutPrefix(line, "RESPONSIBLE_TEAM:"); ok {
			if team := Team(strings.TrimSpace(rest)); ValidTeam(team) {
				out.Team = team
			}
		}
	}
	return out
}
