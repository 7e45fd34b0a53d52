package action

// teamRules map content keywords to a team, checked in order; the first
// rule with any keyword hit wins.
var teamRules = []struct {
	keywords []string
	team     Team
}{
	{[]string{"payment", "billing", "invoice", "subscription", "charge", "refund", "price", "cost"}, TeamBilling},
	{[]string{"design", "color", "layout", "visual", "ugly", "beautiful", "interface"}, TeamDesign},
	{[]string{"slow", "fast", "performance", "loading", "lag", "timeout", "speed"}, TeamPerformance},
	{[]string{"button", "click", "ui", "display", "screen", "page", "form", "input"}, TeamFrontend},
	{[]string{"feature", "add", "wish", "would like", "suggestion", "improve"}, TeamProduct},
	{[]string{"how to", "help", "tutorial", "guide", "setup", "account"}, TeamSupport},
}

func teamFor(m matchInput) Team {
	for _, rule := range teamRules {
		if m.containsAny(rule.keywords...) {
			return rule.team
		}
	}
	// Tag-based fallback when no content keyword matched.
	if m.tags["bug"] || m.tags["crash"] || m.tags["error"] {
		return TeamCore
	}
	if m.tags["feature_request"] {
		return TeamProduct
	}
	if m.tags["billing"] {
		return TeamBilling
	}
	return TeamCore
}

// stepRules are evaluated in order; the first matching predicate wins.
var stepRules = []struct {
	applies func(m matchInput) bool
	step    string
}{
	{
		func(m matchInput) bool {
			return (m.input.Priority >= 0.7 || m.input.Urgency >= 0.7) &&
				(m.tags["bug"] || m.containsAny("crash", "error"))
		},
		"Create P1/Critical ticket and reproduce bug in staging environment",
	},
	{
		func(m matchInput) bool {
			return m.tags["bug"] || m.containsAny("error", "broken")
		},
		"Review logs for related errors and add to sprint backlog",
	},
	{
		func(m matchInput) bool {
			return m.containsAny("slow", "performance", "loading", "lag", "timeout")
		},
		"Review database queries and investigate caching issues",
	},
	{
		func(m matchInput) bool {
			return m.containsAny("feature", "add", "wish", "suggestion") || m.tags["feature_request"]
		},
		"Add to Product Backlog and schedule user interview",
	},
	{
		func(m matchInput) bool {
			return m.containsAny("confusing", "hard to find", "difficult", "unclear")
		},
		"Draft new help documentation and schedule design review",
	},
	{
		func(m matchInput) bool {
			return m.containsAny("payment", "billing", "invoice", "charge")
		},
		"Review account billing status and contact customer",
	},
	{
		func(m matchInput) bool { return m.input.Impact >= 0.7 },
		"Escalate to team lead and create detailed investigation plan",
	},
}

const defaultStep = "Review feedback details and assign to appropriate team member"

func stepFor(m matchInput) string {
	for _, rule := range stepRules {
		if rule.applies(m) {
			return rule.step
		}
	}
	return defaultStep
}
