// Package chart implements the chart generation pipeline: prompt
// classification, transaction aggregation, specification assembly and
// structural validation.
package chart

import "strings"

// Intent is the classified kind of chart the user is asking for.
type Intent string

const (
	IntentCategoryBreakdown Intent = "category-breakdown"
	IntentTrendOverTime     Intent = "trend-over-time"
	IntentIncomeVsExpense   Intent = "income-vs-expense"
	IntentBalanceTrend      Intent = "balance-trend"
	IntentDefault           Intent = "default"
)

// intentRule matches when every keyword group contributes at least one hit.
// Most intents carry a single group; income-vs-expense needs a token from
// both sides before it applies.
type intentRule struct {
	intent Intent
	groups [][]string
}

// Classification priority, first match wins:
// category-breakdown > income-vs-expense > balance-trend > trend-over-time.
// Order matters: "balance over time" must resolve to balance-trend even
// though it also mentions time, so balance outranks trend. The table is
// additive; a new intent is a new row, not new control flow.
var intentRules = []intentRule{
	{IntentCategoryBreakdown, [][]string{
		{"category", "categories", "breakdown", "split", "per type"},
	}},
	{IntentIncomeVsExpense, [][]string{
		{"income", "incoming", "earning", "inflow", "revenue"},
		{"expense", "spending", "spend", "outflow", "outgoing", "cost"},
	}},
	{IntentBalanceTrend, [][]string{
		{"balance", "cumulative", "net worth", "running total"},
	}},
	{IntentTrendOverTime, [][]string{
		{"trend", "over time", "history", "timeline", "evolution", "daily", "weekly", "monthly"},
	}},
}

// ClassifyIntent maps a free-text prompt to a chart intent. It is total and
// deterministic: matching is case-insensitive substring lookup, and prompts
// that hit no rule resolve to IntentDefault instead of failing.
func ClassifyIntent(prompt string) Intent {
	p := strings.ToLower(prompt)
	for _, rule := range intentRules {
		if rule.matches(p) {
			return rule.intent
		}
	}
	return IntentDefault
}

func (r intentRule) matches(prompt string) bool {
	for _, group := range r.groups {
		hit := false
		for _, kw := range group {
			if strings.Contains(prompt, kw) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}
