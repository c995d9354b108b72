package routing

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
)

// Static keyword lists. Database rules always outrank these; P1 can only be
// reached through an explicit signal, never through a fallback.
var p1Keywords = []string{
	"outage",
	"all users affected",
	"entire office",
	"server down",
	"production down",
	"security breach",
	"data breach",
	"data loss",
	"ransomware",
	"phishing attack",
	"virus detected",
}

var p4Keywords = []string{
	"how do i",
	"how to",
	"question about",
	"documentation",
	"training",
	"when will",
	"feature request",
	"nice to have",
}

// Category defaults applied when no high-tier rule matched. Network and VPN
// problems block whole workflows, so they default one tier above the middle.
var categoryDefaults = map[string]domain.TicketPriority{
	"network": domain.TicketPriorityP2,
	"vpn":     domain.TicketPriorityP2,
}

// Classify is a deterministic, total function from (subject, description,
// category) to a priority. Precedence: high-tier database rules, then
// category defaults, then the static P1 override, then the static P4 list,
// then any lower-tier rule match, then P3.
func (e *Engine) Classify(ctx context.Context, subject, description, category string) domain.TicketPriority {
	text := strings.ToLower(subject + " " + description)

	ruleBest := e.bestRuleMatch(ctx, text, category)
	var result domain.TicketPriority

	if domain.PriorityRank(ruleBest) >= domain.PriorityRank(domain.TicketPriorityP2) {
		result = ruleBest
	} else if byCategory, ok := categoryDefault(category); ok {
		result = byCategory
	}

	if result != domain.TicketPriorityP1 && matchesAny(text, p1Keywords) {
		result = domain.TicketPriorityP1
	}
	if result == "" && matchesAny(text, p4Keywords) {
		result = domain.TicketPriorityP4
	}
	if result == "" && ruleBest != "" {
		result = ruleBest
	}
	if result == "" {
		result = domain.TicketPriorityP3
	}
	return result
}

// bestRuleMatch scans the rule table keeping only the maximum-severity
// match, so scan order never changes the outcome. A rule source failure
// degrades to the static lists rather than failing classification.
func (e *Engine) bestRuleMatch(ctx context.Context, text, category string) domain.TicketPriority {
	rules, err := e.rules.List(ctx)
	if err != nil {
		e.logger.Warn("priority rules unavailable, using static classification", zap.Error(err))
		return ""
	}

	var best domain.TicketPriority
	for _, rule := range rules {
		if !rule.Matches(text, category) {
			continue
		}
		if domain.PriorityRank(rule.Priority) > domain.PriorityRank(best) {
			best = rule.Priority
		}
	}
	return best
}

func categoryDefault(category string) (domain.TicketPriority, bool) {
	lowered := strings.ToLower(category)
	for fragment, priority := range categoryDefaults {
		if strings.Contains(lowered, fragment) {
			return priority, true
		}
	}
	return "", false
}

func matchesAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
