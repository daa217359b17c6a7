package chat

import (
	"context"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESOURCE SUGGESTIONS
// ══════════════════════════════════════════════════════════════════════════════

// suggestionRule maps a keyword set to a resource label.
type suggestionRule struct {
	keywords []string
	label    string
}

// suggestionRules is evaluated in order; every matching rule contributes.
var suggestionRules = []suggestionRule{
	{keywords: []string{"lunch", "food", "menu"}, label: "Food Services"},
	{keywords: []string{"absence", "absent", "sick"}, label: "Absence Reporting"},
	{keywords: []string{"canvas", "grade", "assignment"}, label: "Canvas LMS"},
	{keywords: []string{"nurse", "health", "medical"}, label: "Nurse Office"},
	{keywords: []string{"contact", "teacher", "email"}, label: "Teacher Directory"},
	{keywords: []string{"calendar", "event", "schedule"}, label: "School Calendar"},
}

// SuggestResources returns the resource labels relevant to query.
// It never returns nil so callers can serialize an empty list.
func SuggestResources(query string) []string {
	q := strings.ToLower(query)
	out := []string{}
	for _, rule := range suggestionRules {
		if containsAny(q, rule.keywords) {
			out = append(out, rule.label)
		}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// LOCAL REPLY RULES
// ══════════════════════════════════════════════════════════════════════════════

// replyRule maps a keyword set to a canned answer.
type replyRule struct {
	topic    string
	keywords []string
	text     string
}

// replyRules is evaluated in order and the first match wins. Conferences
// precede the teacher-contact rule so "parent-teacher conferences" gets the
// scheduling answer.
var replyRules = []replyRule{
	{
		topic:    "lunch",
		keywords: []string{"lunch", "food", "menu"},
		text:     "This week's lunch menu is posted in Food Services. Highlights include Pizza Monday, Taco Tuesday and a fresh salad bar on Friday. You can also check meal account balances and allergen information there.",
	},
	{
		topic:    "absence",
		keywords: []string{"absence", "absent", "sick"},
		text:     "To report an absence, open Absence Reporting in the Resources tab and submit the form before 9:00 AM. You can also call the main office at (555) 123-4567. Please include your student's name, grade and the reason for the absence.",
	},
	{
		topic:    "canvas",
		keywords: []string{"canvas", "grade", "assignment", "homework"},
		text:     "Assignments, grades and course materials all live in Canvas LMS. Students sign in with their school account, and parents can use the Parent Access link in the Canvas LMS resource to follow progress.",
	},
	{
		topic:    "conferences",
		keywords: []string{"conference"},
		text:     "Parent-teacher conferences are scheduled online. Log into the parent portal, select your student and choose a time slot with each teacher. Sessions are 15 minutes and run from 3:00 PM to 8:00 PM.",
	},
	{
		topic:    "contact",
		keywords: []string{"contact", "teacher", "email"},
		text:     "You can find email addresses for every faculty and staff member in the Teacher Directory. Teachers usually reply within one school day. For anything urgent, call the main office at (555) 123-4567.",
	},
	{
		topic:    "hours",
		keywords: []string{"hours", "schedule", "open", "time"},
		text:     "School hours are 8:00 AM to 3:30 PM, Monday through Friday. The main office opens at 7:30 AM and can be reached at (555) 123-4567. Check the School Calendar for early dismissals and special schedules.",
	},
	{
		topic:    "transportation",
		keywords: []string{"bus", "transportation", "ride", "pickup"},
		text:     "Bus routes, pickup times and transportation updates are listed under Transportation in the Resources tab. Changes caused by weather are also announced through SchoolMessenger.",
	},
	{
		topic:    "volunteer",
		keywords: []string{"volunteer", "pto", "donate", "help out"},
		text:     "We love our Gator Family volunteers! Sign up for opportunities and track your hours in the Volunteer Hub, and see upcoming meetings in the PTO Portal.",
	},
}

// MatchTopic returns the topic of the first reply rule matching query.
func MatchTopic(query string) (string, bool) {
	rule, ok := matchRule(query)
	if !ok {
		return "", false
	}
	return rule.topic, true
}

// localReply returns the canned text for query or FallbackText.
func localReply(query string) string {
	rule, ok := matchRule(query)
	if !ok {
		return FallbackText
	}
	return rule.text
}

// matchRule returns the first reply rule whose keywords occur in query,
// ignoring case.
func matchRule(query string) (replyRule, bool) {
	q := strings.ToLower(query)
	for _, rule := range replyRules {
		if containsAny(q, rule.keywords) {
			return rule, true
		}
	}
	return replyRule{}, false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// LOCAL STRATEGY
// ══════════════════════════════════════════════════════════════════════════════

// LocalStrategy answers from the canned rule table after a simulated delay.
type LocalStrategy struct {
	delay time.Duration
}

// NewLocalStrategy creates a LocalStrategy. A zero delay answers immediately.
func NewLocalStrategy(delay time.Duration) *LocalStrategy {
	if delay < 0 {
		delay = 0
	}
	return &LocalStrategy{delay: delay}
}

// Name implements Strategy.
func (s *LocalStrategy) Name() StrategyName {
	return StrategyLocal
}

// Reply implements Strategy.
func (s *LocalStrategy) Reply(ctx context.Context, query string) (string, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return localReply(query), nil
}
