// Package chat contains the domain model of the "Ask Gaitor" assistant:
// chat messages, the reply contract every strategy fulfils and the keyword
// tables used to answer locally and to suggest portal resources.
package chat

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Message is one entry in the chat history. History is append-only and
// kept in insertion order.
type Message struct {
	ID                 string    `json:"id"`
	Text               string    `json:"text"`
	IsUser             bool      `json:"isUser"`
	Timestamp          time.Time `json:"timestamp"`
	SuggestedResources []string  `json:"suggestedResources,omitempty"`
}

// Draft is a message before the store assigns it an id.
type Draft struct {
	Text               string
	IsUser             bool
	Timestamp          time.Time
	SuggestedResources []string
}

// WithID materializes the draft into a Message.
func (d Draft) WithID(id string) Message {
	var suggestions []string
	if len(d.SuggestedResources) > 0 {
		suggestions = append([]string(nil), d.SuggestedResources...)
	}
	return Message{
		ID:                 id,
		Text:               d.Text,
		IsUser:             d.IsUser,
		Timestamp:          d.Timestamp,
		SuggestedResources: suggestions,
	}
}

// Reply is what a resolver returns for a query.
type Reply struct {
	Text               string   `json:"text"`
	SuggestedResources []string `json:"suggestedResources"`
}

// ══════════════════════════════════════════════════════════════════════════════
// STRATEGY
// ══════════════════════════════════════════════════════════════════════════════

// StrategyName identifies a reply strategy in configuration.
type StrategyName string

const (
	StrategyLocal  StrategyName = "local"
	StrategyRemote StrategyName = "remote"
)

// Strategy produces reply text for a query. Implementations must never
// return an error for backend failures; they substitute a fallback text.
// The error return is reserved for context cancellation.
type Strategy interface {
	// Name returns the configured strategy name.
	Name() StrategyName

	// Reply returns the reply text for query.
	Reply(ctx context.Context, query string) (string, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CANNED TEXT
// ══════════════════════════════════════════════════════════════════════════════

// ApologyText is returned when the completion backend fails.
const ApologyText = "I'm sorry, I'm having trouble connecting right now. Please try again in a moment, or contact the school office at (555) 123-4567 for immediate assistance."

// FallbackText is returned by the local strategy when no rule matches.
const FallbackText = "I'm not sure about that one yet, but I'm still learning! Try browsing the Resources tab for school services, or contact the main office at (555) 123-4567 and the Gator Family team will be happy to help."

// OpenedResourceText returns the acknowledgement appended when a suggested
// resource is opened from the chat.
func OpenedResourceText(label string) string {
	return "Great! I've opened the " + label + " resource for you. You can find it in the Resources tab as well."
}

// QuickSuggestions are the starter questions shown on an empty chat.
func QuickSuggestions() []string {
	return []string{
		"How do I report an absence?",
		"What's for lunch this week?",
		"When are parent-teacher conferences?",
		"How do I access Canvas?",
		"What are the school hours?",
		"How do I contact my child's teacher?",
	}
}

// SystemPrompt is sent with every remote completion request.
const SystemPrompt = `You are Gaitor, a helpful AI assistant for Gateway College Preparatory School. You help parents and students with questions about school information, resources, and services.

Key information about Gateway College Prep:
- School hours: 8:00 AM - 3:30 PM
- Main office phone: (555) 123-4567
- The school uses Canvas LMS for assignments and grades
- Lunch menu changes weekly and is available in the Food Services section
- Parent-teacher conferences are scheduled online
- Absences should be reported through the app or school website
- The school mascot is the Gator

Be friendly, helpful, and concise. Refer to the school community as the "Gator Family". If you don't know specific information, direct users to contact the main office or check the relevant resource in the app.`
