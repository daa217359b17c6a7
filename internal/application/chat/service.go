package chat

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/gator-hub/gator-hub/internal/domain/catalog"
	"github.com/gator-hub/gator-hub/internal/domain/chat"
	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// MessageStore appends to the chat history.
type MessageStore interface {
	AddChatMessage(ctx context.Context, draft chat.Draft) (chat.Message, error)
}

// ResourceLookup finds a catalog resource by its display title.
type ResourceLookup interface {
	ResourceByTitle(title string) (catalog.Resource, bool)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESULTS
// ══════════════════════════════════════════════════════════════════════════════

// Exchange is a question with its answer, as stored in the history.
type Exchange struct {
	Question chat.Message `json:"question"`
	Answer   chat.Message `json:"answer"`
}

// OpenedSuggestion is the acknowledgement for an opened suggestion.
// Resource is nil when the label has no catalog entry (the calendar tab).
type OpenedSuggestion struct {
	Message  chat.Message      `json:"message"`
	Resource *catalog.Resource `json:"resource,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// Service runs chat exchanges against the store. At most one query is
// answered at a time; a send while another is outstanding is rejected
// instead of queued.
type Service struct {
	store     MessageStore
	resolver  *Resolver
	resources ResourceLookup
	inFlight  atomic.Bool
	log       *logger.Logger
}

// NewService creates a chat service. resources and log may be nil.
func NewService(store MessageStore, resolver *Resolver, resources ResourceLookup, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:     store,
		resolver:  resolver,
		resources: resources,
		log:       log.With(logger.Component("chat_service")),
	}
}

// Busy reports whether a query is being answered.
func (s *Service) Busy() bool {
	return s.inFlight.Load()
}

// Send records the user's message, resolves it and records the reply with
// its suggestions. Resolution is detached from ctx cancellation: once the
// question is in the history the answer is recorded too, even if the caller
// has gone away.
func (s *Service) Send(ctx context.Context, text string) (Exchange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Exchange{}, shared.ErrEmptyMessage
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return Exchange{}, shared.ErrRequestInFlight
	}
	defer s.inFlight.Store(false)

	ctx = context.WithoutCancel(ctx)

	question, err := s.store.AddChatMessage(ctx, chat.Draft{Text: text, IsUser: true})
	if err != nil {
		return Exchange{}, err
	}

	reply, err := s.resolver.Resolve(ctx, text)
	if err != nil {
		s.log.Error("resolve failed", logger.Err(err))
		reply = chat.Reply{Text: chat.ApologyText}
	}

	answer, err := s.store.AddChatMessage(ctx, chat.Draft{
		Text:               reply.Text,
		IsUser:             false,
		SuggestedResources: reply.SuggestedResources,
	})
	if err != nil {
		return Exchange{}, err
	}

	return Exchange{Question: question, Answer: answer}, nil
}

// OpenSuggestion records the acknowledgement for a suggestion the user
// opened and returns the matching catalog resource when there is one.
func (s *Service) OpenSuggestion(ctx context.Context, label string) (OpenedSuggestion, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return OpenedSuggestion{}, shared.WrapError("chat", "OpenSuggestion", shared.ErrEmptyValue, "label cannot be empty", nil)
	}

	msg, err := s.store.AddChatMessage(ctx, chat.Draft{Text: chat.OpenedResourceText(label)})
	if err != nil {
		return OpenedSuggestion{}, err
	}

	out := OpenedSuggestion{Message: msg}
	if s.resources != nil {
		if r, ok := s.resources.ResourceByTitle(label); ok {
			out.Resource = &r
		}
	}
	return out, nil
}

// QuickSuggestions returns the starter questions for an empty chat.
func (s *Service) QuickSuggestions() []string {
	return chat.QuickSuggestions()
}
