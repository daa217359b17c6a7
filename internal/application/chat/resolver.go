// Package chat contains the "Ask Gaitor" use cases: resolving a query into a
// reply with resource suggestions and recording the exchange in the store.
package chat

import (
	"context"
	"time"

	"github.com/gator-hub/gator-hub/internal/domain/chat"
	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// STRATEGY SELECTION
// ══════════════════════════════════════════════════════════════════════════════

// SelectStrategy returns the strategy configured by name.
// remote may be nil when only the local strategy is available.
func SelectStrategy(name chat.StrategyName, local, remote chat.Strategy) (chat.Strategy, error) {
	switch name {
	case chat.StrategyLocal, "":
		if local == nil {
			return nil, shared.ErrUnknownStrategy
		}
		return local, nil
	case chat.StrategyRemote:
		if remote == nil {
			return nil, shared.WrapError("chat", "Configure", shared.ErrInvalidInput,
				"remote strategy selected but no completion client configured", nil)
		}
		return remote, nil
	default:
		return nil, shared.ErrUnknownStrategy
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RESOLVER
// ══════════════════════════════════════════════════════════════════════════════

// Observer receives one call per resolved query.
type Observer interface {
	ObserveChatReply(strategy string, latency time.Duration, suggestions int)
}

// Resolver turns a free-text query into a Reply. The reply text comes from
// the configured strategy; suggestions always come from the shared keyword
// table so both strategies surface the same resource links.
type Resolver struct {
	strategy chat.Strategy
	observer Observer
	log      *logger.Logger
}

// NewResolver creates a resolver. observer and log may be nil.
func NewResolver(strategy chat.Strategy, observer Observer, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		strategy: strategy,
		observer: observer,
		log:      log.With(logger.Component("chat_resolver"), logger.Strategy(string(strategy.Name()))),
	}
}

// Strategy returns the name of the active strategy.
func (r *Resolver) Strategy() chat.StrategyName {
	return r.strategy.Name()
}

// Resolve returns the reply for query. The only error is a cancelled or
// expired ctx; backend failures are already replaced by fallback text.
func (r *Resolver) Resolve(ctx context.Context, query string) (chat.Reply, error) {
	start := time.Now()

	text, err := r.strategy.Reply(ctx, query)
	if err != nil {
		return chat.Reply{}, err
	}

	reply := chat.Reply{
		Text:               text,
		SuggestedResources: chat.SuggestResources(query),
	}

	latency := time.Since(start)
	if r.observer != nil {
		r.observer.ObserveChatReply(string(r.strategy.Name()), latency, len(reply.SuggestedResources))
	}
	topic, ok := chat.MatchTopic(query)
	if !ok {
		topic = "none"
	}
	r.log.Debug("query resolved",
		logger.String("topic", topic),
		logger.Latency(latency),
		logger.Int("suggestions", len(reply.SuggestedResources)),
	)

	return reply, nil
}
