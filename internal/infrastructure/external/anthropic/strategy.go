package anthropic

import (
	"context"

	"github.com/gator-hub/gator-hub/internal/domain/chat"
	"github.com/gator-hub/gator-hub/pkg/circuitbreaker"
	"github.com/gator-hub/gator-hub/pkg/logger"
)

// Completer is the completion backend used by RemoteStrategy.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// FallbackRecorder counts replies that were replaced by the apology.
type FallbackRecorder interface {
	RecordChatFallback(reason string)
}

// RemoteStrategy answers through the completion backend. Any backend failure,
// including an open circuit, becomes chat.ApologyText.
type RemoteStrategy struct {
	client   Completer
	breaker  *circuitbreaker.CircuitBreaker
	recorder FallbackRecorder
	log      *logger.Logger
}

// NewRemoteStrategy creates the strategy. recorder and log may be nil.
func NewRemoteStrategy(client Completer, breaker *circuitbreaker.CircuitBreaker, recorder FallbackRecorder, log *logger.Logger) *RemoteStrategy {
	if log == nil {
		log = logger.Nop()
	}
	return &RemoteStrategy{
		client:   client,
		breaker:  breaker,
		recorder: recorder,
		log:      log.With(logger.Component("remote_strategy")),
	}
}

// Name implements chat.Strategy.
func (s *RemoteStrategy) Name() chat.StrategyName {
	return chat.StrategyRemote
}

// Reply implements chat.Strategy.
func (s *RemoteStrategy) Reply(ctx context.Context, query string) (string, error) {
	var text string

	err := s.breaker.ExecuteWithFallback(ctx,
		func(ctx context.Context) error {
			reply, err := s.client.Complete(ctx, chat.SystemPrompt, query)
			if err != nil {
				return err
			}
			text = reply
			return nil
		},
		func(err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			reason := "backend_error"
			if circuitbreaker.IsRejection(err) {
				reason = "circuit_open"
			}
			s.log.Warn("using apology reply", logger.String("reason", reason), logger.Err(err))
			if s.recorder != nil {
				s.recorder.RecordChatFallback(reason)
			}
			text = chat.ApologyText
			return nil
		},
	)
	if err != nil {
		return "", err
	}
	return text, nil
}
