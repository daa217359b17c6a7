package anthropic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gator-hub/gator-hub/internal/domain/chat"
	"github.com/gator-hub/gator-hub/pkg/circuitbreaker"
)

type fakeCompleter struct {
	reply  string
	err    error
	calls  int
	system string
}

func (f *fakeCompleter) Complete(_ context.Context, system, _ string) (string, error) {
	f.calls++
	f.system = system
	return f.reply, f.err
}

type fallbackCounter struct {
	reasons []string
}

func (c *fallbackCounter) RecordChatFallback(reason string) {
	c.reasons = append(c.reasons, reason)
}

func TestRemoteStrategy_ReturnsBackendTextVerbatim(t *testing.T) {
	backend := &fakeCompleter{reply: "School starts at 8:00 AM."}
	s := NewRemoteStrategy(backend, circuitbreaker.ChatBackendBreaker(3, time.Minute, nil), nil, nil)

	text, err := s.Reply(context.Background(), "When does school start?")
	require.NoError(t, err)
	assert.Equal(t, "School starts at 8:00 AM.", text)
	assert.Equal(t, chat.SystemPrompt, backend.system)
	assert.Equal(t, chat.StrategyRemote, s.Name())
}

func TestRemoteStrategy_FallsBackToApology(t *testing.T) {
	backend := &fakeCompleter{err: errors.New("503 overloaded")}
	counter := &fallbackCounter{}
	s := NewRemoteStrategy(backend, circuitbreaker.ChatBackendBreaker(2, time.Hour, nil), counter, nil)

	for i := 0; i < 3; i++ {
		text, err := s.Reply(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, chat.ApologyText, text)
	}

	assert.Equal(t, 2, backend.calls, "open circuit skips the backend")
	assert.Equal(t, []string{"backend_error", "backend_error", "circuit_open"}, counter.reasons)
}

func TestRemoteStrategy_PropagatesCancellation(t *testing.T) {
	backend := &fakeCompleter{err: context.Canceled}
	s := NewRemoteStrategy(backend, circuitbreaker.ChatBackendBreaker(1, time.Hour, nil), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Reply(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}
