package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gator-hub/gator-hub/internal/application/store"
	"github.com/gator-hub/gator-hub/internal/domain/catalog"
	"github.com/gator-hub/gator-hub/internal/domain/chat"
	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/internal/infrastructure/persistence/memory"
)

// blockingStrategy answers only after release is closed.
type blockingStrategy struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingStrategy) Name() chat.StrategyName { return "blocking" }

func (b *blockingStrategy) Reply(ctx context.Context, _ string) (string, error) {
	close(b.started)
	<-b.release
	return "done", nil
}

type recordingObserver struct {
	calls []string
}

func (o *recordingObserver) ObserveChatReply(strategy string, _ time.Duration, suggestions int) {
	o.calls = append(o.calls, strategy)
}

func newService(t *testing.T, strategy chat.Strategy) (*Service, *store.Store) {
	t.Helper()
	st := store.New(memory.NewStorage(), nil, nil, store.Config{})
	resolver := NewResolver(strategy, nil, nil)
	return NewService(st, resolver, catalog.New(time.Now()), nil), st
}

func TestResolver_LocalLunchScenario(t *testing.T) {
	obs := &recordingObserver{}
	r := NewResolver(chat.NewLocalStrategy(0), obs, nil)

	reply, err := r.Resolve(context.Background(), "What's for lunch this week?")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "lunch menu")
	assert.Equal(t, []string{"Food Services"}, reply.SuggestedResources)
	assert.Equal(t, []string{"local"}, obs.calls)
}

func TestResolver_NoMatch(t *testing.T) {
	r := NewResolver(chat.NewLocalStrategy(0), nil, nil)

	reply, err := r.Resolve(context.Background(), "Tell me a joke")
	require.NoError(t, err)
	assert.Equal(t, chat.FallbackText, reply.Text)
	assert.Empty(t, reply.SuggestedResources)
}

func TestResolver_SuggestionsIndependentOfStrategy(t *testing.T) {
	remote := &fixedStrategy{text: "Ask the front desk."}
	r := NewResolver(remote, nil, nil)

	reply, err := r.Resolve(context.Background(), "My kid is sick, who is the nurse?")
	require.NoError(t, err)
	assert.Equal(t, "Ask the front desk.", reply.Text)
	assert.Equal(t, []string{"Absence Reporting", "Nurse Office"}, reply.SuggestedResources)
}

type fixedStrategy struct{ text string }

func (f *fixedStrategy) Name() chat.StrategyName { return chat.StrategyRemote }
func (f *fixedStrategy) Reply(context.Context, string) (string, error) {
	return f.text, nil
}

func TestSelectStrategy(t *testing.T) {
	local := chat.NewLocalStrategy(0)
	remote := &fixedStrategy{}

	got, err := SelectStrategy(chat.StrategyLocal, local, remote)
	require.NoError(t, err)
	assert.Equal(t, chat.StrategyLocal, got.Name())

	got, err = SelectStrategy(chat.StrategyRemote, local, remote)
	require.NoError(t, err)
	assert.Equal(t, chat.StrategyRemote, got.Name())

	_, err = SelectStrategy(chat.StrategyRemote, local, nil)
	assert.True(t, shared.IsValidation(err))

	_, err = SelectStrategy("telepathy", local, remote)
	assert.ErrorIs(t, err, shared.ErrUnknownStrategy)
}

func TestService_SendRecordsExchange(t *testing.T) {
	svc, st := newService(t, chat.NewLocalStrategy(0))

	ex, err := svc.Send(context.Background(), "  How do I report an absence?  ")
	require.NoError(t, err)
	assert.Equal(t, "How do I report an absence?", ex.Question.Text)
	assert.True(t, ex.Question.IsUser)
	assert.False(t, ex.Answer.IsUser)
	assert.Equal(t, []string{"Absence Reporting"}, ex.Answer.SuggestedResources)

	history := st.Snapshot().ChatHistory
	require.Len(t, history, 2)
	assert.Equal(t, ex.Question.ID, history[0].ID)
	assert.Equal(t, ex.Answer.ID, history[1].ID)
	assert.False(t, svc.Busy())
}

func TestService_RejectsEmptyMessage(t *testing.T) {
	svc, st := newService(t, chat.NewLocalStrategy(0))

	_, err := svc.Send(context.Background(), "   ")
	assert.True(t, shared.IsValidation(err))
	assert.Empty(t, st.Snapshot().ChatHistory)
}

func TestService_RejectsConcurrentSend(t *testing.T) {
	blocking := &blockingStrategy{started: make(chan struct{}), release: make(chan struct{})}
	svc, st := newService(t, blocking)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Send(context.Background(), "first")
		assert.NoError(t, err)
	}()

	<-blocking.started
	assert.True(t, svc.Busy())
	_, err := svc.Send(context.Background(), "second")
	assert.True(t, shared.IsBusy(err))

	close(blocking.release)
	wg.Wait()

	history := st.Snapshot().ChatHistory
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Text)
	assert.Equal(t, "done", history[1].Text)
}

func TestService_AnswerRecordedAfterCallerCancels(t *testing.T) {
	svc, st := newService(t, chat.NewLocalStrategy(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Send(ctx, "What are the school hours?")
	require.NoError(t, err)
	assert.Len(t, st.Snapshot().ChatHistory, 2)
}

func TestService_OpenSuggestion(t *testing.T) {
	svc, st := newService(t, chat.NewLocalStrategy(0))
	ctx := context.Background()

	opened, err := svc.OpenSuggestion(ctx, "Food Services")
	require.NoError(t, err)
	assert.Equal(t, "Great! I've opened the Food Services resource for you. You can find it in the Resources tab as well.", opened.Message.Text)
	require.NotNil(t, opened.Resource)
	assert.Equal(t, "Food Services", opened.Resource.Title)

	opened, err = svc.OpenSuggestion(ctx, "School Calendar")
	require.NoError(t, err)
	assert.Nil(t, opened.Resource)

	_, err = svc.OpenSuggestion(ctx, "")
	assert.True(t, shared.IsValidation(err))

	assert.Len(t, st.Snapshot().ChatHistory, 2)
	assert.Len(t, svc.QuickSuggestions(), 6)
}
