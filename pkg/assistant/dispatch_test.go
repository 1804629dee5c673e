package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textTurn(intent string) *Turn {
	return &Turn{
		Intent:         intent,
		ConversationID: "conv-1",
		APIVersion:     V2,
		Arguments:      map[string]ArgumentValue{},
		Capabilities:   map[string]bool{},
	}
}

func TestDispatchExactMatchInvokesOnlyThatHandler(t *testing.T) {
	var got []string
	src := RouteFuncs(map[string]func(c *Conversation) error{
		IntentMain: func(c *Conversation) error {
			got = append(got, IntentMain)
			return c.AskText("Welcome")
		},
		IntentText: func(c *Conversation) error {
			got = append(got, IntentText)
			return c.Tell("Bye")
		},
	})

	env, err := NewDispatcher(src).Dispatch(context.Background(), textTurn(IntentMain))
	require.NoError(t, err)
	assert.Equal(t, []string{IntentMain}, got)
	assert.True(t, env.ExpectUserResponse)
}

func TestDispatchUnhandledIntentProducesNoEnvelope(t *testing.T) {
	src := RouteFuncs(map[string]func(c *Conversation) error{
		IntentMain: func(c *Conversation) error { return c.AskText("Welcome") },
	})

	env, err := NewDispatcher(src).Dispatch(context.Background(), textTurn("actions.intent.NO_SUCH"))
	require.Error(t, err)
	assert.Nil(t, env)
	var unhandled *UnhandledIntentError
	require.True(t, errors.As(err, &unhandled))
	assert.Equal(t, "actions.intent.NO_SUCH", unhandled.Intent)
}

func TestDispatchFallbackHandler(t *testing.T) {
	src := RouteFuncs(map[string]func(c *Conversation) error{
		IntentMain: func(c *Conversation) error { return c.AskText("Welcome") },
		Fallback:   func(c *Conversation) error { return c.AskText("Sorry, say that again?") },
	})

	env, err := NewDispatcher(src).Dispatch(context.Background(), textTurn("actions.intent.NO_SUCH"))
	require.NoError(t, err)
	assert.True(t, env.ExpectUserResponse)
	assert.Equal(t, "Sorry, say that again?", env.Prompt.Initial())
}

func TestDispatchSingleHandlerReceivesEveryIntent(t *testing.T) {
	src := SingleFunc(func(c *Conversation) error {
		return c.Tell("handled " + c.Turn().Intent)
	})

	for _, intent := range []string{IntentMain, IntentText, "actions.intent.ANYTHING"} {
		env, err := NewDispatcher(src).Dispatch(context.Background(), textTurn(intent))
		require.NoError(t, err)
		assert.Equal(t, "handled "+intent, env.Final.TextToSpeech)
	}
}

func TestDispatchTellScenario(t *testing.T) {
	src := SingleFunc(func(c *Conversation) error {
		return c.Tell("Goodbye!")
	})

	env, err := NewDispatcher(src).Dispatch(context.Background(), textTurn(IntentText))
	require.NoError(t, err)
	assert.False(t, env.ExpectUserResponse)
	require.NotNil(t, env.Final)
	assert.Equal(t, "Goodbye!", env.Final.TextToSpeech)
	assert.Equal(t, IntentUnknown, env.ExpectedIntent())
}

func TestDispatchAskScenario(t *testing.T) {
	src := SingleFunc(func(c *Conversation) error {
		p, err := BuildInputPrompt(false, "Say a number", []string{"Say any number", "Pick a number"})
		if err != nil {
			return err
		}
		return c.Ask(p)
	})

	env, err := NewDispatcher(src).Dispatch(context.Background(), textTurn(IntentText))
	require.NoError(t, err)
	assert.True(t, env.ExpectUserResponse)
	assert.Equal(t, "Say a number", env.Prompt.Initial())
	assert.Len(t, env.Prompt.NoInputs(), 2)
	assert.Equal(t, IntentUnknown, env.ExpectedIntent())
}

func TestDispatchLastCallWins(t *testing.T) {
	src := SingleFunc(func(c *Conversation) error {
		if err := c.AskText("First question"); err != nil {
			return err
		}
		return c.AskText("Second question")
	})

	env, err := NewDispatcher(src).Dispatch(context.Background(), textTurn(IntentText))
	require.NoError(t, err)
	assert.Equal(t, "Second question", env.Prompt.Initial())
	assert.Equal(t, 1, env.Discarded)
}

func TestDispatchCallsAfterTellAreDiscarded(t *testing.T) {
	src := SingleFunc(func(c *Conversation) error {
		if err := c.Tell("Goodbye!"); err != nil {
			return err
		}
		if err := c.AskText("Are you still there?"); err != nil {
			return err
		}
		return c.Tell("Really goodbye!")
	})

	env, err := NewDispatcher(src).Dispatch(context.Background(), textTurn(IntentText))
	require.NoError(t, err)
	assert.False(t, env.ExpectUserResponse)
	assert.Equal(t, "Goodbye!", env.Final.TextToSpeech)
	assert.Equal(t, 2, env.Discarded)
}

func TestDispatchHandlerError(t *testing.T) {
	src := SingleFunc(func(c *Conversation) error {
		return errors.New("upstream exploded")
	})

	env, err := NewDispatcher(src).Dispatch(context.Background(), textTurn(IntentText))
	assert.Nil(t, env)
	var failed *HandlerFailedError
	require.True(t, errors.As(err, &failed))
}

func TestDispatchNoResponseIsShapeError(t *testing.T) {
	src := SingleFunc(func(c *Conversation) error { return nil })

	_, err := NewDispatcher(src).Dispatch(context.Background(), textTurn(IntentText))
	var shape *InvalidResponseShapeError
	require.True(t, errors.As(err, &shape))
}

type deferredHandler struct {
	reply string
	fail  error
}

func (h *deferredHandler) Handle(c *Conversation) *Future {
	fut := NewFuture()
	go func() {
		time.Sleep(10 * time.Millisecond)
		if h.fail != nil {
			fut.Reject(h.fail)
			return
		}
		if err := c.Tell(h.reply); err != nil {
			fut.Reject(err)
			return
		}
		fut.Resolve()
	}()
	return fut
}

func TestDispatchDeferredResolution(t *testing.T) {
	src := Single(&deferredHandler{reply: "done eventually"})

	env, err := NewDispatcher(src).Dispatch(context.Background(), textTurn(IntentText))
	require.NoError(t, err)
	assert.Equal(t, "done eventually", env.Final.TextToSpeech)
}

func TestDispatchDeferredRejection(t *testing.T) {
	src := Single(&deferredHandler{fail: errors.New("backend down")})

	env, err := NewDispatcher(src).Dispatch(context.Background(), textTurn(IntentText))
	assert.Nil(t, env)
	var failed *HandlerFailedError
	require.True(t, errors.As(err, &failed))
	assert.ErrorContains(t, err, "backend down")
}

func TestDispatchContextCancellation(t *testing.T) {
	blocked := NewFuture()
	src := Single(handlerFunc(func(c *Conversation) *Future { return blocked }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDispatcher(src).Dispatch(ctx, textTurn(IntentText))
	require.Error(t, err)
}

type handlerFunc func(c *Conversation) *Future

func (f handlerFunc) Handle(c *Conversation) *Future { return f(c) }

func TestFutureSettlesOnce(t *testing.T) {
	fut := NewFuture()
	fut.Resolve()
	fut.Reject(errors.New("late rejection"))
	assert.NoError(t, fut.Await(context.Background()))
}
