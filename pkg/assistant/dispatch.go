package assistant

import (
	"context"
	"errors"
	"log"
)

// Handler handles one conversation turn. Handle may do its work inline and
// return a settled future, or hand the returned future to another goroutine
// and settle it there.
type Handler interface {
	Handle(c *Conversation) *Future
}

// HandlerFunc adapts a synchronous function to Handler.
type HandlerFunc func(c *Conversation) error

func (f HandlerFunc) Handle(c *Conversation) *Future {
	return Resolved(f(c))
}

// Fallback is the routed-map key matched when no exact intent entry exists.
const Fallback = "*"

// HandlerSource is either a single handler receiving every turn or a routed
// mapping from intent id to handler with an optional Fallback entry.
type HandlerSource struct {
	single Handler
	routes map[string]Handler
}

// Single wraps one handler that receives every turn.
func Single(h Handler) HandlerSource {
	return HandlerSource{single: h}
}

// SingleFunc wraps one synchronous function that receives every turn.
func SingleFunc(f func(c *Conversation) error) HandlerSource {
	return Single(HandlerFunc(f))
}

// Routes wraps an intent-id-to-handler mapping.
func Routes(m map[string]Handler) HandlerSource {
	routes := make(map[string]Handler, len(m))
	for k, v := range m {
		routes[k] = v
	}
	return HandlerSource{routes: routes}
}

// RouteFuncs wraps an intent-id-to-function mapping.
func RouteFuncs(m map[string]func(c *Conversation) error) HandlerSource {
	routes := make(map[string]Handler, len(m))
	for k, v := range m {
		routes[k] = HandlerFunc(v)
	}
	return HandlerSource{routes: routes}
}

// resolve picks the handler for an intent: exact match first, then the
// Fallback entry, then the single handler.
func (s HandlerSource) resolve(intent string) (Handler, bool) {
	if s.single != nil {
		return s.single, true
	}
	if h, ok := s.routes[intent]; ok {
		return h, true
	}
	if h, ok := s.routes[Fallback]; ok {
		return h, true
	}
	return nil, false
}

// Dispatcher runs one turn through handler selection, handler execution and
// envelope finalization.
type Dispatcher struct {
	src HandlerSource
}

func NewDispatcher(src HandlerSource) *Dispatcher {
	return &Dispatcher{src: src}
}

// Dispatch selects and runs the handler for the turn and finalizes its
// declared response into an envelope. It blocks until the handler's future
// settles; a rejection surfaces as HandlerFailedError and no envelope is
// produced. Builder validation errors pass through unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, turn *Turn) (*Envelope, error) {
	h, ok := d.src.resolve(turn.Intent)
	if !ok {
		return nil, &UnhandledIntentError{Intent: turn.Intent}
	}

	conv := newConversation(ctx, turn)
	fut := h.Handle(conv)
	if err := fut.Await(ctx); err != nil {
		conv.sealed = true
		var shape *InvalidResponseShapeError
		if errors.As(err, &shape) {
			return nil, err
		}
		return nil, &HandlerFailedError{Err: err}
	}

	env, err := conv.finalize()
	if err != nil {
		return nil, err
	}
	if env.Discarded > 0 {
		log.Printf("[assistant] intent %q: %d response call(s) discarded this turn", turn.Intent, env.Discarded)
	}
	return env, nil
}
