package assistant

import (
	"context"
	"encoding/json"
	"log"
)

// expectedIntent tags a non-final envelope with the specialized intent the
// platform should fire on the next turn, plus that intent's value spec.
type expectedIntent struct {
	intent           string
	permission       *permissionSpec
	list             *List
	carousel         *Carousel
	orderOptions     *OrderOptions
	order            *Order
	confirmationText string
	dateTime         *dateTimeSpec
	deliveryReason   string
}

type permissionSpec struct {
	context     string
	permissions []string
}

type dateTimeSpec struct {
	requestText     string
	requestDateText string
	requestTimeText string
}

// pendingResponse is the handler's declared response for the current turn,
// captured before envelope finalization.
type pendingResponse struct {
	expectUser  bool
	prompt      *InputPrompt
	rich        *RichResponse
	final       *SimpleResponse
	orderUpdate *OrderUpdate
	expected    *expectedIntent
}

// Conversation is the per-turn handle passed to handlers. It exposes the
// normalized Turn, threads the opaque dialog state, and records exactly one
// terminal or non-terminal response. It is confined to one turn and must not
// be retained after the handler returns.
type Conversation struct {
	ctx         context.Context
	turn        *Turn
	dialogState json.RawMessage
	pending     *pendingResponse
	terminal    bool
	sealed      bool
	discarded   int
}

func newConversation(ctx context.Context, turn *Turn) *Conversation {
	return &Conversation{
		ctx:         ctx,
		turn:        turn,
		dialogState: turn.DialogState,
	}
}

// Turn returns the normalized request for this turn.
func (c *Conversation) Turn() *Turn { return c.turn }

// Context returns the transport context for this turn. Handlers should pass
// it to outbound calls so platform-side cancellation propagates.
func (c *Conversation) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// DialogState returns the opaque state blob as it will be serialized.
func (c *Conversation) DialogState() json.RawMessage { return c.dialogState }

// ReadDialogState unmarshals the incoming state blob into v.
func (c *Conversation) ReadDialogState(v any) error {
	if len(c.dialogState) == 0 {
		return nil
	}
	return json.Unmarshal(c.dialogState, v)
}

// SetDialogState replaces the state blob threaded to the next turn.
func (c *Conversation) SetDialogState(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.dialogState = b
	return nil
}

// SetRawDialogState replaces the state blob verbatim.
func (c *Conversation) SetRawDialogState(raw json.RawMessage) {
	c.dialogState = raw
}

// Discarded reports how many response-producing calls were dropped under the
// last-call-wins rule during this turn.
func (c *Conversation) Discarded() int { return c.discarded }

// record captures a pending response. Calling a second response op before
// the handler completes replaces the first (last call wins) with a logged
// diagnostic; any op after a terminal response or after finalization is a
// discarded no-op.
func (c *Conversation) record(p *pendingResponse) {
	if c.sealed {
		c.discarded++
		log.Printf("[assistant] response discarded: turn already finalized")
		return
	}
	if c.terminal {
		c.discarded++
		log.Printf("[assistant] response discarded: a final response was already recorded")
		return
	}
	if c.pending != nil {
		c.discarded++
		log.Printf("[assistant] previous response discarded: last call wins")
	}
	c.pending = p
	if !p.expectUser {
		c.terminal = true
	}
}

// Tell ends the conversation with a spoken text response.
func (c *Conversation) Tell(textToSpeech string) error {
	if textToSpeech == "" {
		return invalidShape("textToSpeech", "must not be empty")
	}
	c.record(&pendingResponse{final: &SimpleResponse{TextToSpeech: textToSpeech}})
	return nil
}

// TellSSML ends the conversation with a markup-speech response.
func (c *Conversation) TellSSML(ssml string) error {
	if ssml == "" {
		return invalidShape("ssml", "must not be empty")
	}
	c.record(&pendingResponse{final: &SimpleResponse{SSML: ssml}})
	return nil
}

// TellRich ends the conversation with a rich response.
func (c *Conversation) TellRich(r *RichResponse) error {
	if r == nil {
		return invalidShape("richResponse", "is required")
	}
	built, err := r.Build()
	if err != nil {
		return err
	}
	c.record(&pendingResponse{rich: built})
	return nil
}

// TellWithOrderUpdate ends the conversation reporting an order's new state
// alongside a spoken response.
func (c *Conversation) TellWithOrderUpdate(update *OrderUpdate, textToSpeech string) error {
	if update == nil {
		return invalidShape("orderUpdate", "is required")
	}
	if textToSpeech == "" {
		return invalidShape("textToSpeech", "must not be empty")
	}
	built, err := update.Build()
	if err != nil {
		return err
	}
	c.record(&pendingResponse{
		final:       &SimpleResponse{TextToSpeech: textToSpeech},
		orderUpdate: built,
	})
	return nil
}

// Ask keeps the conversation open with the given prompt and no specialized
// expected intent.
func (c *Conversation) Ask(prompt *InputPrompt) error {
	return c.ask(prompt, nil)
}

// AskText is shorthand for Ask with a plain-text prompt.
func (c *Conversation) AskText(initial string, noInputs ...string) error {
	prompt, err := BuildInputPrompt(false, initial, noInputs)
	if err != nil {
		return err
	}
	return c.ask(prompt, nil)
}

// AskSSML is shorthand for Ask with an SSML prompt.
func (c *Conversation) AskSSML(initial string, noInputs ...string) error {
	prompt, err := BuildInputPrompt(true, initial, noInputs)
	if err != nil {
		return err
	}
	return c.ask(prompt, nil)
}

// AskRich keeps the conversation open with a rich initial prompt.
func (c *Conversation) AskRich(r *RichResponse, noInputs ...string) error {
	if r == nil {
		return invalidShape("richResponse", "is required")
	}
	if len(noInputs) > maxNoInputPrompts {
		return invalidShape("noInputs", "at most 3 no-input prompts are allowed")
	}
	for _, n := range noInputs {
		if n == "" {
			return invalidShape("noInputs", "prompt must not be empty")
		}
	}
	built, err := r.Build()
	if err != nil {
		return err
	}
	c.record(&pendingResponse{
		expectUser: true,
		rich:       built,
		prompt:     &InputPrompt{noInputs: append([]string(nil), noInputs...)},
	})
	return nil
}

func (c *Conversation) ask(prompt *InputPrompt, expected *expectedIntent) error {
	if prompt == nil {
		return invalidShape("inputPrompt", "is required")
	}
	built, err := prompt.Build()
	if err != nil {
		return err
	}
	c.record(&pendingResponse{expectUser: true, prompt: built, expected: expected})
	return nil
}

// AskWithList asks the user to pick from a selection list.
func (c *Conversation) AskWithList(prompt *InputPrompt, list *List) error {
	if list == nil {
		return invalidShape("list", "is required")
	}
	built, err := list.Build()
	if err != nil {
		return err
	}
	return c.ask(prompt, &expectedIntent{intent: IntentOption, list: built})
}

// AskWithCarousel asks the user to pick from a carousel.
func (c *Conversation) AskWithCarousel(prompt *InputPrompt, carousel *Carousel) error {
	if carousel == nil {
		return invalidShape("carousel", "is required")
	}
	built, err := carousel.Build()
	if err != nil {
		return err
	}
	return c.ask(prompt, &expectedIntent{intent: IntentOption, carousel: built})
}

// AskForPermission requests a single permission; reason is spoken to the
// user as the justification ("<reason>, I'll need ...").
func (c *Conversation) AskForPermission(reason, permission string) error {
	return c.AskForPermissions(reason, []string{permission})
}

// AskForPermissions requests one or more permissions in a single dialog.
func (c *Conversation) AskForPermissions(reason string, permissions []string) error {
	if len(permissions) == 0 {
		return invalidShape("permissions", "at least one permission is required")
	}
	for _, p := range permissions {
		switch p {
		case PermissionName, PermissionDevicePreciseLocation, PermissionDeviceCoarseLocation:
		default:
			return invalidShape("permissions", "unknown permission "+p)
		}
	}
	prompt, err := BuildInputPrompt(false, "PLACEHOLDER_FOR_PERMISSION", nil)
	if err != nil {
		return err
	}
	c.record(&pendingResponse{
		expectUser: true,
		prompt:     prompt,
		expected: &expectedIntent{
			intent:     IntentPermission,
			permission: &permissionSpec{context: reason, permissions: append([]string(nil), permissions...)},
		},
	})
	return nil
}

// AskForTransactionRequirements checks whether the user can transact.
func (c *Conversation) AskForTransactionRequirements(options *OrderOptions) error {
	prompt, err := BuildInputPrompt(false, "PLACEHOLDER_FOR_TXN_REQUIREMENTS", nil)
	if err != nil {
		return err
	}
	c.record(&pendingResponse{
		expectUser: true,
		prompt:     prompt,
		expected:   &expectedIntent{intent: IntentTransactionRequirements, orderOptions: options},
	})
	return nil
}

// AskForTransactionDecision puts a proposed order in front of the user.
func (c *Conversation) AskForTransactionDecision(order *Order, options *OrderOptions) error {
	if order == nil {
		return invalidShape("order", "is required")
	}
	built, err := order.Build()
	if err != nil {
		return err
	}
	prompt, perr := BuildInputPrompt(false, "PLACEHOLDER_FOR_TXN_DECISION", nil)
	if perr != nil {
		return perr
	}
	c.record(&pendingResponse{
		expectUser: true,
		prompt:     prompt,
		expected: &expectedIntent{
			intent:       IntentTransactionDecision,
			order:        built,
			orderOptions: options,
		},
	})
	return nil
}

// AskForConfirmation asks a yes/no question answered on a CONFIRMATION turn.
func (c *Conversation) AskForConfirmation(text string) error {
	if text == "" {
		return invalidShape("confirmationText", "must not be empty")
	}
	prompt, err := BuildInputPrompt(false, text, nil)
	if err != nil {
		return err
	}
	c.record(&pendingResponse{
		expectUser: true,
		prompt:     prompt,
		expected:   &expectedIntent{intent: IntentConfirmation, confirmationText: text},
	})
	return nil
}

// AskForDateTime asks the user for a date and time. The date and time
// prompts may be empty to let the platform phrase them.
func (c *Conversation) AskForDateTime(initial, datePrompt, timePrompt string) error {
	if initial == "" {
		return invalidShape("dateTimePrompt", "must not be empty")
	}
	prompt, err := BuildInputPrompt(false, initial, nil)
	if err != nil {
		return err
	}
	c.record(&pendingResponse{
		expectUser: true,
		prompt:     prompt,
		expected: &expectedIntent{
			intent: IntentDateTime,
			dateTime: &dateTimeSpec{
				requestText:     initial,
				requestDateText: datePrompt,
				requestTimeText: timePrompt,
			},
		},
	})
	return nil
}

// AskForSignIn hands the user to the platform's account-linking dialog.
func (c *Conversation) AskForSignIn() error {
	prompt, err := BuildInputPrompt(false, "PLACEHOLDER_FOR_SIGN_IN", nil)
	if err != nil {
		return err
	}
	c.record(&pendingResponse{
		expectUser: true,
		prompt:     prompt,
		expected:   &expectedIntent{intent: IntentSignIn},
	})
	return nil
}

// AskForDeliveryAddress asks for a delivery address; reason is spoken as the
// justification.
func (c *Conversation) AskForDeliveryAddress(reason string) error {
	prompt, err := BuildInputPrompt(false, "PLACEHOLDER_FOR_DELIVERY_ADDRESS", nil)
	if err != nil {
		return err
	}
	c.record(&pendingResponse{
		expectUser: true,
		prompt:     prompt,
		expected:   &expectedIntent{intent: IntentDeliveryAddress, deliveryReason: reason},
	})
	return nil
}

// finalize turns the recorded pending response into an envelope. Called once
// by the dispatcher after the handler resolved; the conversation is sealed
// afterwards.
func (c *Conversation) finalize() (*Envelope, error) {
	c.sealed = true
	if c.pending == nil {
		return nil, invalidShape("response", "handler completed without producing a response")
	}
	p := c.pending
	env := &Envelope{
		ExpectUserResponse: p.expectUser,
		DialogState:        c.dialogState,
		Prompt:             p.prompt,
		Rich:               p.rich,
		Final:              p.final,
		OrderUpdate:        p.orderUpdate,
		expected:           p.expected,
		Discarded:          c.discarded,
	}
	return env, nil
}
