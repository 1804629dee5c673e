// Package agent implements the pickup-concierge fulfillment: a small voice
// agent that books rides and sells snacks, exercising every response shape
// the webhook SDK supports.
package agent

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"actionskit/internal/store"
	"actionskit/internal/types"
	"actionskit/pkg/assistant"
)

// AuditLog receives one record per completed turn. Both the Postgres store
// and the JSONL file log satisfy it.
type AuditLog interface {
	Append(rec types.TurnRecord) error
}

type Agent struct {
	store *store.MemoryStore
	talk  *SmallTalk
	audit AuditLog
}

// New wires the concierge. talk may be nil (no small-talk fallback) and
// audit may be nil (no audit log).
func New(memory *store.MemoryStore, talk *SmallTalk, audit AuditLog) *Agent {
	return &Agent{store: memory, talk: talk, audit: audit}
}

// dialogState is the blob threaded through the platform between turns.
type dialogState struct {
	Stage   string `json:"stage,omitempty"`
	OrderID string `json:"orderId,omitempty"`
}

const (
	stageRide  = "ride"
	stageOrder = "order"
)

// Handlers returns the intent routing for the webhook endpoint.
func (a *Agent) Handlers() assistant.HandlerSource {
	return assistant.RouteFuncs(map[string]func(c *assistant.Conversation) error{
		assistant.IntentMain:                    a.handleWelcome,
		assistant.IntentText:                    a.handleText,
		assistant.IntentPermission:              a.handlePermission,
		assistant.IntentOption:                  a.handleOption,
		assistant.IntentConfirmation:            a.handleConfirmation,
		assistant.IntentDateTime:                a.handleDateTime,
		assistant.IntentSignIn:                  a.handleSignIn,
		assistant.IntentDeliveryAddress:         a.handleDeliveryAddress,
		assistant.IntentTransactionRequirements: a.handleTransactionRequirements,
		assistant.IntentTransactionDecision:     a.handleTransactionDecision,
		assistant.Fallback:                      a.handleFallback,
	})
}

// remember appends the turn to the transcript and the audit log. Final turns
// drop the conversation's in-memory context.
func (a *Agent) remember(c *assistant.Conversation, reply string, final bool) {
	t := c.Turn()
	if t.RawInput != "" {
		a.store.Append(t.ConversationID, store.Message{Role: "user", Content: t.RawInput})
	}
	a.store.Append(t.ConversationID, store.Message{Role: "assistant", Content: reply})
	if a.audit != nil {
		rec := types.TurnRecord{
			ID:             uuid.NewString(),
			ConversationID: t.ConversationID,
			Intent:         t.Intent,
			Query:          t.RawInput,
			Reply:          reply,
			Final:          final,
			CreatedAt:      time.Now().UTC(),
		}
		if err := a.audit.Append(rec); err != nil {
			log.Printf("[agent] audit append failed: %v", err)
		}
	}
	if final {
		a.store.Clear(t.ConversationID)
	}
}

func (a *Agent) handleWelcome(c *assistant.Conversation) error {
	greeting := "Hi, I'm your concierge. I can get you a ride or a snack. What would you like?"
	rich := assistant.NewRichResponse().
		AddSimple(greeting).
		AddSuggestions("Get a ride", "Order a snack")
	if err := c.AskRich(rich, "I can get you a ride or order you a snack.", "Are you still there?"); err != nil {
		return err
	}
	a.remember(c, greeting, false)
	return nil
}

func (a *Agent) handleText(c *assistant.Conversation) error {
	t := c.Turn()
	switch Detect(t.RawInput) {
	case KindGoodbye:
		reply := "Goodbye! Safe travels."
		if err := c.Tell(reply); err != nil {
			return err
		}
		a.remember(c, reply, true)
		return nil

	case KindRide:
		if err := c.SetDialogState(dialogState{Stage: stageRide}); err != nil {
			return err
		}
		if err := c.AskForPermissions("To pick you up", []string{
			assistant.PermissionName,
			assistant.PermissionDevicePreciseLocation,
		}); err != nil {
			return err
		}
		a.remember(c, "(requested name and location permissions)", false)
		return nil

	case KindMenu:
		return a.offerMenu(c, "Here's what I can get you right now.")

	case KindOrder:
		if err := c.SetDialogState(dialogState{Stage: stageOrder}); err != nil {
			return err
		}
		if err := c.AskForTransactionRequirements(&assistant.OrderOptions{}); err != nil {
			return err
		}
		a.remember(c, "(checking transaction requirements)", false)
		return nil

	case KindSchedule:
		if err := c.AskForDateTime("When should the car arrive?", "What day?", "What time?"); err != nil {
			return err
		}
		a.remember(c, "(asked for pickup date and time)", false)
		return nil

	case KindSignIn:
		if err := c.AskForSignIn(); err != nil {
			return err
		}
		a.remember(c, "(handed off to sign-in)", false)
		return nil

	case KindDelivery:
		if err := c.AskForDeliveryAddress("To deliver your snack"); err != nil {
			return err
		}
		a.remember(c, "(asked for delivery address)", false)
		return nil
	}

	reply := a.smallTalkReply(c)
	if err := c.AskText(reply, "Anything else I can do?"); err != nil {
		return err
	}
	a.remember(c, reply, false)
	return nil
}

// smallTalkReply asks the persona model for a reply, falling back to a fixed
// re-prompt when the model is unavailable or fails.
func (a *Agent) smallTalkReply(c *assistant.Conversation) string {
	t := c.Turn()
	if a.talk == nil {
		return "I can get you a ride or a snack. Which one sounds good?"
	}
	reply, err := a.talk.Reply(c.Context(), a.store.Get(t.ConversationID), t.RawInput)
	if err != nil {
		log.Printf("[agent] small talk failed: %v", err)
		return "I can get you a ride or a snack. Which one sounds good?"
	}
	return reply
}

func (a *Agent) handlePermission(c *assistant.Conversation) error {
	t := c.Turn()
	if !t.PermissionGranted() {
		reply := "No worries. I can still order you a snack, or we can just chat."
		if err := c.AskText(reply); err != nil {
			return err
		}
		a.remember(c, reply, false)
		return nil
	}

	passenger := "there"
	if t.User != nil && t.User.Name != "" {
		passenger = t.User.Name
	}
	pickup := "your current location"
	if t.Location != nil {
		if t.Location.Address != "" {
			pickup = t.Location.Address
		} else if t.Location.City != "" {
			pickup = t.Location.City
		}
	}
	a.store.SetPendingRide(t.ConversationID, passenger, pickup)

	reply := fmt.Sprintf("Thanks %s! Should I send a car to %s?", passenger, pickup)
	if err := c.AskForConfirmation(reply); err != nil {
		return err
	}
	a.remember(c, reply, false)
	return nil
}

func (a *Agent) handleConfirmation(c *assistant.Conversation) error {
	t := c.Turn()
	granted, ok := t.Confirmed()
	if !ok {
		return a.handleFallback(c)
	}
	if !granted {
		a.store.ClearPendingRide(t.ConversationID)
		reply := "Okay, no car then. Anything else?"
		if err := c.AskText(reply); err != nil {
			return err
		}
		a.remember(c, reply, false)
		return nil
	}

	passenger, pickup, pending := a.store.GetPendingRide(t.ConversationID)
	reply := "Your car is on its way."
	if pending {
		reply = fmt.Sprintf("Done, %s. Your car is on its way to %s.", passenger, pickup)
	}
	a.store.ClearPendingRide(t.ConversationID)
	if err := c.Tell(reply); err != nil {
		return err
	}
	a.remember(c, reply, true)
	return nil
}

func (a *Agent) handleDateTime(c *assistant.Conversation) error {
	t := c.Turn()
	when := "then"
	if arg, ok := t.Argument(assistant.ArgumentDateTime); ok && !arg.IsText() {
		var decoded struct {
			DatetimeValue struct {
				Date struct {
					Year  int `json:"year"`
					Month int `json:"month"`
					Day   int `json:"day"`
				} `json:"date"`
				Time struct {
					Hours   int `json:"hours"`
					Minutes int `json:"minutes"`
				} `json:"time"`
			} `json:"datetimeValue"`
		}
		if err := arg.Decode(&decoded); err == nil && decoded.DatetimeValue.Date.Year > 0 {
			d := decoded.DatetimeValue
			when = fmt.Sprintf("%04d-%02d-%02d at %02d:%02d",
				d.Date.Year, d.Date.Month, d.Date.Day, d.Time.Hours, d.Time.Minutes)
		}
	}
	reply := fmt.Sprintf("Booked for %s. Anything else?", when)
	if err := c.AskText(reply); err != nil {
		return err
	}
	a.remember(c, reply, false)
	return nil
}

func (a *Agent) handleSignIn(c *assistant.Conversation) error {
	t := c.Turn()
	status := ""
	if arg, ok := t.Argument(assistant.ArgumentSignIn); ok {
		var decoded struct {
			Extension struct {
				Status string `json:"status"`
			} `json:"extension"`
		}
		if arg.Decode(&decoded) == nil {
			status = decoded.Extension.Status
		}
	}
	reply := "You're signed in now. What can I get you?"
	if status != "OK" {
		reply = "That's fine, we can continue without an account. What can I get you?"
	}
	if err := c.AskText(reply); err != nil {
		return err
	}
	a.remember(c, reply, false)
	return nil
}

func (a *Agent) handleDeliveryAddress(c *assistant.Conversation) error {
	t := c.Turn()
	city := ""
	if arg, ok := t.Argument(assistant.ArgumentDeliveryAddress); ok {
		var decoded struct {
			Extension struct {
				UserDecision string `json:"userDecision"`
				Location     struct {
					PostalAddress struct {
						Locality     string   `json:"locality"`
						AddressLines []string `json:"addressLines"`
					} `json:"postalAddress"`
				} `json:"location"`
			} `json:"extension"`
		}
		if arg.Decode(&decoded) == nil && decoded.Extension.UserDecision == "ACCEPTED" {
			city = decoded.Extension.Location.PostalAddress.Locality
		}
	}
	if city == "" {
		reply := "I couldn't get a delivery address. Want to pick the snack up instead?"
		if err := c.AskText(reply); err != nil {
			return err
		}
		a.remember(c, reply, false)
		return nil
	}
	reply := fmt.Sprintf("Got it, delivering to %s. What would you like?", city)
	if err := c.AskText(reply); err != nil {
		return err
	}
	a.remember(c, reply, false)
	return nil
}

func (a *Agent) handleTransactionRequirements(c *assistant.Conversation) error {
	t := c.Turn()
	result := ""
	if arg, ok := t.Argument(assistant.ArgumentTransactionReqCheck); ok {
		var decoded struct {
			Extension struct {
				ResultType string `json:"resultType"`
			} `json:"extension"`
		}
		if arg.Decode(&decoded) == nil {
			result = decoded.Extension.ResultType
		}
	}
	if result != "OK" {
		reply := "Looks like ordering isn't available on this device. I can still get you a ride."
		if err := c.AskText(reply); err != nil {
			return err
		}
		a.remember(c, reply, false)
		return nil
	}
	return a.offerMenu(c, "Great, you're all set to order. Here's the menu.")
}

func (a *Agent) handleOption(c *assistant.Conversation) error {
	t := c.Turn()
	key := t.SelectedOption()
	if key == "" {
		return a.handleFallback(c)
	}

	title := key
	price := snackPrice(key)
	if offers, ok := a.store.GetLastOffers(t.ConversationID); ok {
		for _, o := range offers {
			if o.Key == key {
				title = o.Title
			}
		}
	}

	orderID := "order-" + uuid.NewString()
	cart := assistant.NewCart().
		SetMerchant("concierge-cafe", "Concierge Cafe").
		AddLineItem(assistant.NewLineItem(key, title).
			SetQuantity(1).
			SetPrice(price))
	order := assistant.NewOrder(orderID).
		SetCart(cart).
		SetTotalPrice(price)

	if err := c.SetDialogState(dialogState{Stage: stageOrder, OrderID: orderID}); err != nil {
		return err
	}
	if err := c.AskForTransactionDecision(order, &assistant.OrderOptions{}); err != nil {
		return err
	}
	a.remember(c, fmt.Sprintf("(proposed order %s: %s)", orderID, title), false)
	return nil
}

func (a *Agent) handleTransactionDecision(c *assistant.Conversation) error {
	t := c.Turn()
	decision := ""
	if arg, ok := t.Argument(assistant.ArgumentTransactionDecision); ok {
		var decoded struct {
			Extension struct {
				UserDecision string `json:"userDecision"`
			} `json:"extension"`
		}
		if arg.Decode(&decoded) == nil {
			decision = decoded.Extension.UserDecision
		}
	}

	var state dialogState
	if err := c.ReadDialogState(&state); err != nil {
		log.Printf("[agent] unreadable dialog state for %s: %v", t.ConversationID, err)
	}
	orderID := state.OrderID
	if orderID == "" {
		orderID = "order-" + uuid.NewString()
	}

	if decision != "ORDER_ACCEPTED" {
		update := assistant.NewOrderUpdate(orderID, assistant.OrderStateRejected, "Order cancelled")
		reply := "No problem, I've cancelled that order. Goodbye!"
		if err := c.TellWithOrderUpdate(update, reply); err != nil {
			return err
		}
		a.remember(c, reply, true)
		return nil
	}

	update := assistant.NewOrderUpdate(orderID, assistant.OrderStateConfirmed, "Order confirmed")
	reply := "Your order is confirmed and on its way. Enjoy!"
	if err := c.TellWithOrderUpdate(update, reply); err != nil {
		return err
	}
	a.remember(c, reply, true)
	return nil
}

func (a *Agent) handleFallback(c *assistant.Conversation) error {
	reply := "Sorry, I didn't catch that. I can get you a ride or a snack."
	if err := c.AskText(reply, "Say ride or snack.", "Are you still there?"); err != nil {
		return err
	}
	a.remember(c, reply, false)
	return nil
}

// offerMenu shows the snack carousel and caches the offered keys so the
// follow-up selection can be resolved to a title.
func (a *Agent) offerMenu(c *assistant.Conversation, lead string) error {
	t := c.Turn()
	offers := []store.Offer{
		{Key: "espresso", Title: "Espresso"},
		{Key: "latte", Title: "Latte"},
		{Key: "croissant", Title: "Butter Croissant"},
	}

	carousel := assistant.NewCarousel()
	for _, o := range offers {
		item := assistant.NewOptionItem(o.Key, o.Title).
			AddSynonyms(strings.ToLower(o.Title))
		carousel.AddItem(item)
	}

	prompt, err := assistant.BuildInputPrompt(false, lead, []string{"Which one would you like?"})
	if err != nil {
		return err
	}
	if err := c.AskWithCarousel(prompt, carousel); err != nil {
		return err
	}
	a.store.SetLastOffers(t.ConversationID, offers)
	a.remember(c, lead, false)
	return nil
}

func snackPrice(key string) assistant.Price {
	switch key {
	case "espresso":
		return assistant.Price{Type: "ACTUAL", CurrencyCode: "USD", Units: 3}
	case "latte":
		return assistant.Price{Type: "ACTUAL", CurrencyCode: "USD", Units: 4, Nanos: 500000000}
	case "croissant":
		return assistant.Price{Type: "ACTUAL", CurrencyCode: "USD", Units: 3, Nanos: 250000000}
	}
	return assistant.Price{Type: "ESTIMATE", CurrencyCode: "USD", Units: 5}
}
