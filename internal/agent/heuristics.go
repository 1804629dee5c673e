package agent

import "strings"

// Kind is a coarse classification of free-form text turns arriving on the
// generic text intent. The platform resolves the specialized intents; this
// only decides which flow the concierge starts from open input.
type Kind string

const (
	KindUnknown  Kind = "unknown"
	KindRide     Kind = "ride"
	KindMenu     Kind = "menu"
	KindOrder    Kind = "order"
	KindSchedule Kind = "schedule"
	KindSignIn   Kind = "sign_in"
	KindDelivery Kind = "delivery"
	KindGoodbye  Kind = "goodbye"
)

// Detect performs simple keyword heuristics over the raw query.
func Detect(message string) Kind {
	m := strings.ToLower(strings.TrimSpace(message))
	if m == "" {
		return KindUnknown
	}
	if containsAny(m, []string{
		"bye", "goodbye", "see you", "that's all", "thats all", "stop", "quit",
	}) {
		return KindGoodbye
	}
	if containsAny(m, []string{
		"ride", "pick me up", "pickup", "pick up", "get a car", "need a car",
		"taxi", "drive me",
	}) {
		return KindRide
	}
	if containsAny(m, []string{
		"menu", "snack", "what can i get", "what do you have", "something to eat",
		"hungry",
	}) {
		return KindMenu
	}
	if containsAny(m, []string{
		"order", "buy", "purchase", "checkout", "check out",
	}) {
		return KindOrder
	}
	if containsAny(m, []string{
		"schedule", "later", "tomorrow", "book for", "at what time", "reserve",
	}) {
		return KindSchedule
	}
	if containsAny(m, []string{
		"sign in", "log in", "login", "my account", "link my account",
	}) {
		return KindSignIn
	}
	if containsAny(m, []string{
		"deliver", "delivery", "bring it to", "ship it",
	}) {
		return KindDelivery
	}
	return KindUnknown
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
