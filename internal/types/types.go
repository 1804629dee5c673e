package types

import "time"

// TurnRecord is one completed webhook turn, kept for the in-memory
// transcript and the audit log.
type TurnRecord struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Intent         string    `json:"intent"`
	Query          string    `json:"query,omitempty"`
	Reply          string    `json:"reply"`
	Final          bool      `json:"final"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
