package assistant

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
)

// VersionHeader carries the request schema version. Absent or "2" means V2;
// a value starting with "1" selects the legacy V1 shape.
const VersionHeader = "Assistant-API-Version"

type errorResponse struct {
	Error string `json:"error"`
}

// Webhook returns the webhook endpoint for a handler source: it reads the
// body, normalizes the turn, dispatches it and writes the version-matched
// envelope JSON. Status codes: 200 for any well-formed turn (final ones
// included), 400 for a malformed request, 500 for unhandled intents,
// handler failures and response shape errors.
func Webhook(src HandlerSource) http.Handler {
	d := NewDispatcher(src)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unable to read request body")
			return
		}
		version := versionOf(r)

		turn, err := Normalize(body, version)
		if err != nil {
			log.Printf("[webhook] malformed request: %v", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		env, err := d.Dispatch(r.Context(), turn)
		if err != nil {
			var unhandled *UnhandledIntentError
			if errors.As(err, &unhandled) {
				log.Printf("[webhook] %v (conversation %s)", err, turn.ConversationID)
			} else {
				log.Printf("[webhook] dispatch error for intent %q: %v", turn.Intent, err)
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		payload, err := env.MarshalFor(version)
		if err != nil {
			log.Printf("[webhook] serialize error: %v", err)
			writeError(w, http.StatusInternalServerError, "response serialization failed")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	})
}

func versionOf(r *http.Request) APIVersion {
	v := strings.TrimSpace(r.Header.Get(VersionHeader))
	if strings.HasPrefix(v, "1") {
		return V1
	}
	return V2
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
