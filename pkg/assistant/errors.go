package assistant

import "fmt"

// MalformedRequestError means the request body was not a minimally valid
// turn envelope (no conversation id and no intent). It maps to HTTP 400 and
// no response envelope is produced.
type MalformedRequestError struct {
	Reason string
}

func (e *MalformedRequestError) Error() string {
	return "malformed request: " + e.Reason
}

// UnhandledIntentError means the incoming intent had no registered handler
// and no catch-all entry exists.
type UnhandledIntentError struct {
	Intent string
}

func (e *UnhandledIntentError) Error() string {
	if e.Intent == IntentUnknown {
		return "unhandled intent: (none)"
	}
	return "unhandled intent: " + e.Intent
}

// InvalidResponseShapeError is a construction-time validation failure in the
// response builder family. It names the first missing or conflicting field
// and is surfaced to the developer rather than silently degraded.
type InvalidResponseShapeError struct {
	Field  string
	Reason string
}

func (e *InvalidResponseShapeError) Error() string {
	return fmt.Sprintf("invalid response shape: %s: %s", e.Field, e.Reason)
}

func invalidShape(field, reason string) *InvalidResponseShapeError {
	return &InvalidResponseShapeError{Field: field, Reason: reason}
}

// HandlerFailedError wraps a handler error or deferred rejection. It maps to
// HTTP 500 and no partial envelope is sent.
type HandlerFailedError struct {
	Err error
}

func (e *HandlerFailedError) Error() string {
	return "handler failed: " + e.Err.Error()
}

func (e *HandlerFailedError) Unwrap() error { return e.Err }
