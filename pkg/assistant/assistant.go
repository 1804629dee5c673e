// Package assistant implements the webhook side of a conversational
// assistant platform: it normalizes incoming turn requests (both the legacy
// snake_case V1 shape and the current camelCase V2 shape), dispatches them to
// developer handlers, and serializes the handler's reply into the envelope
// JSON the platform expects.
package assistant

// APIVersion selects which of the two supported request/response schemas a
// turn uses. The version is decided per request by the transport (header),
// never by sniffing the body.
type APIVersion int

const (
	V1 APIVersion = 1
	V2 APIVersion = 2
)

func (v APIVersion) String() string {
	if v == V1 {
		return "v1"
	}
	return "v2"
}

// Canonical (V2) intent identifiers. V1 requests are mapped onto these
// during normalization.
const (
	// IntentUnknown is the sentinel for a request that carried no intent.
	IntentUnknown = ""

	IntentMain                    = "actions.intent.MAIN"
	IntentText                    = "actions.intent.TEXT"
	IntentOption                  = "actions.intent.OPTION"
	IntentPermission              = "actions.intent.PERMISSION"
	IntentTransactionRequirements = "actions.intent.TRANSACTION_REQUIREMENTS_CHECK"
	IntentDeliveryAddress         = "actions.intent.DELIVERY_ADDRESS"
	IntentTransactionDecision     = "actions.intent.TRANSACTION_DECISION"
	IntentConfirmation            = "actions.intent.CONFIRMATION"
	IntentDateTime                = "actions.intent.DATETIME"
	IntentSignIn                  = "actions.intent.SIGN_IN"
)

// Legacy V1 intent identifiers. V1 only ever shipped main, text and
// permission; everything else is V2-only.
const (
	v1IntentMain       = "assistant.intent.action.MAIN"
	v1IntentText       = "assistant.intent.action.TEXT"
	v1IntentPermission = "assistant.intent.action.PERMISSION"
)

// Permission names usable with AskForPermission.
const (
	PermissionName                  = "NAME"
	PermissionDevicePreciseLocation = "DEVICE_PRECISE_LOCATION"
	PermissionDeviceCoarseLocation  = "DEVICE_COARSE_LOCATION"
)

// Surface capability tags reported by the device.
const (
	CapabilityAudioOutput  = "actions.capability.AUDIO_OUTPUT"
	CapabilityScreenOutput = "actions.capability.SCREEN_OUTPUT"
)

// Well-known argument names delivered by the platform on follow-up turns.
const (
	ArgumentText                = "text"
	ArgumentOption              = "OPTION"
	ArgumentPermission          = "PERMISSION"
	ArgumentName                = "NAME"
	ArgumentDeviceLocation      = "DEVICE_LOCATION"
	ArgumentConfirmation        = "CONFIRMATION"
	ArgumentDateTime            = "DATETIME"
	ArgumentSignIn              = "SIGN_IN"
	ArgumentDeliveryAddress     = "DELIVERY_ADDRESS_VALUE"
	ArgumentTransactionReqCheck = "TRANSACTION_REQUIREMENTS_CHECK_RESULT"
	ArgumentTransactionDecision = "TRANSACTION_DECISION_VALUE"
)

// V2 expected-intent value spec type URLs.
const (
	typePermissionSpec      = "type.googleapis.com/google.actions.v2.PermissionValueSpec"
	typeOptionSpec          = "type.googleapis.com/google.actions.v2.OptionValueSpec"
	typeTransactionReqSpec  = "type.googleapis.com/google.actions.v2.TransactionRequirementsCheckSpec"
	typeTransactionDecSpec  = "type.googleapis.com/google.actions.v2.TransactionDecisionValueSpec"
	typeConfirmationSpec    = "type.googleapis.com/google.actions.v2.ConfirmationValueSpec"
	typeDateTimeSpec        = "type.googleapis.com/google.actions.v2.DateTimeValueSpec"
	typeSignInSpec          = "type.googleapis.com/google.actions.v2.SignInValueSpec"
	typeDeliveryAddressSpec = "type.googleapis.com/google.actions.v2.DeliveryAddressValueSpec"
)

// toV1Intent maps a canonical intent id to its legacy V1 spelling. Intents
// that never existed in V1 keep their canonical spelling.
func toV1Intent(intent string) string {
	switch intent {
	case IntentMain:
		return v1IntentMain
	case IntentText:
		return v1IntentText
	case IntentPermission:
		return v1IntentPermission
	}
	return intent
}

// fromV1Intent maps a legacy V1 intent id to its canonical spelling.
func fromV1Intent(intent string) string {
	switch intent {
	case v1IntentMain:
		return IntentMain
	case v1IntentText:
		return IntentText
	case v1IntentPermission:
		return IntentPermission
	}
	return intent
}
