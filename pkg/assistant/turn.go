package assistant

import "encoding/json"

// Turn is the normalized view of one conversation request, independent of
// which API version delivered it.
type Turn struct {
	// Intent is the platform-resolved intent id (canonical V2 spelling).
	// IntentUnknown when the request carried none.
	Intent string
	// RawInput is the user's raw query text, if any.
	RawInput string
	// Arguments maps argument name to its value.
	Arguments map[string]ArgumentValue
	// DialogState is the opaque state blob round-tripped between turns.
	// The SDK never inspects its contents.
	DialogState json.RawMessage
	// ConversationID identifies the ongoing conversation.
	ConversationID string
	// APIVersion is the schema version the request arrived in.
	APIVersion APIVersion
	// Capabilities is the set of surface capability tags of the device.
	Capabilities map[string]bool
	// User is the platform user, when shared.
	User *UserProfile
	// Location is the device location, when shared (e.g. after a
	// DEVICE_PRECISE_LOCATION permission grant).
	Location *DeviceLocation
}

// UserProfile carries the platform-provided user identity.
type UserProfile struct {
	ID          string
	Name        string
	AccessToken string
}

// DeviceLocation is the device position as granted by the user.
type DeviceLocation struct {
	Coordinates *Coordinates
	Address     string
	ZipCode     string
	City        string
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// ArgumentValue is a tagged union over plain-text and structured arguments.
// Text arguments surface as plain strings; everything else keeps its raw
// structured form for the caller to decode per intent.
type ArgumentValue struct {
	Name string
	Text string
	// Raw holds the full argument object for structured arguments; nil for
	// plain-text arguments.
	Raw json.RawMessage
}

// IsText reports whether the argument surfaced as a plain string.
func (a ArgumentValue) IsText() bool { return a.Raw == nil }

// Decode unmarshals the structured argument object into v.
func (a ArgumentValue) Decode(v any) error {
	if a.Raw == nil {
		quoted, err := json.Marshal(a.Text)
		if err != nil {
			return err
		}
		return json.Unmarshal(quoted, v)
	}
	return json.Unmarshal(a.Raw, v)
}

// Argument returns the named argument, if present.
func (t *Turn) Argument(name string) (ArgumentValue, bool) {
	a, ok := t.Arguments[name]
	return a, ok
}

// TextArgument returns the named argument's text, or "" when absent or
// structured.
func (t *Turn) TextArgument(name string) string {
	if a, ok := t.Arguments[name]; ok {
		return a.Text
	}
	return ""
}

// HasCapability reports whether the request surface advertises the given
// capability tag.
func (t *Turn) HasCapability(name string) bool {
	return t.Capabilities[name]
}

// PermissionGranted reports whether a PERMISSION follow-up turn carries a
// grant.
func (t *Turn) PermissionGranted() bool {
	a, ok := t.args()[ArgumentPermission]
	if !ok {
		return false
	}
	if a.Text == "true" {
		return true
	}
	var probe struct {
		BoolValue bool `json:"boolValue"`
	}
	if a.Raw != nil && json.Unmarshal(a.Raw, &probe) == nil {
		return probe.BoolValue
	}
	return false
}

// args guards against nil maps on hand-built turns.
func (t *Turn) args() map[string]ArgumentValue {
	if t.Arguments == nil {
		return map[string]ArgumentValue{}
	}
	return t.Arguments
}

// SelectedOption returns the option key from an OPTION follow-up turn.
func (t *Turn) SelectedOption() string {
	return t.TextArgument(ArgumentOption)
}

// Confirmed reports the user's answer on a CONFIRMATION follow-up turn.
func (t *Turn) Confirmed() (granted, ok bool) {
	a, present := t.args()[ArgumentConfirmation]
	if !present {
		return false, false
	}
	if a.IsText() {
		return a.Text == "true", true
	}
	var probe struct {
		BoolValue bool `json:"boolValue"`
	}
	if json.Unmarshal(a.Raw, &probe) == nil {
		return probe.BoolValue, true
	}
	return false, false
}
