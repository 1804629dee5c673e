package assistant

import (
	"encoding/json"
	"strconv"
)

// Normalize parses a raw webhook body of the given API version into a Turn.
// Unknown or missing fields resolve to zero values; the only hard failure is
// a body with neither a conversation id nor an intent.
func Normalize(rawBody []byte, v APIVersion) (*Turn, error) {
	if v == V1 {
		return normalizeV1(rawBody)
	}
	return normalizeV2(rawBody)
}

// v2Request mirrors the current camelCase request schema. Only the fields
// the Turn needs are declared; everything else is ignored.
type v2Request struct {
	User *struct {
		UserID      string `json:"userId"`
		AccessToken string `json:"accessToken"`
		Profile     *struct {
			DisplayName string `json:"displayName"`
			GivenName   string `json:"givenName"`
			FamilyName  string `json:"familyName"`
		} `json:"profile"`
	} `json:"user"`
	Device *struct {
		Location *struct {
			Coordinates *struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"coordinates"`
			FormattedAddress string `json:"formattedAddress"`
			ZipCode          string `json:"zipCode"`
			City             string `json:"city"`
		} `json:"location"`
	} `json:"device"`
	Surface *struct {
		Capabilities []struct {
			Name string `json:"name"`
		} `json:"capabilities"`
	} `json:"surface"`
	Conversation *struct {
		ConversationID    string `json:"conversationId"`
		ConversationToken string `json:"conversationToken"`
	} `json:"conversation"`
	Inputs []struct {
		Intent    string `json:"intent"`
		RawInputs []struct {
			Query string `json:"query"`
		} `json:"rawInputs"`
		Arguments []json.RawMessage `json:"arguments"`
	} `json:"inputs"`
}

func normalizeV2(rawBody []byte) (*Turn, error) {
	var req v2Request
	if err := json.Unmarshal(rawBody, &req); err != nil {
		return nil, &MalformedRequestError{Reason: "body is not valid JSON: " + err.Error()}
	}

	t := &Turn{
		Intent:       IntentUnknown,
		Arguments:    map[string]ArgumentValue{},
		Capabilities: map[string]bool{},
		APIVersion:   V2,
	}

	if req.Conversation != nil {
		t.ConversationID = req.Conversation.ConversationID
		if req.Conversation.ConversationToken != "" {
			t.DialogState = json.RawMessage(req.Conversation.ConversationToken)
		}
	}
	if len(req.Inputs) > 0 {
		in := req.Inputs[0]
		t.Intent = in.Intent
		if len(in.RawInputs) > 0 {
			t.RawInput = in.RawInputs[0].Query
		}
		for _, raw := range in.Arguments {
			av, ok := decodeArgument(raw, false)
			if ok {
				t.Arguments[av.Name] = av
			}
		}
	}
	if req.Surface != nil {
		for _, c := range req.Surface.Capabilities {
			if c.Name != "" {
				t.Capabilities[c.Name] = true
			}
		}
	}
	if req.User != nil {
		p := &UserProfile{ID: req.User.UserID, AccessToken: req.User.AccessToken}
		if req.User.Profile != nil {
			p.Name = req.User.Profile.DisplayName
		}
		if p.ID != "" || p.Name != "" || p.AccessToken != "" {
			t.User = p
		}
	}
	if req.Device != nil && req.Device.Location != nil {
		loc := req.Device.Location
		dl := &DeviceLocation{
			Address: loc.FormattedAddress,
			ZipCode: loc.ZipCode,
			City:    loc.City,
		}
		if loc.Coordinates != nil {
			dl.Coordinates = &Coordinates{
				Latitude:  loc.Coordinates.Latitude,
				Longitude: loc.Coordinates.Longitude,
			}
		}
		t.Location = dl
	}

	if t.ConversationID == "" && t.Intent == IntentUnknown {
		return nil, &MalformedRequestError{Reason: "neither conversation id nor intent present"}
	}
	return t, nil
}

// v1Request mirrors the legacy proto2-style snake_case schema.
type v1Request struct {
	User *struct {
		UserID      string `json:"user_id"`
		AccessToken string `json:"access_token"`
		Profile     *struct {
			DisplayName string `json:"display_name"`
		} `json:"profile"`
	} `json:"user"`
	Device *struct {
		Location *struct {
			Coordinates *struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"coordinates"`
			FormattedAddress string `json:"formatted_address"`
			ZipCode          string `json:"zip_code"`
			City             string `json:"city"`
		} `json:"location"`
	} `json:"device"`
	Conversation *struct {
		ConversationID    string `json:"conversation_id"`
		ConversationToken string `json:"conversation_token"`
	} `json:"conversation"`
	Inputs []struct {
		Intent    string `json:"intent"`
		RawInputs []struct {
			Query string `json:"query"`
		} `json:"raw_inputs"`
		Arguments []json.RawMessage `json:"arguments"`
	} `json:"inputs"`
}

func normalizeV1(rawBody []byte) (*Turn, error) {
	var req v1Request
	if err := json.Unmarshal(rawBody, &req); err != nil {
		return nil, &MalformedRequestError{Reason: "body is not valid JSON: " + err.Error()}
	}

	t := &Turn{
		Intent:       IntentUnknown,
		Arguments:    map[string]ArgumentValue{},
		Capabilities: map[string]bool{},
		APIVersion:   V1,
	}

	if req.Conversation != nil {
		t.ConversationID = req.Conversation.ConversationID
		if req.Conversation.ConversationToken != "" {
			t.DialogState = json.RawMessage(req.Conversation.ConversationToken)
		}
	}
	if len(req.Inputs) > 0 {
		in := req.Inputs[0]
		t.Intent = fromV1Intent(in.Intent)
		if len(in.RawInputs) > 0 {
			t.RawInput = in.RawInputs[0].Query
		}
		for _, raw := range in.Arguments {
			av, ok := decodeArgument(raw, true)
			if ok {
				t.Arguments[av.Name] = av
			}
		}
	}
	if req.User != nil {
		p := &UserProfile{ID: req.User.UserID, AccessToken: req.User.AccessToken}
		if req.User.Profile != nil {
			p.Name = req.User.Profile.DisplayName
		}
		if p.ID != "" || p.Name != "" || p.AccessToken != "" {
			t.User = p
		}
	}
	if req.Device != nil && req.Device.Location != nil {
		loc := req.Device.Location
		dl := &DeviceLocation{
			Address: loc.FormattedAddress,
			ZipCode: loc.ZipCode,
			City:    loc.City,
		}
		if loc.Coordinates != nil {
			dl.Coordinates = &Coordinates{
				Latitude:  loc.Coordinates.Latitude,
				Longitude: loc.Coordinates.Longitude,
			}
		}
		t.Location = dl
	}

	if t.ConversationID == "" && t.Intent == IntentUnknown {
		return nil, &MalformedRequestError{Reason: "neither conversation id nor intent present"}
	}
	return t, nil
}

// decodeArgument classifies one raw argument object. Arguments carrying a
// plain text value surface as text; everything else keeps the raw object so
// callers can decode the shape they expect for the intent at hand.
func decodeArgument(raw json.RawMessage, legacy bool) (ArgumentValue, bool) {
	var probe struct {
		Name        string `json:"name"`
		TextValue   string `json:"textValue"`
		RawText     string `json:"rawText"`
		TextValueV1 string `json:"text_value"`
		RawTextV1   string `json:"raw_text"`
		BoolValue   *bool  `json:"boolValue"`
		BoolValueV1 *bool  `json:"bool_value"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Name == "" {
		return ArgumentValue{}, false
	}

	text := probe.TextValue
	rawText := probe.RawText
	boolVal := probe.BoolValue
	if legacy {
		text = probe.TextValueV1
		rawText = probe.RawTextV1
		boolVal = probe.BoolValueV1
	}
	if text == "" {
		text = rawText
	}

	// A bare boolean (e.g. the PERMISSION grant flag) surfaces as text so
	// simple callers can compare against "true"/"false"; the raw object is
	// kept alongside for structured access.
	if boolVal != nil {
		return ArgumentValue{Name: probe.Name, Text: strconv.FormatBool(*boolVal), Raw: raw}, true
	}
	if text != "" && onlyTextFields(raw, legacy) {
		return ArgumentValue{Name: probe.Name, Text: text}, true
	}
	return ArgumentValue{Name: probe.Name, Text: text, Raw: raw}, true
}

// onlyTextFields reports whether the argument object carries nothing beyond
// name and text fields, i.e. it is a plain text argument.
func onlyTextFields(raw json.RawMessage, legacy bool) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	allowed := map[string]bool{"name": true, "textValue": true, "rawText": true}
	if legacy {
		allowed = map[string]bool{"name": true, "text_value": true, "raw_text": true}
	}
	for k := range fields {
		if !allowed[k] {
			return false
		}
	}
	return true
}
