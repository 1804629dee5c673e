package assistant

import "encoding/json"

// Envelope is a finalized turn response, ready to be serialized for either
// API version. Exactly one of the final fields (Final/Rich-as-final) or the
// prompt fields is populated, discriminated by ExpectUserResponse; a final
// envelope never carries an expected intent.
type Envelope struct {
	ExpectUserResponse bool
	DialogState        json.RawMessage
	Prompt             *InputPrompt
	Rich               *RichResponse
	Final              *SimpleResponse
	OrderUpdate        *OrderUpdate
	Discarded          int

	expected *expectedIntent
}

// ExpectedIntent returns the expected-intent tag attached to a non-final
// envelope, or IntentUnknown when the envelope only expects free text.
func (e *Envelope) ExpectedIntent() string {
	if e.expected == nil {
		return IntentUnknown
	}
	return e.expected.intent
}

// MarshalFor serializes the envelope into the exact JSON shape of the given
// API version. The dialog state blob is emitted verbatim as the
// conversation token.
func (e *Envelope) MarshalFor(v APIVersion) ([]byte, error) {
	if v == V1 {
		return e.marshalV1()
	}
	return e.marshalV2()
}

// V2 wire shapes (camelCase).

type v2Response struct {
	ConversationToken  string            `json:"conversationToken,omitempty"`
	ExpectUserResponse bool              `json:"expectUserResponse"`
	ExpectedInputs     []v2ExpectedInput `json:"expectedInputs,omitempty"`
	FinalResponse      *v2FinalResponse  `json:"finalResponse,omitempty"`
}

type v2ExpectedInput struct {
	InputPrompt     *v2InputPrompt     `json:"inputPrompt,omitempty"`
	PossibleIntents []v2ExpectedIntent `json:"possibleIntents,omitempty"`
}

type v2InputPrompt struct {
	RichInitialPrompt *v2RichResponse  `json:"richInitialPrompt,omitempty"`
	InitialPrompts    []v2SpeechPrompt `json:"initialPrompts,omitempty"`
	NoInputPrompts    []v2SpeechPrompt `json:"noInputPrompts,omitempty"`
}

type v2SpeechPrompt struct {
	TextToSpeech string `json:"textToSpeech,omitempty"`
	SSML         string `json:"ssml,omitempty"`
}

type v2ExpectedIntent struct {
	Intent         string         `json:"intent"`
	InputValueData map[string]any `json:"inputValueData,omitempty"`
}

type v2FinalResponse struct {
	SpeechResponse *v2SpeechPrompt `json:"speechResponse,omitempty"`
	RichResponse   *v2RichResponse `json:"richResponse,omitempty"`
}

type v2RichResponse struct {
	Items             []map[string]any `json:"items"`
	Suggestions       []v2Suggestion   `json:"suggestions,omitempty"`
	LinkOutSuggestion *v2LinkOut       `json:"linkOutSuggestion,omitempty"`
}

type v2Suggestion struct {
	Title string `json:"title"`
}

type v2LinkOut struct {
	DestinationName string `json:"destinationName"`
	URL             string `json:"url"`
}

func (e *Envelope) marshalV2() ([]byte, error) {
	out := v2Response{
		ConversationToken:  string(e.DialogState),
		ExpectUserResponse: e.ExpectUserResponse,
	}

	if !e.ExpectUserResponse {
		out.FinalResponse = &v2FinalResponse{}
		switch {
		case e.OrderUpdate != nil:
			rich := &v2RichResponse{}
			rich.Items = append(rich.Items,
				map[string]any{"simpleResponse": speechV2(e.Final)},
				map[string]any{"structuredResponse": map[string]any{"orderUpdate": orderUpdateV2(e.OrderUpdate)}},
			)
			out.FinalResponse.RichResponse = rich
		case e.Rich != nil:
			out.FinalResponse.RichResponse = richV2(e.Rich)
		default:
			out.FinalResponse.SpeechResponse = speechV2(e.Final)
		}
		return json.Marshal(out)
	}

	input := v2ExpectedInput{InputPrompt: &v2InputPrompt{}}
	if e.Rich != nil {
		input.InputPrompt.RichInitialPrompt = richV2(e.Rich)
	} else if e.Prompt != nil {
		input.InputPrompt.InitialPrompts = []v2SpeechPrompt{promptSpeechV2(e.Prompt, e.Prompt.initial)}
	}
	if e.Prompt != nil {
		for _, n := range e.Prompt.noInputs {
			input.InputPrompt.NoInputPrompts = append(input.InputPrompt.NoInputPrompts, promptSpeechV2(e.Prompt, n))
		}
	}
	input.PossibleIntents = []v2ExpectedIntent{expectedIntentV2(e.expected)}
	out.ExpectedInputs = []v2ExpectedInput{input}
	return json.Marshal(out)
}

func promptSpeechV2(p *InputPrompt, text string) v2SpeechPrompt {
	if p.isSSML {
		return v2SpeechPrompt{SSML: text}
	}
	return v2SpeechPrompt{TextToSpeech: text}
}

func speechV2(s *SimpleResponse) *v2SpeechPrompt {
	if s == nil {
		return nil
	}
	return &v2SpeechPrompt{TextToSpeech: s.TextToSpeech, SSML: s.SSML}
}

func simpleV2(s *SimpleResponse) map[string]any {
	m := map[string]any{}
	if s.SSML != "" {
		m["ssml"] = s.SSML
	} else {
		m["textToSpeech"] = s.TextToSpeech
	}
	if s.DisplayText != "" {
		m["displayText"] = s.DisplayText
	}
	return m
}

func richV2(r *RichResponse) *v2RichResponse {
	out := &v2RichResponse{}
	for _, it := range r.items {
		switch {
		case it.simple != nil:
			out.Items = append(out.Items, map[string]any{"simpleResponse": simpleV2(it.simple)})
		case it.card != nil:
			out.Items = append(out.Items, map[string]any{"basicCard": cardV2(it.card)})
		case it.list != nil:
			out.Items = append(out.Items, map[string]any{"listSelect": listV2(it.list)})
		case it.carousel != nil:
			out.Items = append(out.Items, map[string]any{"carouselSelect": carouselV2(it.carousel)})
		case it.orderUpdate != nil:
			out.Items = append(out.Items, map[string]any{"structuredResponse": map[string]any{"orderUpdate": orderUpdateV2(it.orderUpdate)}})
		}
	}
	for _, s := range r.suggestions {
		out.Suggestions = append(out.Suggestions, v2Suggestion{Title: s})
	}
	if r.linkOut != nil {
		out.LinkOutSuggestion = &v2LinkOut{DestinationName: r.linkOut.Name, URL: r.linkOut.URL}
	}
	return out
}

func cardV2(c *BasicCard) map[string]any {
	m := map[string]any{}
	if c.title != "" {
		m["title"] = c.title
	}
	if c.subtitle != "" {
		m["subtitle"] = c.subtitle
	}
	if c.formattedText != "" {
		m["formattedText"] = c.formattedText
	}
	if c.image != nil {
		m["image"] = imageV2(c.image)
	}
	if len(c.buttons) > 0 {
		buttons := make([]map[string]any, 0, len(c.buttons))
		for _, b := range c.buttons {
			buttons = append(buttons, map[string]any{
				"title":         b.Title,
				"openUrlAction": map[string]any{"url": b.URL},
			})
		}
		m["buttons"] = buttons
	}
	return m
}

func imageV2(img *Image) map[string]any {
	return map[string]any{"url": img.URL, "accessibilityText": img.AccessibilityText}
}

func listV2(l *List) map[string]any {
	m := map[string]any{"items": optionItemsV2(l.items)}
	if l.title != "" {
		m["title"] = l.title
	}
	return m
}

func carouselV2(c *Carousel) map[string]any {
	return map[string]any{"items": optionItemsV2(c.items)}
}

func optionItemsV2(items []*OptionItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		m := map[string]any{
			"optionInfo": map[string]any{"key": it.key, "synonyms": it.synonyms},
			"title":      it.title,
		}
		if it.description != "" {
			m["description"] = it.description
		}
		if it.image != nil {
			m["image"] = imageV2(it.image)
		}
		out = append(out, m)
	}
	return out
}

func expectedIntentV2(exp *expectedIntent) v2ExpectedIntent {
	if exp == nil {
		return v2ExpectedIntent{Intent: IntentText}
	}
	out := v2ExpectedIntent{Intent: exp.intent}
	switch {
	case exp.permission != nil:
		out.InputValueData = map[string]any{
			"@type":       typePermissionSpec,
			"optContext":  exp.permission.context,
			"permissions": exp.permission.permissions,
		}
	case exp.list != nil:
		out.InputValueData = map[string]any{
			"@type":      typeOptionSpec,
			"listSelect": listV2(exp.list),
		}
	case exp.carousel != nil:
		out.InputValueData = map[string]any{
			"@type":          typeOptionSpec,
			"carouselSelect": carouselV2(exp.carousel),
		}
	case exp.intent == IntentTransactionRequirements:
		data := map[string]any{"@type": typeTransactionReqSpec}
		if exp.orderOptions != nil {
			data["orderOptions"] = orderOptionsV2(exp.orderOptions)
		}
		out.InputValueData = data
	case exp.order != nil:
		data := map[string]any{
			"@type":         typeTransactionDecSpec,
			"proposedOrder": orderV2(exp.order),
		}
		if exp.orderOptions != nil {
			data["orderOptions"] = orderOptionsV2(exp.orderOptions)
		}
		out.InputValueData = data
	case exp.intent == IntentConfirmation:
		out.InputValueData = map[string]any{
			"@type": typeConfirmationSpec,
			"dialogSpec": map[string]any{
				"requestConfirmationText": exp.confirmationText,
			},
		}
	case exp.dateTime != nil:
		dialog := map[string]any{"requestDatetimeText": exp.dateTime.requestText}
		if exp.dateTime.requestDateText != "" {
			dialog["requestDateText"] = exp.dateTime.requestDateText
		}
		if exp.dateTime.requestTimeText != "" {
			dialog["requestTimeText"] = exp.dateTime.requestTimeText
		}
		out.InputValueData = map[string]any{
			"@type":      typeDateTimeSpec,
			"dialogSpec": dialog,
		}
	case exp.intent == IntentSignIn:
		out.InputValueData = map[string]any{"@type": typeSignInSpec}
	case exp.intent == IntentDeliveryAddress:
		out.InputValueData = map[string]any{
			"@type":          typeDeliveryAddressSpec,
			"addressOptions": map[string]any{"reason": exp.deliveryReason},
		}
	}
	return out
}

func orderOptionsV2(o *OrderOptions) map[string]any {
	return map[string]any{"requestDeliveryAddress": o.RequestDeliveryAddress}
}

func orderV2(o *Order) map[string]any {
	m := map[string]any{"id": o.id, "cart": cartV2(o.cart)}
	if o.totalPrice != nil {
		m["totalPrice"] = priceV2(o.totalPrice)
	}
	return m
}

func cartV2(c *Cart) map[string]any {
	items := make([]map[string]any, 0, len(c.lineItems))
	for _, li := range c.lineItems {
		item := map[string]any{
			"id":       li.id,
			"name":     li.name,
			"quantity": li.quantity,
		}
		if li.itemType != "" {
			item["type"] = li.itemType
		}
		if li.price != nil {
			item["price"] = priceV2(li.price)
		}
		items = append(items, item)
	}
	m := map[string]any{"lineItems": items}
	if c.merchant != nil {
		m["merchant"] = map[string]any{"id": c.merchant.ID, "name": c.merchant.Name}
	}
	if c.notes != "" {
		m["notes"] = c.notes
	}
	return m
}

func priceV2(p *Price) map[string]any {
	return map[string]any{
		"type": p.Type,
		"amount": map[string]any{
			"currencyCode": p.CurrencyCode,
			"units":        p.Units,
			"nanos":        p.Nanos,
		},
	}
}

func orderUpdateV2(u *OrderUpdate) map[string]any {
	return map[string]any{
		"actionOrderId": u.orderID,
		"orderState": map[string]any{
			"state": u.state,
			"label": u.label,
		},
	}
}
