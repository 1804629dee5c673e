package assistant

// SimpleResponse is one spoken (and optionally displayed) chunk of a rich
// response. Either TextToSpeech or SSML is set, never both.
type SimpleResponse struct {
	TextToSpeech string
	SSML         string
	DisplayText  string
}

// LinkOutSuggestion points the user at an external app or site.
type LinkOutSuggestion struct {
	Name string
	URL  string
}

// Image references display artwork with its accessibility text.
type Image struct {
	URL               string
	AccessibilityText string
}

// Button is a tappable link on a basic card.
type Button struct {
	Title string
	URL   string
}

// richItem is one ordered entry of a rich response. Exactly one field is
// set.
type richItem struct {
	simple      *SimpleResponse
	card        *BasicCard
	list        *List
	carousel    *Carousel
	orderUpdate *OrderUpdate
}

func (it richItem) structured() bool {
	return it.card != nil || it.list != nil || it.carousel != nil
}

// RichResponse is an ordered sequence of speech items interleaved with at
// most one structured content item (basic card, list or carousel), plus
// optional suggestion chips. Items render in insertion order.
type RichResponse struct {
	items       []richItem
	suggestions []string
	linkOut     *LinkOutSuggestion
	built       bool
}

// NewRichResponse starts an empty rich response draft.
func NewRichResponse() *RichResponse {
	return &RichResponse{}
}

// AddSimple appends a spoken text item.
func (r *RichResponse) AddSimple(textToSpeech string) *RichResponse {
	if r.built {
		return r
	}
	r.items = append(r.items, richItem{simple: &SimpleResponse{TextToSpeech: textToSpeech}})
	return r
}

// AddSSML appends a markup-speech item.
func (r *RichResponse) AddSSML(ssml string) *RichResponse {
	if r.built {
		return r
	}
	r.items = append(r.items, richItem{simple: &SimpleResponse{SSML: ssml}})
	return r
}

// AddSimpleResponse appends a speech item with explicit display text.
func (r *RichResponse) AddSimpleResponse(s SimpleResponse) *RichResponse {
	if r.built {
		return r
	}
	s2 := s
	r.items = append(r.items, richItem{simple: &s2})
	return r
}

// AddBasicCard appends the card as the structured content item.
func (r *RichResponse) AddBasicCard(c *BasicCard) *RichResponse {
	if r.built {
		return r
	}
	r.items = append(r.items, richItem{card: c})
	return r
}

// AddList appends the list as the structured content item.
func (r *RichResponse) AddList(l *List) *RichResponse {
	if r.built {
		return r
	}
	r.items = append(r.items, richItem{list: l})
	return r
}

// AddCarousel appends the carousel as the structured content item.
func (r *RichResponse) AddCarousel(c *Carousel) *RichResponse {
	if r.built {
		return r
	}
	r.items = append(r.items, richItem{carousel: c})
	return r
}

// AddSuggestions appends suggestion chips in order.
func (r *RichResponse) AddSuggestions(titles ...string) *RichResponse {
	if r.built {
		return r
	}
	r.suggestions = append(r.suggestions, titles...)
	return r
}

// SetLinkOutSuggestion sets the single link-out chip.
func (r *RichResponse) SetLinkOutSuggestion(name, url string) *RichResponse {
	if r.built {
		return r
	}
	r.linkOut = &LinkOutSuggestion{Name: name, URL: url}
	return r
}

// Build validates the structural invariants and freezes the response:
// at least one item, a speech item first, and at most one structured
// content item. Nested drafts (cards, lists, carousels) are built too.
func (r *RichResponse) Build() (*RichResponse, error) {
	if len(r.items) == 0 {
		return nil, invalidShape("items", "rich response needs at least one item")
	}
	if r.items[0].simple == nil {
		return nil, invalidShape("items", "first item must be a simple response")
	}
	structured := 0
	for _, it := range r.items {
		if it.simple != nil {
			if it.simple.TextToSpeech == "" && it.simple.SSML == "" {
				return nil, invalidShape("simpleResponse", "speech text is required")
			}
			if it.simple.TextToSpeech != "" && it.simple.SSML != "" {
				return nil, invalidShape("simpleResponse", "textToSpeech and ssml are mutually exclusive")
			}
		}
		if it.structured() {
			structured++
		}
		if it.card != nil {
			if _, err := it.card.Build(); err != nil {
				return nil, err
			}
		}
		if it.list != nil {
			if _, err := it.list.Build(); err != nil {
				return nil, err
			}
		}
		if it.carousel != nil {
			if _, err := it.carousel.Build(); err != nil {
				return nil, err
			}
		}
	}
	if structured > 1 {
		return nil, invalidShape("items", "at most one structured content item per rich response")
	}
	for _, s := range r.suggestions {
		if s == "" {
			return nil, invalidShape("suggestions", "suggestion title must not be empty")
		}
	}
	r.built = true
	return r, nil
}

// hasStructured reports whether a structured content item is present.
func (r *RichResponse) hasStructured() bool {
	for _, it := range r.items {
		if it.structured() {
			return true
		}
	}
	return false
}

// firstSpeech returns the first speech item, for degraded (V1) output.
func (r *RichResponse) firstSpeech() *SimpleResponse {
	for _, it := range r.items {
		if it.simple != nil {
			return it.simple
		}
	}
	return nil
}

// BasicCard is a text card with optional image and link buttons.
type BasicCard struct {
	title         string
	subtitle      string
	formattedText string
	image         *Image
	buttons       []Button
	built         bool
}

// NewBasicCard starts an empty card draft.
func NewBasicCard() *BasicCard {
	return &BasicCard{}
}

func (c *BasicCard) SetTitle(title string) *BasicCard {
	if c.built {
		return c
	}
	c.title = title
	return c
}

func (c *BasicCard) SetSubtitle(subtitle string) *BasicCard {
	if c.built {
		return c
	}
	c.subtitle = subtitle
	return c
}

// SetBodyText sets the card body. Limited markdown is passed through to the
// platform untouched.
func (c *BasicCard) SetBodyText(formattedText string) *BasicCard {
	if c.built {
		return c
	}
	c.formattedText = formattedText
	return c
}

func (c *BasicCard) SetImage(url, accessibilityText string) *BasicCard {
	if c.built {
		return c
	}
	c.image = &Image{URL: url, AccessibilityText: accessibilityText}
	return c
}

func (c *BasicCard) AddButton(title, url string) *BasicCard {
	if c.built {
		return c
	}
	c.buttons = append(c.buttons, Button{Title: title, URL: url})
	return c
}

// Build validates required fields: a card needs body text or an image, and
// an image needs accessibility text.
func (c *BasicCard) Build() (*BasicCard, error) {
	if c.formattedText == "" && c.image == nil {
		return nil, invalidShape("formattedText", "card needs body text or an image")
	}
	if c.image != nil {
		if c.image.URL == "" {
			return nil, invalidShape("image.url", "must not be empty")
		}
		if c.image.AccessibilityText == "" {
			return nil, invalidShape("image.accessibilityText", "must not be empty")
		}
	}
	for _, b := range c.buttons {
		if b.Title == "" || b.URL == "" {
			return nil, invalidShape("buttons", "button needs title and url")
		}
	}
	c.built = true
	return c, nil
}
