package assistant

// OptionItem is one selectable entry of a list or carousel. The key comes
// back as the OPTION argument when the user picks the item; synonyms are
// matched against voice input.
type OptionItem struct {
	key         string
	synonyms    []string
	title       string
	description string
	image       *Image
	built       bool
}

// NewOptionItem starts an option item draft with its selection key and
// display title.
func NewOptionItem(key, title string) *OptionItem {
	return &OptionItem{key: key, title: title}
}

// AddSynonyms appends voice-matching synonyms.
func (o *OptionItem) AddSynonyms(synonyms ...string) *OptionItem {
	if o.built {
		return o
	}
	o.synonyms = append(o.synonyms, synonyms...)
	return o
}

func (o *OptionItem) SetDescription(description string) *OptionItem {
	if o.built {
		return o
	}
	o.description = description
	return o
}

func (o *OptionItem) SetImage(url, accessibilityText string) *OptionItem {
	if o.built {
		return o
	}
	o.image = &Image{URL: url, AccessibilityText: accessibilityText}
	return o
}

// Key returns the selection key.
func (o *OptionItem) Key() string { return o.key }

// Build validates required fields.
func (o *OptionItem) Build() (*OptionItem, error) {
	if o.key == "" {
		return nil, invalidShape("optionItem.key", "must not be empty")
	}
	if o.title == "" {
		return nil, invalidShape("optionItem.title", "must not be empty")
	}
	o.built = true
	return o, nil
}

// List is a vertical selection list of option items.
type List struct {
	title string
	items []*OptionItem
	built bool
}

// NewList starts a list draft. The title may be empty.
func NewList(title string) *List {
	return &List{title: title}
}

// AddItem appends an option item. Key uniqueness is checked at Build, not
// here.
func (l *List) AddItem(item *OptionItem) *List {
	if l.built {
		return l
	}
	l.items = append(l.items, item)
	return l
}

// Build validates the list: 2-30 items, each item valid, keys unique.
func (l *List) Build() (*List, error) {
	if err := validateOptions(l.items, "list"); err != nil {
		return nil, err
	}
	l.built = true
	return l, nil
}

// Carousel is a horizontally scrollable selection of option items.
type Carousel struct {
	items []*OptionItem
	built bool
}

// NewCarousel starts a carousel draft.
func NewCarousel() *Carousel {
	return &Carousel{}
}

// AddItem appends an option item. Key uniqueness is checked at Build.
func (c *Carousel) AddItem(item *OptionItem) *Carousel {
	if c.built {
		return c
	}
	c.items = append(c.items, item)
	return c
}

// Build validates the carousel: 2-10 items, each item valid, keys unique.
func (c *Carousel) Build() (*Carousel, error) {
	if err := validateOptions(c.items, "carousel"); err != nil {
		return nil, err
	}
	if len(c.items) > 10 {
		return nil, invalidShape("carousel.items", "at most 10 items")
	}
	c.built = true
	return c, nil
}

func validateOptions(items []*OptionItem, field string) error {
	if len(items) < 2 {
		return invalidShape(field+".items", "at least 2 items are required")
	}
	if len(items) > 30 {
		return invalidShape(field+".items", "at most 30 items")
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if _, err := it.Build(); err != nil {
			return err
		}
		if seen[it.key] {
			return invalidShape(field+".items", "duplicate option key "+it.key)
		}
		seen[it.key] = true
	}
	return nil
}
