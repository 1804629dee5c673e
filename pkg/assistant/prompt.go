package assistant

import "strconv"

// InputPrompt is the initial prompt for a non-final turn plus up to three
// no-input reprompts. The platform plays the reprompts, in order, when the
// user stays silent.
type InputPrompt struct {
	isSSML   bool
	initial  string
	noInputs []string
	built    bool
}

// maxNoInputPrompts is the platform cap on no-input reprompts per turn.
const maxNoInputPrompts = 3

// BuildInputPrompt wraps initial either as literal text or, when isSSML is
// set, as a markup-speech string, together with 0-3 no-input reprompts.
// Supplying more than three reprompts is a validation error, never a silent
// truncation.
func BuildInputPrompt(isSSML bool, initial string, noInputs []string) (*InputPrompt, error) {
	p := &InputPrompt{isSSML: isSSML, initial: initial, noInputs: append([]string(nil), noInputs...)}
	return p.Build()
}

// NewInputPrompt starts a prompt draft for chained construction.
func NewInputPrompt(initial string) *InputPrompt {
	return &InputPrompt{initial: initial}
}

// SSML marks the prompt strings as markup speech.
func (p *InputPrompt) SSML() *InputPrompt {
	if p.built {
		return p
	}
	p.isSSML = true
	return p
}

// AddNoInput appends a no-input reprompt. The cap is checked at Build.
func (p *InputPrompt) AddNoInput(prompt string) *InputPrompt {
	if p.built {
		return p
	}
	p.noInputs = append(p.noInputs, prompt)
	return p
}

// Build validates the draft and freezes it.
func (p *InputPrompt) Build() (*InputPrompt, error) {
	if p.initial == "" {
		return nil, invalidShape("initialPrompt", "must not be empty")
	}
	if len(p.noInputs) > maxNoInputPrompts {
		return nil, invalidShape("noInputs", "at most 3 no-input prompts are allowed")
	}
	for i, n := range p.noInputs {
		if n == "" {
			return nil, invalidShape("noInputs", "prompt "+strconv.Itoa(i)+" is empty")
		}
	}
	p.built = true
	return p, nil
}

// NoInputs returns a copy of the reprompt list.
func (p *InputPrompt) NoInputs() []string {
	return append([]string(nil), p.noInputs...)
}

// Initial returns the initial prompt string.
func (p *InputPrompt) Initial() string { return p.initial }

// IsSSML reports whether the prompt strings are markup speech.
func (p *InputPrompt) IsSSML() bool { return p.isSSML }
