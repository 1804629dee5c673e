package assistant

import "encoding/json"

// Legacy V1 wire shapes (proto2-style snake_case). V1 predates rich
// responses and most specialized intents: rich content degrades to its first
// speech item, and value specs other than permission are omitted, keeping
// only the intent id.

type v1Response struct {
	ConversationToken  string            `json:"conversation_token,omitempty"`
	ExpectUserResponse bool              `json:"expect_user_response"`
	ExpectedInputs     []v1ExpectedInput `json:"expected_inputs,omitempty"`
	FinalResponse      *v1FinalResponse  `json:"final_response,omitempty"`
}

type v1ExpectedInput struct {
	InputPrompt     *v1InputPrompt     `json:"input_prompt,omitempty"`
	PossibleIntents []v1ExpectedIntent `json:"possible_intents,omitempty"`
}

type v1InputPrompt struct {
	InitialPrompts []v1SpeechPrompt `json:"initial_prompts,omitempty"`
	NoInputPrompts []v1SpeechPrompt `json:"no_input_prompts,omitempty"`
}

type v1SpeechPrompt struct {
	TextToSpeech string `json:"text_to_speech,omitempty"`
	SSML         string `json:"ssml,omitempty"`
}

type v1ExpectedIntent struct {
	Intent         string         `json:"intent"`
	InputValueSpec map[string]any `json:"input_value_spec,omitempty"`
}

type v1FinalResponse struct {
	SpeechResponse *v1SpeechPrompt `json:"speech_response,omitempty"`
}

func (e *Envelope) marshalV1() ([]byte, error) {
	out := v1Response{
		ConversationToken:  string(e.DialogState),
		ExpectUserResponse: e.ExpectUserResponse,
	}

	if !e.ExpectUserResponse {
		speech := e.Final
		if speech == nil && e.Rich != nil {
			speech = e.Rich.firstSpeech()
		}
		if speech != nil {
			out.FinalResponse = &v1FinalResponse{
				SpeechResponse: &v1SpeechPrompt{
					TextToSpeech: speech.TextToSpeech,
					SSML:         speech.SSML,
				},
			}
		}
		return json.Marshal(out)
	}

	input := v1ExpectedInput{InputPrompt: &v1InputPrompt{}}
	if e.Rich != nil {
		if speech := e.Rich.firstSpeech(); speech != nil {
			input.InputPrompt.InitialPrompts = []v1SpeechPrompt{{
				TextToSpeech: speech.TextToSpeech,
				SSML:         speech.SSML,
			}}
		}
	} else if e.Prompt != nil {
		input.InputPrompt.InitialPrompts = []v1SpeechPrompt{promptSpeechV1(e.Prompt, e.Prompt.initial)}
	}
	if e.Prompt != nil {
		for _, n := range e.Prompt.noInputs {
			input.InputPrompt.NoInputPrompts = append(input.InputPrompt.NoInputPrompts, promptSpeechV1(e.Prompt, n))
		}
	}
	input.PossibleIntents = []v1ExpectedIntent{expectedIntentV1(e.expected)}
	out.ExpectedInputs = []v1ExpectedInput{input}
	return json.Marshal(out)
}

func promptSpeechV1(p *InputPrompt, text string) v1SpeechPrompt {
	if p.isSSML {
		return v1SpeechPrompt{SSML: text}
	}
	return v1SpeechPrompt{TextToSpeech: text}
}

func expectedIntentV1(exp *expectedIntent) v1ExpectedIntent {
	if exp == nil {
		return v1ExpectedIntent{Intent: v1IntentText}
	}
	out := v1ExpectedIntent{Intent: toV1Intent(exp.intent)}
	if exp.permission != nil {
		out.InputValueSpec = map[string]any{
			"permission_value_spec": map[string]any{
				"opt_context": exp.permission.context,
				"permissions": exp.permission.permissions,
			},
		}
	}
	return out
}
