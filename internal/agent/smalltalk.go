package agent

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"gopkg.in/yaml.v3"

	"actionskit/internal/store"
)

// PersonaSpec is the YAML persona driving the small-talk fallback.
type PersonaSpec struct {
	System string `yaml:"system"`
	Style  struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
}

// SmallTalk answers turns the keyword heuristics could not classify, using
// the persona spec and the recent transcript for context.
type SmallTalk struct {
	spec   PersonaSpec
	client *openai.Client
	model  string
}

func LoadSmallTalk(path string, client *openai.Client, model string) (*SmallTalk, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec PersonaSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, err
	}
	return &SmallTalk{spec: spec, client: client, model: model}, nil
}

// Reply produces a single conversational reply. The transcript is embedded
// into one system message to avoid role ambiguity; the reply must stay a
// question or hand-off so the conversation remains open.
func (s *SmallTalk) Reply(ctx context.Context, transcript []store.Message, query string) (string, error) {
	var b strings.Builder
	b.WriteString(s.spec.System)
	b.WriteString("\n\nTranscript (role: content):\n")
	for _, m := range transcript {
		role := strings.ToUpper(m.Role)
		if role == "" {
			role = "USER"
		}
		content := strings.TrimSpace(m.Content)
		content = strings.ReplaceAll(content, "\n\n", "\n")
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(content)
		b.WriteString("\n")
	}
	b.WriteString("USER: ")
	b.WriteString(strings.TrimSpace(query))
	b.WriteString("\n\nInstructions: Reply with one short spoken sentence and keep the conversation going. Output plain text only.\n")

	temp := s.spec.Style.Temperature
	if temp <= 0 {
		temp = 0.4
	}
	maxTok := s.spec.Style.MaxTokens
	if maxTok <= 0 {
		maxTok = 120
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: temp,
		MaxTokens:   maxTok,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: b.String()},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices")
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("empty reply")
	}
	return reply, nil
}
