package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const openAITimeout = 15 * time.Second

var ErrNoAPIKey = fmt.Errorf("openai: api key not configured")

// OpenAIModel talks to the Chat Completions API.
type OpenAIModel struct {
	client openai.Client
	apiKey string
	model  string
}

func NewOpenAIModel(apiKey, model string) *OpenAIModel {
	apiKey = strings.TrimSpace(apiKey)
	return &OpenAIModel{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		apiKey: apiKey,
		model:  strings.TrimSpace(model),
	}
}

func (m *OpenAIModel) Generate(ctx context.Context, message, conversationContext string) (string, error) {
	if m.apiKey == "" {
		return "", ErrNoAPIKey
	}
	ctx, cancel := context.WithTimeout(ctx, openAITimeout)
	defer cancel()

	model := m.model
	if model == "" {
		model = "gpt-4o-mini"
	}

	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(personaPrompt + conversationContext),
			openai.UserMessage(message),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("openai: empty response")
	}
	return reply, nil
}
