// Package genai is the client for the response generation service.
package genai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	apierrors "github.com/pratham/chatterm/internal/errors"
	"github.com/pratham/chatterm/internal/models"
)

// Generator produces a reply for a user utterance, optionally consulting the
// prior conversation. The call blocks until the service answers or fails.
type Generator struct {
	client *openai.Client
	model  string
}

// NewGenerator creates a generator against an OpenAI-compatible chat
// completion endpoint. baseURL may point at any compatible server (ollama,
// llama.cpp, a hosted API); apiKey may be empty for local servers.
func NewGenerator(baseURL, apiKey, model string) *Generator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Generator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Generate returns the raw reply text for userText. history is the
// conversation so far; unresolved placeholders are skipped so a failed prior
// turn never feeds the sentinel back into the prompt.
func (g *Generator) Generate(ctx context.Context, history []models.Message, userText string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: buildMessages(history, userText),
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", apierrors.NewGatewayError("generate", "chat/completions", 0, err.Error())
	}

	if len(resp.Choices) == 0 {
		return "", apierrors.NewGatewayError("generate", "chat/completions", 0, "no choices in response")
	}

	return resp.Choices[0].Message.Content, nil
}

func buildMessages(history []models.Message, userText string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)

	for _, m := range history {
		if m.IsPlaceholder() {
			continue
		}
		role := openai.ChatMessageRoleUser
		if m.Sender == models.SenderBot {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})
}
