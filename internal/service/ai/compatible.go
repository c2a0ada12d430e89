package ai

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"vacationplanner/internal/config"
	"vacationplanner/internal/models"
)

// CompatibleGenerator talks to OpenAI-compatible chat endpoints such as
// Cloudflare Workers AI (base URL .../accounts/<id>/ai/v1).
type CompatibleGenerator struct {
	client *goopenai.Client
	model  string
}

func newCompatibleGenerator(provCfg config.ProviderConfig) (*CompatibleGenerator, error) {
	if provCfg.BaseURL == "" {
		return nil, errors.New("workers-ai provider requires base_url")
	}
	clientCfg := goopenai.DefaultConfig(provCfg.APIKey)
	clientCfg.BaseURL = provCfg.BaseURL
	return &CompatibleGenerator{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  provCfg.Model,
	}, nil
}

func (g *CompatibleGenerator) Generate(ctx context.Context, messages []models.Message, maxTokens int, temperature float32) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    make([]goopenai.ChatCompletionMessage, 0, len(messages)),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	for _, msg := range messages {
		role := goopenai.ChatMessageRoleUser
		switch msg.Role {
		case models.RoleAssistant:
			role = goopenai.ChatMessageRoleAssistant
		case models.RoleSystem:
			role = goopenai.ChatMessageRoleSystem
		}
		req.Messages = append(req.Messages, goopenai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
