package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"vacationplanner/internal/config"
	"vacationplanner/internal/models"
	"vacationplanner/internal/service/assistant"
)

const (
	ProviderOpenAI    = "openai"
	ProviderClaude    = "claude"
	ProviderGemini    = "gemini"
	ProviderWorkersAI = "workers-ai"

	defaultClaudeMaxTokens = 1024
)

var (
	_ assistant.Generator = (*ChatModelGenerator)(nil)
	_ assistant.Generator = (*CompatibleGenerator)(nil)
)

// NewGenerator builds the generator for the configured provider.
func NewGenerator(ctx context.Context, provider string, provCfg config.ProviderConfig) (assistant.Generator, error) {
	if provCfg.Model == "" {
		return nil, fmt.Errorf("provider %s: model is required", provider)
	}
	var (
		chatModel model.ToolCallingChatModel
		err       error
	)
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: provCfg.BaseURL,
			Model:   provCfg.Model,
			APIKey:  provCfg.APIKey,
		})
	case ProviderGemini:
		client, cerr := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: provCfg.APIKey,
		})
		if cerr != nil {
			return nil, fmt.Errorf("create gemini client: %w", cerr)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  provCfg.Model,
		})
	case ProviderClaude:
		var baseURLPtr *string
		if provCfg.BaseURL != "" {
			baseURLPtr = &provCfg.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    provCfg.APIKey,
			Model:     provCfg.Model,
			BaseURL:   baseURLPtr,
			MaxTokens: defaultClaudeMaxTokens,
		})
	case ProviderWorkersAI:
		gen, err := newCompatibleGenerator(provCfg)
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("invalid provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", provider, err)
	}
	return NewChatModelGenerator(chatModel), nil
}

// ChatModelGenerator adapts an eino chat model to assistant.Generator.
type ChatModelGenerator struct {
	chatModel model.BaseChatModel
}

func NewChatModelGenerator(chatModel model.BaseChatModel) *ChatModelGenerator {
	return &ChatModelGenerator{chatModel: chatModel}
}

func (g *ChatModelGenerator) Generate(ctx context.Context, messages []models.Message, maxTokens int, temperature float32) (string, error) {
	if g == nil || g.chatModel == nil {
		return "", errors.New("chat model not initialized")
	}
	opts := []model.Option{model.WithTemperature(temperature)}
	if maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(maxTokens))
	}
	resp, err := g.chatModel.Generate(ctx, convertMessages(messages), opts...)
	if err != nil {
		return "", fmt.Errorf("chat model generate: %w", err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.Content, nil
}

func convertMessages(messages []models.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		var role schema.RoleType
		switch msg.Role {
		case models.RoleAssistant:
			role = schema.Assistant
		case models.RoleSystem:
			role = schema.System
		default:
			role = schema.User
		}
		out = append(out, &schema.Message{
			Role:    role,
			Content: msg.Content,
		})
	}
	return out
}
