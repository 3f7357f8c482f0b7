// Package openai provides the OpenAI LLM provider.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/lingora-ai/lingora/pkg/llm"
)

const ProviderName = "openai"

func init() {
	llm.RegisterProvider(ProviderName, NewProvider)
}

// Config is the OpenAI provider configuration.
type Config struct {
	BaseURL    string        `json:"base_url" mapstructure:"base_url"`
	APIKey     string        `json:"api_key" mapstructure:"api_key"`
	EmbedModel string        `json:"embed_model" mapstructure:"embed_model"`
	ChatModel  string        `json:"chat_model" mapstructure:"chat_model"`
	Timeout    time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		EmbedModel: "text-embedding-3-small",
		ChatModel:  "gpt-4o-mini",
		Timeout:    120 * time.Second,
	}
}

// Provider is the OpenAI provider implementation.
type Provider struct {
	config *Config
	client openaisdk.Client
}

// NewProvider creates an OpenAI provider from a config map.
func NewProvider(configMap map[string]any) (llm.Provider, error) {
	cfg := DefaultConfig()

	if v, ok := configMap["base_url"].(string); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := configMap["api_key"].(string); ok && v != "" {
		cfg.APIKey = v
	}
	if v, ok := configMap["embed_model"].(string); ok && v != "" {
		cfg.EmbedModel = v
	}
	if v, ok := configMap["chat_model"].(string); ok && v != "" {
		cfg.ChatModel = v
	}
	if v, ok := configMap["timeout"].(time.Duration); ok && v > 0 {
		cfg.Timeout = v
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: api_key is required")
	}

	return NewProviderWithConfig(cfg), nil
}

// NewProviderWithConfig creates an OpenAI provider from structured config.
func NewProviderWithConfig(cfg *Config) *Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{
		config: cfg,
		client: openaisdk.NewClient(opts...),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return ProviderName
}

// Embed generates embeddings for multiple texts.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := p.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openaisdk.EmbeddingModel(p.config.EmbedModel),
	})
	if err != nil {
		return nil, fmt.Errorf("openai: embeddings request: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// EmbedSingle generates an embedding for one text.
func (p *Provider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// Chat performs a multi-turn conversation.
func (p *Provider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(p.config.ChatModel),
	}
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			params.Messages = append(params.Messages, openaisdk.SystemMessage(m.Content))
		case llm.RoleAssistant:
			params.Messages = append(params.Messages, openaisdk.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openaisdk.UserMessage(m.Content))
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Generate produces text for a single prompt.
func (p *Provider) Generate(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	messages := make([]llm.Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: prompt})
	return p.Chat(ctx, messages)
}

var _ llm.Provider = (*Provider)(nil)
