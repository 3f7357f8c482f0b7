// Package llm provides a provider abstraction over LLM backends.
// Embedding and chat may use different providers.
package llm

import (
	"context"
	"fmt"
	"sync"
)

// EmbeddingProvider generates vector embeddings.
type EmbeddingProvider interface {
	// Embed generates embeddings for multiple texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for one text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Name returns the provider name.
	Name() string
}

// ChatProvider generates text.
type ChatProvider interface {
	// Chat performs a multi-turn conversation.
	Chat(ctx context.Context, messages []Message) (string, error)

	// Generate produces text for a single prompt.
	Generate(ctx context.Context, prompt string, systemPrompt string) (string, error)

	// Name returns the provider name.
	Name() string
}

// Message is one conversation message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role is a message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Provider supports both embedding and chat.
type Provider interface {
	EmbeddingProvider
	ChatProvider
}

// ProviderFactory builds a Provider from a config map.
type ProviderFactory func(config map[string]any) (Provider, error)

var registry = &providerRegistry{
	providers: make(map[string]ProviderFactory),
}

type providerRegistry struct {
	mu        sync.RWMutex
	providers map[string]ProviderFactory
}

// RegisterProvider registers a provider factory under a name.
func RegisterProvider(name string, factory ProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.providers[name] = factory
}

// NewProvider creates a provider instance by name.
func NewProvider(name string, config map[string]any) (Provider, error) {
	registry.mu.RLock()
	factory, ok := registry.providers[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}

	return factory(config)
}

// NewEmbeddingProvider creates an embedding provider by name.
func NewEmbeddingProvider(name string, config map[string]any) (EmbeddingProvider, error) {
	return NewProvider(name, config)
}

// NewChatProvider creates a chat provider by name.
func NewChatProvider(name string, config map[string]any) (ChatProvider, error) {
	return NewProvider(name, config)
}

// ListProviders lists registered provider names.
func ListProviders() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.providers))
	for name := range registry.providers {
		names = append(names, name)
	}
	return names
}
