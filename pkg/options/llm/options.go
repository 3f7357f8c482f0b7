// Package llm provides LLM provider configuration options.
package llm

import (
	"fmt"
	"time"

	"github.com/lingora-ai/lingora/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions defines the configuration of one LLM provider.
type ProviderOptions struct {
	// Provider is the provider name (ollama, openai).
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL is the API base URL.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey is the API key (required for openai).
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// Model is the model name to use.
	Model string `json:"model" mapstructure:"model"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries is the maximum number of retries.
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`
}

// NewProviderOptions creates default provider options.
func NewProviderOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:   "ollama",
		BaseURL:    "http://localhost:11434",
		Timeout:    120 * time.Second,
		MaxRetries: 2,
	}
}

// NewEmbeddingOptions creates default embedding provider options.
func NewEmbeddingOptions() *ProviderOptions {
	opts := NewProviderOptions()
	opts.Model = "nomic-embed-text"
	return opts
}

// NewChatOptions creates default chat provider options.
func NewChatOptions() *ProviderOptions {
	opts := NewProviderOptions()
	opts.Model = "llama3.2:1b"
	return opts
}

// ToConfigMap converts the options to a config map for provider factories.
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":    o.BaseURL,
		"api_key":     o.APIKey,
		"embed_model": o.Model,
		"chat_model":  o.Model,
		"timeout":     o.Timeout,
		"max_retries": o.MaxRetries,
	}
}

// AddFlags adds flags for LLM provider options to the specified FlagSet.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Provider, options.Join(prefixes...)+"llm.provider", o.Provider, "LLM provider (ollama, openai).")
	fs.StringVar(&o.BaseURL, options.Join(prefixes...)+"llm.base-url", o.BaseURL, "LLM API base URL.")
	fs.StringVar(&o.APIKey, options.Join(prefixes...)+"llm.api-key", o.APIKey, "LLM API key.")
	fs.StringVar(&o.Model, options.Join(prefixes...)+"llm.model", o.Model, "LLM model name.")
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"llm.timeout", o.Timeout, "LLM request timeout.")
	fs.IntVar(&o.MaxRetries, options.Join(prefixes...)+"llm.max-retries", o.MaxRetries, "LLM maximum number of retries.")
}

// Validate validates the LLM provider options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("provider is required"))
	}
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("base-url is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("model is required"))
	}
	if o.Provider == "openai" && o.APIKey == "" {
		errs = append(errs, fmt.Errorf("api-key is required for openai provider"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}
	return errs
}

// Complete completes the LLM provider options with defaults.
func (o *ProviderOptions) Complete() error {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 2
	}
	return nil
}
