// Package options contains flags and options for initializing the
// lingora server.
package options

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/lingora-ai/lingora/internal/lingora"
	cacheopts "github.com/lingora-ai/lingora/pkg/options/cache"
	httpopts "github.com/lingora-ai/lingora/pkg/options/http"
	llmopts "github.com/lingora-ai/lingora/pkg/options/llm"
	logopts "github.com/lingora-ai/lingora/pkg/options/logger"
	milvusopts "github.com/lingora-ai/lingora/pkg/options/milvus"
	pipelineopts "github.com/lingora-ai/lingora/pkg/options/pipeline"
	speechopts "github.com/lingora-ai/lingora/pkg/options/speech"
	translateopts "github.com/lingora-ai/lingora/pkg/options/translate"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MilvusOptions contains Milvus database configuration.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatOptions contains chat provider configuration.
	ChatOptions *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// PipelineOptions contains ingestion and retrieval configuration.
	PipelineOptions *pipelineopts.Options `json:"pipeline" mapstructure:"pipeline"`

	// SpeechOptions contains speech adapter configuration.
	SpeechOptions *speechopts.Options `json:"speech" mapstructure:"speech"`

	// TranslateOptions contains translation adapter configuration.
	TranslateOptions *translateopts.Options `json:"translate" mapstructure:"translate"`

	// CacheOptions contains answer cache configuration.
	CacheOptions *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:      httpopts.NewOptions(),
		LogOptions:       logopts.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		ChatOptions:      llmopts.NewChatOptions(),
		PipelineOptions:  pipelineopts.NewOptions(),
		SpeechOptions:    speechopts.NewOptions(),
		TranslateOptions: translateopts.NewOptions(),
		CacheOptions:     cacheopts.NewOptions(),
		ShutdownTimeout:  30 * time.Second,
	}
}

// AddFlags adds all server flags to the given flag set.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	o.HTTPOptions.AddFlags(fs)
	o.LogOptions.AddFlags(fs)
	o.MilvusOptions.AddFlags(fs)
	o.EmbeddingOptions.AddFlags(fs, "embedding.")
	o.ChatOptions.AddFlags(fs, "chat.")
	o.PipelineOptions.AddFlags(fs)
	o.SpeechOptions.AddFlags(fs)
	o.TranslateOptions.AddFlags(fs)
	o.CacheOptions.AddFlags(fs)

	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout.")
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := o.ChatOptions.Complete(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	var errs []error

	errs = append(errs, o.HTTPOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	errs = append(errs, o.MilvusOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.PipelineOptions.Validate()...)
	errs = append(errs, o.SpeechOptions.Validate()...)
	errs = append(errs, o.TranslateOptions.Validate()...)
	errs = append(errs, o.CacheOptions.Validate()...)

	return errors.Join(errs...)
}

// Config builds a lingora.Config based on ServerOptions.
func (o *ServerOptions) Config() (*lingora.Config, error) {
	return &lingora.Config{
		HTTPOptions:      o.HTTPOptions,
		LogOptions:       o.LogOptions,
		MilvusOptions:    o.MilvusOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		ChatOptions:      o.ChatOptions,
		PipelineOptions:  o.PipelineOptions,
		SpeechOptions:    o.SpeechOptions,
		TranslateOptions: o.TranslateOptions,
		CacheOptions:     o.CacheOptions,
		ShutdownTimeout:  o.ShutdownTimeout,
	}, nil
}
