// Package translate provides translation adapter configuration options.
package translate

import (
	"fmt"
	"time"

	"github.com/lingora-ai/lingora/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains translation adapter configuration.
type Options struct {
	// BaseURL is the inference API base URL.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey authenticates against the inference API.
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// ModelPattern is the language-pair model id pattern; {src} and {tgt}
	// are replaced with the source and target language codes.
	ModelPattern string `json:"model-pattern" mapstructure:"model-pattern"`

	// ChunkBudget is the maximum characters per translated chunk.
	ChunkBudget int `json:"chunk-budget" mapstructure:"chunk-budget"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		BaseURL:      "https://api-inference.huggingface.co",
		ModelPattern: "Helsinki-NLP/opus-mt-{src}-{tgt}",
		ChunkBudget:  500,
		Timeout:      120 * time.Second,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.BaseURL, p+"translate.base-url", o.BaseURL, "Translation inference API base URL.")
	fs.StringVar(&o.APIKey, p+"translate.api-key", o.APIKey, "Translation inference API key.")
	fs.StringVar(&o.ModelPattern, p+"translate.model-pattern", o.ModelPattern, "Language-pair model id pattern ({src}, {tgt}).")
	fs.IntVar(&o.ChunkBudget, p+"translate.chunk-budget", o.ChunkBudget, "Maximum characters per translated chunk.")
	fs.DurationVar(&o.Timeout, p+"translate.timeout", o.Timeout, "Translation request timeout.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("translate base-url is required"))
	}
	if o.ModelPattern == "" {
		errs = append(errs, fmt.Errorf("translate model-pattern is required"))
	}
	if o.ChunkBudget <= 0 {
		errs = append(errs, fmt.Errorf("translate chunk-budget must be positive"))
	}
	return errs
}
