// Package speech provides speech adapter configuration options.
package speech

import (
	"fmt"
	"time"

	"github.com/lingora-ai/lingora/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains speech-to-text, emotion classification and synthesis
// adapter configuration.
type Options struct {
	// STTProvider selects the transcription adapter (whisper, openai).
	STTProvider string `json:"stt-provider" mapstructure:"stt-provider"`

	// WhisperURL is the whisper-server base URL for the whisper provider.
	WhisperURL string `json:"whisper-url" mapstructure:"whisper-url"`

	// EmotionURL is the audio emotion classification endpoint base URL.
	EmotionURL string `json:"emotion-url" mapstructure:"emotion-url"`

	// EmotionModel is the audio classification model id.
	EmotionModel string `json:"emotion-model" mapstructure:"emotion-model"`

	// EmotionAPIKey authenticates against the emotion endpoint.
	EmotionAPIKey string `json:"emotion-api-key" mapstructure:"emotion-api-key"`

	// TTSProvider selects the synthesis adapter (openai).
	TTSProvider string `json:"tts-provider" mapstructure:"tts-provider"`

	// TTSAPIKey authenticates the synthesis provider.
	TTSAPIKey string `json:"tts-api-key" mapstructure:"tts-api-key"`

	// TTSModel is the synthesis model name.
	TTSModel string `json:"tts-model" mapstructure:"tts-model"`

	// TTSVoice is the synthesis voice.
	TTSVoice string `json:"tts-voice" mapstructure:"tts-voice"`

	// OutputDir is the directory synthesized audio artifacts are written to.
	OutputDir string `json:"output-dir" mapstructure:"output-dir"`

	// Timeout is the per-call timeout for speech adapters.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		STTProvider:  "whisper",
		WhisperURL:   "http://localhost:8178",
		EmotionURL:   "https://api-inference.huggingface.co",
		EmotionModel: "audeering/wav2vec2-large-robust-12-ft-emotion-msp-dim",
		TTSProvider:  "openai",
		TTSModel:     "tts-1",
		TTSVoice:     "alloy",
		OutputDir:    "tts_output",
		Timeout:      60 * time.Second,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.STTProvider, p+"speech.stt-provider", o.STTProvider, "Speech-to-text provider (whisper, openai).")
	fs.StringVar(&o.WhisperURL, p+"speech.whisper-url", o.WhisperURL, "whisper-server base URL.")
	fs.StringVar(&o.EmotionURL, p+"speech.emotion-url", o.EmotionURL, "Audio emotion classification endpoint base URL.")
	fs.StringVar(&o.EmotionModel, p+"speech.emotion-model", o.EmotionModel, "Audio emotion classification model id.")
	fs.StringVar(&o.EmotionAPIKey, p+"speech.emotion-api-key", o.EmotionAPIKey, "API key for the emotion endpoint.")
	fs.StringVar(&o.TTSProvider, p+"speech.tts-provider", o.TTSProvider, "Speech synthesis provider (openai).")
	fs.StringVar(&o.TTSAPIKey, p+"speech.tts-api-key", o.TTSAPIKey, "API key for the synthesis provider.")
	fs.StringVar(&o.TTSModel, p+"speech.tts-model", o.TTSModel, "Speech synthesis model.")
	fs.StringVar(&o.TTSVoice, p+"speech.tts-voice", o.TTSVoice, "Speech synthesis voice.")
	fs.StringVar(&o.OutputDir, p+"speech.output-dir", o.OutputDir, "Directory for synthesized audio artifacts.")
	fs.DurationVar(&o.Timeout, p+"speech.timeout", o.Timeout, "Per-call timeout for speech adapters.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch o.STTProvider {
	case "whisper", "openai":
	default:
		errs = append(errs, fmt.Errorf("speech stt-provider must be whisper or openai"))
	}
	if o.STTProvider == "whisper" && o.WhisperURL == "" {
		errs = append(errs, fmt.Errorf("speech whisper-url is required for the whisper provider"))
	}
	if o.OutputDir == "" {
		errs = append(errs, fmt.Errorf("speech output-dir is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("speech timeout must be positive"))
	}
	return errs
}
