// Package logger provides logger configuration options.
package logger

import (
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options contains logger configuration.
type Options struct {
	// Level is the minimum enabled logging level (debug, info, warn, error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log encoding (json, console).
	Format string `json:"format" mapstructure:"format"`

	// OutputPaths are the log output destinations.
	OutputPaths []string `json:"output-paths" mapstructure:"output-paths"`

	// Development enables development mode (DPanic on errors, console-friendly defaults).
	Development bool `json:"development" mapstructure:"development"`

	// DisableCaller disables caller annotation.
	DisableCaller bool `json:"disable-caller" mapstructure:"disable-caller"`

	// DisableStacktrace disables automatic stacktrace capture.
	DisableStacktrace bool `json:"disable-stacktrace" mapstructure:"disable-stacktrace"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{"stdout"},
	}
}

// AddFlags adds flags for logger options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log.level", o.Level, "Log level (debug|info|warn|error)")
	fs.StringVar(&o.Format, "log.format", o.Format, "Log format (json|console)")
	fs.StringSliceVar(&o.OutputPaths, "log.output-paths", o.OutputPaths, "Output paths for logs")
	fs.BoolVar(&o.Development, "log.development", o.Development, "Enable development mode")
	fs.BoolVar(&o.DisableCaller, "log.disable-caller", o.DisableCaller, "Disable caller detection")
	fs.BoolVar(&o.DisableStacktrace, "log.disable-stacktrace", o.DisableStacktrace, "Disable stacktrace capture")
}

// Validate validates the logger options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(o.Level)); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", o.Level))
	}
	if o.Format != "json" && o.Format != "console" {
		errs = append(errs, fmt.Errorf("log format must be json or console"))
	}
	return errs
}

// Build constructs a zap logger from the options.
func (o *Options) Build() (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(o.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", o.Level, err)
	}

	cfg := zap.NewProductionConfig()
	if o.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = o.Format
	cfg.DisableCaller = o.DisableCaller
	cfg.DisableStacktrace = o.DisableStacktrace
	if len(o.OutputPaths) > 0 {
		cfg.OutputPaths = o.OutputPaths
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// Init builds the logger and installs it as the zap global.
func (o *Options) Init() error {
	log, err := o.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(log)
	return nil
}
