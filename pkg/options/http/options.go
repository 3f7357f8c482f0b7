// Package http provides HTTP server configuration options.
package http

import (
	"fmt"
	"time"

	"github.com/lingora-ai/lingora/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains HTTP server configuration.
type Options struct {
	// Addr is the address the server listens on (host:port).
	Addr string `json:"addr" mapstructure:"addr"`

	// Mode is the gin mode (debug, release, test).
	Mode string `json:"mode" mapstructure:"mode"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `json:"read-timeout" mapstructure:"read-timeout"`

	// WriteTimeout is the maximum duration before timing out writes.
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`

	// MaxUploadSize is the maximum multipart upload size in bytes.
	MaxUploadSize int64 `json:"max-upload-size" mapstructure:"max-upload-size"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Addr:          ":8080",
		Mode:          "release",
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  5 * time.Minute,
		MaxUploadSize: 64 << 20,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Addr, options.Join(prefixes...)+"http.addr", o.Addr, "HTTP server listen address (host:port).")
	fs.StringVar(&o.Mode, options.Join(prefixes...)+"http.mode", o.Mode, "HTTP server mode (debug, release, test).")
	fs.DurationVar(&o.ReadTimeout, options.Join(prefixes...)+"http.read-timeout", o.ReadTimeout, "Maximum duration for reading a request.")
	fs.DurationVar(&o.WriteTimeout, options.Join(prefixes...)+"http.write-timeout", o.WriteTimeout, "Maximum duration for writing a response.")
	fs.Int64Var(&o.MaxUploadSize, options.Join(prefixes...)+"http.max-upload-size", o.MaxUploadSize, "Maximum multipart upload size in bytes.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Addr == "" {
		errs = append(errs, fmt.Errorf("http addr is required"))
	}
	switch o.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("http mode must be one of debug, release, test"))
	}
	return errs
}
