// Package cache provides answer cache configuration options.
package cache

import (
	"fmt"
	"time"

	"github.com/lingora-ai/lingora/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains redis-backed answer cache configuration.
type Options struct {
	// Enabled toggles the cache.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Addr is the redis address (host:port).
	Addr string `json:"addr" mapstructure:"addr"`

	// Password authenticates against redis.
	Password string `json:"password" mapstructure:"password"`

	// Database is the redis database number.
	Database int `json:"database" mapstructure:"database"`

	// TTL bounds cached answer lifetime.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`

	// KeyPrefix namespaces cache keys.
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`
}

// NewOptions creates new Options with defaults. The cache is disabled
// unless explicitly enabled.
func NewOptions() *Options {
	return &Options{
		Addr:      "localhost:6379",
		TTL:       time.Hour,
		KeyPrefix: "lingora:answer:",
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.BoolVar(&o.Enabled, p+"cache.enabled", o.Enabled, "Enable the redis answer cache.")
	fs.StringVar(&o.Addr, p+"cache.addr", o.Addr, "Redis address (host:port).")
	fs.StringVar(&o.Password, p+"cache.password", o.Password, "Redis password.")
	fs.IntVar(&o.Database, p+"cache.database", o.Database, "Redis database number.")
	fs.DurationVar(&o.TTL, p+"cache.ttl", o.TTL, "Cached answer TTL.")
	fs.StringVar(&o.KeyPrefix, p+"cache.key-prefix", o.KeyPrefix, "Cache key prefix.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}

	var errs []error
	if o.Addr == "" {
		errs = append(errs, fmt.Errorf("cache addr is required when the cache is enabled"))
	}
	if o.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache ttl must be positive"))
	}
	return errs
}
