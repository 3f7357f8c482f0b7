// Package pipeline provides ingestion and query pipeline configuration options.
package pipeline

import (
	"fmt"

	"github.com/lingora-ai/lingora/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains ingestion and retrieval configuration.
type Options struct {
	// DocsDir is the directory translated/copied documents live in.
	DocsDir string `json:"docs-dir" mapstructure:"docs-dir"`

	// UploadDir is the directory temporary uploads are written to.
	UploadDir string `json:"upload-dir" mapstructure:"upload-dir"`

	// Builder selects the index backend (milvus, memory).
	Builder string `json:"builder" mapstructure:"builder"`

	// Collection is the base collection name for milvus builds.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim is the embedding vector dimension.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// TopK is the number of candidates retrieved per query.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// ScoreThreshold is the strict lower bound on candidate similarity.
	ScoreThreshold float32 `json:"score-threshold" mapstructure:"score-threshold"`

	// Workers bounds concurrent per-file translation during ingestion.
	Workers int `json:"workers" mapstructure:"workers"`

	// Watch enables the fsnotify re-index watcher on DocsDir.
	Watch bool `json:"watch" mapstructure:"watch"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		DocsDir:        "translated_docs",
		UploadDir:      "temp_uploads",
		Builder:        "milvus",
		Collection:     "lingora_docs",
		EmbeddingDim:   768,
		TopK:           5,
		ScoreThreshold: 0.7,
		Workers:        4,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.DocsDir, p+"pipeline.docs-dir", o.DocsDir, "Directory for translated/copied documents.")
	fs.StringVar(&o.UploadDir, p+"pipeline.upload-dir", o.UploadDir, "Directory for temporary uploads.")
	fs.StringVar(&o.Builder, p+"pipeline.builder", o.Builder, "Index backend (milvus, memory).")
	fs.StringVar(&o.Collection, p+"pipeline.collection", o.Collection, "Base collection name for milvus builds.")
	fs.IntVar(&o.EmbeddingDim, p+"pipeline.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.IntVar(&o.TopK, p+"pipeline.top-k", o.TopK, "Number of candidates retrieved per query.")
	fs.Float32Var(&o.ScoreThreshold, p+"pipeline.score-threshold", o.ScoreThreshold, "Strict lower bound on candidate similarity.")
	fs.IntVar(&o.Workers, p+"pipeline.workers", o.Workers, "Concurrent per-file translation workers.")
	fs.BoolVar(&o.Watch, p+"pipeline.watch", o.Watch, "Watch the docs dir and re-index on changes.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.DocsDir == "" {
		errs = append(errs, fmt.Errorf("pipeline docs-dir is required"))
	}
	if o.Builder != "milvus" && o.Builder != "memory" {
		errs = append(errs, fmt.Errorf("pipeline builder must be milvus or memory"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("pipeline top-k must be positive"))
	}
	if o.Workers <= 0 {
		errs = append(errs, fmt.Errorf("pipeline workers must be positive"))
	}
	if o.Builder == "milvus" && o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("pipeline embedding-dim must be positive for the milvus builder"))
	}
	return errs
}
