package biz

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/lingora-ai/lingora/internal/lingora/store"
	"github.com/lingora-ai/lingora/internal/pkg/extract"
	"github.com/lingora-ai/lingora/internal/pkg/langid"
	"github.com/lingora-ai/lingora/internal/pkg/textutil"
	"github.com/lingora-ai/lingora/pkg/llm"
	"github.com/lingora-ai/lingora/pkg/translate"
)

// UnknownLanguage tags documents whose language could not be detected.
// They stay in the index but can never match a question's language
// filter.
const UnknownLanguage = "unknown"

// IngestRequest describes one document batch operation.
type IngestRequest struct {
	// StagedFiles are paths of uploaded files staged in the temp dir,
	// keeping their original base names.
	StagedFiles []string
	// TargetLang translates every file into this language before
	// indexing. Empty keeps each file in its original language.
	TargetLang string
	// ReplaceAll clears the document directory before processing.
	ReplaceAll bool
	// Delete removes these document names before processing.
	Delete []string
}

// IngestReport summarizes an ingestion run.
type IngestReport struct {
	Processed int      `json:"processed"`
	Deleted   int      `json:"deleted"`
	Indexed   int64    `json:"indexed"`
	Files     []string `json:"files"`
}

// IngestorConfig wires an Ingestor.
type IngestorConfig struct {
	DocsDir     string
	ChunkBudget int
	Workers     int
	Translator  translate.Translator
	Detector    *langid.Detector
	Embedder    llm.EmbeddingProvider
	Builder     store.IndexBuilder
	Handle      *store.Handle
	Logger      *zap.Logger
}

// Ingestor owns the document directory and is the only writer of the
// index handle. Every change triggers a full rebuild; the handle is
// swapped only after the new index is completely built, so readers keep
// the previous snapshot on any failure.
type Ingestor struct {
	docsDir     string
	chunkBudget int
	workers     int
	translator  translate.Translator
	detector    *langid.Detector
	embedder    llm.EmbeddingProvider
	builder     store.IndexBuilder
	handle      *store.Handle
	logger      *zap.Logger

	mu sync.Mutex
}

// NewIngestor creates an Ingestor.
func NewIngestor(cfg IngestorConfig) *Ingestor {
	if cfg.ChunkBudget <= 0 {
		cfg.ChunkBudget = 500
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Ingestor{
		docsDir:     cfg.DocsDir,
		chunkBudget: cfg.ChunkBudget,
		workers:     cfg.Workers,
		translator:  cfg.Translator,
		detector:    cfg.Detector,
		embedder:    cfg.Embedder,
		builder:     cfg.Builder,
		handle:      cfg.Handle,
		logger:      cfg.Logger,
	}
}

// Bootstrap rebuilds the index from the document directory at startup.
// An empty directory is not an error; the handle simply stays unset.
func (ing *Ingestor) Bootstrap(ctx context.Context) error {
	if err := os.MkdirAll(ing.docsDir, 0o755); err != nil {
		return fmt.Errorf("create docs dir: %w", err)
	}
	names, err := ing.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		ing.logger.Info("document directory empty, index not built",
			zap.String("dir", ing.docsDir))
		return nil
	}
	return ing.Rebuild(ctx)
}

// Ingest applies deletions, stores or translates the staged files into
// the document directory and rebuilds the index.
func (ing *Ingestor) Ingest(ctx context.Context, req *IngestRequest) (*IngestReport, error) {
	ing.mu.Lock()
	defer ing.mu.Unlock()

	report := &IngestReport{}

	for _, name := range req.Delete {
		// Uploaded names only, no path escapes.
		path := filepath.Join(ing.docsDir, filepath.Base(name))
		if err := os.Remove(path); err != nil {
			if !os.IsNotExist(err) {
				ing.logger.Warn("failed to delete document",
					zap.String("file", name), zap.Error(err))
			}
			continue
		}
		report.Deleted++
	}

	if req.ReplaceAll && len(req.StagedFiles) > 0 {
		if err := ing.clearDocsDir(); err != nil {
			return nil, err
		}
	}

	if len(req.StagedFiles) > 0 {
		if err := ing.storeFiles(ctx, req); err != nil {
			return nil, err
		}
		report.Processed = len(req.StagedFiles)
	}

	names, err := ing.List()
	if err != nil {
		return nil, err
	}
	report.Files = names

	if len(names) == 0 {
		// Everything deleted: drop the live index too.
		if old := ing.handle.Swap(nil); old != nil {
			if err := old.Release(ctx); err != nil {
				ing.logger.Warn("failed to release index", zap.Error(err))
			}
		}
		return report, nil
	}

	if err := ing.rebuildLocked(ctx); err != nil {
		return nil, err
	}
	if idx := ing.handle.Index(); idx != nil {
		if n, err := idx.Count(ctx); err == nil {
			report.Indexed = n
		}
	}
	return report, nil
}

// Rebuild re-scans the document directory and swaps in a fresh index.
func (ing *Ingestor) Rebuild(ctx context.Context) error {
	ing.mu.Lock()
	defer ing.mu.Unlock()
	return ing.rebuildLocked(ctx)
}

func (ing *Ingestor) rebuildLocked(ctx context.Context) error {
	names, err := ing.List()
	if err != nil {
		return err
	}

	var docs []*store.Document
	for _, name := range names {
		path := filepath.Join(ing.docsDir, name)
		text, err := extract.Text(path)
		if err != nil {
			ing.logger.Warn("failed to extract document, excluded from index",
				zap.String("file", name), zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			ing.logger.Warn("document is empty, excluded from index",
				zap.String("file", name))
			continue
		}

		lang, ok := ing.detector.Detect(text)
		if !ok {
			lang = UnknownLanguage
		}
		for i, chunk := range splitForIndex(text) {
			docs = append(docs, &store.Document{
				ID:      fmt.Sprintf("%s#%d", name, i),
				Source:  name,
				Lang:    lang,
				Content: chunk,
			})
		}
	}

	if len(docs) == 0 {
		ing.logger.Warn("no indexable content found", zap.String("dir", ing.docsDir))
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	embeddings, err := ing.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(embeddings) != len(docs) {
		return fmt.Errorf("embed documents: got %d embeddings for %d chunks",
			len(embeddings), len(docs))
	}
	for i := range docs {
		docs[i].Embedding = embeddings[i]
	}

	idx, err := ing.builder.Build(ctx, docs)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	old := ing.handle.Swap(idx)
	if old != nil {
		if err := old.Release(ctx); err != nil {
			ing.logger.Warn("failed to release previous index", zap.Error(err))
		}
	}
	ing.pruneStale(ctx, idx)

	ing.logger.Info("index rebuilt",
		zap.Int("documents", len(names)), zap.Int("chunks", len(docs)))
	return nil
}

// pruneStale clears leftover versioned collections from crashed
// rebuilds when the builder supports it.
func (ing *Ingestor) pruneStale(ctx context.Context, current store.VectorIndex) {
	pruner, ok := ing.builder.(interface {
		PruneStale(ctx context.Context, keep string) error
	})
	if !ok {
		return
	}
	keep := ""
	if named, ok := current.(interface{ Collection() string }); ok {
		keep = named.Collection()
	}
	if err := pruner.PruneStale(ctx, keep); err != nil {
		ing.logger.Warn("failed to prune stale indexes", zap.Error(err))
	}
}

// storeFiles translates or copies the staged files into the document
// directory. Translation runs on a bounded worker pool; any failure
// fails the whole batch before the index is touched.
func (ing *Ingestor) storeFiles(ctx context.Context, req *IngestRequest) error {
	if !IsSupportedLanguage(req.TargetLang) {
		for _, src := range req.StagedFiles {
			dst := filepath.Join(ing.docsDir, filepath.Base(src))
			if err := copyFile(src, dst); err != nil {
				return fmt.Errorf("store %s: %w", filepath.Base(src), err)
			}
		}
		return nil
	}

	pool, err := ants.NewPool(ing.workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	for _, staged := range req.StagedFiles {
		src := staged
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := ing.translateFile(ctx, src, req.TargetLang); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			return fmt.Errorf("submit translate task: %w", err)
		}
	}
	wg.Wait()
	return firstErr
}

func (ing *Ingestor) translateFile(ctx context.Context, src, targetLang string) error {
	name := filepath.Base(src)
	text, err := extract.Text(src)
	if err != nil {
		return fmt.Errorf("extract %s: %w", name, err)
	}
	if strings.TrimSpace(text) == "" {
		ing.logger.Warn("uploaded file is empty, skipped", zap.String("file", name))
		return nil
	}

	// An undetectable source still honors the requested target
	// language; the source defaults instead of bypassing translation.
	srcLang, ok := ing.detector.Detect(text)
	if !ok {
		srcLang = DefaultLanguage
		ing.logger.Warn("could not detect language, assuming default",
			zap.String("file", name), zap.String("assumed", srcLang))
	}

	translated, err := ing.translator.Translate(ctx, text, srcLang, targetLang)
	if err != nil {
		return fmt.Errorf("translate %s: %w", name, err)
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	out := filepath.Join(ing.docsDir, fmt.Sprintf("%s_translated_%s.txt", stem, targetLang))
	if err := os.WriteFile(out, []byte(translated), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	ing.logger.Info("translated document",
		zap.String("file", name), zap.String("from", srcLang), zap.String("to", targetLang))
	return nil
}

// List returns the supported document names in the directory, sorted.
func (ing *Ingestor) List() ([]string, error) {
	entries, err := os.ReadDir(ing.docsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read docs dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !extract.Supported(filepath.Ext(e.Name())) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Preview returns the content of a .txt document. Other formats report
// ok=false so the caller can answer with a placeholder.
func (ing *Ingestor) Preview(name string) (content string, ok bool, err error) {
	name = filepath.Base(name)
	path := filepath.Join(ing.docsDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", false, err
	}
	if !strings.EqualFold(filepath.Ext(name), ".txt") {
		return "", false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func (ing *Ingestor) clearDocsDir() error {
	entries, err := os.ReadDir(ing.docsDir)
	if err != nil {
		return fmt.Errorf("read docs dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(ing.docsDir, e.Name())); err != nil {
			return fmt.Errorf("clear docs dir: %w", err)
		}
	}
	return nil
}

// splitForIndex chunks extracted text for embedding. Indexing uses a
// larger budget than translation so retrieval context stays coherent.
func splitForIndex(text string) []string {
	return textutil.SplitChunks(text, 1000)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}
