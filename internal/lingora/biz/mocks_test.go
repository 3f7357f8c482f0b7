package biz

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/lingora-ai/lingora/internal/lingora/store"
	"github.com/lingora-ai/lingora/internal/pkg/langid"
	"github.com/lingora-ai/lingora/pkg/llm"
)

var testDetector = langid.New([]string{"fr", "en", "ar"})

// fakeEmbedder returns a fixed vector for every text.
type fakeEmbedder struct {
	vec   []float32
	err   error
	calls atomic.Int32
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) Name() string { return "fake-embedder" }

var _ llm.EmbeddingProvider = (*fakeEmbedder)(nil)

// fakeChat replies from a function, recording prompts.
type fakeChat struct {
	reply   func(prompt string) (string, error)
	prompts []string
}

func (f *fakeChat) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return f.Generate(ctx, messages[len(messages)-1].Content, "")
}

func (f *fakeChat) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply(prompt)
}

func (f *fakeChat) Name() string { return "fake-chat" }

var _ llm.ChatProvider = (*fakeChat)(nil)

// fakeTranslator marks translations so tests can see them.
type fakeTranslator struct {
	err   error
	calls atomic.Int32
}

func (f *fakeTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	if source == target {
		return text, nil
	}
	return fmt.Sprintf("[%s->%s] %s", source, target, text), nil
}

type fakeTranscriber struct {
	text string
	lang string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, string, error) {
	return f.text, f.lang, f.err
}

func (f *fakeTranscriber) Name() string { return "fake-stt" }

type fakeClassifier struct {
	label      string
	confidence float64
	err        error
}

func (f *fakeClassifier) Classify(ctx context.Context, audioPath string) (string, float64, error) {
	return f.label, f.confidence, f.err
}

func (f *fakeClassifier) Name() string { return "fake-emotion" }

type fakeSynthesizer struct {
	err   error
	calls atomic.Int32
	last  string
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, lang, outDir string) (string, error) {
	f.calls.Add(1)
	f.last = text
	if f.err != nil {
		return "", f.err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, fmt.Sprintf("out_%s_%d.mp3", lang, f.calls.Load()))
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeSynthesizer) Name() string { return "fake-tts" }

// failingBuilder always fails so swap-on-failure behavior can be
// asserted.
type failingBuilder struct{}

func (failingBuilder) Build(ctx context.Context, docs []*store.Document) (store.VectorIndex, error) {
	return nil, errors.New("build exploded")
}

func (failingBuilder) Close(ctx context.Context) error { return nil }

const (
	frenchQuestion  = "Quelle est la capitale de la France ? J'aimerais le savoir s'il vous plaît."
	englishQuestion = "What is the capital city of France? I would really like to know the answer."
)

func frenchDoc(vec []float32) *store.Document {
	return &store.Document{
		ID:        "capitale.txt#0",
		Source:    "capitale.txt",
		Lang:      "fr",
		Content:   "Paris est la capitale de la France depuis des siècles.",
		Embedding: vec,
	}
}

func englishDoc(vec []float32) *store.Document {
	return &store.Document{
		ID:        "capital.txt#0",
		Source:    "capital.txt",
		Lang:      "en",
		Content:   "London is the capital of the United Kingdom.",
		Embedding: vec,
	}
}

func buildHandle(docs ...*store.Document) *store.Handle {
	h := store.NewHandle()
	idx, _ := store.NewMemoryBuilder().Build(context.Background(), docs)
	h.Swap(idx)
	return h
}

func promptsContaining(prompts []string, sub string) int {
	n := 0
	for _, p := range prompts {
		if strings.Contains(p, sub) {
			n++
		}
	}
	return n
}
