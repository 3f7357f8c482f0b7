// Package translate provides machine translation between the supported
// languages, backed by the Hugging Face Inference API opus-mt models.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lingora-ai/lingora/internal/pkg/textutil"
)

// Translator converts text from one language to another.
type Translator interface {
	// Translate returns the text rendered in the target language. Source
	// and target are ISO 639-1 codes; equal codes return the input as is.
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// HFTranslator implements Translator over hosted opus-mt models. Long
// inputs are split into word-safe chunks, translated chunk by chunk and
// joined back with single spaces.
type HFTranslator struct {
	baseURL      string
	apiKey       string
	modelPattern string
	chunkBudget  int
	client       *http.Client
}

// Options configures an HFTranslator.
type Options struct {
	BaseURL      string
	APIKey       string
	ModelPattern string
	ChunkBudget  int
	Timeout      time.Duration
}

// NewHFTranslator creates a translator from the given options.
func NewHFTranslator(o Options) *HFTranslator {
	if o.ModelPattern == "" {
		o.ModelPattern = "Helsinki-NLP/opus-mt-{src}-{tgt}"
	}
	if o.ChunkBudget <= 0 {
		o.ChunkBudget = 500
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	return &HFTranslator{
		baseURL:      o.BaseURL,
		apiKey:       o.APIKey,
		modelPattern: o.ModelPattern,
		chunkBudget:  o.ChunkBudget,
		client:       &http.Client{Timeout: o.Timeout},
	}
}

type translationResult struct {
	TranslationText string `json:"translation_text"`
}

// Translate implements Translator.
func (t *HFTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if source == target {
		return text, nil
	}
	chunks := textutil.SplitChunks(text, t.chunkBudget)
	if len(chunks) == 0 {
		return "", nil
	}

	model := t.modelFor(source, target)
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		translated, err := t.translateChunk(ctx, model, chunk)
		if err != nil {
			return "", err
		}
		out = append(out, translated)
	}
	return strings.Join(out, " "), nil
}

func (t *HFTranslator) modelFor(source, target string) string {
	model := strings.ReplaceAll(t.modelPattern, "{src}", source)
	return strings.ReplaceAll(model, "{tgt}", target)
}

func (t *HFTranslator) translateChunk(ctx context.Context, model, chunk string) (string, error) {
	payload, err := json.Marshal(map[string]string{"inputs": chunk})
	if err != nil {
		return "", fmt.Errorf("translate: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", t.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("translate: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("translate: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: model %s returned %d: %s", model, resp.StatusCode, string(data))
	}

	var results []translationResult
	if err := json.Unmarshal(data, &results); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("translate: empty result from model %s", model)
	}
	return results[0].TranslationText, nil
}
