// Package hfaudio implements speech.Classifier using the Hugging Face
// Inference API audio-classification task.
package hfaudio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Classifier sends raw audio bytes to a hosted audio-classification model.
type Classifier struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// New creates a classifier for the given inference endpoint and model id.
func New(baseURL, apiKey, model string, timeout time.Duration) *Classifier {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Classifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify returns the highest scoring emotion label for the audio file.
func (c *Classifier) Classify(ctx context.Context, audioPath string) (string, float64, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", 0, fmt.Errorf("hfaudio: read audio: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(audio))
	if err != nil {
		return "", 0, fmt.Errorf("hfaudio: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("hfaudio: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("hfaudio: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("hfaudio: server returned %d: %s", resp.StatusCode, string(data))
	}

	var scores []classification
	if err := json.Unmarshal(data, &scores); err != nil {
		return "", 0, fmt.Errorf("hfaudio: decode response: %w", err)
	}
	if len(scores) == 0 {
		return "", 0, fmt.Errorf("hfaudio: empty classification result")
	}

	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return best.Label, best.Score, nil
}

// Name returns the adapter identifier.
func (c *Classifier) Name() string {
	return "huggingface-audio"
}
