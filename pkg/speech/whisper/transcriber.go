// Package whisper implements speech.Transcriber on top of a whisper.cpp
// server instance (the /inference endpoint).
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Transcriber talks to a whisper.cpp HTTP server.
type Transcriber struct {
	baseURL string
	client  *http.Client
}

// New creates a whisper transcriber for the given server base URL.
func New(baseURL string, timeout time.Duration) *Transcriber {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Transcriber{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type inferenceResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Error    string `json:"error"`
}

// Transcribe uploads the audio file and returns the transcript together
// with the language whisper detected.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", "", fmt.Errorf("whisper: open audio: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", "", fmt.Errorf("whisper: build request: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", "", fmt.Errorf("whisper: read audio: %w", err)
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return "", "", fmt.Errorf("whisper: build request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", "", fmt.Errorf("whisper: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/inference", &body)
	if err != nil {
		return "", "", fmt.Errorf("whisper: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("whisper: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("whisper: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("whisper: server returned %d: %s", resp.StatusCode, string(data))
	}

	var out inferenceResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", "", fmt.Errorf("whisper: decode response: %w", err)
	}
	if out.Error != "" {
		return "", "", fmt.Errorf("whisper: inference error: %s", out.Error)
	}
	return out.Text, out.Language, nil
}

// Name returns the adapter identifier.
func (t *Transcriber) Name() string {
	return "whisper"
}
