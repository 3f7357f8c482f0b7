// Package openaispeech implements speech.Synthesizer and speech.Transcriber
// using the OpenAI audio endpoints.
package openaispeech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Synthesizer renders text to speech via the OpenAI speech endpoint.
type Synthesizer struct {
	client openai.Client
	model  string
	voice  string
}

// NewSynthesizer creates a synthesizer. Model and voice fall back to
// tts-1 and alloy when empty.
func NewSynthesizer(apiKey, model, voice string, timeout time.Duration) (*Synthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openaispeech: api key is required")
	}
	if model == "" {
		model = "tts-1"
	}
	if voice == "" {
		voice = "alloy"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &Synthesizer{
		client: openai.NewClient(opts...),
		model:  model,
		voice:  voice,
	}, nil
}

// Synthesize writes an mp3 file under outDir and returns its path. The
// lang argument only influences the file name; the model infers the
// spoken language from the text itself.
func (s *Synthesizer) Synthesize(ctx context.Context, text, lang, outDir string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("openaispeech: nothing to synthesize")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("openaispeech: create output dir: %w", err)
	}

	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(s.model),
		Voice:          openai.AudioSpeechNewParamsVoice(s.voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return "", fmt.Errorf("openaispeech: speech request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openaispeech: speech endpoint returned %d", resp.StatusCode)
	}

	if lang == "" {
		lang = "xx"
	}
	name := fmt.Sprintf("answer_%s_%s.mp3", lang, uuid.NewString()[:8])
	path := filepath.Join(outDir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("openaispeech: create audio file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("openaispeech: write audio file: %w", err)
	}
	return path, nil
}

// Name returns the adapter identifier.
func (s *Synthesizer) Name() string {
	return "openai-tts"
}

// Transcriber converts audio to text via the OpenAI transcription endpoint.
type Transcriber struct {
	client openai.Client
	model  string
}

// NewTranscriber creates a transcriber. Model falls back to whisper-1.
func NewTranscriber(apiKey, model string, timeout time.Duration) (*Transcriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openaispeech: api key is required")
	}
	if model == "" {
		model = "whisper-1"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &Transcriber{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Transcribe uploads the audio file and returns the transcript. The
// endpoint does not report the detected language in its default
// response, so lang is always empty for this adapter.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", "", fmt.Errorf("openaispeech: open audio: %w", err)
	}
	defer f.Close()

	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  f,
		Model: openai.AudioModel(t.model),
	})
	if err != nil {
		return "", "", fmt.Errorf("openaispeech: transcription request failed: %w", err)
	}
	return resp.Text, "", nil
}

// Name returns the adapter identifier.
func (t *Transcriber) Name() string {
	return "openai-stt"
}
