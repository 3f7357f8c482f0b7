package biz

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingora-ai/lingora/internal/lingora/store"
)

func stageAudio(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("audio-bytes"), 0o644))
	return path
}

type orchestratorWorld struct {
	orch        *Orchestrator
	transcriber *fakeTranscriber
	classifier  *fakeClassifier
	synthesizer *fakeSynthesizer
	ragChat     *fakeChat
	postChat    *fakeChat
	translator  *fakeTranslator
	handle      *store.Handle
}

func newOrchestratorWorld(t *testing.T) *orchestratorWorld {
	t.Helper()
	w := &orchestratorWorld{
		transcriber: &fakeTranscriber{text: frenchQuestion, lang: "fr"},
		classifier:  &fakeClassifier{label: "happiness", confidence: 0.9},
		synthesizer: &fakeSynthesizer{},
		ragChat:     &fakeChat{reply: func(string) (string, error) { return "Paris est la capitale.", nil }},
		postChat:    &fakeChat{reply: func(string) (string, error) { return `{"emotion":"joyeux","actions":["parler"]}`, nil }},
		translator:  &fakeTranslator{},
		handle:      buildHandle(frenchDoc([]float32{1, 0}), englishDoc([]float32{0, 1})),
	}
	answerer := NewAnswerer(AnswererConfig{
		Detector: testDetector,
		Embedder: &fakeEmbedder{vec: []float32{1, 0}},
		Chat:     w.ragChat,
		Handle:   w.handle,
	})
	post := NewPostProcessor(PostProcessorConfig{
		Chat:       w.postChat,
		Translator: w.translator,
		Detector:   testDetector,
	})
	w.orch = NewOrchestrator(OrchestratorConfig{
		Transcriber: w.transcriber,
		Classifier:  w.classifier,
		Synthesizer: w.synthesizer,
		Answerer:    answerer,
		Post:        post,
		Handle:      w.handle,
		OutputDir:   t.TempDir(),
		CallTimeout: 5 * time.Second,
	})
	return w
}

func TestAskHappyPath(t *testing.T) {
	w := newOrchestratorWorld(t)
	audio := stageAudio(t, "question.wav")

	result, err := w.orch.Ask(context.Background(), audio)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAnswered, result.Outcome)
	assert.Equal(t, frenchQuestion, result.Transcript)
	assert.Equal(t, "Paris est la capitale.", result.Response)
	assert.Equal(t, "fr", result.ResponseLang)
	require.NotNil(t, result.Annotation)
	assert.Equal(t, "joyeux", result.Annotation.Emotion)
	assert.FileExists(t, result.AudioPath)

	// The detected emotion rides into the generation prompt.
	require.Len(t, w.ragChat.prompts, 1)
	assert.Contains(t, w.ragChat.prompts[0], "Joie / Excitation")

	// Temp audio removed on success.
	assert.NoFileExists(t, audio)
}

func TestAskNoIndexFailsBeforeAnyCall(t *testing.T) {
	w := newOrchestratorWorld(t)
	w.handle.Swap(nil)
	audio := stageAudio(t, "question.wav")

	_, err := w.orch.Ask(context.Background(), audio)
	require.ErrorIs(t, err, ErrNoIndex)
	assert.NoFileExists(t, audio)
	assert.Equal(t, int32(0), w.synthesizer.calls.Load())
}

func TestAskUnsupportedAudioRejected(t *testing.T) {
	w := newOrchestratorWorld(t)
	audio := stageAudio(t, "question.aiff")

	_, err := w.orch.Ask(context.Background(), audio)
	require.ErrorIs(t, err, ErrUnsupportedAudio)
	assert.NoFileExists(t, audio)
}

func TestAskEmptyTranscriptFails(t *testing.T) {
	w := newOrchestratorWorld(t)
	w.transcriber.text = "   "
	audio := stageAudio(t, "question.webm")

	_, err := w.orch.Ask(context.Background(), audio)
	require.ErrorIs(t, err, ErrEmptyTranscript)
	assert.Equal(t, int32(0), w.synthesizer.calls.Load())
	assert.NoFileExists(t, audio)
}

func TestAskTranscriberErrorFails(t *testing.T) {
	w := newOrchestratorWorld(t)
	w.transcriber.err = errors.New("whisper down")
	audio := stageAudio(t, "question.mp3")

	_, err := w.orch.Ask(context.Background(), audio)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "whisper down")
	assert.NoFileExists(t, audio)
}

func TestAskClassifierFailureDegradesToNeutral(t *testing.T) {
	w := newOrchestratorWorld(t)
	w.classifier.err = errors.New("hf down")
	audio := stageAudio(t, "question.ogg")

	result, err := w.orch.Ask(context.Background(), audio)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAnswered, result.Outcome)
	require.Len(t, w.ragChat.prompts, 1)
	assert.Contains(t, w.ragChat.prompts[0], NeutralEmotion)
}

func TestAskErrorSentinelDegradesToNeutral(t *testing.T) {
	w := newOrchestratorWorld(t)
	w.classifier.label = ErrorEmotion
	audio := stageAudio(t, "question.flac")

	result, err := w.orch.Ask(context.Background(), audio)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAnswered, result.Outcome)
	assert.Contains(t, w.ragChat.prompts[0], NeutralEmotion)
}

func TestAskNoMatchSkipsPostProcessing(t *testing.T) {
	w := newOrchestratorWorld(t)
	// English transcript against a French-only scoring vector: the
	// language filter leaves nothing.
	w.transcriber.text = englishQuestion
	w.transcriber.lang = "en"
	audio := stageAudio(t, "question.m4a")

	result, err := w.orch.Ask(context.Background(), audio)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoMatch, result.Outcome)
	assert.Equal(t, "en", result.ResponseLang)
	assert.Equal(t, FallbackMessage("en"), result.Response)
	assert.Nil(t, result.Annotation)
	assert.Empty(t, w.postChat.prompts)
	// The fallback is still spoken.
	assert.Equal(t, int32(1), w.synthesizer.calls.Load())
	assert.Equal(t, FallbackMessage("en"), w.synthesizer.last)
}

func TestAskErroredOutcomeSpeaksErrorWithoutPostProcessing(t *testing.T) {
	w := newOrchestratorWorld(t)
	w.ragChat.reply = func(string) (string, error) { return "", errors.New("llm down") }
	audio := stageAudio(t, "question.wav")

	result, err := w.orch.Ask(context.Background(), audio)
	require.NoError(t, err)
	assert.Equal(t, OutcomeErrored, result.Outcome)
	assert.Contains(t, result.Response, erroredPrefix)
	assert.Contains(t, result.Response, "llm down")
	assert.Nil(t, result.Annotation)
	assert.Empty(t, w.postChat.prompts)
	// The error message is still spoken.
	assert.Equal(t, int32(1), w.synthesizer.calls.Load())
	assert.Equal(t, result.Response, w.synthesizer.last)
	assert.FileExists(t, result.AudioPath)
}

func TestAskUnsupportedDetectedLangDefaultsToFrench(t *testing.T) {
	w := newOrchestratorWorld(t)
	w.transcriber.lang = "de"
	audio := stageAudio(t, "question.wav")

	result, err := w.orch.Ask(context.Background(), audio)
	require.NoError(t, err)
	assert.Equal(t, "fr", result.ResponseLang)
}

func TestAskSynthesisFailureFails(t *testing.T) {
	w := newOrchestratorWorld(t)
	w.synthesizer.err = errors.New("tts down")
	audio := stageAudio(t, "question.wav")

	_, err := w.orch.Ask(context.Background(), audio)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tts down")
	assert.NoFileExists(t, audio)
}

func TestSupportedAudio(t *testing.T) {
	for _, ext := range []string{".webm", ".wav", ".mp3", ".ogg", ".m4a", ".flac", ".WAV"} {
		assert.True(t, SupportedAudio(ext), ext)
	}
	assert.False(t, SupportedAudio(".aiff"))
	assert.False(t, SupportedAudio(""))
}
