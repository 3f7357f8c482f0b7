package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostProcessor(chat *fakeChat, translator *fakeTranslator) *PostProcessor {
	return NewPostProcessor(PostProcessorConfig{
		Chat:       chat,
		Translator: translator,
		Detector:   testDetector,
	})
}

const frenchAnswer = "Paris est la capitale de la France et une très belle ville à visiter."

func TestProcessAnnotatesAnswer(t *testing.T) {
	chat := &fakeChat{reply: func(string) (string, error) {
		return `{"emotion": "joyeux", "actions": ["parler", "marcher"], "destination": "village"}`, nil
	}}
	translator := &fakeTranslator{}

	annotation, text := newTestPostProcessor(chat, translator).Process(context.Background(), frenchAnswer, "fr")
	require.NotNil(t, annotation)
	assert.Equal(t, "joyeux", annotation.Emotion)
	assert.Equal(t, []string{"parler", "marcher"}, annotation.Actions)
	assert.Equal(t, "village", annotation.Destination)
	assert.Equal(t, frenchAnswer, text)
	assert.Equal(t, int32(0), translator.calls.Load())
}

func TestProcessStripsCodeFence(t *testing.T) {
	chat := &fakeChat{reply: func(string) (string, error) {
		return "```json\n{\"emotion\": \"calme\", \"actions\": [\"parler\"]}\n```", nil
	}}

	annotation, _ := newTestPostProcessor(chat, &fakeTranslator{}).Process(context.Background(), frenchAnswer, "fr")
	require.NotNil(t, annotation)
	assert.Equal(t, "calme", annotation.Emotion)
}

func TestProcessInvalidAnnotationIsNil(t *testing.T) {
	chat := &fakeChat{reply: func(string) (string, error) {
		return "je ne peux pas produire de JSON", nil
	}}

	annotation, text := newTestPostProcessor(chat, &fakeTranslator{}).Process(context.Background(), frenchAnswer, "fr")
	assert.Nil(t, annotation)
	assert.Equal(t, frenchAnswer, text)
}

func TestProcessAnnotationErrorIsNil(t *testing.T) {
	chat := &fakeChat{reply: func(string) (string, error) {
		return "", errors.New("llm down")
	}}

	annotation, text := newTestPostProcessor(chat, &fakeTranslator{}).Process(context.Background(), frenchAnswer, "fr")
	assert.Nil(t, annotation)
	assert.Equal(t, frenchAnswer, text)
}

func TestProcessTranslatesMismatchedAnswer(t *testing.T) {
	const englishAnswer = "Paris is the capital of France and a lovely city to visit in the spring."
	chat := &fakeChat{reply: func(string) (string, error) { return `{"emotion":"neutre"}`, nil }}
	translator := &fakeTranslator{}

	_, text := newTestPostProcessor(chat, translator).Process(context.Background(), englishAnswer, "fr")
	assert.Equal(t, int32(1), translator.calls.Load())
	assert.Equal(t, "[en->fr] "+englishAnswer, text)
}

func TestProcessTranslationFailureKeepsOriginal(t *testing.T) {
	const englishAnswer = "Paris is the capital of France and a lovely city to visit in the spring."
	chat := &fakeChat{reply: func(string) (string, error) { return `{"emotion":"neutre"}`, nil }}
	translator := &fakeTranslator{err: errors.New("model loading")}

	_, text := newTestPostProcessor(chat, translator).Process(context.Background(), englishAnswer, "fr")
	assert.Equal(t, englishAnswer, text)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}
