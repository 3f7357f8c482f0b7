package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmotionDescriptorKnownLabels(t *testing.T) {
	assert.Equal(t, EmotionAnger, EmotionDescriptor("anger"))
	assert.Equal(t, EmotionSadness, EmotionDescriptor("sadness"))
	assert.Equal(t, EmotionHappiness, EmotionDescriptor("happiness"))
	assert.Equal(t, EmotionNeutral, EmotionDescriptor("neutral"))
	assert.Equal(t, EmotionDisgust, EmotionDescriptor("disgust"))
	assert.Equal(t, EmotionFear, EmotionDescriptor("fear"))
	assert.Equal(t, EmotionSurprise, EmotionDescriptor("surprise"))
	assert.EqualValues(t, "Joie / Excitation", EmotionHappiness)
}

func TestEmotionDescriptorDegradesToNeutral(t *testing.T) {
	assert.Equal(t, NeutralEmotion, EmotionDescriptor(""))
	assert.Equal(t, NeutralEmotion, EmotionDescriptor(ErrorEmotion))
	assert.Equal(t, NeutralEmotion, EmotionDescriptor("contempt"))
}

func TestResolveLanguage(t *testing.T) {
	assert.Equal(t, "fr", ResolveLanguage("fr"))
	assert.Equal(t, "en", ResolveLanguage("en"))
	assert.Equal(t, "ar", ResolveLanguage("ar"))
	assert.Equal(t, "fr", ResolveLanguage("de"))
	assert.Equal(t, "fr", ResolveLanguage(""))
}

func TestFallbackMessagePerLanguage(t *testing.T) {
	assert.Contains(t, FallbackMessage("fr"), "pertinentes")
	assert.Contains(t, FallbackMessage("en"), "relevant information")
	assert.NotEmpty(t, FallbackMessage("ar"))
	assert.Equal(t, FallbackMessage("fr"), FallbackMessage("unknown"))
}

func TestBuildAnswerPromptPerLanguage(t *testing.T) {
	fr := BuildAnswerPrompt("fr", "Joie / Excitation", "ctx", "q")
	assert.Contains(t, fr, "assistant expert")
	assert.Contains(t, fr, "Joie / Excitation")
	assert.Contains(t, fr, "ctx")
	assert.Contains(t, fr, "q")

	en := BuildAnswerPrompt("en", "Neutral", "ctx", "q")
	assert.Contains(t, en, "expert assistant")
	assert.Contains(t, en, "ONLY the context")

	ar := BuildAnswerPrompt("ar", "محايد", "ctx", "q")
	assert.Contains(t, ar, "مساعد خبير")

	// Unsupported languages fall back to the French template.
	assert.Contains(t, BuildAnswerPrompt("de", "x", "c", "q"), "assistant expert")
}

func TestBuildAnnotationPromptPerLanguage(t *testing.T) {
	assert.Contains(t, BuildAnnotationPrompt("fr", "rep"), "suis_moi")
	assert.Contains(t, BuildAnnotationPrompt("en", "rep"), "follow_me")
	assert.Contains(t, BuildAnnotationPrompt("ar", "rep"), "اتبعني")
	assert.Contains(t, BuildAnnotationPrompt("xx", "rep"), "suis_moi")
}
