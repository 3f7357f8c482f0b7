package biz

// Emotion is the prompt-facing descriptor of the caller's emotional
// state.
type Emotion string

const (
	EmotionAnger     Emotion = "Colère / Frustration"
	EmotionSadness   Emotion = "Tristesse / Déception"
	EmotionHappiness Emotion = "Joie / Excitation"
	EmotionNeutral   Emotion = "Concentration / Engagement"
	EmotionDisgust   Emotion = "Dégoût / Mépris"
	EmotionFear      Emotion = "Peur / Anxiété"
	EmotionSurprise  Emotion = "Surprise / Étonnement"

	// NeutralEmotion is used when no emotion could be determined.
	NeutralEmotion Emotion = "Neutre"
)

// ErrorEmotion is the sentinel label adapters report when audio emotion
// analysis fails. The pipeline degrades to NeutralEmotion instead of
// failing the request.
const ErrorEmotion = "error"

// emotionDescriptors maps raw classifier labels to their descriptors.
var emotionDescriptors = map[string]Emotion{
	"anger":     EmotionAnger,
	"sadness":   EmotionSadness,
	"happiness": EmotionHappiness,
	"neutral":   EmotionNeutral,
	"disgust":   EmotionDisgust,
	"fear":      EmotionFear,
	"surprise":  EmotionSurprise,
}

// EmotionDescriptor resolves a raw classifier label to its descriptor.
// Unknown labels and the error sentinel map to neutral.
func EmotionDescriptor(label string) Emotion {
	if label == "" || label == ErrorEmotion {
		return NeutralEmotion
	}
	if d, ok := emotionDescriptors[label]; ok {
		return d
	}
	return NeutralEmotion
}
