package biz

import "fmt"

// SupportedLanguages are the languages the service answers in.
var SupportedLanguages = []string{"fr", "en", "ar"}

// DefaultLanguage is used when the question language cannot be resolved
// to a supported one.
const DefaultLanguage = "fr"

// IsSupportedLanguage reports whether lang is one of the answer
// languages.
func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// ResolveLanguage maps a detected language to the answer language,
// falling back to the default for unsupported or empty codes.
func ResolveLanguage(detected string) string {
	if IsSupportedLanguage(detected) {
		return detected
	}
	return DefaultLanguage
}

// fallbackMessages are spoken when retrieval finds nothing usable.
var fallbackMessages = map[string]string{
	"fr": "Je n'ai pas trouvé d'informations pertinentes pour répondre à votre question.",
	"en": "I couldn't find relevant information to answer your question.",
	"ar": "لم أجد معلومات ذات صلة للإجابة على سؤالك.",
}

// FallbackMessage returns the no-answer message for lang.
func FallbackMessage(lang string) string {
	if m, ok := fallbackMessages[lang]; ok {
		return m
	}
	return fallbackMessages[DefaultLanguage]
}

// BuildAnswerPrompt renders the generation prompt in the question
// language, carrying the caller's emotional state and the retrieved
// context.
func BuildAnswerPrompt(lang string, emotion Emotion, context, question string) string {
	switch lang {
	case "en":
		return fmt.Sprintf(`You are an expert assistant.
The user is currently feeling: %s.
Answer the question considering the user's emotional state, while using ONLY the context below.
If you don't know the answer, say you don't know. Be precise and factual.

Context:
%s

Question:
%s

Answer:`, emotion, context, question)
	case "ar":
		return fmt.Sprintf(`أنت مساعد خبير.
المستخدم حالياً يشعر بـ: %s.
أجب على السؤال مع مراعاة الحالة العاطفية للمستخدم، باستخدام السياق أدناه فقط.
إذا كنت لا تعرف الإجابة، فقل أنك لا تعرف. كن دقيقًا وواقعيًا.

السياق:
%s

السؤال:
%s

الإجابة:`, emotion, context, question)
	default:
		return fmt.Sprintf(`Tu es un assistant expert.
L'utilisateur se sent actuellement : %s.
Réponds à la question en tenant compte de son état émotionnel, en utilisant UNIQUEMENT le contexte ci-dessous.
Si tu ne connais pas la réponse, dis que tu ne sais pas. Sois précis et factuel.

Contexte:
%s

Question:
%s

Réponse:`, emotion, context, question)
	}
}

// BuildAnnotationPrompt renders the prompt asking the model to tag an
// answer with the controlled emotion, action and destination
// vocabularies.
func BuildAnnotationPrompt(lang, answer string) string {
	switch lang {
	case "en":
		return fmt.Sprintf(`You are an assistant analyzing a chatbot response in a video game.
Possible emotions: joyful, sad, angry, calm, surprised, neutral, encouraging, curious, fearful/anxious, determined, amused.
Possible actions: speak, run, dance, applaud, raise_hand, laugh, jump, walk, follow_me.
Possible destinations: forest, village, house, river, mountain.
For movement actions (walk, run, follow_me), add destination if mentioned, else "unknown".

Chatbot response:
%s

JSON format:
`, answer)
	case "ar":
		return fmt.Sprintf(`أنت مساعد يحلل رد شات بوت في لعبة فيديو.
العواطف المحتملة: سعيد، حزين، غاضب، هادئ، متفاجئ، محايد، مشجع، فضولي، قلق، مصمم، مستمتع.
الأفعال المحتملة: يتكلم، يركض، يرقص، يصفق، يرفع_يده، يضحك، يقفز، يمشي، اتبعني.
الوجهات المحتملة: غابة، قرية، منزل، نهر، جبل.
لكل فعل حركة (يمشي، يركض، اتبعني)، أضف الوجهة إذا وردت وإلا "غير_معروف".

رد الشات بوت:
%s

صيغة JSON:
`, answer)
	default:
		return fmt.Sprintf(`Tu es un assistant qui analyse la réponse d'un chatbot dans un jeu vidéo.
Liste des émotions possibles : joyeux, triste, en colère, calme, surpris, neutre, encourageant, curieux, anxieux, déterminé, amusé.
Liste des actions possibles : parler, courir, danser, applaudir, lever_la_main, rire, sauter, marcher, suis_moi.
Destinations possibles : forêt, village, maison, rivière, montagne.
Pour chaque action impliquant un déplacement (marcher, courir, suis_moi), ajoute la destination si mentionnée, sinon "inconnue".

Réponse chatbot :
%s

Format JSON strict :
`, answer)
	}
}
