package biz

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/lingora-ai/lingora/internal/pkg/langid"
	"github.com/lingora-ai/lingora/pkg/llm"
	"github.com/lingora-ai/lingora/pkg/translate"
)

// Annotation tags an answer with the controlled vocabularies used by
// the game client.
type Annotation struct {
	Emotion     string   `json:"emotion"`
	Actions     []string `json:"actions"`
	Destination string   `json:"destination,omitempty"`
}

// PostProcessorConfig wires a PostProcessor.
type PostProcessorConfig struct {
	Chat       llm.ChatProvider
	Translator translate.Translator
	Detector   *langid.Detector
	Logger     *zap.Logger
}

// PostProcessor annotates genuine answers and reconciles their language
// with the response language. Both steps degrade rather than fail: a
// broken annotation yields nil, a broken translation keeps the original
// text.
type PostProcessor struct {
	chat       llm.ChatProvider
	translator translate.Translator
	detector   *langid.Detector
	logger     *zap.Logger
}

// NewPostProcessor creates a PostProcessor.
func NewPostProcessor(cfg PostProcessorConfig) *PostProcessor {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &PostProcessor{
		chat:       cfg.Chat,
		translator: cfg.Translator,
		detector:   cfg.Detector,
		logger:     cfg.Logger,
	}
}

// Process returns the annotation (nil when extraction fails) and the
// answer text, translated to responseLang when it came back in another
// language.
func (p *PostProcessor) Process(ctx context.Context, answer, responseLang string) (*Annotation, string) {
	annotation := p.annotate(ctx, answer, responseLang)

	answerLang, ok := p.detector.Detect(answer)
	if ok && answerLang != responseLang {
		translated, err := p.translator.Translate(ctx, answer, answerLang, responseLang)
		if err != nil {
			p.logger.Warn("failed to translate answer, keeping original",
				zap.String("from", answerLang), zap.String("to", responseLang),
				zap.Error(err))
		} else if strings.TrimSpace(translated) != "" {
			answer = translated
		}
	}
	return annotation, answer
}

func (p *PostProcessor) annotate(ctx context.Context, answer, lang string) *Annotation {
	raw, err := p.chat.Generate(ctx, BuildAnnotationPrompt(lang, answer), "")
	if err != nil {
		p.logger.Warn("annotation generation failed", zap.Error(err))
		return nil
	}

	var annotation Annotation
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &annotation); err != nil {
		p.logger.Warn("annotation is not valid json",
			zap.String("raw", raw), zap.Error(err))
		return nil
	}
	return &annotation
}

// stripCodeFence unwraps a ```json ... ``` block if the model added one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
