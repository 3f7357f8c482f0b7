package biz

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lingora-ai/lingora/internal/lingora/store"
	"github.com/lingora-ai/lingora/internal/pkg/langid"
	"github.com/lingora-ai/lingora/pkg/llm"
)

// OutcomeTag classifies an answering attempt.
type OutcomeTag string

const (
	// OutcomeAnswered carries a generated answer grounded in retrieved
	// context.
	OutcomeAnswered OutcomeTag = "answered"
	// OutcomeNoMatch means retrieval found nothing passing the score
	// and language filter.
	OutcomeNoMatch OutcomeTag = "no_match"
	// OutcomeErrored means search or generation failed.
	OutcomeErrored OutcomeTag = "errored"
)

// Outcome is the tagged result of Answer. Text is always set: the
// answer, the localized fallback, or the marked error message.
type Outcome struct {
	Tag OutcomeTag
	// Text is the user-facing text for this outcome.
	Text string
	// QuestionLang is the language detected on the question text.
	QuestionLang string
	// Sources names the documents that grounded an answered outcome.
	Sources []string
}

const erroredPrefix = "Erreur RAG : "

// AnswererConfig wires an Answerer.
type AnswererConfig struct {
	TopK           int
	ScoreThreshold float32
	Detector       *langid.Detector
	Embedder       llm.EmbeddingProvider
	Chat           llm.ChatProvider
	Handle         *store.Handle
	Cache          *AnswerCache
	Logger         *zap.Logger
}

// Answerer retrieves language-matched context and generates an
// emotion-aware answer.
type Answerer struct {
	topK      int
	threshold float32
	detector  *langid.Detector
	embedder  llm.EmbeddingProvider
	chat      llm.ChatProvider
	handle    *store.Handle
	cache     *AnswerCache
	logger    *zap.Logger
}

// NewAnswerer creates an Answerer.
func NewAnswerer(cfg AnswererConfig) *Answerer {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.ScoreThreshold == 0 {
		cfg.ScoreThreshold = 0.7
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Answerer{
		topK:      cfg.TopK,
		threshold: cfg.ScoreThreshold,
		detector:  cfg.Detector,
		embedder:  cfg.Embedder,
		chat:      cfg.Chat,
		handle:    cfg.Handle,
		cache:     cfg.Cache,
		logger:    cfg.Logger,
	}
}

// Answer runs the retrieval and generation pipeline for one question.
// emotion is the descriptor of the caller's state, used in the prompt
// only. It never returns an error; failures surface as OutcomeErrored.
func (a *Answerer) Answer(ctx context.Context, question string, emotion Emotion) Outcome {
	questionLang, ok := a.detector.Detect(question)
	if !ok {
		questionLang = DefaultLanguage
	}
	a.logger.Info("answering question",
		zap.String("lang", questionLang), zap.String("emotion", string(emotion)))

	if a.cache != nil {
		if text, ok := a.cache.Get(ctx, question, questionLang, emotion); ok {
			a.logger.Debug("answer cache hit", zap.String("lang", questionLang))
			return Outcome{Tag: OutcomeAnswered, Text: text, QuestionLang: questionLang}
		}
	}

	idx := a.handle.Index()
	if idx == nil {
		return Outcome{
			Tag:          OutcomeErrored,
			Text:         erroredPrefix + "aucun index disponible",
			QuestionLang: questionLang,
		}
	}

	embedding, err := a.embedder.EmbedSingle(ctx, question)
	if err != nil {
		return a.errored(questionLang, fmt.Errorf("embed question: %w", err))
	}

	hits, err := idx.Search(ctx, embedding, a.topK)
	if err != nil {
		return a.errored(questionLang, fmt.Errorf("search index: %w", err))
	}

	// Both conditions must hold; a high scoring document in another
	// language is never used.
	var relevant []*store.SearchResult
	for _, h := range hits {
		if h.Score > a.threshold && h.Lang == questionLang {
			relevant = append(relevant, h)
			a.logger.Debug("document selected",
				zap.String("source", h.Source),
				zap.Float32("score", h.Score),
				zap.String("lang", h.Lang))
		}
	}
	if len(relevant) == 0 {
		return Outcome{
			Tag:          OutcomeNoMatch,
			Text:         FallbackMessage(questionLang),
			QuestionLang: questionLang,
		}
	}

	contexts := make([]string, 0, len(relevant))
	sources := make([]string, 0, len(relevant))
	for _, r := range relevant {
		contexts = append(contexts, r.Content)
		sources = append(sources, r.Source)
	}

	prompt := BuildAnswerPrompt(questionLang, emotion, strings.Join(contexts, "\n\n"), question)
	answer, err := a.chat.Generate(ctx, prompt, "")
	if err != nil {
		return a.errored(questionLang, fmt.Errorf("generate answer: %w", err))
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return a.errored(questionLang, fmt.Errorf("generate answer: empty response"))
	}

	if a.cache != nil {
		a.cache.Set(ctx, question, questionLang, emotion, answer)
	}
	return Outcome{
		Tag:          OutcomeAnswered,
		Text:         answer,
		QuestionLang: questionLang,
		Sources:      sources,
	}
}

func (a *Answerer) errored(lang string, err error) Outcome {
	a.logger.Error("answering failed", zap.Error(err))
	return Outcome{
		Tag:          OutcomeErrored,
		Text:         erroredPrefix + err.Error(),
		QuestionLang: lang,
	}
}
