package biz

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lingora-ai/lingora/internal/lingora/store"
	"github.com/lingora-ai/lingora/pkg/llm/resilience"
	"github.com/lingora-ai/lingora/pkg/speech"
)

// State names one stage of the query pipeline.
type State string

const (
	StateReceived           State = "received"
	StateTranscribing       State = "transcribing"
	StateEmotionClassifying State = "emotion_classifying"
	StateRetrieving         State = "retrieving"
	StatePostProcessing     State = "post_processing"
	StateSynthesizing       State = "synthesizing"
	StateCompleted          State = "completed"
	StateFailed             State = "failed"
)

// Input-rejected errors, mapped to 400 by the handlers.
var (
	ErrNoIndex          = errors.New("no documents loaded, upload documents first")
	ErrUnsupportedAudio = errors.New("unsupported audio format")
	ErrEmptyTranscript  = errors.New("could not transcribe audio, make sure it contains speech")
)

// audioExtensions are the accepted question audio formats.
var audioExtensions = map[string]bool{
	".webm": true, ".wav": true, ".mp3": true,
	".ogg": true, ".m4a": true, ".flac": true,
}

// SupportedAudio reports whether ext is an accepted audio extension.
func SupportedAudio(ext string) bool {
	return audioExtensions[strings.ToLower(ext)]
}

// QueryResult is the completed pipeline output.
type QueryResult struct {
	Transcript   string      `json:"transcribed_text"`
	Response     string      `json:"response"`
	AudioPath    string      `json:"-"`
	Annotation   *Annotation `json:"emotions_actions"`
	ResponseLang string      `json:"response_lang"`
	Outcome      OutcomeTag  `json:"outcome"`
}

// OrchestratorConfig wires an Orchestrator.
type OrchestratorConfig struct {
	Transcriber speech.Transcriber
	Classifier  speech.Classifier
	Synthesizer speech.Synthesizer
	Answerer    *Answerer
	Post        *PostProcessor
	Handle      *store.Handle
	OutputDir   string
	CallTimeout time.Duration
	Logger      *zap.Logger
}

// Orchestrator drives one spoken question through transcription,
// emotion classification, retrieval, post-processing and synthesis.
// Every stage transition is explicit; emotion classification is the
// only stage allowed to fail softly.
type Orchestrator struct {
	transcriber speech.Transcriber
	classifier  speech.Classifier
	synthesizer speech.Synthesizer
	answerer    *Answerer
	post        *PostProcessor
	handle      *store.Handle
	outputDir   string
	callTimeout time.Duration
	logger      *zap.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "tts_output"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Orchestrator{
		transcriber: cfg.Transcriber,
		classifier:  cfg.Classifier,
		synthesizer: cfg.Synthesizer,
		answerer:    cfg.Answerer,
		post:        cfg.Post,
		handle:      cfg.Handle,
		outputDir:   cfg.OutputDir,
		callTimeout: cfg.CallTimeout,
		logger:      cfg.Logger,
	}
}

// Ask answers the spoken question in audioPath. The temp audio file is
// removed on every exit path.
func (o *Orchestrator) Ask(ctx context.Context, audioPath string) (*QueryResult, error) {
	queryID := uuid.NewString()[:8]
	logger := o.logger.With(zap.String("query", queryID))

	defer func() {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove temp audio", zap.Error(err))
		}
	}()

	state := StateReceived
	fail := func(err error) (*QueryResult, error) {
		logger.Warn("query failed",
			zap.String("state", string(state)), zap.Error(err))
		state = StateFailed
		return nil, err
	}

	if o.handle.Index() == nil {
		return fail(ErrNoIndex)
	}
	if !SupportedAudio(filepath.Ext(audioPath)) {
		return fail(fmt.Errorf("%w: %s", ErrUnsupportedAudio, filepath.Ext(audioPath)))
	}

	state = o.transition(logger, state, StateTranscribing)
	transcript, detectedLang, err := o.transcribe(ctx, audioPath)
	if err != nil {
		return fail(err)
	}
	if strings.TrimSpace(transcript) == "" {
		return fail(ErrEmptyTranscript)
	}
	responseLang := ResolveLanguage(detectedLang)
	logger.Info("transcribed question",
		zap.String("detected_lang", detectedLang),
		zap.String("response_lang", responseLang))

	state = o.transition(logger, state, StateEmotionClassifying)
	emotion := o.classify(ctx, logger, audioPath)

	state = o.transition(logger, state, StateRetrieving)
	outcome := o.answerer.Answer(ctx, transcript, emotion)

	result := &QueryResult{
		Transcript:   transcript,
		ResponseLang: responseLang,
		Outcome:      outcome.Tag,
	}

	switch outcome.Tag {
	case OutcomeAnswered:
		state = o.transition(logger, state, StatePostProcessing)
		annotation, text := o.post.Process(ctx, outcome.Text, responseLang)
		result.Annotation = annotation
		result.Response = text
	case OutcomeNoMatch:
		// The fallback is spoken in the response language, not the
		// question language the answerer detected.
		result.Response = FallbackMessage(responseLang)
	case OutcomeErrored:
		result.Response = outcome.Text
	}

	state = o.transition(logger, state, StateSynthesizing)
	audioOut, err := o.synthesize(ctx, result.Response, responseLang)
	if err != nil {
		return fail(fmt.Errorf("synthesize answer: %w", err))
	}
	result.AudioPath = audioOut

	state = o.transition(logger, state, StateCompleted)
	logger.Info("query completed",
		zap.String("outcome", string(result.Outcome)),
		zap.String("audio", filepath.Base(audioOut)))
	return result, nil
}

func (o *Orchestrator) transition(logger *zap.Logger, from, to State) State {
	logger.Debug("state transition",
		zap.String("from", string(from)), zap.String("to", string(to)))
	return to
}

type transcription struct {
	text string
	lang string
}

func (o *Orchestrator) transcribe(ctx context.Context, audioPath string) (string, string, error) {
	res, err := resilience.Do(ctx, "transcribe", o.callTimeout, func(ctx context.Context) (transcription, error) {
		text, lang, err := o.transcriber.Transcribe(ctx, audioPath)
		return transcription{text: text, lang: lang}, err
	})
	if err != nil {
		return "", "", fmt.Errorf("transcribe audio: %w", err)
	}
	return res.text, res.lang, nil
}

// classify never fails the query: any error or the error sentinel
// degrades to the neutral descriptor.
func (o *Orchestrator) classify(ctx context.Context, logger *zap.Logger, audioPath string) Emotion {
	label, confidence, err := o.classifier.Classify(ctx, audioPath)
	if err != nil {
		logger.Warn("emotion classification failed, assuming neutral", zap.Error(err))
		return NeutralEmotion
	}
	if label == ErrorEmotion {
		return NeutralEmotion
	}
	descriptor := EmotionDescriptor(label)
	logger.Info("classified emotion",
		zap.String("label", label),
		zap.Float64("confidence", confidence),
		zap.String("descriptor", string(descriptor)))
	return descriptor
}

func (o *Orchestrator) synthesize(ctx context.Context, text, lang string) (string, error) {
	return resilience.Do(ctx, "synthesize", o.callTimeout, func(ctx context.Context) (string, error) {
		return o.synthesizer.Synthesize(ctx, text, lang, o.outputDir)
	})
}
