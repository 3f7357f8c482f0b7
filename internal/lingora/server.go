// Package lingora assembles the voice assistant server: document
// ingestion, spoken question answering and the HTTP surface over both.
package lingora

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lingora-ai/lingora/internal/lingora/biz"
	"github.com/lingora-ai/lingora/internal/lingora/handler"
	"github.com/lingora-ai/lingora/internal/lingora/router"
	"github.com/lingora-ai/lingora/internal/lingora/store"
	"github.com/lingora-ai/lingora/internal/pkg/langid"
	"github.com/lingora-ai/lingora/pkg/component/milvus"
	"github.com/lingora-ai/lingora/pkg/llm"
	"github.com/lingora-ai/lingora/pkg/speech"
	"github.com/lingora-ai/lingora/pkg/speech/hfaudio"
	"github.com/lingora-ai/lingora/pkg/speech/openaispeech"
	"github.com/lingora-ai/lingora/pkg/speech/whisper"
	"github.com/lingora-ai/lingora/pkg/translate"

	// Register LLM providers.
	_ "github.com/lingora-ai/lingora/pkg/llm/ollama"
	_ "github.com/lingora-ai/lingora/pkg/llm/openai"

	cacheopts "github.com/lingora-ai/lingora/pkg/options/cache"
	httpopts "github.com/lingora-ai/lingora/pkg/options/http"
	llmopts "github.com/lingora-ai/lingora/pkg/options/llm"
	logopts "github.com/lingora-ai/lingora/pkg/options/logger"
	milvusopts "github.com/lingora-ai/lingora/pkg/options/milvus"
	pipelineopts "github.com/lingora-ai/lingora/pkg/options/pipeline"
	speechopts "github.com/lingora-ai/lingora/pkg/options/speech"
	translateopts "github.com/lingora-ai/lingora/pkg/options/translate"
)

// Name is the name of the application.
const Name = "lingora"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MilvusOptions    *milvusopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	PipelineOptions  *pipelineopts.Options
	SpeechOptions    *speechopts.Options
	TranslateOptions *translateopts.Options
	CacheOptions     *cacheopts.Options
	ShutdownTimeout  time.Duration
}

// Server is the assembled voice assistant.
type Server struct {
	httpSrv  *http.Server
	watcher  *biz.Watcher
	logger   *zap.Logger
	shutdown time.Duration
	closers  []func()
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	// 1. Logger
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := zap.L().Named(Name)
	logger.Info("starting lingora service")

	srv := &Server{logger: logger, shutdown: cfg.ShutdownTimeout}
	if srv.shutdown <= 0 {
		srv.shutdown = 10 * time.Second
	}

	// 2. Working directories
	for _, dir := range []string{
		cfg.PipelineOptions.DocsDir,
		cfg.PipelineOptions.UploadDir,
		cfg.SpeechOptions.OutputDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// 3. Index builder
	handle := store.NewHandle()
	builder, err := cfg.newIndexBuilder(logger)
	if err != nil {
		return nil, err
	}
	srv.closers = append(srv.closers, func() { _ = builder.Close(context.Background()) })
	logger.Info("index builder initialized", zap.String("backend", cfg.PipelineOptions.Builder))

	// 4. LLM providers
	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	logger.Info("embedding provider initialized",
		zap.String("provider", cfg.EmbeddingOptions.Provider),
		zap.String("model", cfg.EmbeddingOptions.Model))

	chatProvider, err := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Info("chat provider initialized",
		zap.String("provider", cfg.ChatOptions.Provider),
		zap.String("model", cfg.ChatOptions.Model))

	// 5. Answer cache
	var cache *biz.AnswerCache
	if cfg.CacheOptions.Enabled {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.CacheOptions.Addr,
			Password: cfg.CacheOptions.Password,
			DB:       cfg.CacheOptions.Database,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("failed to connect to redis, answer cache disabled", zap.Error(err))
			_ = redisClient.Close()
		} else {
			cache = biz.NewAnswerCache(redisClient, cfg.CacheOptions.KeyPrefix, cfg.CacheOptions.TTL, logger)
			srv.closers = append(srv.closers, func() { _ = redisClient.Close() })
			logger.Info("answer cache initialized",
				zap.String("addr", cfg.CacheOptions.Addr),
				zap.Duration("ttl", cfg.CacheOptions.TTL))
		}
	}

	// 6. Language tools. es/de are decoys: texts in neighboring
	// languages land on them instead of polluting the supported three.
	detector := langid.New(append([]string{"es", "de"}, biz.SupportedLanguages...))
	translator := translate.NewHFTranslator(translate.Options{
		BaseURL:      cfg.TranslateOptions.BaseURL,
		APIKey:       cfg.TranslateOptions.APIKey,
		ModelPattern: cfg.TranslateOptions.ModelPattern,
		ChunkBudget:  cfg.TranslateOptions.ChunkBudget,
		Timeout:      cfg.TranslateOptions.Timeout,
	})

	// 7. Speech adapters
	transcriber, classifier, synthesizer, err := cfg.newSpeechAdapters()
	if err != nil {
		return nil, err
	}
	logger.Info("speech adapters initialized",
		zap.String("stt", transcriber.Name()),
		zap.String("emotion", classifier.Name()),
		zap.String("tts", synthesizer.Name()))

	// 8. Biz layer
	ingestor := biz.NewIngestor(biz.IngestorConfig{
		DocsDir:     cfg.PipelineOptions.DocsDir,
		ChunkBudget: cfg.TranslateOptions.ChunkBudget,
		Workers:     cfg.PipelineOptions.Workers,
		Translator:  translator,
		Detector:    detector,
		Embedder:    embedProvider,
		Builder:     builder,
		Handle:      handle,
		Logger:      logger,
	})
	answerer := biz.NewAnswerer(biz.AnswererConfig{
		TopK:           cfg.PipelineOptions.TopK,
		ScoreThreshold: cfg.PipelineOptions.ScoreThreshold,
		Detector:       detector,
		Embedder:       embedProvider,
		Chat:           chatProvider,
		Handle:         handle,
		Cache:          cache,
		Logger:         logger,
	})
	post := biz.NewPostProcessor(biz.PostProcessorConfig{
		Chat:       chatProvider,
		Translator: translator,
		Detector:   detector,
		Logger:     logger,
	})
	orch := biz.NewOrchestrator(biz.OrchestratorConfig{
		Transcriber: transcriber,
		Classifier:  classifier,
		Synthesizer: synthesizer,
		Answerer:    answerer,
		Post:        post,
		Handle:      handle,
		OutputDir:   cfg.SpeechOptions.OutputDir,
		CallTimeout: cfg.SpeechOptions.Timeout,
		Logger:      logger,
	})
	logger.Info("pipeline initialized",
		zap.Int("top_k", cfg.PipelineOptions.TopK),
		zap.Float64("score_threshold", float64(cfg.PipelineOptions.ScoreThreshold)))

	// 9. Rebuild the index from documents already on disk.
	if err := ingestor.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("failed to bootstrap index: %w", err)
	}

	if cfg.PipelineOptions.Watch {
		srv.watcher = biz.NewWatcher(cfg.PipelineOptions.DocsDir, ingestor, 0, logger)
	}

	// 10. HTTP surface
	gin.SetMode(cfg.HTTPOptions.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))
	engine.MaxMultipartMemory = cfg.HTTPOptions.MaxUploadSize

	h := handler.New(ingestor, orch, handle, cfg.PipelineOptions.UploadDir, logger)
	router.Register(engine, h, cfg.SpeechOptions.OutputDir)

	srv.httpSrv = &http.Server{
		Addr:         cfg.HTTPOptions.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
		WriteTimeout: cfg.HTTPOptions.WriteTimeout,
	}

	logger.Info("lingora service is ready", zap.String("addr", cfg.HTTPOptions.Addr))
	return srv, nil
}

func (cfg *Config) newIndexBuilder(logger *zap.Logger) (store.IndexBuilder, error) {
	switch cfg.PipelineOptions.Builder {
	case "milvus":
		client, err := milvus.New(cfg.MilvusOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize milvus: %w", err)
		}
		return store.NewMilvusBuilder(client,
			cfg.PipelineOptions.Collection,
			cfg.PipelineOptions.EmbeddingDim,
			logger), nil
	case "memory":
		return store.NewMemoryBuilder(), nil
	default:
		return nil, fmt.Errorf("unknown index builder: %s", cfg.PipelineOptions.Builder)
	}
}

func (cfg *Config) newSpeechAdapters() (speech.Transcriber, speech.Classifier, speech.Synthesizer, error) {
	var transcriber speech.Transcriber
	switch cfg.SpeechOptions.STTProvider {
	case "whisper":
		transcriber = whisper.New(cfg.SpeechOptions.WhisperURL, cfg.SpeechOptions.Timeout)
	case "openai":
		t, err := openaispeech.NewTranscriber(cfg.SpeechOptions.TTSAPIKey, "", cfg.SpeechOptions.Timeout)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize openai transcriber: %w", err)
		}
		transcriber = t
	default:
		return nil, nil, nil, fmt.Errorf("unknown stt provider: %s", cfg.SpeechOptions.STTProvider)
	}

	classifier := hfaudio.New(
		cfg.SpeechOptions.EmotionURL,
		cfg.SpeechOptions.EmotionAPIKey,
		cfg.SpeechOptions.EmotionModel,
		cfg.SpeechOptions.Timeout,
	)

	synthesizer, err := openaispeech.NewSynthesizer(
		cfg.SpeechOptions.TTSAPIKey,
		cfg.SpeechOptions.TTSModel,
		cfg.SpeechOptions.TTSVoice,
		cfg.SpeechOptions.Timeout,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize synthesizer: %w", err)
	}
	return transcriber, classifier, synthesizer, nil
}

// Run starts the server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		for _, closeFn := range s.closers {
			closeFn()
		}
	}()

	if s.watcher != nil {
		go func() {
			if err := s.watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("document watcher stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("http server listening", zap.String("addr", s.httpSrv.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request with zap.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
