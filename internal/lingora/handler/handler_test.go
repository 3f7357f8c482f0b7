package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingora-ai/lingora/internal/lingora/biz"
	"github.com/lingora-ai/lingora/internal/lingora/handler"
	"github.com/lingora-ai/lingora/internal/lingora/router"
	"github.com/lingora-ai/lingora/internal/lingora/store"
	"github.com/lingora-ai/lingora/internal/pkg/langid"
	"github.com/lingora-ai/lingora/pkg/llm"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (stubEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (stubEmbedder) Name() string { return "stub" }

type stubChat struct{}

func (stubChat) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return "Paris est la capitale.", nil
}

func (stubChat) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return "Paris est la capitale.", nil
}

func (stubChat) Name() string { return "stub" }

type stubTranslator struct{}

func (stubTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	return text, nil
}

type stubTranscriber struct{ text, lang string }

func (s stubTranscriber) Transcribe(ctx context.Context, audioPath string) (string, string, error) {
	return s.text, s.lang, nil
}

func (stubTranscriber) Name() string { return "stub" }

type stubClassifier struct{}

func (stubClassifier) Classify(ctx context.Context, audioPath string) (string, float64, error) {
	return "neutral", 0.8, nil
}

func (stubClassifier) Name() string { return "stub" }

type stubSynthesizer struct{}

func (stubSynthesizer) Synthesize(ctx context.Context, text, lang, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, "answer.mp3")
	return path, os.WriteFile(path, []byte("audio"), 0o644)
}

func (stubSynthesizer) Name() string { return "stub" }

func newTestEngine(t *testing.T) (*gin.Engine, *store.Handle) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	detector := langid.New(biz.SupportedLanguages)
	handle := store.NewHandle()
	docsDir := filepath.Join(t.TempDir(), "docs")
	ttsDir := t.TempDir()

	ingestor := biz.NewIngestor(biz.IngestorConfig{
		DocsDir:    docsDir,
		Translator: stubTranslator{},
		Detector:   detector,
		Embedder:   stubEmbedder{},
		Builder:    store.NewMemoryBuilder(),
		Handle:     handle,
	})
	require.NoError(t, ingestor.Bootstrap(context.Background()))

	answerer := biz.NewAnswerer(biz.AnswererConfig{
		Detector: detector,
		Embedder: stubEmbedder{},
		Chat:     stubChat{},
		Handle:   handle,
	})
	post := biz.NewPostProcessor(biz.PostProcessorConfig{
		Chat:       stubChat{},
		Translator: stubTranslator{},
		Detector:   detector,
	})
	orch := biz.NewOrchestrator(biz.OrchestratorConfig{
		Transcriber: stubTranscriber{text: "Quelle est la capitale de la France ? Dites-le moi.", lang: "fr"},
		Classifier:  stubClassifier{},
		Synthesizer: stubSynthesizer{},
		Answerer:    answerer,
		Post:        post,
		Handle:      handle,
		OutputDir:   ttsDir,
		CallTimeout: 5 * time.Second,
	})

	engine := gin.New()
	h := handler.New(ingestor, orch, handle, t.TempDir(), nil)
	router.Register(engine, h, ttsDir)
	return engine, handle
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, data := range files {
		field := "files"
		if biz.SupportedAudio(filepath.Ext(name)) {
			field = "file"
		}
		w, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doRequest(engine *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

const frenchDocText = "Paris est la capitale de la France. C'est une très grande ville avec beaucoup de monuments."

func uploadFrenchDoc(t *testing.T, engine *gin.Engine) {
	t.Helper()
	body, ct := multipartBody(t, nil, map[string][]byte{"capitale.txt": []byte(frenchDocText)})
	rec := doRequest(engine, http.MethodPost, "/v1/documents", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestIngestDocumentsAndList(t *testing.T) {
	engine, handle := newTestEngine(t)
	uploadFrenchDoc(t, engine)
	require.NotNil(t, handle.Index())

	rec := doRequest(engine, http.MethodGet, "/v1/documents", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "capitale.txt")
}

func TestIngestRejectsUnsupportedFormat(t *testing.T) {
	engine, handle := newTestEngine(t)
	body, ct := multipartBody(t, nil, map[string][]byte{"notes.md": []byte("# md")})
	rec := doRequest(engine, http.MethodPost, "/v1/documents", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, handle.Index())
}

func TestIngestDeleteViaForm(t *testing.T) {
	engine, handle := newTestEngine(t)
	uploadFrenchDoc(t, engine)

	body, ct := multipartBody(t, map[string]string{"delete": "capitale.txt"}, nil)
	rec := doRequest(engine, http.MethodPost, "/v1/documents", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "deleted")
	assert.Nil(t, handle.Index())
}

func TestPreviewDocument(t *testing.T) {
	engine, _ := newTestEngine(t)
	uploadFrenchDoc(t, engine)

	rec := doRequest(engine, http.MethodGet, "/v1/documents/capitale.txt/preview", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Paris est la capitale")

	rec = doRequest(engine, http.MethodGet, "/v1/documents/missing.txt/preview", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	engine, _ := newTestEngine(t)

	rec := doRequest(engine, http.MethodGet, "/v1/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loaded":false`)

	uploadFrenchDoc(t, engine)
	rec = doRequest(engine, http.MethodGet, "/v1/stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loaded":true`)
	assert.Contains(t, rec.Body.String(), `"indexed":1`)
}

func TestAskWithoutIndexRejected(t *testing.T) {
	engine, _ := newTestEngine(t)
	body, ct := multipartBody(t, nil, map[string][]byte{"question.wav": []byte("audio")})
	rec := doRequest(engine, http.MethodPost, "/v1/ask", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskRejectsUnsupportedAudio(t *testing.T) {
	engine, _ := newTestEngine(t)
	uploadFrenchDoc(t, engine)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	w, err := mw.CreateFormFile("file", "question.aiff")
	require.NoError(t, err)
	_, err = w.Write([]byte("audio"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := doRequest(engine, http.MethodPost, "/v1/ask", &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskHappyPath(t *testing.T) {
	engine, _ := newTestEngine(t)
	uploadFrenchDoc(t, engine)

	body, ct := multipartBody(t, nil, map[string][]byte{"question.wav": []byte("audio")})
	rec := doRequest(engine, http.MethodPost, "/v1/ask", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Transcript   string          `json:"transcribed_text"`
			Response     string          `json:"response"`
			AudioURL     string          `json:"audio_url"`
			Annotation   json.RawMessage `json:"emotions_actions"`
			ResponseLang string          `json:"response_lang"`
			Outcome      string          `json:"outcome"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.Code)
	assert.Equal(t, "fr", resp.Data.ResponseLang)
	assert.Equal(t, "answered", resp.Data.Outcome)
	assert.Equal(t, "Paris est la capitale.", resp.Data.Response)
	assert.Equal(t, "/tts_output/answer.mp3", resp.Data.AudioURL)

	// The synthesized artifact is served statically.
	audio := doRequest(engine, http.MethodGet, resp.Data.AudioURL, nil, "")
	assert.Equal(t, http.StatusOK, audio.Code)
}

func TestAskMissingFileRejected(t *testing.T) {
	engine, _ := newTestEngine(t)
	body, ct := multipartBody(t, map[string]string{"x": "y"}, nil)
	rec := doRequest(engine, http.MethodPost, "/v1/ask", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	engine, _ := newTestEngine(t)
	rec := doRequest(engine, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
