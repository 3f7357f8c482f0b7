// Package handler provides the HTTP handlers of the voice assistant.
package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lingora-ai/lingora/internal/lingora/biz"
	"github.com/lingora-ai/lingora/internal/lingora/store"
	"github.com/lingora-ai/lingora/internal/pkg/extract"
)

// SuccessResponse is a standard success response.
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Handler handles document and ask requests.
type Handler struct {
	ingestor  *biz.Ingestor
	orch      *biz.Orchestrator
	handle    *store.Handle
	uploadDir string
	logger    *zap.Logger
}

// New creates a Handler.
func New(ingestor *biz.Ingestor, orch *biz.Orchestrator, handle *store.Handle, uploadDir string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		ingestor:  ingestor,
		orch:      orch,
		handle:    handle,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// IngestDocuments handles document upload, deletion and re-indexing.
func (h *Handler) IngestDocuments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: "invalid multipart form: " + err.Error()})
		return
	}

	req := &biz.IngestRequest{
		TargetLang: c.PostForm("target_lang"),
		ReplaceAll: c.PostForm("replace_all") == "true",
		Delete:     form.Value["delete"],
	}

	files := form.File["files"]
	for _, f := range files {
		if !extract.Supported(filepath.Ext(f.Filename)) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    400,
				Message: fmt.Sprintf("unsupported document format: %s", f.Filename),
			})
			return
		}
	}

	staged, err := h.stageUploads(c, files)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}
	defer func() {
		for _, path := range staged {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				h.logger.Warn("failed to remove staged upload", zap.Error(err))
			}
		}
	}()
	req.StagedFiles = staged

	report, err := h.ingestor.Ingest(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}

	message := fmt.Sprintf("%d file(s) processed", report.Processed)
	if report.Processed == 0 && report.Deleted > 0 {
		message = fmt.Sprintf("%d file(s) deleted", report.Deleted)
	}
	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: message, Data: report})
}

// ListDocuments returns the indexable documents.
func (h *Handler) ListDocuments(c *gin.Context) {
	names, err := h.ingestor.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "ok", Data: gin.H{"files": names}})
}

// PreviewDocument returns the content of a .txt document.
func (h *Handler) PreviewDocument(c *gin.Context) {
	name := c.Param("name")
	content, ok, err := h.ingestor.Preview(name)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Code: 404, Message: "document not found"})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, SuccessResponse{
			Code:    0,
			Message: "ok",
			Data:    gin.H{"content": fmt.Sprintf("preview not available for %s", name), "type": "other"},
		})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Code:    0,
		Message: "ok",
		Data:    gin.H{"content": content, "type": "text"},
	})
}

// Ask answers a spoken question uploaded as multipart audio.
func (h *Handler) Ask(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: "audio file is required"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".webm"
	}
	if !biz.SupportedAudio(ext) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    400,
			Message: fmt.Sprintf("unsupported audio format: %s", file.Filename),
		})
		return
	}

	tempPath := filepath.Join(h.uploadDir, fmt.Sprintf("question_%s%s", requestID(), ext))
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: "failed to store audio: " + err.Error()})
		return
	}

	result, err := h.orch.Ask(c.Request.Context(), tempPath)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, biz.ErrNoIndex) || errors.Is(err, biz.ErrUnsupportedAudio) || errors.Is(err, biz.ErrEmptyTranscript) {
			status = http.StatusBadRequest
		}
		c.JSON(status, ErrorResponse{Code: status, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Code:    0,
		Message: "ok",
		Data: gin.H{
			"transcribed_text": result.Transcript,
			"response":         result.Response,
			"audio_url":        "/tts_output/" + filepath.Base(result.AudioPath),
			"emotions_actions": result.Annotation,
			"response_lang":    result.ResponseLang,
			"outcome":          result.Outcome,
		},
	})
}

// Stats reports the size of the live index.
func (h *Handler) Stats(c *gin.Context) {
	idx := h.handle.Index()
	if idx == nil {
		c.JSON(http.StatusOK, SuccessResponse{
			Code: 0, Message: "ok",
			Data: gin.H{"indexed": 0, "loaded": false},
		})
		return
	}
	n, err := idx.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Code: 0, Message: "ok",
		Data: gin.H{"indexed": n, "loaded": true},
	})
}

func requestID() string {
	return uuid.NewString()[:8]
}

// stageUploads writes the multipart files into the upload dir, keeping
// their base names so ingestion can reuse them.
func (h *Handler) stageUploads(c *gin.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	staged := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(h.uploadDir, filepath.Base(f.Filename))
		if err := c.SaveUploadedFile(f, path); err != nil {
			return staged, fmt.Errorf("store upload %s: %w", f.Filename, err)
		}
		staged = append(staged, path)
	}
	return staged, nil
}
