// Package router wires the HTTP routes of the voice assistant.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lingora-ai/lingora/internal/lingora/handler"
)

// Register registers all routes on the gin engine. ttsDir is served
// statically so clients can fetch synthesized answers.
func Register(engine *gin.Engine, h *handler.Handler, ttsDir string) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/v1")
	{
		docs := v1.Group("/documents")
		{
			docs.POST("", h.IngestDocuments)
			docs.GET("", h.ListDocuments)
			docs.GET("/:name/preview", h.PreviewDocument)
		}

		v1.POST("/ask", h.Ask)
		v1.GET("/stats", h.Stats)
	}

	engine.StaticFS("/tts_output", gin.Dir(ttsDir, false))
}
