// Package handlers implements the HTTP endpoints of the chatbot API.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sortphy/chatgpdune/internal/domain"
	"github.com/sortphy/chatgpdune/internal/processor"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	searchPreviewRunes = 200
)

type Handler struct {
	processor      *processor.Service
	models         domain.ModelResolver
	embeddingModel string
	collection     string
}

func New(p *processor.Service, models domain.ModelResolver, embeddingModel, collection string) *Handler {
	return &Handler{
		processor:      p,
		models:         models,
		embeddingModel: embeddingModel,
		collection:     collection,
	}
}

// Chat handles POST /chat.
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.processor.Chat(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Search handles GET /search: raw retrieval results, bypassing the gate
// and the model entirely.
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter required"})
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	results, err := h.processor.Search(c.Request.Context(), query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for i := range results {
		results[i].Text = preview(results[i].Text)
	}

	c.JSON(http.StatusOK, gin.H{
		"query":         query,
		"results_count": len(results),
		"results":       results,
	})
}

// Health handles GET /health: readiness of the retrieval backend.
func (h *Handler) Health(c *gin.Context) {
	health := h.processor.Health(c.Request.Context())
	health.EmbeddingModel = h.embeddingModel
	health.Collection = h.collection

	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, health)
}

// Models handles GET /models: the static list of configured models.
func (h *Handler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"models":  h.models.Models(),
		"default": h.models.DefaultModel(),
	})
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= searchPreviewRunes {
		return text
	}
	return string(runes[:searchPreviewRunes]) + "..."
}
