package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sortphy/chatgpdune/internal/domain"
	"github.com/sortphy/chatgpdune/internal/gate"
	"github.com/sortphy/chatgpdune/internal/processor"
	"github.com/sortphy/chatgpdune/internal/prompt"
)

type mockEmbedder struct {
	err error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []float64{0.1, 0.2, 0.3}, nil
}

type mockGenerator struct {
	response string
	err      error
}

func (m *mockGenerator) Generate(ctx context.Context, p string, opts *domain.GenerationOptions) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockGenerator) Health(ctx context.Context) error { return m.err }

type mockResolver struct {
	generator domain.Generator
	models    []string
	fallback  string
}

func (m *mockResolver) Resolve(model string) (domain.Generator, string) {
	return m.generator, m.fallback
}

func (m *mockResolver) Models() []string { return m.models }

func (m *mockResolver) DefaultModel() string { return m.fallback }

type mockChunker struct{}

func (m *mockChunker) Split(text string, options domain.ChunkOptions) ([]string, error) {
	return []string{text}, nil
}

type mockVectorStore struct {
	chunks []domain.Chunk
	err    error
}

func (m *mockVectorStore) Store(ctx context.Context, chunks []domain.Chunk) error { return m.err }

func (m *mockVectorStore) Search(ctx context.Context, vector []float64, topK int) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.chunks) > topK {
		return m.chunks[:topK], nil
	}
	return m.chunks, nil
}

func (m *mockVectorStore) Delete(ctx context.Context, documentID string) error { return m.err }

func (m *mockVectorStore) Reset(ctx context.Context) error { return m.err }

func (m *mockVectorStore) Close() error { return nil }

func newTestRouter(store *mockVectorStore, embedderErr error) *gin.Engine {
	gin.SetMode(gin.TestMode)

	resolver := &mockResolver{
		generator: &mockGenerator{response: "The spice extends life."},
		models:    []string{"deepseek-r1", "llama3.2"},
		fallback:  "deepseek-r1",
	}
	proc := processor.New(
		&mockEmbedder{err: embedderErr},
		resolver,
		&mockChunker{},
		store,
		gate.New(gate.DefaultMinChunkChars, gate.DefaultOverlapThreshold),
		prompt.NewAssembler(),
		processor.Options{},
		zerolog.Nop(),
	)

	h := New(proc, resolver, "nomic-embed-text", "dune_chunks")

	router := gin.New()
	router.POST("/chat", h.Chat)
	router.GET("/search", h.Search)
	router.GET("/health", h.Health)
	router.GET("/models", h.Models)
	return router
}

func TestHandler_Chat(t *testing.T) {
	router := newTestRouter(&mockVectorStore{}, nil)

	body, _ := json.Marshal(domain.ChatRequest{Text: "tell me about glauco"})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Glauco.", resp.Reply)
	assert.Equal(t, "deepseek-r1", resp.ModelUsed)
	assert.False(t, resp.Error)
}

func TestHandler_Chat_MissingText(t *testing.T) {
	router := newTestRouter(&mockVectorStore{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestHandler_Chat_InvalidJSON(t *testing.T) {
	router := newTestRouter(&mockVectorStore{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"text": `))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Search(t *testing.T) {
	store := &mockVectorStore{chunks: []domain.Chunk{
		{
			Content:  "Melange extends life and expands consciousness on the desert planet Arrakis.",
			Score:    0.9,
			Metadata: map[string]interface{}{"source_file": "dune.txt"},
		},
	}}
	router := newTestRouter(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/search?query=spice&limit=3", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Query        string                `json:"query"`
		ResultsCount int                   `json:"results_count"`
		Results      []domain.SearchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "spice", resp.Query)
	assert.Equal(t, 1, resp.ResultsCount)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "dune.txt", resp.Results[0].Source)
}

func TestHandler_Search_MissingQuery(t *testing.T) {
	router := newTestRouter(&mockVectorStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Search_BadLimit(t *testing.T) {
	router := newTestRouter(&mockVectorStore{}, nil)

	for _, limit := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/search?query=spice&limit="+limit, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
	}
}

func TestHandler_Search_PreviewTruncation(t *testing.T) {
	long := strings.Repeat("spice ", 100)
	store := &mockVectorStore{chunks: []domain.Chunk{{Content: long, Score: 0.5}}}
	router := newTestRouter(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/search?query=spice", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results []domain.SearchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.True(t, strings.HasSuffix(resp.Results[0].Text, "..."))
	assert.Len(t, []rune(resp.Results[0].Text), 203)
}

func TestHandler_Health(t *testing.T) {
	router := newTestRouter(&mockVectorStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var health domain.HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "nomic-embed-text", health.EmbeddingModel)
	assert.Equal(t, "dune_chunks", health.Collection)
}

func TestHandler_Health_Unavailable(t *testing.T) {
	router := newTestRouter(&mockVectorStore{}, errors.New("ollama down"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandler_Models(t *testing.T) {
	router := newTestRouter(&mockVectorStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Models  []string `json:"models"`
		Default string   `json:"default"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"deepseek-r1", "llama3.2"}, resp.Models)
	assert.Equal(t, "deepseek-r1", resp.Default)
}
