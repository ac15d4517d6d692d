package domain

import (
	"context"
	"time"
)

// Document is a single ingested source (a lore file, a wiki article, ...).
type Document struct {
	ID       string                 `json:"id"`
	Path     string                 `json:"path,omitempty"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Created  time.Time              `json:"created"`
}

// Chunk is a contiguous span of source text stored with its embedding.
// Score is only populated on retrieval results.
type Chunk struct {
	ID         string                 `json:"id"`
	DocumentID string                 `json:"document_id"`
	Content    string                 `json:"content"`
	Vector     []float64              `json:"vector,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Score      float64                `json:"score,omitempty"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Text   string `json:"text" binding:"required"`
	UseRAG *bool  `json:"use_rag,omitempty"`
	Model  string `json:"model,omitempty"`
}

// RAGEnabled reports whether retrieval should run for this request.
// Retrieval defaults to on when the field is omitted.
func (r ChatRequest) RAGEnabled() bool {
	return r.UseRAG == nil || *r.UseRAG
}

// SourceRef is the chunk-derived summary surfaced in a chat response.
type SourceRef struct {
	Source string  `json:"source"`
	Type   string  `json:"type,omitempty"`
	Score  float64 `json:"score,omitempty"`
}

// ChatResponse is the envelope returned by POST /chat.
type ChatResponse struct {
	Reply       string      `json:"reply"`
	ModelUsed   string      `json:"model_used"`
	RAGUsed     bool        `json:"rag_used"`
	SourcesUsed int         `json:"sources_used"`
	Sources     []SourceRef `json:"sources,omitempty"`
	Error       bool        `json:"error,omitempty"`
}

// SearchResult is one hit of the raw GET /search debug endpoint.
type SearchResult struct {
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
}

type IngestRequest struct {
	Content   string                 `json:"content,omitempty"`
	FilePath  string                 `json:"file_path,omitempty"`
	ChunkSize int                    `json:"chunk_size"`
	Overlap   int                    `json:"overlap"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type IngestResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
	Message    string `json:"message"`
}

// HealthStatus reports the readiness of the retrieval and generation backends.
type HealthStatus struct {
	Status         string `json:"status"`
	VectorStore    string `json:"vector_store"`
	EmbeddingModel string `json:"embedding_model"`
	Collection     string `json:"collection"`
	TestResults    int    `json:"test_query_results"`
	Detail         string `json:"detail,omitempty"`
}

type GenerationOptions struct {
	Temperature float64
	MaxTokens   int
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string, opts *GenerationOptions) (string, error)
	Health(ctx context.Context) error
}

// ModelResolver maps a requested model name to a Generator, falling back
// to the configured default.
type ModelResolver interface {
	Resolve(model string) (Generator, string)
	Models() []string
	DefaultModel() string
}

type Chunker interface {
	Split(text string, options ChunkOptions) ([]string, error)
}

type ChunkOptions struct {
	Size    int
	Overlap int
	Method  string
}

type VectorStore interface {
	Store(ctx context.Context, chunks []Chunk) error
	Search(ctx context.Context, vector []float64, topK int) ([]Chunk, error)
	Delete(ctx context.Context, documentID string) error
	Reset(ctx context.Context) error
	Close() error
}
