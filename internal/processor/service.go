// Package processor orchestrates the chat pipeline: retrieval, relevance
// gating, prompt assembly, model invocation, and answer post-processing.
package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sortphy/chatgpdune/internal/domain"
	"github.com/sortphy/chatgpdune/internal/gate"
	"github.com/sortphy/chatgpdune/internal/prompt"
)

const apologyReply = "I encountered an error processing your question. Please try again."

// maxReportedSources caps the source summaries carried in a chat response.
const maxReportedSources = 3

// Options bound the pipeline's external calls.
type Options struct {
	TopK              int
	RetrievalTimeout  time.Duration
	GenerationTimeout time.Duration
	Temperature       float64
	MaxTokens         int
}

type Service struct {
	embedder    domain.Embedder
	models      domain.ModelResolver
	chunker     domain.Chunker
	vectorStore domain.VectorStore
	gate        *gate.Service
	assembler   *prompt.Assembler
	opts        Options
	logger      zerolog.Logger
}

func New(
	embedder domain.Embedder,
	models domain.ModelResolver,
	chunker domain.Chunker,
	vectorStore domain.VectorStore,
	gateService *gate.Service,
	assembler *prompt.Assembler,
	opts Options,
	logger zerolog.Logger,
) *Service {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.7
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 500
	}
	return &Service{
		embedder:    embedder,
		models:      models,
		chunker:     chunker,
		vectorStore: vectorStore,
		gate:        gateService,
		assembler:   assembler,
		opts:        opts,
		logger:      logger,
	}
}

// Chat runs one request through the pipeline. Failures of the retrieval
// backend degrade to a no-context answer; a failed model call is retried
// once with empty context, and a repeat failure yields the fixed apology
// with the error flag set instead of an error to the transport.
func (s *Service) Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return domain.ChatResponse{}, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	generator, modelUsed := s.models.Resolve(req.Model)

	// The trigger word bypasses retrieval and assembly entirely.
	if reply, ok := s.assembler.TriggerReply(req.Text); ok {
		return domain.ChatResponse{Reply: reply, ModelUsed: modelUsed}, nil
	}

	var contextChunks []domain.Chunk
	ragUsed := false

	if req.RAGEnabled() {
		retrieved, err := s.retrieve(ctx, req.Text, s.opts.TopK)
		if err != nil {
			s.logger.Warn().Err(err).Msg("retrieval failed, continuing without context")
		}

		decision := s.gate.Evaluate(req.Text, retrieved)
		s.logger.Debug().
			Bool("useful", decision.Useful).
			Float64("overlap", decision.Overlap).
			Int("retrieved", len(retrieved)).
			Msg("relevance gate decision")

		if decision.Useful {
			contextChunks = decision.Context
			ragUsed = true
		}
	}

	answer, err := s.generate(ctx, generator, req.Text, contextChunks)
	if err != nil {
		s.logger.Warn().Err(err).Str("model", modelUsed).Msg("generation failed, retrying without context")

		// Retry once with the no-context prompt from the same assembler.
		contextChunks = nil
		ragUsed = false
		answer, err = s.generate(ctx, generator, req.Text, nil)
		if err != nil {
			s.logger.Error().Err(err).Str("model", modelUsed).Msg("generation failed twice")
			return domain.ChatResponse{
				Reply:     apologyReply,
				ModelUsed: modelUsed,
				Error:     true,
			}, nil
		}
	}

	return domain.ChatResponse{
		Reply:       StripThinking(answer),
		ModelUsed:   modelUsed,
		RAGUsed:     ragUsed,
		SourcesUsed: len(contextChunks),
		Sources:     summarizeSources(contextChunks),
	}, nil
}

// Search is the raw retrieval path behind GET /search: no gate, no model.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 10
	}

	chunks, err := s.retrieve(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(chunks))
	for _, chunk := range chunks {
		results = append(results, domain.SearchResult{
			Text:   chunk.Content,
			Score:  chunk.Score,
			Source: sourceLabel(chunk),
		})
	}
	return results, nil
}

func (s *Service) Ingest(ctx context.Context, req domain.IngestRequest) (domain.IngestResponse, error) {
	content, err := s.extractContent(req)
	if err != nil {
		return domain.IngestResponse{}, err
	}
	if strings.TrimSpace(content) == "" {
		return domain.IngestResponse{Message: "no content found"}, nil
	}

	if req.Metadata == nil {
		req.Metadata = make(map[string]interface{})
	}
	if req.FilePath != "" {
		req.Metadata["source_file"] = filepath.Base(req.FilePath)
		req.Metadata["source_type"] = "local"
	}

	options := domain.ChunkOptions{
		Size:    req.ChunkSize,
		Overlap: req.Overlap,
		Method:  "sentence",
	}
	if options.Size <= 0 {
		options.Size = 300
	}
	if options.Overlap < 0 {
		options.Overlap = 50
	}

	textChunks, err := s.chunker.Split(content, options)
	if err != nil {
		return domain.IngestResponse{}, fmt.Errorf("failed to chunk text: %w", err)
	}

	docID := uuid.New().String()
	chunks := make([]domain.Chunk, 0, len(textChunks))
	for i, text := range textChunks {
		vector, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return domain.IngestResponse{}, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		chunks = append(chunks, domain.Chunk{
			ID:         fmt.Sprintf("%s_%d", docID, i),
			DocumentID: docID,
			Content:    text,
			Vector:     vector,
			Metadata:   req.Metadata,
		})
	}

	if err := s.vectorStore.Store(ctx, chunks); err != nil {
		return domain.IngestResponse{}, fmt.Errorf("failed to store vectors: %w", err)
	}

	return domain.IngestResponse{
		Success:    true,
		DocumentID: docID,
		ChunkCount: len(chunks),
		Message:    fmt.Sprintf("Successfully ingested %d chunks", len(chunks)),
	}, nil
}

// Health probes the embedding backend and runs a one-result test search
// against the vector store.
func (s *Service) Health(ctx context.Context) domain.HealthStatus {
	status := domain.HealthStatus{Status: "healthy", VectorStore: "connected"}

	results, err := s.retrieve(ctx, "test", 1)
	if err != nil {
		return domain.HealthStatus{
			Status:      "unhealthy",
			VectorStore: "unavailable",
			Detail:      err.Error(),
		}
	}
	status.TestResults = len(results)

	return status
}

func (s *Service) retrieve(ctx context.Context, query string, topK int) ([]domain.Chunk, error) {
	if s.opts.RetrievalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RetrievalTimeout)
		defer cancel()
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	chunks, err := s.vectorStore.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	return chunks, nil
}

func (s *Service) generate(ctx context.Context, generator domain.Generator, question string, chunks []domain.Chunk) (string, error) {
	if s.opts.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.GenerationTimeout)
		defer cancel()
	}

	return generator.Generate(ctx, s.assembler.Build(question, chunks), &domain.GenerationOptions{
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
	})
}

func (s *Service) extractContent(req domain.IngestRequest) (string, error) {
	hasContent := req.Content != ""
	hasFilePath := req.FilePath != ""

	switch {
	case hasContent && hasFilePath:
		return "", fmt.Errorf("%w: multiple content sources provided", domain.ErrInvalidInput)
	case hasContent:
		return req.Content, nil
	case hasFilePath:
		return readTextFile(req.FilePath)
	default:
		return "", fmt.Errorf("%w: no content source provided", domain.ErrInvalidInput)
	}
}

func readTextFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", path, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: unsupported file type %s", domain.ErrInvalidInput, filepath.Ext(path))
	}
}

func summarizeSources(chunks []domain.Chunk) []domain.SourceRef {
	if len(chunks) == 0 {
		return nil
	}

	n := len(chunks)
	if n > maxReportedSources {
		n = maxReportedSources
	}

	refs := make([]domain.SourceRef, 0, n)
	for _, chunk := range chunks[:n] {
		ref := domain.SourceRef{Source: sourceLabel(chunk), Score: chunk.Score}
		if typ, ok := chunk.Metadata["source_type"].(string); ok {
			ref.Type = typ
		}
		refs = append(refs, ref)
	}
	return refs
}

func sourceLabel(chunk domain.Chunk) string {
	if file, ok := chunk.Metadata["source_file"].(string); ok && file != "" {
		return file
	}
	if typ, ok := chunk.Metadata["source_type"].(string); ok && typ != "" {
		return typ
	}
	return "Database chunk"
}
