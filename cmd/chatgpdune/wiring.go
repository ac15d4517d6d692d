package chatgpdune

import (
	"fmt"

	"github.com/sortphy/chatgpdune/api"
	"github.com/sortphy/chatgpdune/internal/chunker"
	"github.com/sortphy/chatgpdune/internal/config"
	"github.com/sortphy/chatgpdune/internal/embedder"
	"github.com/sortphy/chatgpdune/internal/gate"
	"github.com/sortphy/chatgpdune/internal/llm"
	"github.com/sortphy/chatgpdune/internal/processor"
	"github.com/sortphy/chatgpdune/internal/prompt"
	"github.com/sortphy/chatgpdune/internal/store"
)

// services holds everything a command needs, constructed once per process
// and torn down with Close.
type services struct {
	processor *processor.Service
	models    *llm.Registry
	store     *store.QdrantStore
}

func buildServices(cfg *config.Config) (*services, error) {
	vectorStore, err := store.NewQdrantStore(cfg.Qdrant.URL, cfg.Qdrant.Collection, cfg.Qdrant.VectorDim)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	embedService, err := embedder.NewOllamaService(cfg.Ollama.BaseURL, cfg.Ollama.EmbeddingModel)
	if err != nil {
		_ = vectorStore.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	models, err := llm.NewRegistry(cfg.Ollama.BaseURL, cfg.Ollama.LLMModel, cfg.Ollama.Models)
	if err != nil {
		_ = vectorStore.Close()
		return nil, fmt.Errorf("failed to create model registry: %w", err)
	}

	proc := processor.New(
		embedService,
		models,
		chunker.New(),
		vectorStore,
		gate.New(cfg.Gate.MinChunkChars, cfg.Gate.OverlapThreshold),
		prompt.NewAssembler(),
		processor.Options{
			TopK:              cfg.Gate.TopK,
			RetrievalTimeout:  cfg.Qdrant.Timeout,
			GenerationTimeout: cfg.Ollama.Timeout,
		},
		api.NewLogger(cfg.Server).With().Str("component", "processor").Logger(),
	)

	return &services{
		processor: proc,
		models:    models,
		store:     vectorStore,
	}, nil
}

func (s *services) Close() {
	if err := s.store.Close(); err != nil {
		fmt.Printf("Warning: failed to close vector store: %v\n", err)
	}
}
