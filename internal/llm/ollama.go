// Package llm wraps local Ollama models behind the domain.Generator
// interface and keeps a registry of the configured models.
package llm

import (
	"context"
	"fmt"

	"github.com/liliang-cn/ollama-go"
	"github.com/sortphy/chatgpdune/internal/domain"
)

type OllamaService struct {
	client  *ollama.Client
	model   string
	baseURL string
}

func NewOllamaService(baseURL, model string) (*OllamaService, error) {
	client, err := ollama.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	return &OllamaService{
		client:  client,
		model:   model,
		baseURL: baseURL,
	}, nil
}

func (s *OllamaService) Model() string { return s.model }

func (s *OllamaService) Generate(ctx context.Context, prompt string, opts *domain.GenerationOptions) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: empty prompt", domain.ErrInvalidInput)
	}

	stream := false
	req := &ollama.GenerateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: &stream,
	}

	if opts != nil {
		options := &ollama.Options{}
		if opts.Temperature >= 0 {
			options.Temperature = &opts.Temperature
		}
		if opts.MaxTokens > 0 {
			numPredict := opts.MaxTokens
			options.NumPredict = &numPredict
		}
		req.Options = options
	}

	resp, err := s.client.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	return resp.Response, nil
}

func (s *OllamaService) Health(ctx context.Context) error {
	if _, err := s.client.Version(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	return nil
}
