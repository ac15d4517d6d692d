package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmbeddingFailed    = errors.New("embedding generation failed")
	ErrGenerationFailed   = errors.New("text generation failed")
	ErrChunkingFailed     = errors.New("text chunking failed")
	ErrVectorStoreFailed  = errors.New("vector store operation failed")
	ErrServiceUnavailable = errors.New("service unavailable")
)
