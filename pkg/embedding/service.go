package embedding

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/tripmind/tripmind/pkg/config"
	"github.com/tripmind/tripmind/pkg/domain"
)

// Service generates embeddings through an OpenAI-compatible endpoint. It
// implements the recommender's Embedder interface; callers treat failures
// as a degraded backend, not a pipeline error.
type Service struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewService creates an embedding service for the configured backend
func NewService(cfg config.EmbeddingConfig) *Service {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	return &Service{
		client: openai.NewClientWithConfig(clientConfig),
		model:  openai.EmbeddingModel(cfg.Model),
	}
}

// Embed returns one vector per input text, in input order
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: s.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w: %w", domain.ErrBackendUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding backend returned %d vectors for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float64, len(resp.Data))
	for i, data := range resp.Data {
		vec := make([]float64, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float64(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}
