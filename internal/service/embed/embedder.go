// Package embed provides text embedding clients behind a common interface.
package embed

import (
	"context"
	"fmt"

	"interview-memory-service/internal/config"
)

// Dimension is the embedding vector length produced by the default model
// (text-embedding-004). The datastore's vector index is configured for it.
const Dimension = 768

// Embedder generates fixed-length semantic vectors for text.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for a batch of texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// New creates an embedder for the configured provider.
func New(ctx context.Context, cfg *config.Configuration) (Embedder, error) {
	switch cfg.Embedding.Provider {
	case "gemini":
		return NewGemini(ctx, cfg.Google.APIKey, cfg.Google.EmbedModel)
	case "openai":
		return NewOpenAI(cfg.Embedding.OpenAIModel)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}
