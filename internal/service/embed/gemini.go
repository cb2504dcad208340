package embed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"interview-memory-service/internal/observability/metrics"
)

// Gemini is an embedding client for the Google GenAI embedding API.
type Gemini struct {
	model *genai.EmbeddingModel
}

// NewGemini creates a Gemini embedding client.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Gemini{model: client.EmbeddingModel(modelName)}, nil
}

// Embed generates an embedding vector for a single text.
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	res, err := g.model.EmbedContent(ctx, genai.Text(text))
	metrics.DefaultMetrics.EmbeddingLatency.WithLabelValues("gemini").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DefaultMetrics.EmbeddingFailures.WithLabelValues("gemini").Inc()
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	return res.Embedding.Values, nil
}

// EmbedBatch generates embedding vectors for a batch of texts.
func (g *Gemini) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	batch := g.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	start := time.Now()
	res, err := g.model.BatchEmbedContents(ctx, batch)
	metrics.DefaultMetrics.EmbeddingLatency.WithLabelValues("gemini").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DefaultMetrics.EmbeddingFailures.WithLabelValues("gemini").Inc()
		return nil, fmt.Errorf("embedding batch: %w", err)
	}

	embeddings := make([][]float32, 0, len(res.Embeddings))
	for _, emb := range res.Embeddings {
		embeddings = append(embeddings, emb.Values)
	}
	return embeddings, nil
}
