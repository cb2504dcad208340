package embed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"interview-memory-service/internal/observability/metrics"
)

// OpenAI is an embedding client for the OpenAI embeddings API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI embedding client.
// Requires the OPENAI_API_KEY environment variable.
func NewOpenAI(model string) (*OpenAI, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}
	return &OpenAI{
		client: openai.NewClient(key),
		model:  model,
	}, nil
}

// Embed generates an embedding vector for a single text.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}

	start := time.Now()
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(o.model),
		Input: []string{text},
	})
	metrics.DefaultMetrics.EmbeddingLatency.WithLabelValues("openai").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DefaultMetrics.EmbeddingFailures.WithLabelValues("openai").Inc()
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned from API")
	}
	return resp.Data[0].Embedding, nil
}

// EmbedBatch generates embedding vectors for a batch of texts.
func (o *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(o.model),
		Input: texts,
	})
	metrics.DefaultMetrics.EmbeddingLatency.WithLabelValues("openai").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DefaultMetrics.EmbeddingFailures.WithLabelValues("openai").Inc()
		return nil, fmt.Errorf("embedding batch: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		embeddings[i] = d.Embedding
	}
	return embeddings, nil
}
