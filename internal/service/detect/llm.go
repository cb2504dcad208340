package detect

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"interview-memory-service/internal/config"
	"interview-memory-service/internal/observability/metrics"
)

const classifyPrompt = `You are classifying live interview transcript text.
Answer with a single word, "yes" or "no": is the following text an interview
question or a conversation point directed at the candidate?

Text: %q`

// generator is the slice of the Gemini client the LLM detector needs.
// Narrowed for testing with a fake.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// geminiGenerator wraps a genai.GenerativeModel.
type geminiGenerator struct {
	model *genai.GenerativeModel
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from classifier model")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// LLM is the semantic detection strategy. Results are cached keyed by exact
// text; the cache is a FIFO bounded at capacity, evicting the oldest entry
// per insertion past the bound. On classifier failure it falls back to the
// keyword strategy instead of propagating the error.
type LLM struct {
	gen      generator
	fallback *Keyword
	capacity int

	mu    sync.Mutex
	cache map[string]bool
	order []string // insertion order, oldest first
}

// NewLLM creates a Gemini-backed LLM detector.
func NewLLM(ctx context.Context, cfg config.GoogleConfig, cacheSize int) (*LLM, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return newLLM(&geminiGenerator{model: client.GenerativeModel(cfg.GenModel)}, cacheSize), nil
}

func newLLM(gen generator, cacheSize int) *LLM {
	if cacheSize <= 0 {
		cacheSize = 100
	}
	return &LLM{
		gen:      gen,
		fallback: NewKeyword(),
		capacity: cacheSize,
		cache:    make(map[string]bool),
	}
}

// Classify returns the cached result when available; otherwise it asks the
// model for a yes/no judgment. The answer is true iff the lowercased reply
// contains "yes".
func (l *LLM) Classify(ctx context.Context, text string) (bool, error) {
	l.mu.Lock()
	if cached, ok := l.cache[text]; ok {
		l.mu.Unlock()
		metrics.DefaultMetrics.ClassifierCacheHits.Inc()
		return cached, nil
	}
	l.mu.Unlock()

	start := time.Now()
	reply, err := l.gen.Generate(ctx, fmt.Sprintf(classifyPrompt, text))
	metrics.DefaultMetrics.ClassifierLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Warn().Err(err).Msg("LLM classification failed, falling back to keyword matching")
		metrics.DefaultMetrics.ClassifierFallbacks.Inc()
		return l.fallback.Classify(ctx, text)
	}

	isQuestion := strings.Contains(strings.ToLower(reply), "yes")
	l.put(text, isQuestion)
	metrics.DefaultMetrics.RecordClassification("llm", isQuestion)
	return isQuestion, nil
}

// put inserts a result, evicting the oldest entry once size exceeds capacity.
func (l *LLM) put(text string, isQuestion bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.cache[text]; ok {
		l.cache[text] = isQuestion
		return
	}

	l.cache[text] = isQuestion
	l.order = append(l.order, text)
	if len(l.order) > l.capacity {
		oldest := l.order[0]
		l.order = l.order[1:]
		delete(l.cache, oldest)
	}
}

// cacheLen reports the current cache size.
func (l *LLM) cacheLen() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cache)
}

// cached reports whether text is present in the cache.
func (l *LLM) cached(text string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.cache[text]
	return ok
}
